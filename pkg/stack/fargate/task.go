package fargate

import (
	"encoding/json"
	"fmt"

	"github.com/jumppad-labs/collector-stack/pkg/collector"
	"github.com/jumppad-labs/collector-stack/pkg/secret"
)

const (
	containerCPU    = 128
	containerMemory = 512

	// Fargate does not accept less than a quarter vCPU for a task
	taskCPU    = "256"
	taskMemory = "512"
)

type containerDefinition struct {
	Name             string            `json:"name"`
	Image            string            `json:"image"`
	CPU              int               `json:"cpu"`
	Memory           int               `json:"memory"`
	Essential        bool              `json:"essential"`
	Environment      []keyValuePair    `json:"environment"`
	PortMappings     []portMapping     `json:"portMappings"`
	LogConfiguration *logConfiguration `json:"logConfiguration,omitempty"`
}

type keyValuePair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type portMapping struct {
	ContainerPort int    `json:"containerPort"`
	HostPort      int    `json:"hostPort"`
	Protocol      string `json:"protocol"`
}

type logConfiguration struct {
	LogDriver string            `json:"logDriver"`
	Options   map[string]string `json:"options"`
}

type taskParams struct {
	Image    string
	APIKey   secret.Value
	LogGroup string
	Region   string
}

// portMappings maps every collector port one to one on the task
func portMappings() []portMapping {
	pm := []portMapping{}
	for _, p := range collector.Ports() {
		pm = append(pm, portMapping{ContainerPort: p.Number, HostPort: p.Number, Protocol: "tcp"})
	}

	return pm
}

// containerDefinitions renders the ECS container definitions document. The
// result contains the API key and must only be used as a secret value.
func containerDefinitions(p taskParams) (string, error) {
	defs := []containerDefinition{
		{
			Name:      collector.ContainerName,
			Image:     p.Image,
			CPU:       containerCPU,
			Memory:    containerMemory,
			Essential: true,
			Environment: []keyValuePair{
				{Name: collector.APIKeyEnv, Value: p.APIKey.Reveal()},
			},
			PortMappings: portMappings(),
		},
	}

	if p.LogGroup != "" {
		defs[0].LogConfiguration = &logConfiguration{
			LogDriver: "awslogs",
			Options: map[string]string{
				"awslogs-group":         p.LogGroup,
				"awslogs-region":        p.Region,
				"awslogs-stream-prefix": collector.ContainerName,
			},
		}
	}

	d, err := json.Marshal(defs)
	if err != nil {
		return "", fmt.Errorf("unable to marshal container definitions: %w", err)
	}

	return string(d), nil
}
