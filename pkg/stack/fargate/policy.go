package fargate

import (
	"encoding/json"
	"fmt"
)

const policyVersion = "2012-10-17"

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Sid       string            `json:"Sid"`
	Effect    string            `json:"Effect"`
	Action    []string          `json:"Action"`
	Principal map[string]string `json:"Principal,omitempty"`
	Resource  string            `json:"Resource,omitempty"`
}

// ecrPullActions are the permissions needed to pull from a private repository
var ecrPullActions = []string{
	"ecr:GetAuthorizationToken",
	"ecr:BatchCheckLayerAvailability",
	"ecr:GetDownloadUrlForLayer",
	"ecr:BatchGetImage",
	"ecr:DescribeImages",
}

// assumeRolePolicy allows service to assume the role
func assumeRolePolicy(service string) (string, error) {
	return marshalPolicy(policyDocument{
		Version: policyVersion,
		Statement: []policyStatement{
			{
				Effect:    "Allow",
				Action:    []string{"sts:AssumeRole"},
				Principal: map[string]string{"Service": service},
			},
		},
	})
}

func pullImagePolicy() (string, error) {
	return marshalPolicy(policyDocument{
		Version: policyVersion,
		Statement: []policyStatement{
			{
				Effect:   "Allow",
				Action:   ecrPullActions,
				Resource: "*",
			},
		},
	})
}

func marshalPolicy(p policyDocument) (string, error) {
	d, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("unable to marshal policy: %w", err)
	}

	return string(d), nil
}
