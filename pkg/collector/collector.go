// Package collector holds the values the deployed OpenTelemetry collector
// image expects regardless of which cloud it runs on.
package collector

import "fmt"

const (
	// PortOTLPGRPC receives OTLP over gRPC
	PortOTLPGRPC = 4317
	// PortOTLPHTTP receives OTLP over HTTP, this is the port exposed publicly
	PortOTLPHTTP = 4318
	// PortHealthCheck serves the health_check extension
	PortHealthCheck = 13133

	HealthCheckPath = "/"

	// APIKeyEnv is the environment variable the collector reads the Honeycomb key from
	APIKeyEnv = "HONEYCOMB_API_KEY"

	// APIKeyConfig is the stack configuration key holding the Honeycomb key
	APIKeyConfig = "honeycomb-api-key"

	// DefaultBuildContext is relative to the infra/<variant> program folders
	DefaultBuildContext = "../../docker-collector/"

	ContainerName = "collector"
)

// Port is a port the collector container listens on
type Port struct {
	Name   string
	Number int
}

// Ports returns the collector ports in the order they are mapped
func Ports() []Port {
	return []Port{
		{Name: "otlp-grpc", Number: PortOTLPGRPC},
		{Name: "otlp-http", Number: PortOTLPHTTP},
		{Name: "health", Number: PortHealthCheck},
	}
}

// MissingConfigError is returned when required configuration has not been set
type MissingConfigError struct {
	Key string
	Err error
}

func (e *MissingConfigError) Error() string {
	msg := fmt.Sprintf("missing required configuration %q", e.Key)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}

	return msg
}

func (e *MissingConfigError) Unwrap() error {
	return e.Err
}
