// Package engine runs the collector stacks through the Pulumi Automation API.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optdestroy"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optpreview"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optup"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/jumppad-labs/collector-stack/pkg/clients/logger"
	"github.com/jumppad-labs/collector-stack/pkg/collector"
	"github.com/jumppad-labs/collector-stack/pkg/config"
	"github.com/jumppad-labs/collector-stack/pkg/secret"
	"github.com/jumppad-labs/collector-stack/pkg/stack"
)

var ErrAPIKeyNotSet = errors.New("environment variable is not set")

// Engine defines an interface for deploying the collector stacks
//
//go:generate mockery --name Engine --filename engine.go
type Engine interface {
	// Preview returns the changes an update would make
	Preview(ctx context.Context, st *config.Stack) (*Result, error)
	// Up creates or updates the stack resources
	Up(ctx context.Context, st *config.Stack) (*Result, error)
	// Destroy removes all the stack resources
	Destroy(ctx context.Context, st *config.Stack) (*Result, error)
	// Outputs returns the outputs of the last update
	Outputs(ctx context.Context, st *config.Stack) (Outputs, error)
}

// Output is a single stack output
type Output struct {
	Value  interface{}
	Secret bool
}

// Outputs are the exported values of a stack
type Outputs map[string]Output

// Values returns the plain output values, secrets are redacted unless
// showSecrets is set
func (o Outputs) Values(showSecrets bool) map[string]interface{} {
	v := map[string]interface{}{}
	for k, out := range o {
		if out.Secret && !showSecrets {
			v[k] = secret.Redacted
			continue
		}

		v[k] = out.Value
	}

	return v
}

// Result is the outcome of an operation
type Result struct {
	// Changes counts the resources by operation, e.g. create, same, delete
	Changes map[string]int
	Outputs Outputs
}

// WorkspaceStack is the subset of auto.Stack the engine uses
type WorkspaceStack interface {
	SetAllConfig(ctx context.Context, config auto.ConfigMap) error
	Preview(ctx context.Context, opts ...optpreview.Option) (auto.PreviewResult, error)
	Up(ctx context.Context, opts ...optup.Option) (auto.UpResult, error)
	Destroy(ctx context.Context, opts ...optdestroy.Option) (auto.DestroyResult, error)
	Outputs(ctx context.Context) (auto.OutputMap, error)
}

// StackFactory creates or selects the named stack running program
type StackFactory func(ctx context.Context, project, name string, program pulumi.RunFunc) (WorkspaceStack, error)

// UpsertInlineStack creates or selects a local workspace stack with an inline program
func UpsertInlineStack(ctx context.Context, project, name string, program pulumi.RunFunc) (WorkspaceStack, error) {
	s, err := auto.UpsertStackInlineSource(ctx, name, project, program)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// EngineImpl deploys the stacks with the Automation API
type EngineImpl struct {
	log      logger.Logger
	newStack StackFactory
}

// New creates a new engine backed by local workspaces
func New(l logger.Logger) Engine {
	return NewWithFactory(l, UpsertInlineStack)
}

// NewWithFactory creates an engine which uses f to open stacks
func NewWithFactory(l logger.Logger, f StackFactory) *EngineImpl {
	return &EngineImpl{log: l, newStack: f}
}

func (e *EngineImpl) Preview(ctx context.Context, st *config.Stack) (*Result, error) {
	ws, apiKey, err := e.open(ctx, st, true)
	if err != nil {
		return nil, err
	}

	e.log.Info("Previewing stack", "stack", st.Name, "variant", st.Variant)

	res, err := ws.Preview(ctx, optpreview.ProgressStreams(e.log.StandardWriter()))
	if err != nil {
		return nil, fmt.Errorf("unable to preview stack %s: %w", st.Name, secret.RedactError(err, apiKey))
	}

	changes := map[string]int{}
	for op, n := range res.ChangeSummary {
		changes[string(op)] = n
	}

	return &Result{Changes: changes}, nil
}

func (e *EngineImpl) Up(ctx context.Context, st *config.Stack) (*Result, error) {
	ws, apiKey, err := e.open(ctx, st, true)
	if err != nil {
		return nil, err
	}

	e.log.Info("Updating stack", "stack", st.Name, "variant", st.Variant)

	res, err := ws.Up(ctx, optup.ProgressStreams(e.log.StandardWriter()))
	if err != nil {
		return nil, fmt.Errorf("unable to update stack %s: %w", st.Name, secret.RedactError(err, apiKey))
	}

	return &Result{
		Changes: resourceChanges(res.Summary),
		Outputs: toOutputs(res.Outputs),
	}, nil
}

func (e *EngineImpl) Destroy(ctx context.Context, st *config.Stack) (*Result, error) {
	ws, apiKey, err := e.open(ctx, st, true)
	if err != nil {
		return nil, err
	}

	e.log.Info("Destroying stack", "stack", st.Name, "variant", st.Variant)

	res, err := ws.Destroy(ctx, optdestroy.ProgressStreams(e.log.StandardWriter()))
	if err != nil {
		return nil, fmt.Errorf("unable to destroy stack %s: %w", st.Name, secret.RedactError(err, apiKey))
	}

	return &Result{Changes: resourceChanges(res.Summary)}, nil
}

// Outputs does not run the program so the API key is not required
func (e *EngineImpl) Outputs(ctx context.Context, st *config.Stack) (Outputs, error) {
	ws, _, err := e.open(ctx, st, false)
	if err != nil {
		return nil, err
	}

	out, err := ws.Outputs(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to read outputs for stack %s: %w", st.Name, err)
	}

	return toOutputs(out), nil
}

// open resolves the configuration for st and opens the workspace stack, the
// API key is read before the workspace is touched and returned so callers
// can redact it from engine errors
func (e *EngineImpl) open(ctx context.Context, st *config.Stack, withConfig bool) (WorkspaceStack, secret.Value, error) {
	b, err := stack.Lookup(st.Variant)
	if err != nil {
		return nil, secret.Value{}, err
	}

	var apiKey secret.Value
	if withConfig {
		apiKey, err = readAPIKey(st.APIKeyEnv)
		if err != nil {
			return nil, secret.Value{}, err
		}
	}

	e.log.Debug("Opening stack", "project", st.Project, "stack", st.Name)

	prog := b.Program(stack.Options{
		BuildContext: st.BuildContext,
		Logger:       logger.LoggerAsHCLogger(e.log),
	})

	ws, err := e.newStack(ctx, st.Project, st.Name, prog)
	if err != nil {
		return nil, apiKey, fmt.Errorf("unable to open stack %s: %w", st.Name, err)
	}

	if !withConfig {
		return ws, apiKey, nil
	}

	cfg := auto.ConfigMap{
		b.RegionKey:            auto.ConfigValue{Value: st.DeploymentRegion()},
		collector.APIKeyConfig: auto.ConfigValue{Value: apiKey.Reveal(), Secret: true},
	}

	if err := ws.SetAllConfig(ctx, cfg); err != nil {
		return nil, apiKey, fmt.Errorf("unable to set config for stack %s: %w", st.Name, secret.RedactError(err, apiKey))
	}

	return ws, apiKey, nil
}

func readAPIKey(env string) (secret.Value, error) {
	if env == "" {
		env = collector.APIKeyEnv
	}

	v, ok := os.LookupEnv(env)
	if !ok || v == "" {
		return secret.Value{}, &collector.MissingConfigError{Key: env, Err: ErrAPIKeyNotSet}
	}

	return secret.New(v), nil
}

func resourceChanges(s auto.UpdateSummary) map[string]int {
	changes := map[string]int{}
	if s.ResourceChanges == nil {
		return changes
	}

	for op, n := range *s.ResourceChanges {
		changes[op] = n
	}

	return changes
}

func toOutputs(m auto.OutputMap) Outputs {
	o := Outputs{}
	for k, v := range m {
		o[k] = Output{Value: v.Value, Secret: v.Secret}
	}

	return o
}
