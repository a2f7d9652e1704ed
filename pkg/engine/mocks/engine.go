package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jumppad-labs/collector-stack/pkg/config"
	"github.com/jumppad-labs/collector-stack/pkg/engine"
)

// Engine is a mock engine which can be used when testing the
// CLI commands
type Engine struct {
	mock.Mock
}

func (e *Engine) Preview(ctx context.Context, st *config.Stack) (*engine.Result, error) {
	args := e.Called(ctx, st)

	if r, ok := args.Get(0).(*engine.Result); ok {
		return r, args.Error(1)
	}

	return nil, args.Error(1)
}

func (e *Engine) Up(ctx context.Context, st *config.Stack) (*engine.Result, error) {
	args := e.Called(ctx, st)

	if r, ok := args.Get(0).(*engine.Result); ok {
		return r, args.Error(1)
	}

	return nil, args.Error(1)
}

func (e *Engine) Destroy(ctx context.Context, st *config.Stack) (*engine.Result, error) {
	args := e.Called(ctx, st)

	if r, ok := args.Get(0).(*engine.Result); ok {
		return r, args.Error(1)
	}

	return nil, args.Error(1)
}

func (e *Engine) Outputs(ctx context.Context, st *config.Stack) (engine.Outputs, error) {
	args := e.Called(ctx, st)

	if o, ok := args.Get(0).(engine.Outputs); ok {
		return o, args.Error(1)
	}

	return nil, args.Error(1)
}
