package mission

import (
	"context"
	"sync"

	"github.com/agenthands/deren/internal/tools"
)

type MockLLM struct {
	Response      string
	ResponseQueue []string
	Err           error
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

// MockInvoker answers from Results keyed by tool name and records calls.
type MockInvoker struct {
	mu      sync.Mutex
	Results map[string]tools.Result
	Calls   []string
}

func (m *MockInvoker) Invoke(ctx context.Context, name string, in tools.Input) tools.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, name)
	if res, ok := m.Results[name]; ok {
		return res
	}
	return tools.Fail(name, tools.ReasonNotRegistered, nil)
}

// BlockingPlanner waits on Release before returning the default plan.
type BlockingPlanner struct {
	Entered chan struct{}
	Release chan struct{}
}

func (p *BlockingPlanner) Plan(ctx context.Context, mission string) (Plan, error) {
	close(p.Entered)
	select {
	case <-p.Release:
		return StaticPlanner{}.Plan(ctx, mission)
	case <-ctx.Done():
		return Plan{}, ctx.Err()
	}
}

type FailingPlanner struct {
	Err error
}

func (p FailingPlanner) Plan(ctx context.Context, mission string) (Plan, error) {
	return Plan{}, p.Err
}

// CancellingInvoker cancels the mission context on the first tool call.
type CancellingInvoker struct {
	Cancel context.CancelFunc
}

func (c *CancellingInvoker) Invoke(ctx context.Context, name string, in tools.Input) tools.Result {
	c.Cancel()
	return tools.Fail(name, tools.ReasonCancelled, context.Canceled)
}
