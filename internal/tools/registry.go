package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/agenthands/deren/internal/config"
)

// Observer is told about every invocation, e.g. to record metrics.
type Observer func(tool string, ok bool, elapsed time.Duration)

type entry struct {
	tool    Tool
	breaker *gobreaker.CircuitBreaker
}

// Registry maps capability names to providers, each behind its own circuit breaker.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]*entry
	settings config.BreakerConfig
	logger   *zap.Logger
	observer Observer
}

func NewRegistry(settings config.BreakerConfig, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		tools:    make(map[string]*entry),
		settings: settings,
		logger:   logger,
	}
}

// SetObserver installs fn as the invocation observer.
func (r *Registry) SetObserver(fn Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer = fn
}

func (r *Registry) newBreaker(name string) *gobreaker.CircuitBreaker {
	s := r.settings
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval.Duration,
		Timeout:     s.Timeout.Duration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= s.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			r.logger.Warn("Tool circuit breaker changed state",
				zap.String("tool", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// Register adds a tool. Duplicate names are rejected.
func (r *Registry) Register(tool Tool) error {
	name := tool.Name()
	if name == "" {
		return ErrToolNameEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, name)
	}
	r.tools[name] = &entry{tool: tool, breaker: r.newBreaker(name)}
	r.logger.Debug("Registered tool", zap.String("tool", name))
	return nil
}

// Replace registers tool, overwriting any provider with the same name.
func (r *Registry) Replace(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = &entry{tool: tool, breaker: r.newBreaker(tool.Name())}
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Names returns registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named tool. Every problem, including an unknown name, an
// open breaker or a cancelled context, comes back as a tagged Failure.
func (r *Registry) Invoke(ctx context.Context, name string, in Input) Result {
	r.mu.RLock()
	e, ok := r.tools[name]
	observer := r.observer
	r.mu.RUnlock()

	if !ok {
		return Fail(name, ReasonNotRegistered, nil)
	}
	if err := ctx.Err(); err != nil {
		return Fail(name, ReasonCancelled, err)
	}

	start := time.Now()
	out, err := e.breaker.Execute(func() (interface{}, error) {
		res := e.tool.Execute(ctx, in)
		// Bad input is the caller's fault and must not trip the breaker.
		if res.Failure != nil && res.Failure.Reason != ReasonBadInput {
			return res, res.Failure
		}
		return res, nil
	})

	var res Result
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		res = Fail(name, ReasonCircuitOpen, err)
	default:
		res, _ = out.(Result)
		if err != nil && res.Failure == nil {
			res = Fail(name, ReasonProvider, err)
		}
	}

	if observer != nil {
		observer(name, res.OK(), time.Since(start))
	}
	if !res.OK() {
		r.logger.Debug("Tool call failed", zap.String("tool", name), zap.Error(res.Failure))
	}
	return res
}
