package strategy

import (
	"context"
	"log/slog"
)

// Func is a single fallback attempt. A non-nil error or a rejected result moves the chain on.
type Func[In, Out any] func(ctx context.Context, in In) (Out, error)

// Step names a strategy so attempts can be logged and inspected.
type Step[In, Out any] struct {
	Name string
	Run  Func[In, Out]
}

// Chain tries its steps in registration order and stops at the first accepted result.
type Chain[In, Out any] struct {
	steps  []Step[In, Out]
	accept func(Out) bool
	logger *slog.Logger
}

// New builds a chain with the shared success predicate. A nil accept admits every error-free result.
func New[In, Out any](accept func(Out) bool, logger *slog.Logger, steps ...Step[In, Out]) *Chain[In, Out] {
	if accept == nil {
		accept = func(Out) bool { return true }
	}
	return &Chain[In, Out]{
		steps:  append([]Step[In, Out](nil), steps...),
		accept: accept,
		logger: logger,
	}
}

// Register appends a step to the end of the chain.
func (c *Chain[In, Out]) Register(step Step[In, Out]) {
	c.steps = append(c.steps, step)
}

// Names lists the steps in the order they are tried.
func (c *Chain[In, Out]) Names() []string {
	names := make([]string, 0, len(c.steps))
	for _, step := range c.steps {
		names = append(names, step.Name)
	}
	return names
}

// Run returns the first accepted result with the name of the step that produced it.
// ok is false when every step failed or was rejected.
func (c *Chain[In, Out]) Run(ctx context.Context, in In) (out Out, name string, ok bool) {
	for _, step := range c.steps {
		if ctx.Err() != nil {
			break
		}

		result, err := step.Run(ctx, in)
		if err != nil {
			c.debug("strategy failed", "strategy", step.Name, "error", err)
			continue
		}
		if !c.accept(result) {
			c.debug("strategy rejected", "strategy", step.Name)
			continue
		}

		c.debug("strategy accepted", "strategy", step.Name)
		return result, step.Name, true
	}

	var zero Out
	return zero, "", false
}

func (c *Chain[In, Out]) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
