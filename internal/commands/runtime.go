package commands

import (
	"context"
	"time"
)

// DefaultCommandTimeout bounds a single command execution.
const DefaultCommandTimeout = 30 * time.Second

// Begin prepares the context for one command run. A nil ctx falls back to
// context.Background and a positive timeout is applied. A context that is
// already done is returned as a wrapped context error.
func Begin(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	if err := ctx.Err(); err != nil {
		cancel()
		return ctx, func() {}, WrapContextError(err)
	}
	return ctx, cancel, nil
}
