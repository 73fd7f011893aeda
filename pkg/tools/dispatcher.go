package tools

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ToolFunc defines a function executed asynchronously.
type ToolFunc func(ctx context.Context) error

var inflight sync.WaitGroup

// Dispatch runs the provided tool in a separate goroutine. Fire and forget:
// failures are logged under name and never reach the caller.
func Dispatch(ctx context.Context, name string, fn ToolFunc) {
	inflight.Add(1)
	go func() {
		defer inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("dispatched task panicked", zap.String("task", name), zap.Any("panic", r))
			}
		}()
		if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zap.L().Warn("dispatched task failed", zap.String("task", name), zap.Error(err))
		}
	}()
}

// Wait blocks until every dispatched task has returned or ctx is done.
func Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
