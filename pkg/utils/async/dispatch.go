package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
)

// Dispatch runs a handler in the background with panic recovery. The
// request context is replaced with a fresh one so that pipeline runs
// survive the HTTP response that accepted them, while the logger and
// its attached attributes carry over.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := detach(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ctxlog.From(bgCtx).Error("Panic in background handler",
					"recover", r,
					"stack", string(debug.Stack()),
				)
			}
		}()

		if err := handler(bgCtx); err != nil {
			ctxlog.From(bgCtx).Error("Error in background handler",
				"error", err,
			)
		}
	}()
}

// detach builds a background context carrying over the request logger
func detach(ctx context.Context) context.Context {
	bgCtx := context.Background()

	if logger := ctxlog.From(ctx); logger != nil {
		bgCtx = ctxlog.With(bgCtx, logger)
	}

	return bgCtx
}
