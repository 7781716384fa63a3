package apperr

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs an error with its goerr values attached. Used at the
// boundaries where an error stops propagating (HTTP handlers, async
// pipeline runs).
func Handle(ctx context.Context, err error) {
	logger := ctxlog.From(ctx)

	if gerr := goerr.Unwrap(err); gerr != nil {
		logger.Error("application error", "error", err, "values", gerr.Values())
		return
	}
	logger.Error("application error", "error", err)
}
