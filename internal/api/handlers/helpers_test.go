package handlers_test

import (
	"context"

	"github.com/go-chi/chi/v5"
)

// setChiURLParam injects a chi URL parameter into a request context so
// handlers can be exercised without a full router.
func setChiURLParam(ctx context.Context, key, value string) context.Context {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}
