package mocks

import (
	"context"

	"lodge/infras/otel"
)

type otelImpl struct{}

// NewOtel returns a tracer that opens no-op scopes.
func NewOtel() otel.Otel {
	return &otelImpl{}
}

func (o *otelImpl) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, NewScope()
}

func (o *otelImpl) Shutdown(_ context.Context) error {
	return nil
}
