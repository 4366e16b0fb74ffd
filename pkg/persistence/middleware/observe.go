package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type observedMiddleware struct {
	next   ports.PresetStore
	logger *slog.Logger
	tracer trace.Tracer
}

// NewObservedMiddleware records a span per store call and logs failed
// calls. A missing preset is not a failure. A nil tracer uses the global
// provider.
func NewObservedMiddleware(logger *slog.Logger, tracer trace.Tracer) Middleware {
	if tracer == nil {
		tracer = otel.Tracer("github.com/aretw0/stepwise/pkg/persistence/middleware")
	}
	return func(next ports.PresetStore) ports.PresetStore {
		return &observedMiddleware{next: next, logger: logger, tracer: tracer}
	}
}

func (m *observedMiddleware) observe(ctx context.Context, op, name string, fn func(context.Context) error) error {
	ctx, span := m.tracer.Start(ctx, "presets."+op, trace.WithAttributes(attribute.String("preset.name", name)))
	defer span.End()

	err := fn(ctx)
	if err != nil && !errors.Is(err, domain.ErrPresetNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.logger.WarnContext(ctx, "preset store call failed", "op", op, "name", name, "err", err)
		return err
	}
	m.logger.DebugContext(ctx, "preset store call", "op", op, "name", name)
	return err
}

func (m *observedMiddleware) Save(ctx context.Context, p ports.Preset) error {
	return m.observe(ctx, "save", p.Name, func(ctx context.Context) error {
		return m.next.Save(ctx, p)
	})
}

func (m *observedMiddleware) Load(ctx context.Context, name string) (p ports.Preset, err error) {
	err = m.observe(ctx, "load", name, func(ctx context.Context) error {
		p, err = m.next.Load(ctx, name)
		return err
	})
	return p, err
}

func (m *observedMiddleware) Delete(ctx context.Context, name string) error {
	return m.observe(ctx, "delete", name, func(ctx context.Context) error {
		return m.next.Delete(ctx, name)
	})
}

func (m *observedMiddleware) List(ctx context.Context) (names []string, err error) {
	err = m.observe(ctx, "list", "", func(ctx context.Context) error {
		names, err = m.next.List(ctx)
		return err
	})
	return names, err
}
