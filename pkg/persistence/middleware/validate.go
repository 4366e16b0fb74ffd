package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/go-playground/validator/v10"
)

// MaxSpecElements bounds the values, nodes and edges of a saved spec.
const MaxSpecElements = 10000

type validationMiddleware struct {
	next     ports.PresetStore
	validate *validator.Validate
	max      int
}

// NewValidationMiddleware rejects presets whose spec does not describe a
// buildable container of at most maxElements elements. Stored presets carry
// a sanitized name and their own copy of the params.
func NewValidationMiddleware(maxElements int) Middleware {
	if maxElements <= 0 {
		maxElements = MaxSpecElements
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	return func(next ports.PresetStore) ports.PresetStore {
		return &validationMiddleware{next: next, validate: v, max: maxElements}
	}
}

func (m *validationMiddleware) Save(ctx context.Context, p ports.Preset) error {
	name, err := ports.SanitizeName(p.Name)
	if err != nil {
		return err
	}
	if err := m.validate.Struct(p.Spec); err != nil {
		return fmt.Errorf("%w: preset %s: %v", domain.ErrInvalidParams, name, err)
	}
	if n := max(len(p.Spec.Values), len(p.Spec.Nodes), len(p.Spec.Edges), p.Spec.Size); n > m.max {
		return fmt.Errorf("%w: preset %s has %d elements, limit %d", domain.ErrInvalidParams, name, n, m.max)
	}
	if _, err := p.Spec.Build(); err != nil {
		return fmt.Errorf("preset %s: %w", name, err)
	}

	cloned := p
	cloned.Name = name
	cloned.Params = deepCopyMap(p.Params)
	return m.next.Save(ctx, cloned)
}

func (m *validationMiddleware) Load(ctx context.Context, name string) (ports.Preset, error) {
	clean, err := ports.SanitizeName(name)
	if err != nil {
		return ports.Preset{}, err
	}
	return m.next.Load(ctx, clean)
}

func (m *validationMiddleware) Delete(ctx context.Context, name string) error {
	clean, err := ports.SanitizeName(name)
	if err != nil {
		return err
	}
	return m.next.Delete(ctx, clean)
}

func (m *validationMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		// Handle nested maps
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v // shallow copy of value
		}
	}
	return out
}
