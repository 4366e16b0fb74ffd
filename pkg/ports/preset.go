package ports

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
)

// Preset is a named, reusable input: a container spec plus, optionally, the
// algorithm and params it was prepared for.
type Preset struct {
	Name      string         `json:"name" yaml:"name"`
	Kind      domain.Kind    `json:"kind,omitempty" yaml:"kind,omitempty"`
	Params    map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	Spec      viz.Spec       `json:"spec" yaml:"spec"`
	UpdatedAt time.Time      `json:"updated_at" yaml:"updated_at"`
}

// PresetStore persists presets by name.
type PresetStore interface {
	// Save creates or replaces the preset with p.Name.
	Save(ctx context.Context, p Preset) error

	// Load returns domain.ErrPresetNotFound if the preset does not exist.
	Load(ctx context.Context, name string) (Preset, error)

	// Delete removes a preset. Deleting a missing preset is not an error.
	Delete(ctx context.Context, name string) error

	// List returns preset names in lexical order.
	List(ctx context.Context) ([]string, error)
}

// MaxPresetName bounds the length of a preset name.
const MaxPresetName = 64

var presetName = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// SanitizeName normalizes a preset name: trimmed, lower-cased, spaces as
// dashes. Names that could escape a directory or a key namespace are
// rejected with domain.ErrInvalidParams.
func SanitizeName(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.Join(strings.Fields(n), "-")
	if n == "" || len(n) > MaxPresetName || !presetName.MatchString(n) || strings.Contains(n, "..") {
		return "", fmt.Errorf("%w: preset name %q", domain.ErrInvalidParams, name)
	}
	return n, nil
}

// Clone returns a copy of p that shares no slices or maps with it.
func (p Preset) Clone() Preset {
	out := p
	out.Params = maps.Clone(p.Params)
	s := &out.Spec
	s.Values = slices.Clone(s.Values)
	s.Walls = slices.Clone(s.Walls)
	s.Weights = maps.Clone(s.Weights)
	s.Nodes = slices.Clone(s.Nodes)
	s.Edges = slices.Clone(s.Edges)
	if s.Matrix != nil {
		s.Matrix = make([][]int64, len(p.Spec.Matrix))
		for i, row := range p.Spec.Matrix {
			s.Matrix[i] = slices.Clone(row)
		}
	}
	return out
}
