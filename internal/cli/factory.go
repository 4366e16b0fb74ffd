package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/observability"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/aretw0/stepwise/pkg/runner"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/go-playground/validator/v10"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// DefaultSize is the generated input size when none is given.
const DefaultSize = 12

// presenter draws updates and reads commands from the same terminal or stream.
type presenter interface {
	runner.Handler
	runner.CommandSource
}

// LoadSpec reads a container spec from a YAML or JSON file.
func LoadSpec(path string) (viz.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return viz.Spec{}, err
	}
	var spec viz.Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return viz.Spec{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidParams, path, err)
	}
	if err := validator.New().Struct(spec); err != nil {
		return viz.Spec{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidParams, path, err)
	}
	return spec, nil
}

// resolveInput picks the container from, in order, an input file, a saved
// preset, explicit values or a seeded sample.
func resolveInput(ctx context.Context, opts RunOptions, reg *registry.Registry, params map[string]any) (viz.Container, domain.Kind, map[string]any, error) {
	kind := opts.Kind
	var spec *viz.Spec

	switch {
	case opts.InputPath != "":
		s, err := LoadSpec(opts.InputPath)
		if err != nil {
			return nil, "", nil, err
		}
		spec = &s
	case opts.Preset != "":
		if opts.Presets == nil {
			return nil, "", nil, fmt.Errorf("%w: no preset store configured", domain.ErrMissingPrerequisite)
		}
		p, err := opts.Presets.Load(ctx, opts.Preset)
		if err != nil {
			return nil, "", nil, err
		}
		if kind == "" {
			kind = p.Kind
		}
		params = registry.MergeParams(p.Params, params)
		spec = &p.Spec
	}

	if kind == "" {
		return nil, "", nil, fmt.Errorf("%w: no algorithm selected", domain.ErrInvalidParams)
	}
	if _, err := reg.Lookup(kind); err != nil {
		return nil, "", nil, err
	}

	switch {
	case spec != nil:
		c, err := spec.Build()
		return c, kind, params, err
	case len(opts.Values) > 0:
		return viz.NewArray(opts.Values), kind, params, nil
	default:
		size := opts.Size
		if size <= 0 {
			size = DefaultSize
		}
		c, merged, err := reg.Input(kind, params, viz.NewRand(opts.Seed), size)
		return c, kind, merged, err
	}
}

func newRunner(opts RunOptions, reg *registry.Registry) (*runner.Runner, error) {
	mode, err := runner.ParseMode(opts.Mode)
	if err != nil {
		return nil, err
	}
	ropts := []runner.Option{
		runner.WithLogger(opts.Logger),
		runner.WithRegistry(reg),
		runner.WithMode(mode),
		runner.WithChallenge(opts.Challenge),
		runner.WithPollInterval(opts.PollInterval),
	}
	if opts.SpeedMS > 0 {
		ropts = append(ropts, runner.WithSpeed(opts.SpeedMS))
	}
	if opts.Clock != nil {
		ropts = append(ropts, runner.WithClock(opts.Clock))
	}
	if opts.Bell {
		ropts = append(ropts, runner.WithCue(runner.SafeCue(tui.Bell{W: opts.Out}, opts.Logger)))
	}
	if opts.Debug {
		ropts = append(ropts, runner.WithLifecycleHooks(observability.LogHooks(opts.Logger)))
	}
	return runner.New(ropts...), nil
}

// terminalOf detects w when it is a file; anything else is a plain
// uncoloured sink.
func terminalOf(w io.Writer) tui.Terminal {
	if f, ok := w.(*os.File); ok {
		return tui.Detect(f)
	}
	return tui.Terminal{Width: tui.DefaultWidth, Height: 24, Profile: termenv.Ascii}
}

func newPresenter(opts RunOptions, term tui.Terminal) presenter {
	if opts.JSON {
		return runner.NewJSONHandler(opts.In, opts.Out)
	}
	fr := tui.NewFrameRenderer(term.Profile, term.Width)
	return runner.NewTextHandler(opts.In, opts.Out,
		runner.WithFrameRenderer(fr.Render),
		runner.WithRedraw(term.Interactive && !opts.Scroll),
	)
}
