package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Kind      domain.Kind
	Params    string // Raw JSON object
	Values    []int
	Size      int
	Seed      uint64
	InputPath string
	Preset    string

	Mode         string
	SpeedMS      int
	Challenge    time.Duration
	PollInterval time.Duration

	Watch    bool
	JSON     bool
	Headless bool
	Bell     bool
	Scroll   bool
	Debug    bool

	Presets ports.PresetStore
	Logger  *slog.Logger
	Clock   runner.Clock
	In      io.Reader
	Out     io.Writer
}

func (o RunOptions) withDefaults() RunOptions {
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	return o
}

func (o RunOptions) params() (map[string]any, error) {
	if o.Params == "" {
		return nil, nil
	}
	var params map[string]any
	if err := json.Unmarshal([]byte(o.Params), &params); err != nil {
		return nil, fmt.Errorf("%w: parsing --params JSON: %v", domain.ErrInvalidParams, err)
	}
	return params, nil
}

// Execute handles the 'run' command logic, dispatching to Session or Watch mode.
func Execute(ctx context.Context, opts RunOptions) error {
	if opts.Watch {
		if opts.Headless || opts.JSON {
			return fmt.Errorf("--watch cannot be combined with --headless or --json")
		}
		return RunWatch(ctx, opts)
	}
	return RunSession(ctx, opts)
}
