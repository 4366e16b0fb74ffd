package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/stepwise/internal/cli"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <kind>",
	Short: "Animate an algorithm in the terminal",
	Long: `Runs one algorithm on a generated input, explicit values, a spec file or a
saved preset. While it runs, type p to pause, r to resume, c to cancel,
reset to clear the marks, or s <ms> to change the speed.`,
	Example: `  stepwise run bubble-sort --values 5,3,4,1,2
  stepwise run binary-search --size 20 --params '{"target": 42}'
  stepwise run astar --input maze.yaml --watch
  stepwise run quick-sort --json --headless`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		opts := cli.RunOptions{
			Mode:         cfg.Runner.Mode,
			SpeedMS:      cfg.Runner.SpeedMS,
			Challenge:    cfg.Runner.Challenge,
			PollInterval: cfg.Runner.PollInterval,
			Seed:         cfg.Compare.Seed,
			Logger:       logging.NewNop(),
		}
		if len(args) > 0 {
			opts.Kind = domain.Kind(args[0])
		}
		opts.Values, _ = f.GetIntSlice("values")
		opts.Size, _ = f.GetInt("size")
		opts.Params, _ = f.GetString("params")
		opts.InputPath, _ = f.GetString("input")
		opts.Preset, _ = f.GetString("preset")
		opts.Watch, _ = f.GetBool("watch")
		opts.JSON, _ = f.GetBool("json")
		opts.Headless, _ = f.GetBool("headless")
		opts.Bell, _ = f.GetBool("bell")
		opts.Scroll, _ = f.GetBool("scroll")
		opts.Debug, _ = f.GetBool("debug")
		if f.Changed("seed") {
			opts.Seed, _ = f.GetUint64("seed")
		}
		if f.Changed("mode") {
			opts.Mode, _ = f.GetString("mode")
		}
		if f.Changed("speed") {
			opts.SpeedMS, _ = f.GetInt("speed")
		}
		if opts.Debug {
			opts.Logger = logger
		}

		ctx := cmd.Context()
		if opts.Preset != "" {
			backend, err := cli.OpenBackend(ctx, cfg.Presets, logger)
			if err != nil {
				return err
			}
			defer backend.Close()
			opts.Presets = backend.Store
		}
		if opts.Watch {
			var stop context.CancelFunc
			ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
		}
		return cli.Execute(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.IntSlice("values", nil, "Array input, e.g. 5,3,4,1,2")
	f.Int("size", cli.DefaultSize, "Size of the generated input")
	f.Uint64("seed", 0, "Seed for the generated input (default from config)")
	f.String("params", "", "Algorithm parameters as a JSON object")
	f.StringP("input", "i", "", "Container spec file (YAML or JSON)")
	f.String("preset", "", "Load the input from a saved preset")
	f.String("mode", "learning", "Pacing: learning, quick or challenge")
	f.Int("speed", 0, "Delay between steps in ms, 100-2000 (default from config)")
	f.BoolP("watch", "w", false, "Re-run whenever the --input file changes")
	f.Bool("json", false, "Stream updates as NDJSON and read JSON commands")
	f.Bool("headless", false, "Do not read commands from stdin")
	f.Bool("bell", false, "Ring the terminal bell when the run completes")
	f.Bool("scroll", false, "Print frames one after another instead of redrawing")
	f.Bool("debug", false, "Log run and step events to stderr")
}
