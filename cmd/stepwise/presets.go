package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/stepwise/internal/cli"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage saved inputs",
	Long:  `List, show, save and remove presets in the configured store (memory, file or redis).`,
}

var presetsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store ports.PresetStore) error {
			names, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("No presets found.")
				return nil
			}
			fmt.Println("Presets:")
			for _, n := range names {
				fmt.Println("- " + n)
			}
			return nil
		})
	},
}

var presetsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a preset as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store ports.PresetStore) error {
			p, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("loading preset '%s': %w", args[0], err)
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(p)
		})
	},
}

var presetsSaveCmd = &cobra.Command{
	Use:   "save <name> --input <file>",
	Short: "Save a spec file as a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		kind, _ := cmd.Flags().GetString("kind")
		rawParams, _ := cmd.Flags().GetString("params")

		spec, err := cli.LoadSpec(input)
		if err != nil {
			return err
		}
		name, err := ports.SanitizeName(args[0])
		if err != nil {
			return err
		}
		p := ports.Preset{Name: name, Kind: domain.Kind(kind), Spec: spec}
		if rawParams != "" {
			if err := json.Unmarshal([]byte(rawParams), &p.Params); err != nil {
				return fmt.Errorf("%w: parsing --params JSON: %v", domain.ErrInvalidParams, err)
			}
		}
		return withStore(cmd, func(store ports.PresetStore) error {
			if err := store.Save(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Printf("Saved preset '%s'\n", name)
			return nil
		})
	},
}

var presetsRmCmd = &cobra.Command{
	Use:   "rm <name>...",
	Short: "Remove one or more presets",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store ports.PresetStore) error {
			var failed int
			for _, name := range args {
				if err := store.Delete(cmd.Context(), name); err != nil {
					fmt.Printf("Error removing '%s': %v\n", name, err)
					failed++
					continue
				}
				fmt.Printf("Removed preset '%s'\n", name)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d presets not removed", failed, len(args))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.AddCommand(presetsLsCmd, presetsShowCmd, presetsSaveCmd, presetsRmCmd)

	presetsSaveCmd.Flags().StringP("input", "i", "", "Container spec file (YAML or JSON)")
	presetsSaveCmd.Flags().String("kind", "", "Algorithm the preset is prepared for")
	presetsSaveCmd.Flags().String("params", "", "Algorithm parameters as a JSON object")
	_ = presetsSaveCmd.MarkFlagRequired("input")
}

func withStore(cmd *cobra.Command, fn func(ports.PresetStore) error) error {
	if cfg.Presets.Backend == "memory" {
		logger.Warn("presets backend is memory; nothing persists between commands")
	}
	backend, err := cli.OpenBackend(cmd.Context(), cfg.Presets, logger)
	if err != nil {
		return err
	}
	defer backend.Close()
	return fn(backend.Store)
}
