package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/stepwise/internal/cli"
	"github.com/aretw0/stepwise/internal/presentation/graph"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/aretw0/stepwise/pkg/runner"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [kind]",
	Short: "Export a graph or tree as a Mermaid diagram",
	Long: `Prints a Mermaid flowchart of a graph or tree container. With a kind, the
algorithm runs to completion first so visited nodes and the final path are
styled.`,
	Example: `  stepwise graph
  stepwise graph dijkstra
  stepwise graph astar --input roads.yaml
  stepwise graph avl-insert --size 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		size, _ := f.GetInt("size")
		seed, _ := f.GetUint64("seed")
		input, _ := f.GetString("input")
		rawParams, _ := f.GetString("params")

		var params map[string]any
		if rawParams != "" {
			if err := json.Unmarshal([]byte(rawParams), &params); err != nil {
				return fmt.Errorf("%w: parsing --params JSON: %v", domain.ErrInvalidParams, err)
			}
		}

		var c viz.Container = viz.SampleGraph()
		if input != "" {
			spec, err := cli.LoadSpec(input)
			if err != nil {
				return err
			}
			if c, err = spec.Build(); err != nil {
				return err
			}
		}

		if len(args) > 0 {
			reg := registry.Default()
			kind := domain.Kind(args[0])
			e, err := reg.Lookup(kind)
			if err != nil {
				return err
			}
			if input == "" && !e.Supports(domain.FamilyGraph) {
				if c, params, err = reg.Input(kind, params, viz.NewRand(seed), size); err != nil {
					return err
				}
			}
			proc, err := reg.Prepare(kind, c, params)
			if err != nil {
				return err
			}
			if _, err := runner.Execute(cmd.Context(), proc); err != nil {
				return err
			}
		}

		out, err := graph.GenerateMermaid(c.Frame())
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("input", "i", "", "Graph or tree spec file (YAML or JSON)")
	graphCmd.Flags().String("params", "", "Algorithm parameters as a JSON object")
	graphCmd.Flags().Int("size", cli.DefaultSize, "Size of the generated tree")
	graphCmd.Flags().Uint64("seed", 0, "Seed for the generated input")
}
