package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/stepwise/pkg/compare"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <kind> <kind>...",
	Short: "Compare algorithms of the same family across input sizes",
	Long: `Runs every algorithm on the same seeded inputs at each size, without
animation, and reports steps, operations, comparisons, mutations, elapsed
time and estimated memory.`,
	Example: `  stepwise compare bubble-sort insertion-sort quick-sort merge-sort
  stepwise compare bfs dfs astar dijkstra --sizes 25,100 --html report.html`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		req := compare.Request{Sizes: cfg.Compare.Sizes, Seed: cfg.Compare.Seed}
		for _, a := range args {
			req.Kinds = append(req.Kinds, domain.Kind(a))
		}
		if f.Changed("sizes") {
			req.Sizes, _ = f.GetIntSlice("sizes")
		}
		if f.Changed("seed") {
			req.Seed, _ = f.GetUint64("seed")
		}

		rep, err := compare.New(compare.WithLogger(logger)).Run(cmd.Context(), req)
		if err != nil {
			return err
		}

		if asJSON, _ := f.GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		fmt.Println(rep.Table())

		if path, _ := f.GetString("html"); path != "" {
			out, err := os.Create(path)
			if err != nil {
				return err
			}
			defer out.Close()
			if err := rep.Chart(out); err != nil {
				return err
			}
			fmt.Printf("Chart written to %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().IntSlice("sizes", nil, "Input sizes (default from config)")
	compareCmd.Flags().Uint64("seed", 0, "Seed for the generated inputs (default from config)")
	compareCmd.Flags().String("html", "", "Also write an HTML line chart to this file")
	compareCmd.Flags().Bool("json", false, "Print the report as JSON")
}
