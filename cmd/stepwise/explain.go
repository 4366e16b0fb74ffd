package main

import (
	"fmt"
	"os"

	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/learn"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain <kind>",
	Short: "Show the learning card of an algorithm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		card, err := learn.Default().Card(registry.Default(), domain.Kind(args[0]))
		if err != nil {
			return err
		}
		md := card.Markdown()
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Print(md)
			return nil
		}

		term := tui.Detect(os.Stdout)
		render, err := tui.NewRenderer(min(term.Width, 100), term.Interactive)
		if err != nil {
			return err
		}
		out, err := render(md)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.Flags().Bool("raw", false, "Print the markdown source")
}
