package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available algorithms",
	RunE: func(cmd *cobra.Command, args []string) error {
		family, _ := cmd.Flags().GetString("family")
		var entries []registry.Entry
		for _, e := range registry.Default().List() {
			if family == "" || e.Supports(domain.Family(family)) {
				entries = append(entries, e)
			}
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		if len(entries) == 0 {
			fmt.Printf("No algorithms run on %q.\n", family)
			return nil
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Kind", "Family", "Title", "Time", "Space", "Requires"})
		for _, e := range entries {
			t.AppendRow(table.Row{e.Kind, e.Family, e.Title, e.Time, e.Space, strings.Join(e.Requires, ", ")})
		}
		fmt.Println(t.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("family", "", "Only list algorithms for this container family")
	listCmd.Flags().Bool("json", false, "Print the catalog as JSON")
}
