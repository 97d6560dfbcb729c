package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"verseline/internal/theme"
)

func newThemesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List available visual themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, t := range theme.All() {
				rows = append(rows, []string{
					t.Key,
					t.Name,
					string(t.DefaultAnimation),
					t.FontFamily,
					strings.Join(t.PoetryThemes, ", "),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Key", "Name", "Animation", "Font", "Poetry Themes"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
