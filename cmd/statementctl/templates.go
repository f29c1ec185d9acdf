package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	statement "statement-pdf/internal/statement/domain"
	"statement-pdf/internal/statement/templates"
)

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List bank templates and whether they can be rendered",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			supported := make(map[statement.BankTemplate]bool)
			for _, t := range templates.Default().Templates() {
				supported[t] = true
			}
			for _, t := range statement.KnownTemplates {
				status := "unsupported"
				if supported[t] {
					status = "supported"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", t, status)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d templates supported: %s\n", len(supported), len(statement.KnownTemplates), joinTemplates(templates.Default().Templates()))
		},
	}
}

func joinTemplates(ts []statement.BankTemplate) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
