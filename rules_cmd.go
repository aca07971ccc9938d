package main

import (
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rule catalog",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"RULE", "CATEGORY", "SEVERITY", "ARTIFACTS", "SUMMARY"})
		for _, r := range ruleCatalog() {
			t.AppendRow(table.Row{r.ID, r.Category, r.Severity, strings.Join(r.Artifacts, ", "), r.Summary})
		}
		t.Render()
	},
}
