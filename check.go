package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ajranjith/conformance-cli/internal/artifact"
	"github.com/ajranjith/conformance-cli/internal/rules"
)

var (
	flagOnly   []string
	flagFormat string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate the rule catalog against the project root",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringSliceVar(&flagOnly, "only", nil,
		"rule categories to run (existence, text, field, format, cross, ordering)")
	checkCmd.Flags().StringVar(&flagFormat, "format", "table", "output format (table, json)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	_, code, err := executeCheck(cmd.Context(), resolveRoot(), flagOnly, flagFormat, os.Stdout)
	if err != nil {
		return err
	}
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// resolveRoot picks the project root: --root flag or config, else cwd.
func resolveRoot() string {
	root := cfg.Paths.ProjectRoot
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return root
	}
	return abs
}

// executeCheck runs the full pipeline: load artifacts, evaluate rules,
// render the report, write report files, append the audit line, and
// compute the exit code. The returned error covers fatal setup
// problems only.
func executeCheck(ctx context.Context, root string, only []string, format string, w io.Writer) (*rules.Report, int, error) {
	onlySet, err := parseCategories(only)
	if err != nil {
		return nil, 0, err
	}

	arts, err := artifact.LoadAll(ctx, root, artifactSpecs())
	if err != nil {
		return nil, 0, err
	}
	logger.Debug("artifacts loaded", "root", root, "count", len(arts))

	rep := rules.Evaluate(ruleCatalog(), arts, onlySet)

	policy, err := loadPolicy(root, cfg.Gating)
	if err != nil {
		return nil, 0, err
	}
	verdict := evaluateGating(policy, rep)

	switch format {
	case "json":
		if err := renderJSON(w, rep, verdict); err != nil {
			return nil, 0, err
		}
	case "table", "":
		renderTable(w, rep, verdict)
	default:
		return nil, 0, fmt.Errorf("unknown format %q (want table or json)", format)
	}

	writeReports(cfg.OutputDir(root), rep, verdict)

	code := 0
	if !verdict.Pass {
		code = 1
	}
	return rep, code, nil
}

func parseCategories(only []string) (map[rules.Category]bool, error) {
	if len(only) == 0 {
		return nil, nil
	}
	known := map[string]rules.Category{
		string(rules.CategoryExistence): rules.CategoryExistence,
		string(rules.CategoryText):      rules.CategoryText,
		string(rules.CategoryField):     rules.CategoryField,
		string(rules.CategoryFormat):    rules.CategoryFormat,
		string(rules.CategoryCross):     rules.CategoryCross,
		string(rules.CategoryOrdering):  rules.CategoryOrdering,
	}
	set := map[rules.Category]bool{}
	for _, name := range only {
		cat, ok := known[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown rule category %q", name)
		}
		set[cat] = true
	}
	return set, nil
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func renderTable(w io.Writer, rep *rules.Report, verdict *Verdict) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"STATUS", "RULE", "CATEGORY", "DETAIL"})
	for _, res := range rep.Results {
		t.AppendRow(table.Row{res.Status, res.RuleID, res.Category, res.Detail})
	}
	t.Render()

	passed, failed, warnFailed := rep.Counts()
	fmt.Fprintf(w, "%d passed, %d failed", passed, failed)
	if warnFailed > 0 {
		fmt.Fprintf(w, " (%d warn)", warnFailed)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, verdict.Message)
}

func renderJSON(w io.Writer, rep *rules.Report, verdict *Verdict) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Report  *rules.Report `json:"report"`
		Verdict *Verdict      `json:"verdict"`
	}{rep, verdict})
}
