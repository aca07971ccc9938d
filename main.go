// conformance-cli - declarative conformance checks for project metadata
//
// Commands:
//   check            Load artifacts, evaluate the rule catalog, report
//   watch            Re-run checks whenever files under the root change
//   doctor           Report setup readiness (root, config, artifacts)
//   rules            List the rule catalog
//
// Exit codes: 0 full pass, 1 rule failure, 2 fatal setup error.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/ajranjith/conformance-cli/internal/config"
)

// Version information (set at build time)
var (
	Version   = "1.2.0"
	BuildDate = "unknown"
)

var (
	flagConfig string

	cfg            *cfgpkg.Config
	configFileUsed string
	logger         *slog.Logger
)

// exitError carries a specific process exit code up through cobra.
// A nil-message exitError exits silently; the report was already
// printed by the command.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

var rootCmd = &cobra.Command{
	Use:           "conformance",
	Short:         "Declarative conformance checks for project metadata artifacts",
	Long:          "Loads a declared set of metadata files (CI workflow, manifests, lockfile, changelog)\nfrom a project root and evaluates an ordered catalog of rules against them.",
	Version:       fmt.Sprintf("%s (built %s)", Version, BuildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, configFileUsed, err = cfgpkg.Load(flagConfig, cmd.Flags())
		if err != nil {
			return err
		}
		logger = newLogger(cfg.Logging)
		if configFileUsed != "" {
			logger.Debug("config loaded", "file", configFileUsed)
		}
		return nil
	},
}

func newLogger(lc cfgpkg.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.JSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default conformance.yaml)")
	pf.String("root", "", "project root to check (default from config, then cwd)")
	pf.String("output-dir", "", "directory for report files, relative to root")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.Bool("log-json", false, "emit logs as JSON")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(rulesCmd)
}

func main() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", ee.msg)
		}
		os.Exit(ee.code)
	}
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(2)
}
