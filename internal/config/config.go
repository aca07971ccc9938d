// Package config holds the tool configuration: compiled-in defaults,
// optionally overridden by a conformance.yml file, CONFORMANCE_*
// environment variables, and command-line flags, merged in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config is the merged tool configuration.
type Config struct {
	App     AppConfig     `koanf:"app"`
	Paths   PathsConfig   `koanf:"paths"`
	Reports ReportsConfig `koanf:"reports"`
	Logging LoggingConfig `koanf:"logging"`
	Gating  GatingConfig  `koanf:"gating"`
}

type AppConfig struct {
	Name string `koanf:"name"`
}

type PathsConfig struct {
	ProjectRoot string `koanf:"project_root"`
	OutputDir   string `koanf:"output_dir"`
}

type ReportsConfig struct {
	JSON  ReportConfig `koanf:"json"`
	SARIF ReportConfig `koanf:"sarif"`
	JUnit ReportConfig `koanf:"junit"`
}

type ReportConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

type LoggingConfig struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

// GatingConfig controls how failures map to the exit code. Pointer
// fields distinguish "unset" from zero values; unset falls back to the
// strict defaults (fail on any error, tolerate no warnings).
type GatingConfig struct {
	FailOnError *bool `koanf:"fail_on_error"`
	AllowWarn   *bool `koanf:"allow_warn"`
	MaxWarn     *int  `koanf:"max_warn"`
}

// Default returns the compiled-in defaults.
func Default() Config {
	return Config{
		App: AppConfig{
			Name: "Conformance Checker",
		},
		Paths: PathsConfig{
			ProjectRoot: ".",
			OutputDir:   ".conformance",
		},
		Reports: ReportsConfig{
			JSON:  ReportConfig{Enabled: true, Path: "report.json"},
			SARIF: ReportConfig{Enabled: false, Path: "results.sarif"},
			JUnit: ReportConfig{Enabled: false, Path: "junit.xml"},
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

const envPrefix = "CONFORMANCE_"

// flagKeys bridges CLI flag names to config keys.
var flagKeys = map[string]string{
	"root":       "paths.project_root",
	"output-dir": "paths.output_dir",
	"log-level":  "logging.level",
	"log-json":   "logging.json",
}

// Load merges defaults, the config file (explicit path, else
// conformance.yaml/yml in the working directory), environment
// variables, and flags. Returns the merged config and the config file
// actually used, empty when running on defaults.
func Load(explicitPath string, flags *pflag.FlagSet) (*Config, string, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultMap(), "."), nil); err != nil {
		return nil, "", fmt.Errorf("load defaults: %w", err)
	}

	fileUsed := findConfigFile(explicitPath)
	if fileUsed != "" {
		if err := k.Load(file.Provider(fileUsed), kyaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("load config %s: %w", fileUsed, err)
		}
	} else if explicitPath != "" {
		return nil, "", fmt.Errorf("config file %s not found", explicitPath)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envToKey), nil); err != nil {
		return nil, "", fmt.Errorf("load env: %w", err)
	}

	// Flags win over everything; only explicitly set ones are loaded.
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, "", fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, "", fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, fileUsed, nil
}

// envToKey maps CONFORMANCE_LOGGING_LEVEL to logging.level. Known keys
// are matched first so snake_case leaves like paths.project_root stay
// reachable (CONFORMANCE_PATHS_PROJECT_ROOT).
func envToKey(s string) string {
	name := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, key := range knownKeys() {
		if strings.ReplaceAll(key, ".", "_") == name {
			return key
		}
	}
	return strings.ReplaceAll(name, "_", ".")
}

func knownKeys() []string {
	keys := []string{"gating.fail_on_error", "gating.allow_warn", "gating.max_warn"}
	for key := range defaultMap() {
		keys = append(keys, key)
	}
	return keys
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}
	for _, name := range []string{"conformance.yaml", "conformance.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func defaultMap() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"app.name":              d.App.Name,
		"paths.project_root":    d.Paths.ProjectRoot,
		"paths.output_dir":      d.Paths.OutputDir,
		"reports.json.enabled":  d.Reports.JSON.Enabled,
		"reports.json.path":     d.Reports.JSON.Path,
		"reports.sarif.enabled": d.Reports.SARIF.Enabled,
		"reports.sarif.path":    d.Reports.SARIF.Path,
		"reports.junit.enabled": d.Reports.JUnit.Enabled,
		"reports.junit.path":    d.Reports.JUnit.Path,
		"logging.level":         d.Logging.Level,
		"logging.json":          d.Logging.JSON,
	}
}

// OutputDir resolves the output directory under the project root.
func (c *Config) OutputDir(root string) string {
	if filepath.IsAbs(c.Paths.OutputDir) {
		return c.Paths.OutputDir
	}
	return filepath.Join(root, c.Paths.OutputDir)
}
