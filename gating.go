package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	cfgpkg "github.com/ajranjith/conformance-cli/internal/config"
	"github.com/ajranjith/conformance-cli/internal/rules"
	"github.com/ajranjith/conformance-cli/internal/support"
)

// Policy is the per-project gating configuration. Pointer fields
// distinguish "unset" from zero values; unset falls back to the strict
// defaults.
type Policy struct {
	FailOnError *bool `json:"fail_on_error,omitempty" yaml:"fail_on_error"`
	AllowWarn   *bool `json:"allow_warn,omitempty" yaml:"allow_warn"`
	MaxWarn     *int  `json:"max_warn,omitempty" yaml:"max_warn"`
}

// Verdict is the gating decision over a run report.
type Verdict struct {
	Pass      bool     `json:"pass"`
	Message   string   `json:"message"`
	Reasons   []string `json:"reasons,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// loadPolicy merges the tool-level gating config with the project's
// policy file (<root>/conformance-policy.yml), file values winning.
// A missing file is fine; a malformed one is a fatal setup error.
func loadPolicy(root string, base cfgpkg.GatingConfig) (*Policy, error) {
	p := &Policy{
		FailOnError: base.FailOnError,
		AllowWarn:   base.AllowWarn,
		MaxWarn:     base.MaxWarn,
	}
	path := filepath.Join(root, "conformance-policy.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("failed to read policy %s: %w", path, err)
	}
	if err := yaml.Unmarshal(support.StripBOM(data), p); err != nil {
		return nil, fmt.Errorf("failed to parse policy %s: %w", path, err)
	}
	return p, nil
}

// evaluateGating applies the numeric cap then the boolean rules. With
// everything unset the verdict passes iff every rule passed.
func evaluateGating(p *Policy, rep *rules.Report) *Verdict {
	v := &Verdict{
		Pass:      true,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	failOnError := true
	if p.FailOnError != nil {
		failOnError = *p.FailOnError
	}
	allowWarn := false
	if p.AllowWarn != nil {
		allowWarn = *p.AllowWarn
	}

	passed, failed, warnFailed := rep.Counts()
	errorFailed := failed - warnFailed

	var reasons []string
	if p.MaxWarn != nil && warnFailed > *p.MaxWarn {
		v.Pass = false
		reasons = append(reasons, fmt.Sprintf("FAILED: warn-level failures (%d) exceeded max_warn (%d)", warnFailed, *p.MaxWarn))
	}
	if failOnError && errorFailed > 0 {
		v.Pass = false
		reasons = append(reasons, fmt.Sprintf("FAILED: %d error-level rule failures (fail_on_error enabled)", errorFailed))
	}
	if !allowWarn && warnFailed > 0 {
		v.Pass = false
		reasons = append(reasons, fmt.Sprintf("FAILED: %d warn-level rule failures (allow_warn disabled)", warnFailed))
	}
	v.Reasons = reasons

	if v.Pass {
		v.Message = fmt.Sprintf("PASSED: %d rules passed, %d failed", passed, failed)
	} else {
		v.Message = strings.Join(reasons, "; ")
	}
	return v
}
