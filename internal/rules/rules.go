// Package rules is the conformance rule engine. A Rule is data: an
// identifier, the artifacts it reads, a severity, and a pure predicate.
// Evaluate walks the declared list in order and always produces a
// result for every selected rule, even when prerequisites are missing.
package rules

import (
	"fmt"

	"github.com/ajranjith/conformance-cli/internal/artifact"
)

// Category groups rules so a run can be narrowed with --only.
type Category string

const (
	CategoryExistence Category = "existence"
	CategoryText      Category = "text"
	CategoryField     Category = "field"
	CategoryFormat    Category = "format"
	CategoryCross     Category = "cross"
	CategoryOrdering  Category = "ordering"
)

// Severity controls gating, not the pass/fail outcome itself.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
)

// Outcome is what a predicate returns.
type Outcome struct {
	Pass   bool
	Detail string
}

// Pass returns a passing outcome.
func Pass() Outcome { return Outcome{Pass: true} }

// Failf returns a failing outcome with a formatted detail.
func Failf(format string, args ...any) Outcome {
	return Outcome{Detail: fmt.Sprintf(format, args...)}
}

// CheckFunc is a pure predicate over loaded artifacts. All artifacts
// the rule declared are guaranteed to have status ok when it runs.
type CheckFunc func(arts artifact.Set) Outcome

// Rule is one declarative check.
type Rule struct {
	ID        string
	Category  Category
	Severity  Severity
	Artifacts []string
	Summary   string
	Check     CheckFunc
}

// Result is the recorded outcome of one rule in one run.
type Result struct {
	RuleID   string   `json:"ruleId"`
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	Status   string   `json:"status"`
	Detail   string   `json:"detail,omitempty"`
}

// Passed reports whether the rule passed.
func (r Result) Passed() bool { return r.Status == "PASS" }

// Report aggregates one evaluation run. Pass is true iff every result
// passed.
type Report struct {
	Results []Result `json:"results"`
	Pass    bool     `json:"pass"`
}

// Counts returns (pass, fail, warnFail) totals, where warnFail is the
// subset of failures carrying SeverityWarn.
func (r *Report) Counts() (passed, failed, warnFailed int) {
	for _, res := range r.Results {
		if res.Passed() {
			passed++
			continue
		}
		failed++
		if res.Severity == SeverityWarn {
			warnFailed++
		}
	}
	return passed, failed, warnFailed
}

// Evaluate runs every rule (or the subset whose category is in only,
// when only is non-empty) against the loaded artifacts. Evaluation
// order follows the declared list. A rule whose artifact is not ok
// fails deterministically without its predicate running; a predicate
// panic is converted into a failing result so one malformed rule never
// aborts the run.
func Evaluate(ruleList []Rule, arts artifact.Set, only map[Category]bool) *Report {
	rep := &Report{Pass: true}
	for _, rule := range ruleList {
		if len(only) > 0 && !only[rule.Category] {
			continue
		}
		res := evaluateOne(rule, arts)
		if !res.Passed() {
			rep.Pass = false
		}
		rep.Results = append(rep.Results, res)
	}
	return rep
}

func evaluateOne(rule Rule, arts artifact.Set) (res Result) {
	res = Result{RuleID: rule.ID, Category: rule.Category, Severity: rule.Severity}

	for _, id := range rule.Artifacts {
		a := arts.Get(id)
		if !a.OK() {
			res.Status = "FAIL"
			res.Detail = fmt.Sprintf("artifact unavailable: %s (%s)", id, a.Status)
			return res
		}
	}

	defer func() {
		if r := recover(); r != nil {
			res.Status = "FAIL"
			res.Detail = fmt.Sprintf("internal evaluation error: %v", r)
		}
	}()

	out := rule.Check(arts)
	if out.Pass {
		res.Status = "PASS"
	} else {
		res.Status = "FAIL"
	}
	res.Detail = out.Detail
	return res
}
