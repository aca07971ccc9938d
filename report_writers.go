package main

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ajranjith/conformance-cli/internal/rules"
	"github.com/ajranjith/conformance-cli/internal/support"
)

// writeReports emits the enabled report files under outputDir and
// appends the audit line. Write failures are warnings; the run's
// outcome is already decided.
func writeReports(outputDir string, rep *rules.Report, verdict *Verdict) {
	reportSHA := ""
	if cfg.Reports.JSON.Enabled {
		sha, err := writeReportJSON(filepath.Join(outputDir, cfg.Reports.JSON.Path), rep, verdict)
		if err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: Failed to write report: %v\n", err)
		}
		reportSHA = sha
	}
	if cfg.Reports.SARIF.Enabled {
		if err := writeSARIF(filepath.Join(outputDir, cfg.Reports.SARIF.Path), rep); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: Failed to write SARIF: %v\n", err)
		}
	}
	if cfg.Reports.JUnit.Enabled {
		if err := writeJUnit(filepath.Join(outputDir, cfg.Reports.JUnit.Path), rep, verdict); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: Failed to write JUnit: %v\n", err)
		}
	}

	passed, failed, warnFailed := rep.Counts()
	_ = support.AppendAudit(outputDir, support.AuditEntry{
		Mode:      "check",
		Pass:      verdict.Pass,
		PassCount: passed,
		FailCount: failed,
		WarnCount: warnFailed,
		ReportSHA: reportSHA,
		Result:    verdict.Message,
	})
}

func writeReportJSON(path string, rep *rules.Report, verdict *Verdict) (string, error) {
	doc := struct {
		Report  *rules.Report `json:"report"`
		Verdict *Verdict      `json:"verdict"`
	}{rep, verdict}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	if err := support.WriteFileAtomic(path, data); err != nil {
		return "", err
	}
	return support.SHA256Hex(data), nil
}

// ---------------------------------------------------------------------------
// SARIF output
// ---------------------------------------------------------------------------

type sarifDocument struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}
type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}
type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}
type sarifDriver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
type sarifResult struct {
	RuleID  string       `json:"ruleId"`
	Level   string       `json:"level"`
	Message sarifMessage `json:"message"`
}
type sarifMessage struct {
	Text string `json:"text"`
}

func writeSARIF(path string, rep *rules.Report) error {
	var results []sarifResult
	for _, res := range rep.Results {
		if res.Passed() {
			continue
		}
		level := "error"
		if res.Severity == rules.SeverityWarn {
			level = "warning"
		}
		results = append(results, sarifResult{
			RuleID:  res.RuleID,
			Level:   level,
			Message: sarifMessage{Text: res.Detail},
		})
	}

	doc := sarifDocument{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: "conformance-cli", Version: Version}},
			Results: results,
		}},
	}
	return support.WriteJSONAtomic(path, doc)
}

// ---------------------------------------------------------------------------
// JUnit XML output
// ---------------------------------------------------------------------------

type junitTestsuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Testsuites []junitTestsuite `xml:"testsuite"`
}
type junitTestsuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Time     string          `xml:"time,attr"`
	Cases    []junitTestcase `xml:"testcase"`
}
type junitTestcase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
}
type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}
type junitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

func writeJUnit(path string, rep *rules.Report, verdict *Verdict) error {
	var cases []junitTestcase
	failures := 0

	for _, res := range rep.Results {
		tc := junitTestcase{
			Name:      res.RuleID,
			Classname: "conformance." + string(res.Category),
			Time:      "0",
		}
		switch {
		case res.Passed():
			// nothing to add
		case res.Severity == rules.SeverityWarn && verdict.Pass:
			tc.Skipped = &junitSkipped{Message: "warn-level failure tolerated by gating"}
		default:
			tc.Failure = &junitFailure{
				Message: res.Detail,
				Type:    string(res.Severity),
				Body:    fmt.Sprintf("%s: %s", res.RuleID, res.Detail),
			}
			failures++
		}
		cases = append(cases, tc)
	}

	// The gating verdict itself is a case.
	gate := junitTestcase{
		Name:      "conformance-gate",
		Classname: "conformance.verify",
		Time:      "0",
	}
	if !verdict.Pass {
		gate.Failure = &junitFailure{
			Message: verdict.Message,
			Type:    "GATE",
			Body:    verdict.Message,
		}
		failures++
	}
	cases = append(cases, gate)

	doc := junitTestsuites{
		Testsuites: []junitTestsuite{{
			Name:     "conformance-check",
			Tests:    len(cases),
			Failures: failures,
			Time:     "0",
			Cases:    cases,
		}},
	}
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	header := []byte(xml.Header)
	return support.WriteFileAtomic(path, append(header, data...))
}
