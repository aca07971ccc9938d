package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ajranjith/conformance-cli/internal/artifact"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report setup readiness for the project root",
	RunE:  runDoctor,
}

type doctorReport struct {
	GeneratedAtUtc string           `json:"generatedAtUtc"`
	ProjectRoot    string           `json:"projectRoot"`
	ConfigFile     string           `json:"configFile,omitempty"`
	Artifacts      []doctorArtifact `json:"artifacts"`
	RuleCount      int              `json:"ruleCount"`
	Status         string           `json:"status"`
	Reasons        []string         `json:"reasons,omitempty"`
}

type doctorArtifact struct {
	ID     string `json:"id"`
	Path   string `json:"path"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func buildDoctorReport(ctx context.Context, root string) doctorReport {
	rep := doctorReport{
		GeneratedAtUtc: time.Now().UTC().Format(time.RFC3339),
		ProjectRoot:    root,
		ConfigFile:     configFileUsed,
		RuleCount:      len(ruleCatalog()),
		Status:         "OK",
	}

	arts, err := artifact.LoadAll(ctx, root, artifactSpecs())
	if err != nil {
		rep.Status = "FATAL"
		rep.Reasons = append(rep.Reasons, err.Error())
		return rep
	}
	for _, spec := range artifactSpecs() {
		a := arts.Get(spec.ID)
		rep.Artifacts = append(rep.Artifacts, doctorArtifact{
			ID:     spec.ID,
			Path:   spec.Path,
			Status: string(a.Status),
			Detail: a.Detail,
		})
		if !a.OK() {
			rep.Status = "DEGRADED"
			rep.Reasons = append(rep.Reasons, fmt.Sprintf("artifact %s: %s", spec.ID, a.Status))
		}
	}
	return rep
}

func runDoctor(cmd *cobra.Command, args []string) error {
	rep := buildDoctorReport(cmd.Context(), resolveRoot())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return err
	}
	if rep.Status == "FATAL" {
		return &exitError{code: 2}
	}
	return nil
}
