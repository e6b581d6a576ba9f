package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scan-io-git/scanio-remote/internal/codescan"
	"github.com/scan-io-git/scanio-remote/internal/workspace"
)

// Format names an output format of the scan command.
type Format string

const (
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

const (
	toolName           = "scanio-remote"
	toolInformationURI = "https://github.com/scan-io-git/scanio-remote"
	unknownRuleID      = "unknown"
)

// ParseFormat converts a user supplied format name into a Format.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatSARIF:
		return FormatSARIF, nil
	default:
		return "", fmt.Errorf("unsupported output format %q, expected %q or %q", value, FormatJSON, FormatSARIF)
	}
}

// Metadata describes the scan a report was produced for.
type Metadata struct {
	Scope      codescan.Scope
	ScanName   string
	Repository *workspace.RepositoryMetadata
}

// Document is the JSON output of a finished scan.
type Document struct {
	JobID      string                          `json:"jobId"`
	ScanName   string                          `json:"scanName"`
	Status     string                          `json:"status"`
	Scope      string                          `json:"scope"`
	Repository *workspace.RepositoryMetadata   `json:"repository,omitempty"`
	Summary    map[string]int                  `json:"summary"`
	Results    []codescan.AggregatedFileResult `json:"results"`
}

// Write renders a scan result in the requested format.
func Write(w io.Writer, format Format, meta Metadata, result *codescan.ScanResult) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, meta, result)
	case FormatSARIF:
		return WriteSARIF(w, meta, result.Findings)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// WriteJSON writes the aggregated results together with the job metadata as indented JSON.
func WriteJSON(w io.Writer, meta Metadata, result *codescan.ScanResult) error {
	results := result.Findings
	if results == nil {
		results = []codescan.AggregatedFileResult{}
	}
	doc := Document{
		JobID:      result.JobID,
		ScanName:   meta.ScanName,
		Status:     result.Status,
		Scope:      meta.Scope.String(),
		Repository: meta.Repository,
		Summary:    Summary(results),
		Results:    results,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return nil
}

// WriteSARIF converts the aggregated results into a SARIF 2.1.0 report.
func WriteSARIF(w io.Writer, meta Metadata, results []codescan.AggregatedFileResult) error {
	report, err := BuildSARIF(meta, results)
	if err != nil {
		return err
	}
	if err := report.PrettyWrite(w); err != nil {
		return fmt.Errorf("failed to write SARIF report: %w", err)
	}
	return nil
}

// BuildSARIF produces a single-run SARIF report with one rule per detector.
// Repository metadata, when known, is attached as version control provenance.
func BuildSARIF(meta Metadata, results []codescan.AggregatedFileResult) (*sarif.Report, error) {
	reportSarif, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolInformationURI)
	if repo := meta.Repository; repo != nil && repo.RemoteURL != nil {
		run.VersionControlProvenance = append(run.VersionControlProvenance, &sarif.VersionControlDetails{
			RepositoryURI: repo.RemoteURL,
			RevisionID:    repo.CommitHash,
			Branch:        repo.BranchName,
		})
	}
	for _, file := range results {
		run.AddDistinctArtifact(file.FilePath)
		for _, issue := range file.Issues {
			level := toSarifLevel(issue.Severity)
			rule := run.AddRule(ruleID(issue)).
				WithDescription(strings.TrimSpace(issue.Title)).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: level})
			if issue.DetectorName != "" {
				rule.WithName(issue.DetectorName)
			}
			if issue.Recommendation.URL != "" {
				rule.WithHelpURI(issue.Recommendation.URL)
			}

			region := sarif.NewRegion().WithStartLine(issue.StartLine + 1)
			if issue.EndLine > issue.StartLine {
				region.WithEndLine(issue.EndLine)
			}
			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(file.FilePath)).
					WithRegion(region),
			)

			result := sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(issue.Comment)).
				WithLevel(level).
				WithLocations([]*sarif.Location{location})
			result.Properties = sarif.Properties{
				"severity":               issue.Severity,
				"findingId":              issue.FindingID,
				"relatedVulnerabilities": issue.RelatedVulnerabilities,
				"recommendation":         issue.Recommendation.Text,
			}
			run.AddResult(result)
		}
	}
	reportSarif.AddRun(run)
	return reportSarif, nil
}

// Summary counts findings per normalised severity plus a total.
func Summary(results []codescan.AggregatedFileResult) map[string]int {
	summary := map[string]int{
		"critical": 0,
		"high":     0,
		"medium":   0,
		"low":      0,
		"info":     0,
		"total":    0,
	}
	for _, file := range results {
		for _, issue := range file.Issues {
			severity := strings.ToLower(issue.Severity)
			if _, ok := summary[severity]; !ok || severity == "total" {
				severity = "info"
			}
			summary[severity]++
			summary["total"]++
		}
	}
	return summary
}

// SortResults orders files by path so output is stable across runs.
func SortResults(results []codescan.AggregatedFileResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FilePath < results[j].FilePath
	})
}

func ruleID(issue codescan.Finding) string {
	switch {
	case issue.DetectorID != "":
		return issue.DetectorID
	case issue.RuleID != "":
		return issue.RuleID
	default:
		return unknownRuleID
	}
}

func toSarifLevel(severity string) string {
	switch strings.ToUpper(severity) {
	case "CRITICAL", "HIGH":
		return "error"
	case "MEDIUM":
		return "warning"
	case "LOW", "INFO":
		return "note"
	default:
		return "none"
	}
}
