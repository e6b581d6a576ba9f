package codescan

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/scan-io-git/scanio-remote/pkg/shared/files"
)

// redactedMarker marks snippet content the service masked out.
const redactedMarker = "***"

// MapToAggregatedList decodes one findings batch and appends its findings to
// issueMap under their logical path. For file scans with an open editor buffer,
// findings whose snippet no longer matches the buffer are dropped.
func MapToAggregatedList(issueMap map[string][]RawFinding, batch string, editor LineReader, scope Scope) error {
	if strings.TrimSpace(batch) == "" {
		return nil
	}

	var raw []RawFinding
	if err := json.Unmarshal([]byte(batch), &raw); err != nil {
		return fmt.Errorf("failed to decode findings batch: %w", err)
	}

	for _, issue := range raw {
		if scope == ScopeFile && editor != nil && !matchesEditor(issue, editor) {
			continue
		}
		issueMap[issue.FilePath] = append(issueMap[issue.FilePath], issue)
	}
	return nil
}

// matchesEditor compares the snippet against the live buffer. Only the first
// line of the finding decides the outcome.
// TODO: confirm with product whether every line between StartLine and EndLine should be compared.
func matchesEditor(issue RawFinding, editor LineReader) bool {
	for lineNumber := issue.StartLine; lineNumber <= issue.EndLine; lineNumber++ {
		line, ok := editor.LineAt(lineNumber - 1)
		content, found := snippetLine(issue.CodeSnippet, lineNumber)
		if !ok || !found {
			return false
		}
		if strings.Contains(content, redactedMarker) {
			return len(line) == len(content)
		}
		return line == content
	}
	return true
}

func snippetLine(snippet []SnippetLine, number int) (string, bool) {
	for _, l := range snippet {
		if l.Number == number {
			return l.Content, true
		}
	}
	return "", false
}

// ToFinding normalizes a RawFinding: 0-based start line and a synthesized comment.
func ToFinding(issue RawFinding) Finding {
	startLine := issue.StartLine - 1
	if startLine < 0 {
		startLine = 0
	}
	return Finding{
		StartLine:              startLine,
		EndLine:                issue.EndLine,
		Comment:                fmt.Sprintf("%s: %s", strings.TrimSpace(issue.Title), strings.TrimSpace(issue.Description.Text)),
		Title:                  issue.Title,
		Description:            issue.Description,
		DetectorID:             issue.DetectorID,
		DetectorName:           issue.DetectorName,
		FindingID:              issue.FindingID,
		RuleID:                 issue.RuleID,
		RelatedVulnerabilities: issue.RelatedVulnerabilities,
		Severity:               issue.Severity,
		Recommendation:         issue.Remediation.Recommendation,
		SuggestedFixes:         issue.Remediation.SuggestedFixes,
	}
}

func toFindings(issues []RawFinding) []Finding {
	out := make([]Finding, 0, len(issues))
	for _, issue := range issues {
		out = append(out, ToFinding(issue))
	}
	return out
}

// AggregateResults resolves every logical path of issueMap against the
// candidate project roots and as an absolute path. Each interpretation that
// names an existing regular file yields one result, so a path may be reported
// more than once. Paths that resolve nowhere are dropped.
func AggregateResults(issueMap map[string][]RawFinding, projectPaths []string) []AggregatedFileResult {
	var results []AggregatedFileResult
	for key, issues := range issueMap {
		// key example: project/src/main/java/com/example/App.java, where the
		// first segment is the folder added while archiving
		for _, projectPath := range projectPaths {
			filePath := filepath.Join(projectPath, filepath.FromSlash(stripFirstSegment(key)))
			if files.IsRegularFile(filePath) {
				results = append(results, AggregatedFileResult{FilePath: filePath, Issues: toFindings(issues)})
			}
		}

		maybeAbsolutePath := filepath.FromSlash("/" + key)
		if files.IsRegularFile(maybeAbsolutePath) {
			results = append(results, AggregatedFileResult{FilePath: maybeAbsolutePath, Issues: toFindings(issues)})
		}
	}
	return results
}

func stripFirstSegment(key string) string {
	parts := strings.Split(key, "/")
	return strings.Join(parts[1:], "/")
}
