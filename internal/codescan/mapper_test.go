package codescan

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeBatch(t *testing.T, findings ...RawFinding) string {
	t.Helper()
	data, err := json.Marshal(findings)
	require.NoError(t, err)
	return string(data)
}

func TestToFinding(t *testing.T) {
	testCases := []struct {
		name      string
		startLine int
		want      int
	}{
		{name: "zero is clamped", startLine: 0, want: 0},
		{name: "first line", startLine: 1, want: 0},
		{name: "later line", startLine: 42, want: 41},
		{name: "negative is clamped", startLine: -3, want: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToFinding(RawFinding{StartLine: tc.startLine, EndLine: 50})
			assert.Equal(t, tc.want, got.StartLine)
			assert.Equal(t, 50, got.EndLine)
		})
	}
}

func TestToFindingCopiesAttributes(t *testing.T) {
	raw := RawFinding{
		StartLine:              3,
		EndLine:                4,
		Title:                  "  SQL injection ",
		Description:            Description{Text: " Untrusted input reaches a query.\n", Markdown: "md"},
		DetectorID:             "java/sql-injection@v1.0",
		DetectorName:           "SQL injection",
		FindingID:              "f-1",
		RuleID:                 "rule-1",
		RelatedVulnerabilities: []string{"CWE-89"},
		Severity:               "High",
		Remediation: Remediation{
			Recommendation: Recommendation{Text: "Use prepared statements", URL: "https://example.com"},
			SuggestedFixes: []SuggestedFix{{Description: "fix", Code: "diff"}},
		},
	}

	got := ToFinding(raw)
	assert.Equal(t, "SQL injection: Untrusted input reaches a query.", got.Comment)
	assert.Equal(t, raw.Title, got.Title)
	assert.Equal(t, raw.Description, got.Description)
	assert.Equal(t, raw.DetectorID, got.DetectorID)
	assert.Equal(t, raw.DetectorName, got.DetectorName)
	assert.Equal(t, raw.FindingID, got.FindingID)
	assert.Equal(t, raw.RuleID, got.RuleID)
	assert.Equal(t, raw.RelatedVulnerabilities, got.RelatedVulnerabilities)
	assert.Equal(t, raw.Severity, got.Severity)
	assert.Equal(t, raw.Remediation.Recommendation, got.Recommendation)
	assert.Equal(t, raw.Remediation.SuggestedFixes, got.SuggestedFixes)
}

func TestMapToAggregatedListGroupsByPath(t *testing.T) {
	issueMap := map[string][]RawFinding{}
	batch := encodeBatch(t,
		RawFinding{FilePath: "p/a.go", FindingID: "1"},
		RawFinding{FilePath: "p/b.go", FindingID: "2"},
		RawFinding{FilePath: "p/a.go", FindingID: "3"},
	)

	require.NoError(t, MapToAggregatedList(issueMap, batch, nil, ScopeProject))
	require.Len(t, issueMap["p/a.go"], 2)
	assert.Equal(t, "1", issueMap["p/a.go"][0].FindingID)
	assert.Equal(t, "3", issueMap["p/a.go"][1].FindingID)
	assert.Len(t, issueMap["p/b.go"], 1)
}

func TestMapToAggregatedListInvalidBatch(t *testing.T) {
	err := MapToAggregatedList(map[string][]RawFinding{}, "{not json", nil, ScopeProject)
	assert.Error(t, err)
}

func TestMapToAggregatedListEmptyBatch(t *testing.T) {
	issueMap := map[string][]RawFinding{}
	require.NoError(t, MapToAggregatedList(issueMap, "", nil, ScopeProject))
	assert.Empty(t, issueMap)
}

func TestMapToAggregatedListEditorFilter(t *testing.T) {
	editor := fakeEditor{
		"package main",
		`db.Query("SELECT * FROM t WHERE id=" + id)`,
		`token := "abcdef"`,
		"}",
	}

	testCases := []struct {
		name    string
		scope   Scope
		finding RawFinding
		want    bool
	}{
		{
			name:  "matching line",
			scope: ScopeFile,
			finding: RawFinding{StartLine: 2, EndLine: 2, CodeSnippet: []SnippetLine{
				{Number: 2, Content: `db.Query("SELECT * FROM t WHERE id=" + id)`},
			}},
			want: true,
		},
		{
			name:  "changed line",
			scope: ScopeFile,
			finding: RawFinding{StartLine: 2, EndLine: 2, CodeSnippet: []SnippetLine{
				{Number: 2, Content: `db.Query(query, id)`},
			}},
			want: false,
		},
		{
			name:  "redacted line with the same length",
			scope: ScopeFile,
			finding: RawFinding{StartLine: 3, EndLine: 3, CodeSnippet: []SnippetLine{
				{Number: 3, Content: `token := "******"`},
			}},
			want: true,
		},
		{
			name:  "redacted line with another length",
			scope: ScopeFile,
			finding: RawFinding{StartLine: 3, EndLine: 3, CodeSnippet: []SnippetLine{
				{Number: 3, Content: `token := "***"`},
			}},
			want: false,
		},
		{
			name:  "only the first line decides",
			scope: ScopeFile,
			finding: RawFinding{StartLine: 1, EndLine: 3, CodeSnippet: []SnippetLine{
				{Number: 1, Content: "package main"},
				{Number: 2, Content: "something else"},
				{Number: 3, Content: "and more"},
			}},
			want: true,
		},
		{
			name:  "first line mismatch drops the finding",
			scope: ScopeFile,
			finding: RawFinding{StartLine: 1, EndLine: 2, CodeSnippet: []SnippetLine{
				{Number: 1, Content: "package other"},
				{Number: 2, Content: `db.Query("SELECT * FROM t WHERE id=" + id)`},
			}},
			want: false,
		},
		{
			name:    "missing snippet line",
			scope:   ScopeFile,
			finding: RawFinding{StartLine: 4, EndLine: 4},
			want:    false,
		},
		{
			name:  "line beyond the buffer",
			scope: ScopeFile,
			finding: RawFinding{StartLine: 9, EndLine: 9, CodeSnippet: []SnippetLine{
				{Number: 9, Content: ""},
			}},
			want: false,
		},
		{
			name:    "empty range is kept",
			scope:   ScopeFile,
			finding: RawFinding{StartLine: 3, EndLine: 2},
			want:    true,
		},
		{
			name:  "project scope is not filtered",
			scope: ScopeProject,
			finding: RawFinding{StartLine: 2, EndLine: 2, CodeSnippet: []SnippetLine{
				{Number: 2, Content: "stale"},
			}},
			want: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.finding.FilePath = "proj/main.go"
			issueMap := map[string][]RawFinding{}
			require.NoError(t, MapToAggregatedList(issueMap, encodeBatch(t, tc.finding), editor, tc.scope))
			if tc.want {
				assert.Len(t, issueMap["proj/main.go"], 1)
			} else {
				assert.Empty(t, issueMap)
			}
		})
	}
}

func TestMapToAggregatedListFileScopeWithoutEditor(t *testing.T) {
	issueMap := map[string][]RawFinding{}
	finding := RawFinding{FilePath: "p/a.go", StartLine: 1, EndLine: 1, CodeSnippet: []SnippetLine{{Number: 1, Content: "x"}}}
	require.NoError(t, MapToAggregatedList(issueMap, encodeBatch(t, finding), nil, ScopeFile))
	assert.Len(t, issueMap["p/a.go"], 1)
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
}

func TestAggregateResultsResolvesAgainstProjectRoots(t *testing.T) {
	root := t.TempDir()
	proj := filepath.Join(root, "proj")
	other := filepath.Join(root, "other")
	writeFile(t, filepath.Join(proj, "src", "A.java"))
	require.NoError(t, os.MkdirAll(other, 0o755))

	issueMap := map[string][]RawFinding{
		"root/src/A.java": {{FilePath: "root/src/A.java", StartLine: 5, Title: "t", Description: Description{Text: "d"}}},
	}

	results := AggregateResults(issueMap, []string{other, proj})
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(proj, "src", "A.java"), results[0].FilePath)
	require.Len(t, results[0].Issues, 1)
	assert.Equal(t, 4, results[0].Issues[0].StartLine)
	assert.Equal(t, "t: d", results[0].Issues[0].Comment)
}

func TestAggregateResultsAbsolutePath(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "etc", "passwd")
	writeFile(t, file)
	key := strings.TrimPrefix(filepath.ToSlash(file), "/")

	issueMap := map[string][]RawFinding{key: {{FilePath: key, StartLine: 1}}}

	results := AggregateResults(issueMap, nil)
	require.Len(t, results, 1)
	assert.Equal(t, file, results[0].FilePath)
}

func TestAggregateResultsDuplicatesOverlappingRoots(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "one")
	second := filepath.Join(root, "two")
	writeFile(t, filepath.Join(first, "lib", "util.py"))
	writeFile(t, filepath.Join(second, "lib", "util.py"))

	issueMap := map[string][]RawFinding{"archive/lib/util.py": {{FilePath: "archive/lib/util.py"}}}

	results := AggregateResults(issueMap, []string{first, second})
	require.Len(t, results, 2)
	paths := []string{results[0].FilePath, results[1].FilePath}
	assert.ElementsMatch(t, []string{filepath.Join(first, "lib", "util.py"), filepath.Join(second, "lib", "util.py")}, paths)
}

func TestAggregateResultsDropsUnresolvedPaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "dir.go"), 0o755))

	issueMap := map[string][]RawFinding{
		"proj/src/missing.go": {{FilePath: "proj/src/missing.go"}},
		"proj/src/dir.go":     {{FilePath: "proj/src/dir.go"}},
	}

	results := AggregateResults(issueMap, []string{root})
	assert.Empty(t, results)
}
