package codescan

import (
	"encoding/json"
	"fmt"
)

// ArtifactTypeSourceCode is the artifact type of an uploaded source zip.
const ArtifactTypeSourceCode = "SourceCode"

// StatusPending is the only non-terminal job status.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// ArtifactMap maps an artifact type to the upload id returned by the remote store.
type ArtifactMap map[string]string

type CodeAnalysisUploadContext struct {
	CodeScanName string `json:"codeScanName"`
}

type UploadContext struct {
	CodeAnalysisUploadContext *CodeAnalysisUploadContext `json:"codeAnalysisUploadContext,omitempty"`
}

type CreateUploadURLRequest struct {
	ContentMd5    string         `json:"contentMd5"`
	ArtifactType  string         `json:"artifactType"`
	UploadIntent  string         `json:"uploadIntent"`
	UploadContext *UploadContext `json:"uploadContext,omitempty"`
}

// CreateUploadURLResponse describes a write-once upload target.
type CreateUploadURLResponse struct {
	UploadID       string            `json:"uploadId"`
	UploadURL      string            `json:"uploadUrl"`
	KmsKeyArn      string            `json:"kmsKeyArn,omitempty"`
	RequestHeaders map[string]string `json:"requestHeaders,omitempty"`
	RequestID      string            `json:"-"`
}

type ProgrammingLanguage struct {
	LanguageName string `json:"languageName"`
}

type CreateCodeScanRequest struct {
	Artifacts           ArtifactMap         `json:"artifacts"`
	ProgrammingLanguage ProgrammingLanguage `json:"programmingLanguage"`
	Scope               Scope               `json:"scope"`
	CodeScanName        string              `json:"codeScanName"`
}

type CreateCodeScanResponse struct {
	JobID        string `json:"jobId"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	RequestID    string `json:"-"`
}

type GetCodeScanRequest struct {
	JobID string
}

type GetCodeScanResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	RequestID    string `json:"-"`
}

type ListCodeScanFindingsRequest struct {
	JobID                  string
	CodeScanFindingsSchema string
	NextToken              string
}

// FindingsField names the response field a findings batch was delivered in.
type FindingsField int

const (
	// FindingsFieldCurrent is the "codeAnalysisFindings" field.
	FindingsFieldCurrent FindingsField = iota
	// FindingsFieldLegacy is the "codeScanFindings" field.
	FindingsFieldLegacy
)

func (f FindingsField) String() string {
	if f == FindingsFieldLegacy {
		return "codeScanFindings"
	}
	return "codeAnalysisFindings"
}

// ListCodeScanFindingsResponse is one page of findings. The batch is a JSON
// encoded array of RawFinding, delivered in one of two field names depending
// on the requested schema; the field is resolved once while decoding.
type ListCodeScanFindingsResponse struct {
	Field     FindingsField
	Findings  string
	NextToken string
	RequestID string
}

type findingsPageWire struct {
	CodeScanFindings     *string `json:"codeScanFindings,omitempty"`
	CodeAnalysisFindings *string `json:"codeAnalysisFindings,omitempty"`
	NextToken            string  `json:"nextToken,omitempty"`
}

// UnmarshalJSON accepts either findings field name.
func (r *ListCodeScanFindingsResponse) UnmarshalJSON(data []byte) error {
	var wire findingsPageWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("failed to decode findings page: %w", err)
	}

	r.NextToken = wire.NextToken
	switch {
	case wire.CodeScanFindings != nil:
		r.Field = FindingsFieldLegacy
		r.Findings = *wire.CodeScanFindings
	case wire.CodeAnalysisFindings != nil:
		r.Field = FindingsFieldCurrent
		r.Findings = *wire.CodeAnalysisFindings
	default:
		r.Field = FindingsFieldCurrent
		r.Findings = ""
	}
	return nil
}

// MarshalJSON writes the batch under the field it was decoded from.
func (r ListCodeScanFindingsResponse) MarshalJSON() ([]byte, error) {
	wire := findingsPageWire{NextToken: r.NextToken}
	findings := r.Findings
	if r.Field == FindingsFieldLegacy {
		wire.CodeScanFindings = &findings
	} else {
		wire.CodeAnalysisFindings = &findings
	}
	return json.Marshal(wire)
}

type Description struct {
	Text     string `json:"text"`
	Markdown string `json:"markdown"`
}

type Recommendation struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type SuggestedFix struct {
	Description string `json:"description"`
	Code        string `json:"code"`
}

type Remediation struct {
	Recommendation Recommendation `json:"recommendation"`
	SuggestedFixes []SuggestedFix `json:"suggestedFixes"`
}

// SnippetLine is one line of the code preview attached to a finding.
type SnippetLine struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

// RawFinding is an issue exactly as reported by the remote service. Lines are 1-based.
type RawFinding struct {
	FilePath               string        `json:"filePath"`
	StartLine              int           `json:"startLine"`
	EndLine                int           `json:"endLine"`
	Title                  string        `json:"title"`
	Description            Description   `json:"description"`
	DetectorID             string        `json:"detectorId"`
	DetectorName           string        `json:"detectorName"`
	FindingID              string        `json:"findingId"`
	RuleID                 string        `json:"ruleId,omitempty"`
	RelatedVulnerabilities []string      `json:"relatedVulnerabilities"`
	Severity               string        `json:"severity"`
	Remediation            Remediation   `json:"remediation"`
	CodeSnippet            []SnippetLine `json:"codeSnippet"`
}

// Finding is a RawFinding normalized for display. StartLine is 0-based.
type Finding struct {
	StartLine              int            `json:"startLine"`
	EndLine                int            `json:"endLine"`
	Comment                string         `json:"comment"`
	Title                  string         `json:"title"`
	Description            Description    `json:"description"`
	DetectorID             string         `json:"detectorId"`
	DetectorName           string         `json:"detectorName"`
	FindingID              string         `json:"findingId"`
	RuleID                 string         `json:"ruleId,omitempty"`
	RelatedVulnerabilities []string       `json:"relatedVulnerabilities"`
	Severity               string         `json:"severity"`
	Recommendation         Recommendation `json:"recommendation"`
	SuggestedFixes         []SuggestedFix `json:"suggestedFixes"`
}

// AggregatedFileResult groups the findings of one local file.
type AggregatedFileResult struct {
	FilePath string    `json:"filePath"`
	Issues   []Finding `json:"issues"`
}
