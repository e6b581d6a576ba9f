package codescan

import (
	"fmt"
	"strings"
)

// Scope is the coverage of a single scan: one open file or a whole project.
type Scope string

const (
	ScopeFile    Scope = "FILE"
	ScopeProject Scope = "PROJECT"
)

// Upload intents declared to the remote service when requesting an upload target.
const (
	FileScanUploadIntent    = "AUTOMATIC_FILE_SECURITY_SCAN"
	ProjectScanUploadIntent = "FULL_PROJECT_SECURITY_SCAN"
)

func (s Scope) String() string {
	return string(s)
}

// ParseScope converts a user-provided value into a Scope.
func ParseScope(value string) (Scope, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(ScopeFile):
		return ScopeFile, nil
	case string(ScopeProject):
		return ScopeProject, nil
	default:
		return "", fmt.Errorf("unsupported scan scope %q", value)
	}
}

// UploadIntent returns the declared upload intent for the scope.
func (s Scope) UploadIntent() string {
	if s == ScopeFile {
		return FileScanUploadIntent
	}
	return ProjectScanUploadIntent
}
