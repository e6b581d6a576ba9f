package scan

import (
	"fmt"
	"strings"

	"github.com/scan-io-git/scanio-remote/internal/codescan"
	"github.com/scan-io-git/scanio-remote/internal/report"
	"github.com/scan-io-git/scanio-remote/pkg/shared/files"
)

// validatedScanArgs holds the parsed values of the scan options.
type validatedScanArgs struct {
	scope    codescan.Scope
	format   report.Format
	scanName string
}

// validateScanArgs validates the arguments provided to the scan command.
func validateScanArgs(options *RunOptionsScan) (*validatedScanArgs, error) {
	if options.ArtifactPath == "" {
		return nil, fmt.Errorf("the 'zip' flag must be specified")
	}
	expanded, err := files.ExpandPath(options.ArtifactPath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand the 'zip' path: %w", err)
	}
	if err := files.ValidatePath(expanded); err != nil {
		return nil, fmt.Errorf("invalid 'zip' path: %w", err)
	}
	options.ArtifactPath = expanded

	scope, err := codescan.ParseScope(options.Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid 'scope' flag: %w", err)
	}

	format, err := report.ParseFormat(options.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid 'format' flag: %w", err)
	}

	if options.FilePath != "" && scope != codescan.ScopeFile {
		return nil, fmt.Errorf("the 'file' flag can only be used with the file scope")
	}

	for _, path := range options.ProjectPaths {
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("the 'project-path' flag must not be empty")
		}
	}

	scanName := strings.TrimSpace(options.ScanName)
	if scanName == "" {
		scanName = defaultScanName()
	}

	return &validatedScanArgs{
		scope:    scope,
		format:   format,
		scanName: scanName,
	}, nil
}
