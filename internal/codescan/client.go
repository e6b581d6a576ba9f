package codescan

import (
	"context"

	"github.com/hashicorp/go-hclog"
)

// Client is the part of the remote scan service API used by a scan.
type Client interface {
	CreateUploadURL(ctx context.Context, req *CreateUploadURLRequest) (*CreateUploadURLResponse, error)
	CreateCodeScan(ctx context.Context, req *CreateCodeScanRequest) (*CreateCodeScanResponse, error)
	GetCodeScan(ctx context.Context, req *GetCodeScanRequest) (*GetCodeScanResponse, error)
	ListCodeScanFindings(ctx context.Context, req *ListCodeScanFindingsRequest) (*ListCodeScanFindingsResponse, error)
}

// ArtifactTransport transfers artifact bytes to a pre-authorized URL with PUT semantics.
// A non-2xx answer is returned as an error describing the failed request.
type ArtifactTransport interface {
	Put(ctx context.Context, url string, body []byte, headers map[string]string) (int, error)
}

// LineReader gives access to the lines of an open editor buffer. Lines are 0-based.
type LineReader interface {
	LineAt(line int) (string, bool)
}

// Telemetry receives fire-and-forget scan events.
type Telemetry interface {
	SendCodeScanEvent(languageID, requestID string)
}

// LogTelemetry is a Telemetry sink writing events to a logger.
type LogTelemetry struct {
	Logger hclog.Logger
}

func (t LogTelemetry) SendCodeScanEvent(languageID, requestID string) {
	if t.Logger == nil {
		return
	}
	t.Logger.Info("code scan event", "language", languageID, "requestId", requestID)
}

// loggerForScope discards file scan logs unless verbose is set.
func loggerForScope(logger hclog.Logger, scope Scope, verbose bool) hclog.Logger {
	if scope == ScopeFile && !verbose {
		return hclog.NewNullLogger()
	}
	return logger
}
