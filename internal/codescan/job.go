package codescan

import (
	"context"

	"github.com/hashicorp/go-hclog"
)

// JobInitiator submits scan jobs for uploaded artifacts.
type JobInitiator struct {
	client    Client
	telemetry Telemetry
	logger    hclog.Logger
	verbose   bool
}

func NewJobInitiator(client Client, telemetry Telemetry, logger hclog.Logger, verbose bool) *JobInitiator {
	return &JobInitiator{
		client:    client,
		telemetry: telemetry,
		logger:    logger,
		verbose:   verbose,
	}
}

// CreateJob requests a scan of the artifacts for the given language and scope.
func (j *JobInitiator) CreateJob(ctx context.Context, artifacts ArtifactMap, languageID string, scope Scope, scanName string) (*CreateCodeScanResponse, error) {
	logger := loggerForScope(j.logger, scope, j.verbose)
	logger.Debug("creating scan job")

	req := &CreateCodeScanRequest{
		Artifacts:           artifacts,
		ProgrammingLanguage: ProgrammingLanguage{LanguageName: languageID},
		Scope:               scope,
		CodeScanName:        scanName,
	}
	resp, err := j.client.CreateCodeScan(ctx, req)
	if err != nil {
		j.logger.Error("failed creating scan job", "requestId", requestIDOf(err), "error", err)
		return nil, &CreateCodeScanError{Err: err}
	}
	logger.Debug("request id", "requestId", resp.RequestID)

	if j.telemetry != nil {
		j.telemetry.SendCodeScanEvent(languageID, resp.RequestID)
	}
	return resp, nil
}
