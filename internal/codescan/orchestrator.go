package codescan

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
)

// ScanRequest describes one scan invocation.
type ScanRequest struct {
	ArtifactPath string // prebuilt source zip
	LanguageID   string
	Scope        Scope
	ScanName     string
	ProjectPaths []string   // candidate local roots for the logical paths of findings
	Editor       LineReader // open buffer for file scans, may be nil
}

// ScanResult is the outcome of a completed scan.
type ScanResult struct {
	JobID    string
	Status   string
	Findings []AggregatedFileResult
}

// Orchestrator runs the upload, job creation, polling, findings retrieval and
// aggregation stages in order.
type Orchestrator struct {
	uploader  *Uploader
	initiator *JobInitiator
	poller    *Poller
	client    Client
	state     *ScanState
	settings  Settings
	clock     Clock
	logger    hclog.Logger
}

func NewOrchestrator(client Client, transport ArtifactTransport, telemetry Telemetry, state *ScanState, settings Settings, logger hclog.Logger, opts ...PollerOption) *Orchestrator {
	poller := NewPoller(client, state, settings, logger.Named("poller"), opts...)
	return &Orchestrator{
		uploader:  NewUploader(client, transport, logger.Named("uploader"), settings.VerboseFileScans),
		initiator: NewJobInitiator(client, telemetry, logger.Named("job"), settings.VerboseFileScans),
		poller:    poller,
		client:    client,
		state:     state,
		settings:  settings,
		clock:     poller.clock,
		logger:    logger,
	}
}

// Run executes a full scan. A file scan registers itself as the latest one,
// stopping older file scans still polling.
func (o *Orchestrator) Run(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	logger := loggerForScope(o.logger, req.Scope, o.settings.VerboseFileScans)
	startTime := o.clock.Now()
	if req.Scope == ScopeFile {
		o.state.MarkFileScanStarted(startTime)
	}

	artifacts, err := o.uploader.Upload(ctx, req.ArtifactPath, req.Scope, req.ScanName)
	if err != nil {
		return nil, err
	}

	job, err := o.initiator.CreateJob(ctx, artifacts, req.LanguageID, req.Scope, req.ScanName)
	if err != nil {
		return nil, err
	}
	logger.Info("scan job created", "jobId", job.JobID, "scope", req.Scope)

	status, err := o.poller.Poll(ctx, job.JobID, req.Scope, startTime)
	if err != nil {
		return nil, err
	}
	if status != StatusCompleted {
		o.logger.Error("security scan failed", "jobId", job.JobID, "status", status)
		return nil, &ScanJobFailedError{JobID: job.JobID, Status: status}
	}

	findings, err := o.ListScanResults(ctx, job.JobID, req.ProjectPaths, req.Scope, req.Editor)
	if err != nil {
		return nil, err
	}
	logger.Info("scan completed", "jobId", job.JobID, "files", len(findings), "elapsed", o.clock.Now().Sub(startTime).Round(time.Millisecond))

	return &ScanResult{JobID: job.JobID, Status: status, Findings: findings}, nil
}

// ListScanResults retrieves all findings of a completed job and maps them onto local files.
func (o *Orchestrator) ListScanResults(ctx context.Context, jobID string, projectPaths []string, scope Scope, editor LineReader) ([]AggregatedFileResult, error) {
	logger := loggerForScope(o.logger, scope, o.settings.VerboseFileScans)
	batches, err := ListFindings(ctx, o.client, jobID, o.settings.FindingsSchema, logger.Named("findings"))
	if err != nil {
		return nil, err
	}

	issueMap := make(map[string][]RawFinding)
	for _, batch := range batches {
		if err := MapToAggregatedList(issueMap, batch, editor, scope); err != nil {
			return nil, fmt.Errorf("scan job %q: %w", jobID, err)
		}
	}
	return AggregateResults(issueMap, projectPaths), nil
}
