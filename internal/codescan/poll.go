package codescan

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Poller waits for a scan job to reach a terminal status.
type Poller struct {
	client   Client
	state    *ScanState
	settings Settings
	clock    Clock
	logger   hclog.Logger
}

// PollerOption customizes a Poller.
type PollerOption func(*Poller)

// WithClock replaces the wall clock used for sleeping and measuring timeouts.
func WithClock(clock Clock) PollerOption {
	return func(p *Poller) {
		p.clock = clock
	}
}

func NewPoller(client Client, state *ScanState, settings Settings, logger hclog.Logger, opts ...PollerOption) *Poller {
	p := &Poller{
		client:   client,
		state:    state,
		settings: settings,
		clock:    realClock{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll returns the first non-Pending status of the job. scanStartTime is the
// start of the scan as recorded in ScanState; a newer file scan supersedes it.
func (p *Poller) Poll(ctx context.Context, jobID string, scope Scope, scanStartTime time.Time) (string, error) {
	logger := loggerForScope(p.logger, scope, p.settings.VerboseFileScans)
	cancellation := p.state.ForScan(scope, scanStartTime)
	pollingStart := p.clock.Now()
	timeout := p.settings.pollingTimeout(scope)

	if err := p.clock.Sleep(ctx, p.settings.pollingDelay(scope)); err != nil {
		return "", fmt.Errorf("polling scan job %q interrupted: %w", jobID, err)
	}

	logger.Debug("polling scan job status", "jobId", jobID)
	status := StatusPending
	for {
		if err := p.throwIfCancelled(cancellation); err != nil {
			return "", err
		}

		resp, err := p.client.GetCodeScan(ctx, &GetCodeScanRequest{JobID: jobID})
		if err != nil {
			p.logger.Error("failed getting scan job status", "jobId", jobID, "requestId", requestIDOf(err), "error", err)
			return "", fmt.Errorf("failed to get status of scan job %q: %w", jobID, err)
		}
		logger.Debug("request id", "requestId", resp.RequestID)

		if resp.Status != StatusPending {
			status = resp.Status
			logger.Debug("scan job status", "status", status)
			logger.Debug("complete polling scan job status")
			return status, nil
		}

		if err := p.throwIfCancelled(cancellation); err != nil {
			return "", err
		}
		if err := p.clock.Sleep(ctx, p.settings.PollingInterval); err != nil {
			return "", fmt.Errorf("polling scan job %q interrupted: %w", jobID, err)
		}

		if elapsed := p.clock.Now().Sub(pollingStart); elapsed > timeout {
			logger.Debug("scan job status", "status", status)
			logger.Debug("security scan timed out", "elapsed", elapsed, "timeout", timeout)
			return "", &SecurityScanTimedOutError{JobID: jobID}
		}
	}
}

func (p *Poller) throwIfCancelled(c Cancellation) error {
	cancelled, known := c.IsCancelled()
	if !known {
		p.logger.Warn("unknown code analysis scope", "scope", c.scope)
		return nil
	}
	if cancelled {
		return &CodeScanStoppedError{}
	}
	return nil
}
