package codescan

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// FindingsPager walks the pages of findings of a completed job. It follows
// the continuation token until the service returns none and cannot be rewound.
type FindingsPager struct {
	client    Client
	jobID     string
	schema    string
	logger    hclog.Logger
	nextToken string
	started   bool
}

func NewFindingsPager(client Client, jobID, schema string, logger hclog.Logger) *FindingsPager {
	return &FindingsPager{
		client: client,
		jobID:  jobID,
		schema: schema,
		logger: logger,
	}
}

// HasMorePages reports whether NextPage can be called again.
func (p *FindingsPager) HasMorePages() bool {
	return !p.started || p.nextToken != ""
}

// NextPage fetches the next findings batch, a JSON encoded array of RawFinding.
func (p *FindingsPager) NextPage(ctx context.Context) (string, error) {
	if !p.HasMorePages() {
		return "", fmt.Errorf("no more findings pages for scan job %q", p.jobID)
	}

	resp, err := p.client.ListCodeScanFindings(ctx, &ListCodeScanFindingsRequest{
		JobID:                  p.jobID,
		CodeScanFindingsSchema: p.schema,
		NextToken:              p.nextToken,
	})
	if err != nil {
		p.logger.Error("failed listing scan findings", "jobId", p.jobID, "requestId", requestIDOf(err), "error", err)
		return "", fmt.Errorf("failed to list findings of scan job %q: %w", p.jobID, err)
	}
	p.logger.Debug("request id", "requestId", resp.RequestID, "field", resp.Field)

	p.started = true
	p.nextToken = resp.NextToken
	return resp.Findings, nil
}

// ListFindings retrieves every findings batch of the job.
func ListFindings(ctx context.Context, client Client, jobID, schema string, logger hclog.Logger) ([]string, error) {
	pager := NewFindingsPager(client, jobID, schema, logger)
	var batches []string
	for pager.HasMorePages() {
		batch, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, nil
}
