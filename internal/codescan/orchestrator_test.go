package codescan

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(client *fakeClient, transport *fakeTransport, state *ScanState) (*Orchestrator, *fakeClock) {
	clock := newFakeClock()
	o := NewOrchestrator(client, transport, &fakeTelemetry{}, state, testSettings(), hclog.NewNullLogger(), WithClock(clock))
	return o, clock
}

func TestOrchestratorRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "App.java"))

	batch := encodeBatch(t, RawFinding{FilePath: "proj/src/App.java", StartLine: 3, EndLine: 3, Title: "Weak hash", Description: Description{Text: "MD5 is weak"}})
	page := decodePage(t, `{"codeAnalysisFindings":`+encodeString(t, batch)+`}`)

	client := &fakeClient{
		uploadURLResp: &CreateUploadURLResponse{UploadID: "upload-1", UploadURL: "https://bucket/upload-1"},
		createResp:    &CreateCodeScanResponse{JobID: "job-1", Status: StatusPending},
		statuses:      []string{StatusPending, StatusCompleted},
		pages:         []*ListCodeScanFindingsResponse{page},
	}
	transport := &fakeTransport{}
	o, _ := newTestOrchestrator(client, transport, NewScanState())

	result, err := o.Run(context.Background(), ScanRequest{
		ArtifactPath: writeArtifact(t),
		LanguageID:   "java",
		Scope:        ScopeProject,
		ScanName:     "scan-1",
		ProjectPaths: []string{root},
	})
	require.NoError(t, err)
	assert.Equal(t, "job-1", result.JobID)
	assert.Equal(t, StatusCompleted, result.Status)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, filepath.Join(root, "src", "App.java"), result.Findings[0].FilePath)
	assert.Equal(t, "Weak hash: MD5 is weak", result.Findings[0].Issues[0].Comment)

	assert.Len(t, transport.calls, 1)
	assert.Equal(t, ArtifactMap{ArtifactTypeSourceCode: "upload-1"}, client.createReqs[0].Artifacts)
	assert.Equal(t, 2, client.statusCalls)
}

func TestOrchestratorRunFailedJob(t *testing.T) {
	client := &fakeClient{
		uploadURLResp: &CreateUploadURLResponse{UploadID: "u", UploadURL: "https://x"},
		createResp:    &CreateCodeScanResponse{JobID: "job-2"},
		statuses:      []string{"Failed"},
	}
	o, _ := newTestOrchestrator(client, &fakeTransport{}, NewScanState())

	_, err := o.Run(context.Background(), ScanRequest{ArtifactPath: writeArtifact(t), Scope: ScopeProject})
	var failed *ScanJobFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "Failed", failed.Status)
	assert.Empty(t, client.pageReqs)
}

func TestOrchestratorRunStopsOnUploadFailure(t *testing.T) {
	client := &fakeClient{uploadURLResp: &CreateUploadURLResponse{UploadID: "u", UploadURL: "https://x"}}
	transport := &fakeTransport{err: assert.AnError}
	o, _ := newTestOrchestrator(client, transport, NewScanState())

	_, err := o.Run(context.Background(), ScanRequest{ArtifactPath: writeArtifact(t), Scope: ScopeProject})
	var uploadErr *UploadArtifactToS3Error
	require.ErrorAs(t, err, &uploadErr)
	assert.Empty(t, client.createReqs)
}

func TestOrchestratorFileScanRegistersStartTime(t *testing.T) {
	state := NewScanState()
	client := &fakeClient{
		uploadURLResp: &CreateUploadURLResponse{UploadID: "u", UploadURL: "https://x"},
		createResp:    &CreateCodeScanResponse{JobID: "job-3"},
		statuses:      []string{StatusCompleted},
		pages:         []*ListCodeScanFindingsResponse{decodePage(t, `{"codeScanFindings":"[]"}`)},
	}
	o, clock := newTestOrchestrator(client, &fakeTransport{}, state)
	start := clock.Now()

	_, err := o.Run(context.Background(), ScanRequest{ArtifactPath: writeArtifact(t), Scope: ScopeFile, Editor: fakeEditor{}})
	require.NoError(t, err)
	assert.True(t, state.LatestFileScanTime().Equal(start))
}
