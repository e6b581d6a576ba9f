package codescan

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJob(t *testing.T) {
	client := &fakeClient{createResp: &CreateCodeScanResponse{JobID: "job-1", Status: StatusPending, RequestID: "req-7"}}
	telemetry := &fakeTelemetry{}
	j := NewJobInitiator(client, telemetry, hclog.NewNullLogger(), false)

	resp, err := j.CreateJob(context.Background(), ArtifactMap{ArtifactTypeSourceCode: "upload-1"}, "java", ScopeProject, "scan-a")
	require.NoError(t, err)
	assert.Equal(t, "job-1", resp.JobID)

	require.Len(t, client.createReqs, 1)
	req := client.createReqs[0]
	assert.Equal(t, ArtifactMap{ArtifactTypeSourceCode: "upload-1"}, req.Artifacts)
	assert.Equal(t, "java", req.ProgrammingLanguage.LanguageName)
	assert.Equal(t, ScopeProject, req.Scope)
	assert.Equal(t, "scan-a", req.CodeScanName)

	assert.Equal(t, []string{"java"}, telemetry.languages)
	assert.Equal(t, []string{"req-7"}, telemetry.requestIDs)
}

func TestCreateJobRejected(t *testing.T) {
	remoteErr := &requestIDError{id: "req-8"}
	client := &fakeClient{createErr: remoteErr}
	telemetry := &fakeTelemetry{}
	j := NewJobInitiator(client, telemetry, hclog.NewNullLogger(), false)

	_, err := j.CreateJob(context.Background(), ArtifactMap{}, "python", ScopeFile, "scan")
	var createErr *CreateCodeScanError
	require.ErrorAs(t, err, &createErr)
	assert.ErrorIs(t, err, remoteErr)
	assert.Empty(t, telemetry.languages)
}

func TestCreateJobWithoutTelemetry(t *testing.T) {
	client := &fakeClient{createResp: &CreateCodeScanResponse{JobID: "job-2"}}
	j := NewJobInitiator(client, nil, hclog.NewNullLogger(), false)

	resp, err := j.CreateJob(context.Background(), ArtifactMap{}, "go", ScopeProject, "scan")
	require.NoError(t, err)
	assert.Equal(t, "job-2", resp.JobID)
}
