package codescan

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClient struct {
	mu sync.Mutex

	uploadURLReqs []*CreateUploadURLRequest
	uploadURLResp *CreateUploadURLResponse
	uploadURLErr  error

	createReqs []*CreateCodeScanRequest
	createResp *CreateCodeScanResponse
	createErr  error

	statuses    []string
	statusCalls int
	statusErr   error
	onStatus    func(call int)

	pages    []*ListCodeScanFindingsResponse
	pageReqs []*ListCodeScanFindingsRequest
	findErr  error
}

func (c *fakeClient) CreateUploadURL(_ context.Context, req *CreateUploadURLRequest) (*CreateUploadURLResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploadURLReqs = append(c.uploadURLReqs, req)
	if c.uploadURLErr != nil {
		return nil, c.uploadURLErr
	}
	return c.uploadURLResp, nil
}

func (c *fakeClient) CreateCodeScan(_ context.Context, req *CreateCodeScanRequest) (*CreateCodeScanResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createReqs = append(c.createReqs, req)
	if c.createErr != nil {
		return nil, c.createErr
	}
	return c.createResp, nil
}

func (c *fakeClient) GetCodeScan(_ context.Context, _ *GetCodeScanRequest) (*GetCodeScanResponse, error) {
	c.mu.Lock()
	call := c.statusCalls
	c.statusCalls++
	c.mu.Unlock()

	if c.onStatus != nil {
		c.onStatus(call)
	}
	if c.statusErr != nil {
		return nil, c.statusErr
	}
	status := StatusPending
	if call < len(c.statuses) {
		status = c.statuses[call]
	}
	return &GetCodeScanResponse{Status: status, RequestID: "status-req"}, nil
}

func (c *fakeClient) ListCodeScanFindings(_ context.Context, req *ListCodeScanFindingsRequest) (*ListCodeScanFindingsResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pageReqs = append(c.pageReqs, req)
	if c.findErr != nil {
		return nil, c.findErr
	}
	idx := len(c.pageReqs) - 1
	if idx >= len(c.pages) {
		return nil, errors.New("unexpected findings page request")
	}
	return c.pages[idx], nil
}

type putCall struct {
	url     string
	body    []byte
	headers map[string]string
}

type fakeTransport struct {
	calls  []putCall
	status int
	err    error
}

func (t *fakeTransport) Put(_ context.Context, url string, body []byte, headers map[string]string) (int, error) {
	t.calls = append(t.calls, putCall{url: url, body: body, headers: headers})
	if t.err != nil {
		return 0, t.err
	}
	if t.status == 0 {
		return 200, nil
	}
	return t.status, nil
}

// fakeClock advances its time only when Sleep is called.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

type fakeEditor []string

func (e fakeEditor) LineAt(line int) (string, bool) {
	if line < 0 || line >= len(e) {
		return "", false
	}
	return e[line], true
}

type fakeTelemetry struct {
	languages  []string
	requestIDs []string
}

func (t *fakeTelemetry) SendCodeScanEvent(languageID, requestID string) {
	t.languages = append(t.languages, languageID)
	t.requestIDs = append(t.requestIDs, requestID)
}

type requestIDError struct {
	id string
}

func (e *requestIDError) Error() string {
	return "remote rejected request " + e.id
}

func (e *requestIDError) RequestIdentifier() string {
	return e.id
}

func testSettings() Settings {
	return Settings{
		FilePollingDelay:    2 * time.Second,
		ProjectPollingDelay: 10 * time.Second,
		PollingInterval:     time.Second,
		FileTimeout:         5 * time.Second,
		ProjectTimeout:      30 * time.Second,
		FindingsSchema:      DefaultFindingsSchema,
	}
}

func encodeString(t *testing.T, s string) string {
	t.Helper()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("failed to encode string: %v", err)
	}
	return string(data)
}
