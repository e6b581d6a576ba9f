package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/scan-io-git/scanio-remote/internal/codescan"
	"github.com/scan-io-git/scanio-remote/internal/config"
	"github.com/scan-io-git/scanio-remote/pkg/shared/httpclient"
)

// maxErrorBody bounds how much of a rejected transfer's body is kept in the error.
const maxErrorBody = 512

// PutTransport uploads artifacts to pre-signed URLs.
type PutTransport struct {
	httpc  *retryablehttp.Client
	logger hclog.Logger
}

var _ codescan.ArtifactTransport = (*PutTransport)(nil)

func NewPutTransport(cfg *config.Config, logger hclog.Logger) *PutTransport {
	return &PutTransport{
		httpc:  httpclient.InitializeRetryableClient(logger, cfg),
		logger: logger,
	}
}

// Put sends body to url. Headers are set verbatim, without canonicalization,
// since pre-signed URLs may be signed over their exact spelling.
func (t *PutTransport) Put(ctx context.Context, url string, body []byte, headers map[string]string) (int, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return 0, fmt.Errorf("failed to build upload request: %w", err)
	}
	for name, value := range headers {
		req.Header[name] = []string{value}
	}

	resp, err := t.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	t.logger.Debug("upload response", "statusCode", resp.StatusCode, "status", resp.Status)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &RequestFailedError{
			Method:     http.MethodPut,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}
	return resp.StatusCode, nil
}
