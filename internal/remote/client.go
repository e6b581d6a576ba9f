package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-remote/internal/codescan"
	"github.com/scan-io-git/scanio-remote/internal/config"
	"github.com/scan-io-git/scanio-remote/pkg/shared/httpclient"
)

// Headers exchanged with the remote scan service.
const (
	HeaderRequestID     = "x-amzn-RequestId"
	HeaderClientRequest = "x-scanio-client-request-id"
)

// API paths of the remote scan service.
const (
	pathUploadURL    = "/upload-url"
	pathCodeScans    = "/code-scans"
	pathCodeScan     = "/code-scans/{jobId}"
	pathScanFindings = "/code-scans/{jobId}/findings"
)

// Client is a REST client of the remote scan service.
type Client struct {
	httpc  *resty.Client
	logger hclog.Logger
}

var _ codescan.Client = (*Client)(nil)

// New creates a client for the service at cfg.CodeScan.Endpoint.
func New(cfg *config.Config, logger hclog.Logger) (*Client, error) {
	if cfg.CodeScan.Endpoint == "" {
		return nil, fmt.Errorf("code_scan.endpoint is not set")
	}

	httpc := httpclient.InitializeRestyClient(logger, cfg)
	httpc.SetBaseURL(cfg.CodeScan.Endpoint)
	httpc.SetHeader("Accept", "application/json")
	httpc.SetHeader("Content-Type", "application/json")
	httpc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader(HeaderClientRequest, uuid.NewString())
		return nil
	})

	if err := configureAuth(httpc, &cfg.CodeScan); err != nil {
		return nil, err
	}

	return &Client{
		httpc:  httpc,
		logger: logger,
	}, nil
}

func (c *Client) CreateUploadURL(ctx context.Context, req *codescan.CreateUploadURLRequest) (*codescan.CreateUploadURLResponse, error) {
	var result codescan.CreateUploadURLResponse
	resp, err := c.httpc.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&APIError{}).
		Post(pathUploadURL)
	if err := checkResponse("CreateUploadUrl", resp, err); err != nil {
		return nil, err
	}
	result.RequestID = requestID(resp)
	return &result, nil
}

func (c *Client) CreateCodeScan(ctx context.Context, req *codescan.CreateCodeScanRequest) (*codescan.CreateCodeScanResponse, error) {
	var result codescan.CreateCodeScanResponse
	resp, err := c.httpc.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&APIError{}).
		Post(pathCodeScans)
	if err := checkResponse("CreateCodeScan", resp, err); err != nil {
		return nil, err
	}
	result.RequestID = requestID(resp)
	return &result, nil
}

func (c *Client) GetCodeScan(ctx context.Context, req *codescan.GetCodeScanRequest) (*codescan.GetCodeScanResponse, error) {
	var result codescan.GetCodeScanResponse
	resp, err := c.httpc.R().
		SetContext(ctx).
		SetPathParam("jobId", req.JobID).
		SetResult(&result).
		SetError(&APIError{}).
		Get(pathCodeScan)
	if err := checkResponse("GetCodeScan", resp, err); err != nil {
		return nil, err
	}
	result.RequestID = requestID(resp)
	return &result, nil
}

func (c *Client) ListCodeScanFindings(ctx context.Context, req *codescan.ListCodeScanFindingsRequest) (*codescan.ListCodeScanFindingsResponse, error) {
	var result codescan.ListCodeScanFindingsResponse
	r := c.httpc.R().
		SetContext(ctx).
		SetPathParam("jobId", req.JobID).
		SetQueryParam("codeScanFindingsSchema", req.CodeScanFindingsSchema).
		SetResult(&result).
		SetError(&APIError{})
	if req.NextToken != "" {
		r.SetQueryParam("nextToken", req.NextToken)
	}

	resp, err := r.Get(pathScanFindings)
	if err := checkResponse("ListCodeScanFindings", resp, err); err != nil {
		return nil, err
	}
	result.RequestID = requestID(resp)
	return &result, nil
}

// checkResponse turns transport failures and non-2xx answers into errors.
func checkResponse(operation string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if !resp.IsError() && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{}
	}
	apiErr.Operation = operation
	apiErr.StatusCode = resp.StatusCode()
	apiErr.RequestID = requestID(resp)
	if apiErr.Message == "" && apiErr.Code == "" {
		apiErr.Message = resp.Status()
	}
	return apiErr
}

func requestID(resp *resty.Response) string {
	if resp == nil {
		return ""
	}
	return resp.Header().Get(HeaderRequestID)
}
