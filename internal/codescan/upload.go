package codescan

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/hashicorp/go-hclog"
)

// Upload request headers.
const (
	HeaderContentMD5    = "Content-MD5"
	HeaderContentType   = "Content-Type"
	HeaderSSE           = "x-amz-server-side-encryption"
	HeaderSSEContext    = "x-amz-server-side-encryption-context"
	HeaderSSEKmsKeyID   = "x-amz-server-side-encryption-aws-kms-key-id"
	artifactContentType = "application/zip"
)

// Uploader obtains an upload target for a source artifact and transfers it there.
type Uploader struct {
	client    Client
	transport ArtifactTransport
	logger    hclog.Logger
	verbose   bool
}

// NewUploader creates an Uploader. verbose keeps file scan logs.
func NewUploader(client Client, transport ArtifactTransport, logger hclog.Logger, verbose bool) *Uploader {
	return &Uploader{
		client:    client,
		transport: transport,
		logger:    logger,
		verbose:   verbose,
	}
}

// Upload sends the artifact at artifactPath to a fresh upload target and returns
// the artifact map referencing it.
func (u *Uploader) Upload(ctx context.Context, artifactPath string, scope Scope, scanName string) (ArtifactMap, error) {
	logger := loggerForScope(u.logger, scope, u.verbose)
	if artifactPath == "" {
		u.logger.Error("failed to create valid source zip")
		return nil, &InvalidSourceZipError{}
	}

	digest, err := ContentMD5(artifactPath)
	if err != nil {
		return nil, err
	}

	logger.Debug("prepare for uploading src context")
	target, err := u.RequestUploadTarget(ctx, digest, scope.UploadIntent(), scanName)
	if err != nil {
		return nil, err
	}
	logger.Debug("request id", "requestId", target.RequestID)
	logger.Debug("complete getting presigned url for uploading src context")

	logger.Debug("uploading src context")
	if err := u.UploadBytes(ctx, artifactPath, target, scope); err != nil {
		return nil, err
	}
	logger.Debug("complete uploading src context")

	return ArtifactMap{ArtifactTypeSourceCode: target.UploadID}, nil
}

// RequestUploadTarget asks the remote service for a pre-authorized write location.
func (u *Uploader) RequestUploadTarget(ctx context.Context, digest, intent, scanName string) (*CreateUploadURLResponse, error) {
	req := &CreateUploadURLRequest{
		ContentMd5:   digest,
		ArtifactType: ArtifactTypeSourceCode,
		UploadIntent: intent,
		UploadContext: &UploadContext{
			CodeAnalysisUploadContext: &CodeAnalysisUploadContext{CodeScanName: scanName},
		},
	}

	resp, err := u.client.CreateUploadURL(ctx, req)
	if err != nil {
		u.logger.Error("failed getting presigned url for uploading src context", "requestId", requestIDOf(err), "error", err)
		return nil, &CreateUploadUrlError{Err: err}
	}
	return resp, nil
}

// UploadBytes transfers the artifact to target. A failed transfer is not retried here.
func (u *Uploader) UploadBytes(ctx context.Context, artifactPath string, target *CreateUploadURLResponse, scope Scope) error {
	logger := loggerForScope(u.logger, scope, u.verbose)

	headers, err := uploadHeaders(artifactPath, target)
	if err != nil {
		return err
	}
	body, err := os.ReadFile(artifactPath)
	if err != nil {
		return fmt.Errorf("failed to read artifact %q: %w", artifactPath, err)
	}

	status, err := u.transport.Put(ctx, target.UploadURL, body, headers)
	if err != nil {
		u.logger.Error("unable to upload workspace artifacts for security scans", "error", err)
		return &UploadArtifactToS3Error{Reason: classifyUploadFailure(err)}
	}
	logger.Debug("artifact uploaded", "statusCode", status)
	return nil
}

// uploadHeaders builds the transfer headers. Headers required by the target replace all computed ones.
func uploadHeaders(artifactPath string, target *CreateUploadURLResponse) (map[string]string, error) {
	digest, err := ContentMD5(artifactPath)
	if err != nil {
		return nil, err
	}

	encryptionContext, err := json.Marshal(map[string]string{"uploadId": target.UploadID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode encryption context: %w", err)
	}

	headers := map[string]string{
		HeaderContentMD5:  digest,
		HeaderSSE:         s3.ServerSideEncryptionAwsKms,
		HeaderContentType: artifactContentType,
		HeaderSSEContext:  base64.StdEncoding.EncodeToString(encryptionContext),
	}
	if target.KmsKeyArn != "" {
		headers[HeaderSSEKmsKeyID] = target.KmsKeyArn
	}

	if target.RequestHeaders != nil {
		return target.RequestHeaders, nil
	}
	return headers, nil
}

func classifyUploadFailure(err error) string {
	reason := err.Error()
	if strings.Contains(reason, UploadForbiddenReason) {
		return UploadForbiddenReason
	}
	if reason == "" {
		return defaultUploadFailureReason
	}
	return reason
}
