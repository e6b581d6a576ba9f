package codescan

import (
	"errors"
	"fmt"
)

const (
	// UploadForbiddenReason is the classified reason for an upload rejected with HTTP 403.
	UploadForbiddenReason = `"PUT" request failed with code "403"`
	// defaultUploadFailureReason is used when the transport gives no description at all.
	defaultUploadFailureReason = "Security scan failed."
)

// InvalidSourceZipError is returned when no artifact path was produced for the scan.
type InvalidSourceZipError struct{}

func (e *InvalidSourceZipError) Error() string {
	return "failed to create valid source zip"
}

// CreateUploadUrlError wraps a rejected upload-target request.
type CreateUploadUrlError struct {
	Err error
}

func (e *CreateUploadUrlError) Error() string {
	return fmt.Sprintf("failed to create upload url: %v", e.Err)
}

func (e *CreateUploadUrlError) Unwrap() error {
	return e.Err
}

// UploadArtifactToS3Error carries the classified reason of a failed artifact transfer.
type UploadArtifactToS3Error struct {
	Reason string
}

func (e *UploadArtifactToS3Error) Error() string {
	return e.Reason
}

// CreateCodeScanError wraps a rejected scan job creation.
type CreateCodeScanError struct {
	Err error
}

func (e *CreateCodeScanError) Error() string {
	return fmt.Sprintf("failed to create code scan: %v", e.Err)
}

func (e *CreateCodeScanError) Unwrap() error {
	return e.Err
}

// SecurityScanTimedOutError is returned when polling exceeds the scope timeout.
type SecurityScanTimedOutError struct {
	JobID string
}

func (e *SecurityScanTimedOutError) Error() string {
	return fmt.Sprintf("security scan %q timed out", e.JobID)
}

// CodeScanStoppedError is returned when a running scan observes a cancellation.
type CodeScanStoppedError struct{}

func (e *CodeScanStoppedError) Error() string {
	return "code scan stopped"
}

// ScanJobFailedError is returned when the job reaches a terminal status other than Completed.
type ScanJobFailedError struct {
	JobID  string
	Status string
}

func (e *ScanJobFailedError) Error() string {
	return fmt.Sprintf("security scan %q finished with status %q", e.JobID, e.Status)
}

// requestIDCarrier is implemented by remote errors that know the id of the failed request.
type requestIDCarrier interface {
	RequestIdentifier() string
}

// requestIDOf returns the request id attached to err, if any.
func requestIDOf(err error) string {
	var carrier requestIDCarrier
	if errors.As(err, &carrier) {
		return carrier.RequestIdentifier()
	}
	return ""
}
