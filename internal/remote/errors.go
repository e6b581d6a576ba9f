package remote

import (
	"fmt"
)

// APIError is a non-2xx answer of the remote scan service.
type APIError struct {
	Operation  string `json:"-"`
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"-"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "no error message"
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %d %s: %s (request id: %s)", e.Operation, e.StatusCode, e.Code, msg, e.RequestID)
	}
	return fmt.Sprintf("%s: %d: %s (request id: %s)", e.Operation, e.StatusCode, msg, e.RequestID)
}

// RequestIdentifier returns the id of the rejected request.
func (e *APIError) RequestIdentifier() string {
	return e.RequestID
}

// RequestFailedError describes a transfer answered with a non-2xx status.
type RequestFailedError struct {
	Method     string
	StatusCode int
	Body       string
}

func (e *RequestFailedError) Error() string {
	msg := fmt.Sprintf("%q request failed with code \"%d\"", e.Method, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}
