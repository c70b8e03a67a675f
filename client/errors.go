package client

import (
	"errors"
	"fmt"
	"os"

	"github.com/famomatic/danmakudl/internal/webapi"
)

var (
	// ErrInvalidFormat indicates the input is not a recognized resource id.
	ErrInvalidFormat = errors.New("invalid resource id format")
	// ErrUnsupportedKind indicates a resource kind the resolver cannot handle.
	ErrUnsupportedKind = errors.New("unsupported resource kind")
	// ErrUpstream indicates the API reported a non-success code.
	ErrUpstream = errors.New("upstream error")
	// ErrUnsupportedFormat indicates an unknown output format.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// UpstreamError carries the API's own failure code and message.
type UpstreamError struct {
	Endpoint string
	Code     int
	Message  string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: %s (code=%d endpoint=%s)", e.Message, e.Code, e.Endpoint)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

// HTTPStatusError indicates a non-200 response from a metadata endpoint.
type HTTPStatusError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *HTTPStatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http status=%d endpoint=%s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("http status=%d endpoint=%s", e.StatusCode, e.Endpoint)
}

// ExportError reports a failure to write one content item.
type ExportError struct {
	ItemKey string
	Path    string
	Err     error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export item=%s path=%s: %v", e.ItemKey, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// ErrorCategory is a coarse classification for CLI reporting.
type ErrorCategory string

const (
	ErrorCategoryNone              ErrorCategory = ""
	ErrorCategoryInvalidInput      ErrorCategory = "invalid_input"
	ErrorCategoryUpstream          ErrorCategory = "upstream"
	ErrorCategoryHTTP              ErrorCategory = "http"
	ErrorCategoryUnsupportedFormat ErrorCategory = "unsupported_format"
	ErrorCategoryExport            ErrorCategory = "export"
	ErrorCategoryFilesystem        ErrorCategory = "filesystem"
	ErrorCategoryUnknown           ErrorCategory = "unknown"
)

// ClassifyError maps an error to an ErrorCategory.
func ClassifyError(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}
	var httpErr *HTTPStatusError
	var exportErr *ExportError
	switch {
	case errors.Is(err, ErrInvalidFormat), errors.Is(err, ErrUnsupportedKind):
		return ErrorCategoryInvalidInput
	case errors.Is(err, ErrUpstream):
		return ErrorCategoryUpstream
	case errors.As(err, &httpErr):
		return ErrorCategoryHTTP
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrorCategoryUnsupportedFormat
	case errors.As(err, &exportErr):
		return ErrorCategoryExport
	case errors.Is(err, os.ErrPermission), errors.Is(err, os.ErrNotExist):
		return ErrorCategoryFilesystem
	}
	return ErrorCategoryUnknown
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *webapi.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{Endpoint: apiErr.Endpoint, Code: apiErr.Code, Message: apiErr.Message}
	}
	var statusErr *webapi.HTTPStatusError
	if errors.As(err, &statusErr) {
		return &HTTPStatusError{Endpoint: statusErr.Endpoint, StatusCode: statusErr.StatusCode, Message: statusErr.Message}
	}
	return err
}
