// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/diffeo/go-gl2api/restdata"
)

// ErrorHTTP is a catch-all error for non-successes returned from the
// REST endpoint that are not client errors on a write.
type ErrorHTTP struct {
	// StatusCode is the numeric HTTP status, 503 or similar.
	StatusCode int

	// Status is the full HTTP status line text, "503 Service
	// Unavailable".
	Status string

	// Body holds the contents of the message body, presumed to
	// be text.
	Body string

	// Message holds the message from the server's error document,
	// if it sent one.
	Message string
}

func (e ErrorHTTP) Error() string {
	if e.Message != "" {
		return e.Status + ": " + e.Message
	}
	return e.Status
}

// APIError is returned when the server rejects a write or delete with
// a 4xx status.  Usually this means the request was malformed or
// named an object that does not exist.
type APIError struct {
	StatusCode int
	Body       string

	// Message holds the message from the server's error document,
	// if it sent one.
	Message string
}

func (e APIError) Error() string {
	return fmt.Sprintf("Request error: status_code=%d text=%s", e.StatusCode, e.Body)
}

// ErrMissingPathVar is returned when a path template has a
// placeholder that neither the object nor the caller supplied.
type ErrMissingPathVar struct {
	Path string
	Name string
}

func (e ErrMissingPathVar) Error() string {
	return fmt.Sprintf("path %q: no value for {%s}", e.Path, e.Name)
}

// ErrUnknownOperation is returned when dispatching an operation the
// resource does not declare.
type ErrUnknownOperation struct {
	Resource  string
	Operation string
}

func (e ErrUnknownOperation) Error() string {
	return fmt.Sprintf("resource %q has no operation %q", e.Resource, e.Operation)
}

// ErrUnexpectedResponse is returned when a successful response body
// does not have the shape the operation declares.
type ErrUnexpectedResponse struct {
	Resource  string
	Operation string
	Reason    string
}

func (e ErrUnexpectedResponse) Error() string {
	return fmt.Sprintf("%s.%s: unexpected response: %s", e.Resource, e.Operation, e.Reason)
}

// errorMessage tries to pull the message out of a Graylog error
// document.
func errorMessage(header http.Header, body []byte) string {
	var errResp restdata.ErrorResponse
	if err := restdata.DecodeBytes(header.Get("Content-Type"), body, &errResp); err != nil {
		return ""
	}
	return strings.TrimSpace(errResp.Message)
}

// errorHTTP builds the catch-all error for a failed response.
func (r *response) errorHTTP() error {
	return ErrorHTTP{
		StatusCode: r.StatusCode,
		Status:     r.Status,
		Body:       string(r.Body),
		Message:    errorMessage(r.Header, r.Body),
	}
}

// apiError builds the client-error error for a rejected write.
func (r *response) apiError() error {
	return APIError{
		StatusCode: r.StatusCode,
		Body:       string(r.Body),
		Message:    errorMessage(r.Header, r.Body),
	}
}

func firstError(e1, e2 error) error {
	if e1 != nil {
		return e1
	}
	return e2
}
