// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines the wire conventions shared by the
// restclient package and the memserver fake.  Graylog speaks plain
// application/json; every request and response body is a JSON object
// or array, encoded and decoded with github.com/ugorji/go/codec.
//
// Encoding Considerations
//
// Decoded objects are always map[string]interface{}, never
// map[interface{}]interface{}.  Integers decode as int64 and numbers
// with a fractional part as float64.  Timestamps are RFC 3339 strings,
// "2018-03-30T19:32:44.208Z", and are converted by the schema package,
// not here.
//
// Errors
//
// A failing Graylog call usually returns a small JSON document
//
//     {"type": "ApiError", "message": "Stream <abc> not found!"}
//
// which is represented by ErrorResponse.  Not every failure carries
// one; proxies and the embedded web server may return HTML or nothing
// at all, so callers must treat the document as optional.
package restdata

// JSONMediaType is the MIME type of every Graylog request and response
// body.
const JSONMediaType = "application/json"

// ErrorResponse is the error document a Graylog server returns,
// generally accompanied by a failing HTTP status code.
type ErrorResponse struct {
	// Type is a short classification of the failure, usually
	// "ApiError", or "panic" if the fake server's handler panicked.
	Type string `json:"type"`

	// Message is a human-readable description of the failure.
	Message string `json:"message"`

	// Stack holds a formatted backtrace, if the handler failed
	// due to a panic.
	Stack string `json:"stack,omitempty"`
}

func (e ErrorResponse) Error() string {
	if e.Message == "" {
		return e.Type
	}
	return e.Message
}
