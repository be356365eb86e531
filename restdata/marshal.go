// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"bytes"
	"io"
	"mime"
	"reflect"
	"strings"

	"github.com/ugorji/go/codec"
)

var mapType = reflect.TypeOf(map[string]interface{}(nil))

// JSONHandle returns a codec handle configured for Graylog's JSON.
// Decoding into an interface{} produces string-keyed maps and signed
// integers.
func JSONHandle() *codec.JsonHandle {
	h := &codec.JsonHandle{}
	h.MapType = mapType
	h.SignedInteger = true
	return h
}

// isJSON decides whether a media type carries JSON: application/json,
// text/json, or any structured +json type.
func isJSON(mediaType string) bool {
	switch mediaType {
	case "text/json", JSONMediaType:
		return true
	}
	return strings.HasSuffix(mediaType, "+json")
}

// Decode tries to decode a JSON object from a reader, such as an HTTP
// request or response.  out must be a pointer type.
func Decode(contentType string, r io.Reader, out interface{}) error {
	if contentType == "" {
		// RFC 7231 section 3.1.1.5
		contentType = "application/octet-stream"
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return err
	}
	if !isJSON(mediaType) {
		return ErrUnsupportedMediaType{Type: mediaType}
	}

	decoder := codec.NewDecoder(r, JSONHandle())
	return decoder.Decode(out)
}

// DecodeBytes decodes a JSON body that has already been read.
func DecodeBytes(contentType string, body []byte, out interface{}) error {
	return Decode(contentType, bytes.NewReader(body), out)
}

// Encode writes the JSON encoding of in to w.
func Encode(w io.Writer, in interface{}) error {
	encoder := codec.NewEncoder(w, JSONHandle())
	return encoder.Encode(in)
}

// Marshal returns the JSON encoding of in.
func Marshal(in interface{}) (out []byte, err error) {
	encoder := codec.NewEncoderBytes(&out, JSONHandle())
	err = encoder.Encode(in)
	return
}
