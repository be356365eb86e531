// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memserver

// This file contains a REST skeleton framework: it decodes request
// bodies, dispatches by HTTP method, and turns handler results into
// status codes and JSON responses.

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/diffeo/go-gl2api/restdata"
	"github.com/gorilla/mux"
)

// errMethodNotAllowed is used within the resourceHandler
// implementation to flag an error if a particular HTTP method is not
// allowed.
type errMethodNotAllowed struct {
	Method string
}

func (e errMethodNotAllowed) Error() string {
	return fmt.Sprintf("HTTP %v not allowed", e.Method)
}

func (e errMethodNotAllowed) HTTPStatus() int {
	return http.StatusMethodNotAllowed
}

// errNoBody is returned when a handler that needs a request body
// does not get one.
var errNoBody = restdata.ErrBadRequest{Err: errors.New("Request body is required")}

// responseCreated is returned as a value response from handler
// functions that want to answer 201 Created.
type responseCreated struct {
	Body interface{}
}

// context holds the information extracted from one request.
type context struct {
	Vars  map[string]string
	Query url.Values
}

// IntParam returns the integer query parameter name, or def if it is
// absent.
func (ctx *context) IntParam(name string, def int) (int, error) {
	s := ctx.Query.Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, restdata.ErrBadRequest{Err: fmt.Errorf("invalid %s %q", name, s)}
	}
	return n, nil
}

type resourceHandler struct {
	Server *Server

	// Get, if non-nil, returns a representation of the object.
	Get func(*context) (interface{}, error)

	// Put, if non-nil, updates the object.  The document is nil
	// if the request had no body.
	Put func(*context, doc) (interface{}, error)

	// Post, if non-nil, creates an object or takes some action.
	Post func(*context, doc) (interface{}, error)

	// Delete, if non-nil, deletes the object.
	Delete func(*context) (interface{}, error)
}

func (h *resourceHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	var (
		in     doc
		out    interface{}
		err    error
		status int
	)

	ctx := &context{Vars: mux.Vars(req), Query: req.URL.Query()}

	// Read the JSON body, if it's there
	if req.Method == http.MethodPut || req.Method == http.MethodPost {
		if req.ContentLength != 0 || req.Header.Get("Content-Type") != "" {
			err = restdata.Decode(req.Header.Get("Content-Type"), req.Body, &in)
			if _, isStatus := err.(restdata.ErrorStatus); err != nil && !isStatus {
				err = restdata.ErrBadRequest{Err: err}
			}
		}
	}

	// Actually call the handler method
	if err == nil {
		out, err = h.call(req.Method, ctx, in)
	}

	// Fix up the final result based on what we know.
	if err != nil {
		status = restdata.StatusOf(err)
		errResp := restdata.ErrorResponse{}
		errResp.FromError(err)
		out = errResp
	} else if out == nil {
		status = http.StatusNoContent
	} else if created, isCreated := out.(responseCreated); isCreated {
		status = http.StatusCreated
		out = created.Body
	} else {
		status = http.StatusOK
	}
	if req.Method == http.MethodHead {
		out = nil
	}

	if out != nil {
		resp.Header().Set("Content-Type", restdata.JSONMediaType)
	}
	resp.WriteHeader(status)
	if out != nil {
		// By this point the status line is out, so there is
		// nothing better to do with a write error
		_ = restdata.Encode(resp, out)
	}
}

// call runs the handler function for method under the server lock.
func (h *resourceHandler) call(method string, ctx *context, in doc) (interface{}, error) {
	h.Server.lock.Lock()
	defer h.Server.lock.Unlock()
	switch method {
	case http.MethodGet, http.MethodHead:
		if h.Get != nil {
			return h.Get(ctx)
		}
	case http.MethodPut:
		if h.Put != nil {
			return h.Put(ctx, in)
		}
	case http.MethodPost:
		if h.Post != nil {
			return h.Post(ctx, in)
		}
	case http.MethodDelete:
		if h.Delete != nil {
			return h.Delete(ctx)
		}
	}
	return nil, errMethodNotAllowed{Method: method}
}

// notFoundf builds a 404 error.
func notFoundf(format string, args ...interface{}) error {
	return restdata.ErrNotFound{Err: fmt.Errorf(format, args...)}
}

// badRequestf builds a 400 error.
func badRequestf(format string, args ...interface{}) error {
	return restdata.ErrBadRequest{Err: fmt.Errorf(format, args...)}
}

// rejectKeys fails if in carries any of keys.  Graylog's request
// types refuse unknown properties, including server-assigned ones.
func rejectKeys(in doc, keys ...string) error {
	for _, key := range keys {
		if _, present := in[key]; present {
			return badRequestf("Unable to map property %s. Known properties do not include it", key)
		}
	}
	return nil
}

// requireKeys fails unless in carries every one of keys.
func requireKeys(in doc, keys ...string) error {
	if in == nil {
		return errNoBody
	}
	for _, key := range keys {
		if v, present := in[key]; !present || v == nil {
			return badRequestf("Missing required property %s", key)
		}
	}
	return nil
}

// merge copies every key of in into out, except the named keys.
func merge(out, in doc, skip ...string) {
	for k, v := range in {
		out[k] = v
	}
	for _, k := range skip {
		delete(out, k)
	}
}

// copyDoc returns a shallow copy of d.
func copyDoc(d doc) doc {
	out := make(doc, len(d))
	merge(out, d)
	return out
}

// values returns the documents of m ordered by key.
func values(m map[string]doc) []interface{} {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]interface{}, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

// list wraps items the way Graylog's list endpoints do.
func list(field string, items []interface{}) doc {
	if items == nil {
		items = []interface{}{}
	}
	return doc{"total": len(items), field: items}
}
