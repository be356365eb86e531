// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

// This file provides generic REST client code.

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/diffeo/go-gl2api/restdata"
	"github.com/diffeo/go-gl2api/retry"
	"github.com/diffeo/go-gl2api/schema"
	"github.com/jtacoma/uritemplates"
	"github.com/sirupsen/logrus"
)

// Vars holds values for path placeholders, keyed by placeholder name.
type Vars map[string]interface{}

var placeholder = regexp.MustCompile(`\{([^{}]+)\}`)

// placeholders returns the names of the {name} placeholders in a path
// template, in order.
func placeholders(path string) []string {
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(path, -1) {
		names = append(names, m[1])
	}
	return names
}

// objectVars collects values for the placeholders in path from the
// attributes of e.  Absent attributes are skipped.
func objectVars(path string, e schema.Entity) Vars {
	vars := Vars{}
	for _, name := range placeholders(path) {
		if v, ok := schema.Attr(e, name); ok {
			vars[name] = v
		}
	}
	return vars
}

// bodyVars collects values for the placeholders in path from a decoded
// response object.
func bodyVars(path string, body interface{}) Vars {
	vars := Vars{}
	m, isMap := body.(map[string]interface{})
	if !isMap {
		return vars
	}
	for _, name := range placeholders(path) {
		if v, present := m[name]; present && v != nil {
			vars[name] = v
		}
	}
	return vars
}

// merge returns a new Vars with the contents of each of vs in order,
// later values winning.
func merge(vs ...Vars) Vars {
	out := Vars{}
	for _, v := range vs {
		for k, x := range v {
			out[k] = x
		}
	}
	return out
}

// Template expands a path template relative to the API root.  Every
// placeholder must have a value in vars.  query, if non-empty, becomes
// the query string.
func (c *Client) Template(path string, vars Vars, query url.Values) (*url.URL, error) {
	// Build the template object
	tmpl, err := uritemplates.Parse(path)
	if err != nil {
		return nil, err
	}

	// Every placeholder must be filled; values are always strings
	values := make(map[string]interface{})
	for _, name := range placeholders(path) {
		v, present := vars[name]
		if !present || v == nil {
			return nil, ErrMissingPathVar{Path: path, Name: name}
		}
		values[name] = fmt.Sprint(v)
	}

	// Expand the template to produce a string
	expanded, err := tmpl.Expand(values)
	if err != nil {
		return nil, err
	}

	// Return the parsed URL of the result, relative to the root
	u, err := c.root.Parse(expanded)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u, nil
}

// response is a fully read HTTP response.
type response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// decode decodes the response body, if there is one.  An empty body
// decodes as nil.
func (r *response) decode() (interface{}, error) {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil, nil
	}
	var out interface{}
	err := restdata.DecodeBytes(r.Header.Get("Content-Type"), r.Body, &out)
	return out, err
}

// is2xx reports whether the response is any kind of success.
func (r *response) is2xx() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// is4xx reports whether the response is a client error.
func (r *response) is4xx() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// do performs some HTTP action, retrying per the client's policy if
// the server cannot be reached.  If in is non-nil, it is serialized
// and sent as the body of, for instance, a POST request.  The
// returned response has been completely read.  HTTP failure statuses
// are not errors here.
func (c *Client) do(ctx context.Context, method string, u *url.URL, in interface{}) (*response, error) {
	var body []byte
	if in != nil {
		var err error
		body, err = restdata.Marshal(in)
		if err != nil {
			return nil, err
		}
	}
	return retry.Do(ctx, c.Retry, func() (*response, error) {
		return c.exchange(ctx, method, u, body)
	})
}

// exchange performs a single HTTP request.
func (c *Client) exchange(ctx context.Context, method string, u *url.URL, body []byte) (r *response, err error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	// Create the request and set headers
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", restdata.JSONMediaType)
	}
	req.Header.Set("Accept", restdata.JSONMediaType)
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	// Actually do the request
	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		observe(method, 0, time.Since(start))
		return nil, err
	}
	defer func() {
		err = firstError(err, resp.Body.Close())
	}()

	// Always collect the entire body; it may need to be decoded
	// more than once
	b, err := ioutil.ReadAll(resp.Body)
	observe(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, err
	}

	c.Logger.WithFields(logrus.Fields{
		"method": method,
		"url":    u.String(),
		"status": resp.StatusCode,
	}).Debug("Graylog API request")

	return &response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       b,
	}, nil
}

// Fetch performs a read operation on a registered resource without
// decoding the result into entities.  It returns the decoded JSON
// body, or nil if the server succeeded with something other than
// 200 OK.
func (c *Client) Fetch(ctx context.Context, resourceName, opName string, vars Vars, query url.Values) (interface{}, error) {
	res, present := c.Registry.Resource(resourceName)
	if !present {
		return nil, ErrUnknownOperation{Resource: resourceName, Operation: opName}
	}
	op, present := res.Operation(opName)
	if !present || op.Method != http.MethodGet {
		return nil, ErrUnknownOperation{Resource: resourceName, Operation: opName}
	}
	u, err := c.Template(res.PathOf(op), vars, query)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return resp.decode()
	}
	if resp.is2xx() {
		return nil, nil
	}
	return nil, resp.errorHTTP()
}
