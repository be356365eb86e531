// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

// This file dispatches schema operations to HTTP requests.

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/diffeo/go-gl2api/schema"
	"github.com/sirupsen/logrus"
)

// Result is the outcome of one dispatched operation.  Which fields
// are set depends on the operation and its response.
type Result[P any] struct {
	// Items holds the entities of a Keyed or Array read.
	Items []P

	// Keyed holds the entities of a DictOf read.
	Keyed map[string]P

	// Item holds the entity of a Bare read, including the
	// follow-up read after a write.
	Item P

	// Body holds the decoded response body of a read, or of a
	// write before any follow-up read.
	Body interface{}

	// Deleted is true if a delete succeeded with 204 No Content.
	Deleted bool
}

// Endpoint binds a client to one resource and the entity type it
// carries.  P is always *T.
type Endpoint[T any, P schema.Ptr[T]] struct {
	client   *Client
	resource *schema.Resource
}

// NewEndpoint registers a resource with the client and returns an
// endpoint for it.  Fails if the resource is not well-formed.
func NewEndpoint[T any, P schema.Ptr[T]](c *Client, r *schema.Resource) (*Endpoint[T, P], error) {
	if err := c.Registry.Add(r); err != nil {
		return nil, err
	}
	return &Endpoint[T, P]{client: c, resource: r}, nil
}

// Resource returns the resource descriptor this endpoint dispatches.
func (e *Endpoint[T, P]) Resource() *schema.Resource {
	return e.resource
}

// Client returns the client this endpoint sends requests through.
func (e *Endpoint[T, P]) Client() *Client {
	return e.client
}

func isNil[T any, P schema.Ptr[T]](p P) bool {
	return (*T)(p) == nil
}

func (e *Endpoint[T, P]) unexpected(op schema.Operation, format string, args ...interface{}) error {
	return ErrUnexpectedResponse{
		Resource:  e.resource.Name,
		Operation: op.Name,
		Reason:    fmt.Sprintf(format, args...),
	}
}

// Do dispatches a named operation.  obj may be nil for reads, and for
// writes and deletes whose path is fully described by vars.  query is
// added to the request URL.
func (e *Endpoint[T, P]) Do(ctx context.Context, opName string, obj P, vars Vars, query url.Values) (*Result[P], error) {
	op, present := e.resource.Operation(opName)
	if !present {
		return nil, ErrUnknownOperation{Resource: e.resource.Name, Operation: opName}
	}
	switch op.Method {
	case http.MethodGet:
		return e.read(ctx, op, vars, query)
	case http.MethodPost, http.MethodPut:
		return e.write(ctx, op, obj, vars, query)
	case http.MethodDelete:
		return e.delete(ctx, op, obj, vars, query)
	}
	return nil, schema.ErrInvalidMethod{Resource: e.resource.Name, Operation: op.Name, Method: op.Method}
}

// read performs a GET and loads the entities in a 200 response.  Any
// other success is an empty result.
func (e *Endpoint[T, P]) read(ctx context.Context, op schema.Operation, vars Vars, query url.Values) (*Result[P], error) {
	u, err := e.client.Template(e.resource.PathOf(op), vars, query)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		if resp.is2xx() {
			return &Result[P]{}, nil
		}
		return nil, resp.errorHTTP()
	}
	body, err := resp.decode()
	if err != nil {
		return nil, err
	}
	return e.parse(op, body)
}

func (e *Endpoint[T, P]) parse(op schema.Operation, body interface{}) (*Result[P], error) {
	result := &Result[P]{Body: body}
	var err error
	switch op.Shape {
	case schema.Keyed:
		m, isMap := body.(map[string]interface{})
		if !isMap {
			return nil, e.unexpected(op, "not an object")
		}
		raw, present := m[op.Field]
		if !present {
			return nil, e.unexpected(op, "no %q field", op.Field)
		}
		items, isList := raw.([]interface{})
		if !isList && raw != nil {
			return nil, e.unexpected(op, "%q is not a list", op.Field)
		}
		result.Items, err = loadList[T, P](items)

	case schema.Array:
		items, isList := body.([]interface{})
		if !isList {
			return nil, e.unexpected(op, "not a list")
		}
		result.Items, err = loadList[T, P](items)

	case schema.DictOf:
		m, isMap := body.(map[string]interface{})
		if !isMap {
			return nil, e.unexpected(op, "not an object")
		}
		result.Keyed = make(map[string]P, len(m))
		for k, v := range m {
			var item P
			item, err = loadOne[T, P](v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			result.Keyed[k] = item
		}

	default:
		result.Item, err = loadOne[T, P](body)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func loadOne[T any, P schema.Ptr[T]](raw interface{}) (P, error) {
	m, isMap := raw.(map[string]interface{})
	if !isMap {
		return nil, fmt.Errorf("expected an object, got %T", raw)
	}
	return schema.Load[T, P](m)
}

func loadList[T any, P schema.Ptr[T]](items []interface{}) ([]P, error) {
	out := make([]P, len(items))
	for i, item := range items {
		p, err := loadOne[T, P](item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

// write performs a POST or PUT of obj.  On success it usually reads
// the object back through the resource's "get" operation.
func (e *Endpoint[T, P]) write(ctx context.Context, op schema.Operation, obj P, vars Vars, query url.Values) (*Result[P], error) {
	path := e.resource.PathOf(op)
	var in interface{}
	pathVars := Vars{}
	if !isNil(obj) {
		data, err := schema.Dump(obj)
		if err != nil {
			return nil, err
		}
		for _, name := range op.Exclude {
			delete(data, name)
			delete(data, schema.DumpKey(obj, name))
		}
		in = data
		pathVars = objectVars(path, obj)
	}
	pathVars = merge(pathVars, vars)

	u, err := e.client.Template(path, pathVars, query)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.do(ctx, op.Method, u, in)
	if err != nil {
		return nil, err
	}

	getOp, hasGet := e.resource.Operation(schema.OpGet)
	follow := hasGet && !op.NoGet
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		body, err := resp.decode()
		if err != nil {
			return nil, err
		}
		e.client.Logger.WithFields(logrus.Fields{
			"resource": e.resource.Name,
			"op":       op.Name,
			"received": body,
		}).Debug("Saved object")
		if !follow {
			return &Result[P]{Body: body}, nil
		}
		getVars := merge(pathVars)
		if op.GetAttrs != nil {
			if m, isMap := body.(map[string]interface{}); isMap {
				for field, name := range op.GetAttrs {
					if v, present := m[field]; present {
						getVars[name] = v
					}
				}
			}
		} else {
			getVars = merge(getVars, bodyVars(e.resource.PathOf(getOp), body))
		}
		result, err := e.read(ctx, getOp, getVars, nil)
		if err != nil {
			return nil, err
		}
		result.Body = body
		return result, nil

	case resp.StatusCode == http.StatusNoContent:
		if !follow {
			return &Result[P]{}, nil
		}
		getVars := merge(pathVars)
		if !isNil(obj) {
			getVars = merge(getVars, objectVars(e.resource.PathOf(getOp), obj))
		}
		return e.read(ctx, getOp, getVars, nil)

	case resp.is4xx():
		return nil, resp.apiError()

	case resp.is2xx():
		return &Result[P]{}, nil
	}

	e.client.Logger.WithFields(logrus.Fields{
		"resource": e.resource.Name,
		"op":       op.Name,
		"status":   resp.StatusCode,
		"body":     string(resp.Body),
	}).Error("Status code error")
	return nil, resp.errorHTTP()
}

// delete performs a DELETE.  Object attributes take precedence over
// vars in building the path.
func (e *Endpoint[T, P]) delete(ctx context.Context, op schema.Operation, obj P, vars Vars, query url.Values) (*Result[P], error) {
	path := e.resource.PathOf(op)
	pathVars := merge(vars)
	if !isNil(obj) {
		pathVars = merge(pathVars, objectVars(path, obj))
	}
	u, err := e.client.Template(path, pathVars, query)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.do(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNoContent:
		return &Result[P]{Deleted: true}, nil
	case resp.is4xx():
		return nil, resp.apiError()
	case resp.is2xx():
		return &Result[P]{}, nil
	}
	return nil, resp.errorHTTP()
}

// List runs the "list" operation.  For a DictOf resource the entities
// are returned in key order.
func (e *Endpoint[T, P]) List(ctx context.Context, vars Vars, query url.Values) ([]P, error) {
	r, err := e.Do(ctx, schema.OpList, nil, vars, query)
	if err != nil {
		return nil, err
	}
	if r.Keyed != nil {
		keys := make([]string, 0, len(r.Keyed))
		for k := range r.Keyed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]P, len(keys))
		for i, k := range keys {
			items[i] = r.Keyed[k]
		}
		return items, nil
	}
	return r.Items, nil
}

// ListMap runs the "list" operation of a DictOf resource.
func (e *Endpoint[T, P]) ListMap(ctx context.Context, vars Vars, query url.Values) (map[string]P, error) {
	r, err := e.Do(ctx, schema.OpList, nil, vars, query)
	if err != nil {
		return nil, err
	}
	return r.Keyed, nil
}

// Get runs the "get" operation.  It returns nil with no error if the
// server succeeded with something other than 200 OK.
func (e *Endpoint[T, P]) Get(ctx context.Context, vars Vars) (P, error) {
	r, err := e.Do(ctx, schema.OpGet, nil, vars, nil)
	if err != nil {
		return nil, err
	}
	return r.Item, nil
}

// Add runs the "add" operation, returning the object as the server
// reports it afterwards.  The result is nil if the resource has no
// "get" operation.
func (e *Endpoint[T, P]) Add(ctx context.Context, obj P, vars Vars) (P, error) {
	r, err := e.Do(ctx, schema.OpAdd, obj, vars, nil)
	if err != nil {
		return nil, err
	}
	return r.Item, nil
}

// Update runs the "update" operation, returning the object as the
// server reports it afterwards.
func (e *Endpoint[T, P]) Update(ctx context.Context, obj P, vars Vars) (P, error) {
	r, err := e.Do(ctx, schema.OpUpdate, obj, vars, nil)
	if err != nil {
		return nil, err
	}
	return r.Item, nil
}

// Delete runs the "delete" operation.  It returns true if the server
// replied 204 No Content.
func (e *Endpoint[T, P]) Delete(ctx context.Context, obj P, vars Vars) (bool, error) {
	r, err := e.Do(ctx, schema.OpDelete, obj, vars, nil)
	if err != nil {
		return false, err
	}
	return r.Deleted, nil
}
