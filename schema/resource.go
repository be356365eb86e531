// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package schema

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
)

// Standard operation names.  Resources may declare other operations
// too, such as "resume" or "set_default".
const (
	OpList   = "list"
	OpGet    = "get"
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Shape describes how a successful read response is laid out.
type Shape int

const (
	// Bare responses are a single entity.
	Bare Shape = iota

	// Keyed responses are an object with a named field holding an
	// array of entities, usually along with a "total" count.
	Keyed

	// DictOf responses are an object whose values are entities.
	DictOf

	// Array responses are a top-level array of entities.
	Array
)

func (s Shape) String() string {
	switch s {
	case Bare:
		return "bare"
	case Keyed:
		return "keyed"
	case DictOf:
		return "dict"
	case Array:
		return "array"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Operation describes one verb-bound action on a resource.
// Operations are defined once, when a resource is declared, and never
// change afterwards.
type Operation struct {
	// Name is the operation name, such as "list" or "resume".
	Name string

	// Method is the HTTP verb: GET, POST, PUT, or DELETE.
	Method string

	// Path, if non-empty, overrides the resource's base path.  It
	// may contain {name} placeholders.
	Path string

	// Shape is the layout of a successful read response.
	Shape Shape

	// Field names the array field of a Keyed response.
	Field string

	// Exclude lists attributes that are dropped from the request
	// body of a write.
	Exclude []string

	// GetAttrs maps fields of a write response to the path
	// variables of the follow-up read.
	GetAttrs map[string]string

	// NoGet suppresses the follow-up read after a write.
	NoGet bool
}

// Resource is a named category of remote entity, reachable under a
// base path.
type Resource struct {
	// Name is the registry name, such as "streams".
	Name string

	// Path is the base path, relative to the API root.
	Path string

	// Operations is the table of supported operations.
	Operations []Operation
}

// Operation finds the named operation.
func (r *Resource) Operation(name string) (Operation, bool) {
	for _, op := range r.Operations {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

// PathOf returns the path template for an operation on this resource.
func (r *Resource) PathOf(op Operation) string {
	if op.Path != "" {
		return op.Path
	}
	return r.Path
}

// ErrNoPath is returned from Registry.Add if a resource has no base
// path.
var ErrNoPath = errors.New("resource has no base path")

// ErrInvalidMethod is returned from Registry.Add if an operation has
// an HTTP verb the dispatcher does not support.
type ErrInvalidMethod struct {
	Resource  string
	Operation string
	Method    string
}

func (e ErrInvalidMethod) Error() string {
	return fmt.Sprintf("Method: %s.%s, type: %q", e.Resource, e.Operation, e.Method)
}

// Validate checks that a resource can be dispatched.
func (r *Resource) Validate() error {
	if r.Path == "" {
		return fmt.Errorf("%s: %w", r.Name, ErrNoPath)
	}
	for _, op := range r.Operations {
		switch op.Method {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		default:
			return ErrInvalidMethod{Resource: r.Name, Operation: op.Name, Method: op.Method}
		}
		if op.Method == http.MethodGet && op.Shape == Keyed && op.Field == "" {
			return fmt.Errorf("%s.%s: keyed response without a field name", r.Name, op.Name)
		}
	}
	return nil
}

// Registry holds resources by name.  It can be safely accessed from
// multiple goroutines.
type Registry struct {
	lock      sync.RWMutex
	resources map[string]*Resource
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{resources: make(map[string]*Resource)}
}

// Add registers a resource under its name.  Adding a second resource
// with the same name replaces the first.
func (reg *Registry) Add(r *Resource) error {
	if err := r.Validate(); err != nil {
		return err
	}
	reg.lock.Lock()
	defer reg.lock.Unlock()
	reg.resources[r.Name] = r
	return nil
}

// Resource finds a resource by name.
func (reg *Registry) Resource(name string) (*Resource, bool) {
	reg.lock.RLock()
	defer reg.lock.RUnlock()
	r, present := reg.resources[name]
	return r, present
}

// Names returns the names of all registered resources, sorted.
func (reg *Registry) Names() []string {
	reg.lock.RLock()
	defer reg.lock.RUnlock()
	names := make([]string, 0, len(reg.resources))
	for name := range reg.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
