// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package schema describes REST resources declaratively.  An entity
// type lists its fields, binding each Go attribute to its wire name and
// direction; a Resource lists the operations a REST endpoint supports
// on that entity.  The restclient package consumes both.
//
// A typical entity looks like
//
//     type Role struct {
//         schema.Object
//         Name        string
//         Permissions []string
//     }
//
//     func (r *Role) Fields() schema.Fields {
//         return schema.Fields{
//             schema.String("name", &r.Name),
//             schema.Strings("permissions", &r.Permissions).Missing([]interface{}{}),
//         }
//     }
//
// Fields() is called on every load and dump, and must return a fresh
// table bound to the receiver.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Entity is any object that can describe its own fields.
type Entity interface {
	Fields() Fields
}

// Ptr is the constraint satisfied by a pointer to an entity type T.
// Generic code takes T and recovers the pointer type through this.
type Ptr[T any] interface {
	*T
	Entity
}

// Tracked is an entity that embeds Object, and so can record which of
// its attributes have changed.
type Tracked interface {
	Entity
	object() *Object
}

// Object is embedded in domain objects to track dirty attributes.  It
// also holds attributes that are not declared as fields.
type Object struct {
	// Extra holds attributes set through Update that have no
	// corresponding field.  These are never sent to the server, but
	// can satisfy path placeholders.
	Extra map[string]interface{}

	dirty map[string]struct{}
}

func (o *Object) object() *Object {
	return o
}

// IsDirty returns true if any attribute has changed since the object
// was constructed, loaded, or last cleaned.
func (o *Object) IsDirty() bool {
	return len(o.dirty) > 0
}

// IsFieldDirty returns true if the named attribute has changed.
func (o *Object) IsFieldDirty(name string) bool {
	_, dirty := o.dirty[name]
	return dirty
}

// DirtyFields returns the names of all changed attributes, sorted.
func (o *Object) DirtyFields() []string {
	names := make([]string, 0, len(o.dirty))
	for name := range o.dirty {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clean forgets all recorded changes.
func (o *Object) Clean() {
	o.dirty = nil
}

func (o *Object) markDirty(name string) {
	if o.dirty == nil {
		o.dirty = make(map[string]struct{})
	}
	o.dirty[name] = struct{}{}
}

// ValidationError is returned from Load and Update when one or more
// values cannot be stored.
type ValidationError struct {
	// Errors maps attribute name to a description of the problem.
	// Nested attributes are named with dots.
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Errors))
	for name := range e.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Errors[name]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(name string, err error) {
	if e.Errors == nil {
		e.Errors = make(map[string]string)
	}
	if nested, isNested := err.(*ValidationError); isNested {
		for k, v := range nested.Errors {
			e.Errors[name+"."+k] = v
		}
		return
	}
	e.Errors[name] = err.Error()
}

func (e *ValidationError) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

var validate = validator.New()

var errNull = errors.New("field may not be null")

// New constructs a new entity with every field's Default applied.
func New[T any, P Ptr[T]]() P {
	p := P(new(T))
	for _, f := range p.Fields() {
		if f.hasDefault {
			if err := f.value.set(f.def); err != nil {
				panic(fmt.Sprintf("schema: bad default for %q: %v", f.Name, err))
			}
		}
	}
	return p
}

// Load constructs a new entity from its wire representation.  Wire
// keys with no corresponding field are ignored.
func Load[T any, P Ptr[T]](raw map[string]interface{}) (P, error) {
	p := New[T, P]()
	if err := load(p, raw); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadInto populates an existing entity from its wire representation.
// No dirty fields are recorded.
func LoadInto(e Entity, raw map[string]interface{}) error {
	return load(e, raw)
}

func load(e Entity, raw map[string]interface{}) error {
	verr := &ValidationError{}
	for _, f := range e.Fields() {
		if f.mode == DumpOnly {
			continue
		}
		v, present := raw[f.loadKey]
		if !present {
			if !f.hasMissing {
				continue
			}
			v = f.missing
		}
		if v == nil {
			if present && !f.nullable {
				verr.add(f.Name, errNull)
				continue
			}
			f.value.reset()
			continue
		}
		if err := f.value.set(v); err != nil {
			verr.add(f.Name, err)
			continue
		}
		if present && f.rule != "" {
			if err := validate.Var(f.value.get(), f.rule); err != nil {
				verr.add(f.Name, fmt.Errorf("value %v fails %q", f.value.get(), f.rule))
			}
		}
	}
	return verr.orNil()
}

// Dump produces the wire representation of an entity.
func Dump(e Entity) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	for _, f := range e.Fields() {
		if f.mode == LoadOnly {
			continue
		}
		if f.omitEmpty && f.value.zero() {
			continue
		}
		if f.nullable && f.value.isNil() {
			out[f.dumpKey] = nil
			continue
		}
		v, err := f.value.dump()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		out[f.dumpKey] = v
	}
	return out, nil
}

// Update sets attributes by name.  A declared attribute is marked
// dirty only if its value changes; an undeclared attribute is stored
// in Extra and marked dirty if it is new or changed.  Setting nil
// resets a declared attribute to its zero value.
func Update(e Tracked, attrs map[string]interface{}) error {
	o := e.object()
	fields := e.Fields()
	verr := &ValidationError{}
	for name, v := range attrs {
		if f := fields.Find(name); f != nil {
			old := f.value.get()
			if v == nil {
				f.value.reset()
			} else if err := f.value.set(v); err != nil {
				verr.add(name, err)
				continue
			}
			if !reflect.DeepEqual(old, f.value.get()) {
				o.markDirty(name)
			}
			continue
		}
		old, present := o.Extra[name]
		if o.Extra == nil {
			o.Extra = make(map[string]interface{})
		}
		o.Extra[name] = v
		if !present || !reflect.DeepEqual(old, v) {
			o.markDirty(name)
		}
	}
	return verr.orNil()
}

// Attr looks up an attribute by name, first among the declared
// fields and then in Extra.  Zero values are reported as absent.
func Attr(e Entity, name string) (interface{}, bool) {
	if f := e.Fields().Find(name); f != nil {
		if f.value.zero() {
			return nil, false
		}
		return f.value.get(), true
	}
	if t, isTracked := e.(Tracked); isTracked {
		v, present := t.object().Extra[name]
		if present && v != nil {
			return v, true
		}
	}
	return nil, false
}

// DumpKey returns the wire name the named attribute is dumped under.
// Undeclared attributes are returned unchanged.
func DumpKey(e Entity, name string) string {
	if f := e.Fields().Find(name); f != nil {
		return f.dumpKey
	}
	return name
}
