// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package schema

import (
	"fmt"
	"math"
	"reflect"
	"time"
)

// Mode controls which directions a field travels over the wire.
type Mode int

const (
	// ReadWrite fields are both loaded from and dumped to the wire.
	ReadWrite Mode = iota

	// LoadOnly fields are read-only: the server reports them but
	// they are never sent back.
	LoadOnly

	// DumpOnly fields are write-only: they are sent to the server
	// but never read from its responses.
	DumpOnly
)

// TimeFormat is the layout used to dump time fields.  It keeps
// milliseconds, as the server does, so finer precision is lost on
// dump.  Loading accepts any RFC 3339 timestamp.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// binding connects a Field to the storage it describes.
type binding interface {
	// get returns the current Go value.
	get() interface{}

	// set stores a value, converting it from its wire form if
	// needed.
	set(v interface{}) error

	// dump returns the wire form of the current value.
	dump() (interface{}, error)

	// zero reports whether the current value is the zero value.
	zero() bool

	// isNil reports whether the current value should dump as null.
	isNil() bool

	// reset stores the zero value.
	reset()
}

// Field binds one attribute of an entity to its wire representation.
// Construct these with String, Bool, Int, and friends, and adjust
// them with the chaining setters.
type Field struct {
	// Name is the attribute name, used for path placeholders,
	// Update, and dirty tracking.
	Name string

	loadKey    string
	dumpKey    string
	mode       Mode
	nullable   bool
	omitEmpty  bool
	missing    interface{}
	hasMissing bool
	def        interface{}
	hasDefault bool
	rule       string
	value      binding
}

// Fields is the ordered field table of one entity.
type Fields []*Field

// Find returns the field with a given attribute name, or nil.
func (fs Fields) Find(name string) *Field {
	for _, f := range fs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func newField(name string, value binding) *Field {
	return &Field{Name: name, loadKey: name, dumpKey: name, value: value}
}

// Wire sets both the load and dump wire names of a field.
func (f *Field) Wire(key string) *Field {
	f.loadKey = key
	f.dumpKey = key
	return f
}

// LoadFrom sets the wire name a field is read from.
func (f *Field) LoadFrom(key string) *Field {
	f.loadKey = key
	return f
}

// DumpTo sets the wire name a field is written to.
func (f *Field) DumpTo(key string) *Field {
	f.dumpKey = key
	return f
}

// LoadOnly marks a field read-only.
func (f *Field) LoadOnly() *Field {
	f.mode = LoadOnly
	return f
}

// DumpOnly marks a field write-only.
func (f *Field) DumpOnly() *Field {
	f.mode = DumpOnly
	return f
}

// Nullable allows null on load, and dumps a zero value as null.
func (f *Field) Nullable() *Field {
	f.nullable = true
	return f
}

// OmitEmpty leaves zero values out of dumps entirely.
func (f *Field) OmitEmpty() *Field {
	f.omitEmpty = true
	return f
}

// Missing provides a value to load when the wire key is absent.  The
// value is given in wire form and converted on every load, so mutable
// values are never shared between objects.
func (f *Field) Missing(v interface{}) *Field {
	f.missing = v
	f.hasMissing = true
	return f
}

// Default provides a value that New stores in freshly constructed
// objects.
func (f *Field) Default(v interface{}) *Field {
	f.def = v
	f.hasDefault = true
	return f
}

// Validate attaches a go-playground/validator rule, such as
// "oneof=AND OR", checked when the field is loaded.
func (f *Field) Validate(rule string) *Field {
	f.rule = rule
	return f
}

// Mode returns whether the field is read-write, load-only, or
// dump-only.
func (f *Field) Mode() Mode {
	return f.mode
}

// LoadKey returns the wire name this field is read from.
func (f *Field) LoadKey() string {
	return f.loadKey
}

// DumpKey returns the wire name this field is written to.
func (f *Field) DumpKey() string {
	return f.dumpKey
}

// Value returns the current Go value of the bound attribute.
func (f *Field) Value() interface{} {
	return f.value.get()
}

// errType describes a wire value of the wrong type.
func errType(want string, v interface{}) error {
	return fmt.Errorf("not a valid %s: %#v", want, v)
}

type stringBinding struct{ p *string }

// String binds a string attribute.
func String(name string, p *string) *Field {
	return newField(name, stringBinding{p})
}

func (b stringBinding) get() interface{}           { return *b.p }
func (b stringBinding) dump() (interface{}, error) { return *b.p, nil }
func (b stringBinding) zero() bool                 { return *b.p == "" }
func (b stringBinding) reset()                     { *b.p = "" }
func (b stringBinding) isNil() bool                { return *b.p == "" }

func (b stringBinding) set(v interface{}) error {
	s, ok := v.(string)
	if !ok {
		return errType("string", v)
	}
	*b.p = s
	return nil
}

type boolBinding struct{ p *bool }

// Bool binds a boolean attribute.
func Bool(name string, p *bool) *Field {
	return newField(name, boolBinding{p})
}

func (b boolBinding) get() interface{}           { return *b.p }
func (b boolBinding) dump() (interface{}, error) { return *b.p, nil }
func (b boolBinding) zero() bool                 { return !*b.p }
func (b boolBinding) reset()                     { *b.p = false }
func (b boolBinding) isNil() bool                { return false }

func (b boolBinding) set(v interface{}) error {
	x, ok := v.(bool)
	if !ok {
		return errType("boolean", v)
	}
	*b.p = x
	return nil
}

type intBinding struct{ p *int }

// Int binds an integer attribute.  JSON numbers with no fractional
// part are accepted in any numeric Go type.
func Int(name string, p *int) *Field {
	return newField(name, intBinding{p})
}

func (b intBinding) get() interface{}           { return *b.p }
func (b intBinding) dump() (interface{}, error) { return *b.p, nil }
func (b intBinding) zero() bool                 { return *b.p == 0 }
func (b intBinding) reset()                     { *b.p = 0 }
func (b intBinding) isNil() bool                { return false }

func (b intBinding) set(v interface{}) error {
	switch x := v.(type) {
	case int:
		*b.p = x
	case int64:
		*b.p = int(x)
	case int32:
		*b.p = int(x)
	case uint64:
		*b.p = int(x)
	case uint32:
		*b.p = int(x)
	case float64:
		if x != math.Trunc(x) {
			return errType("integer", v)
		}
		*b.p = int(x)
	default:
		return errType("integer", v)
	}
	return nil
}

type timeBinding struct{ p *time.Time }

// Time binds a timestamp attribute.  It loads from RFC 3339 strings
// and dumps in UTC with TimeFormat, truncating to the millisecond;
// the zero time is never dumped.
func Time(name string, p *time.Time) *Field {
	return newField(name, timeBinding{p}).OmitEmpty()
}

func (b timeBinding) get() interface{} { return *b.p }
func (b timeBinding) zero() bool       { return b.p.IsZero() }
func (b timeBinding) reset()           { *b.p = time.Time{} }
func (b timeBinding) isNil() bool      { return b.p.IsZero() }

func (b timeBinding) dump() (interface{}, error) {
	return b.p.UTC().Format(TimeFormat), nil
}

func (b timeBinding) set(v interface{}) error {
	switch x := v.(type) {
	case time.Time:
		*b.p = x
	case string:
		t, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return errType("datetime", v)
		}
		*b.p = t
	default:
		return errType("datetime", v)
	}
	return nil
}

type dictBinding struct{ p *map[string]interface{} }

// Dict binds a free-form JSON object attribute.
func Dict(name string, p *map[string]interface{}) *Field {
	return newField(name, dictBinding{p})
}

func (b dictBinding) get() interface{}           { return *b.p }
func (b dictBinding) dump() (interface{}, error) { return *b.p, nil }
func (b dictBinding) zero() bool                 { return len(*b.p) == 0 }
func (b dictBinding) reset()                     { *b.p = nil }
func (b dictBinding) isNil() bool                { return *b.p == nil }

func (b dictBinding) set(v interface{}) error {
	m, ok := toStringMap(v)
	if !ok {
		return errType("mapping", v)
	}
	*b.p = m
	return nil
}

type stringsBinding struct{ p *[]string }

// Strings binds a list-of-strings attribute.
func Strings(name string, p *[]string) *Field {
	return newField(name, stringsBinding{p})
}

func (b stringsBinding) get() interface{}           { return *b.p }
func (b stringsBinding) dump() (interface{}, error) { return *b.p, nil }
func (b stringsBinding) zero() bool                 { return len(*b.p) == 0 }
func (b stringsBinding) reset()                     { *b.p = nil }
func (b stringsBinding) isNil() bool                { return *b.p == nil }

func (b stringsBinding) set(v interface{}) error {
	switch x := v.(type) {
	case []string:
		*b.p = append([]string{}, x...)
	case []interface{}:
		out := make([]string, len(x))
		for i, item := range x {
			s, ok := item.(string)
			if !ok {
				return errType("string", item)
			}
			out[i] = s
		}
		*b.p = out
	default:
		return errType("list", v)
	}
	return nil
}

type dictsBinding struct{ p *[]map[string]interface{} }

// Dicts binds a list of free-form JSON objects.
func Dicts(name string, p *[]map[string]interface{}) *Field {
	return newField(name, dictsBinding{p})
}

func (b dictsBinding) get() interface{}           { return *b.p }
func (b dictsBinding) dump() (interface{}, error) { return *b.p, nil }
func (b dictsBinding) zero() bool                 { return len(*b.p) == 0 }
func (b dictsBinding) reset()                     { *b.p = nil }
func (b dictsBinding) isNil() bool                { return *b.p == nil }

func (b dictsBinding) set(v interface{}) error {
	switch x := v.(type) {
	case []map[string]interface{}:
		*b.p = append([]map[string]interface{}{}, x...)
	case []interface{}:
		out := make([]map[string]interface{}, len(x))
		for i, item := range x {
			m, ok := toStringMap(item)
			if !ok {
				return errType("mapping", item)
			}
			out[i] = m
		}
		*b.p = out
	default:
		return errType("list", v)
	}
	return nil
}

type rawBinding struct{ p *interface{} }

// Raw binds an attribute of any JSON type, stored as decoded.
func Raw(name string, p *interface{}) *Field {
	return newField(name, rawBinding{p})
}

func (b rawBinding) get() interface{}           { return *b.p }
func (b rawBinding) dump() (interface{}, error) { return *b.p, nil }
func (b rawBinding) zero() bool                 { return *b.p == nil }
func (b rawBinding) reset()                     { *b.p = nil }
func (b rawBinding) isNil() bool                { return *b.p == nil }

func (b rawBinding) set(v interface{}) error {
	*b.p = v
	return nil
}

// nestedBinding composes a whole schema as the value of one field.
type nestedBinding[T any, P Ptr[T]] struct{ p *T }

// Nested binds an attribute whose value is itself an entity with its
// own field table.
func Nested[T any, P Ptr[T]](name string, p *T) *Field {
	return newField(name, nestedBinding[T, P]{p})
}

func (b nestedBinding[T, P]) get() interface{} { return *b.p }
func (b nestedBinding[T, P]) isNil() bool      { return b.zero() }

func (b nestedBinding[T, P]) reset() {
	var zero T
	*b.p = zero
}

func (b nestedBinding[T, P]) zero() bool {
	var zero T
	return reflect.DeepEqual(*b.p, zero)
}

func (b nestedBinding[T, P]) dump() (interface{}, error) {
	return Dump(P(b.p))
}

func (b nestedBinding[T, P]) set(v interface{}) error {
	if x, ok := v.(T); ok {
		*b.p = x
		return nil
	}
	m, ok := toStringMap(v)
	if !ok {
		return errType("mapping", v)
	}
	var t T
	if err := load(P(&t), m); err != nil {
		return err
	}
	*b.p = t
	return nil
}

type nestedListBinding[T any, P Ptr[T]] struct{ p *[]T }

// NestedList binds a list of nested entities.
func NestedList[T any, P Ptr[T]](name string, p *[]T) *Field {
	return newField(name, nestedListBinding[T, P]{p})
}

func (b nestedListBinding[T, P]) get() interface{} { return *b.p }
func (b nestedListBinding[T, P]) zero() bool       { return len(*b.p) == 0 }
func (b nestedListBinding[T, P]) reset()           { *b.p = nil }
func (b nestedListBinding[T, P]) isNil() bool      { return *b.p == nil }

func (b nestedListBinding[T, P]) dump() (interface{}, error) {
	out := make([]interface{}, len(*b.p))
	for i := range *b.p {
		m, err := Dump(P(&(*b.p)[i]))
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func (b nestedListBinding[T, P]) set(v interface{}) error {
	if x, ok := v.([]T); ok {
		*b.p = append([]T{}, x...)
		return nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return errType("list", v)
	}
	out := make([]T, len(items))
	for i, item := range items {
		m, ok := toStringMap(item)
		if !ok {
			return errType("mapping", item)
		}
		if err := load(P(&out[i]), m); err != nil {
			return err
		}
	}
	*b.p = out
	return nil
}

type nestedMapBinding[T any, P Ptr[T]] struct{ p *map[string]T }

// NestedMap binds a JSON object whose values are nested entities.
func NestedMap[T any, P Ptr[T]](name string, p *map[string]T) *Field {
	return newField(name, nestedMapBinding[T, P]{p})
}

func (b nestedMapBinding[T, P]) get() interface{} { return *b.p }
func (b nestedMapBinding[T, P]) zero() bool       { return len(*b.p) == 0 }
func (b nestedMapBinding[T, P]) reset()           { *b.p = nil }
func (b nestedMapBinding[T, P]) isNil() bool      { return *b.p == nil }

func (b nestedMapBinding[T, P]) dump() (interface{}, error) {
	out := make(map[string]interface{}, len(*b.p))
	for k, item := range *b.p {
		item := item
		m, err := Dump(P(&item))
		if err != nil {
			return nil, err
		}
		out[k] = m
	}
	return out, nil
}

func (b nestedMapBinding[T, P]) set(v interface{}) error {
	if x, ok := v.(map[string]T); ok {
		out := make(map[string]T, len(x))
		for k, item := range x {
			out[k] = item
		}
		*b.p = out
		return nil
	}
	items, ok := toStringMap(v)
	if !ok {
		return errType("mapping", v)
	}
	out := make(map[string]T, len(items))
	for k, item := range items {
		m, ok := toStringMap(item)
		if !ok {
			return errType("mapping", item)
		}
		var t T
		if err := load(P(&t), m); err != nil {
			return err
		}
		out[k] = t
	}
	*b.p = out
	return nil
}

// toStringMap accepts the map shapes a JSON or YAML decoder may
// produce and returns a string-keyed copy.
func toStringMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, item := range m {
			out[k] = item
		}
		return out, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, item := range m {
			out[fmt.Sprint(k)] = item
		}
		return out, true
	}
	return nil, false
}
