// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package schema_test

import (
	"testing"
	"time"

	"github.com/diffeo/go-gl2api/schema"
	"github.com/stretchr/testify/assert"
)

type owner struct {
	Name   string
	Emails []string
}

func (o *owner) Fields() schema.Fields {
	return schema.Fields{
		schema.String("name", &o.Name),
		schema.Strings("emails", &o.Emails).Missing([]interface{}{}),
	}
}

type option struct {
	Label      string
	OptionType string
}

func (o *option) Fields() schema.Fields {
	return schema.Fields{
		schema.String("label", &o.Label),
		schema.String("option_type", &o.OptionType).Wire("type"),
	}
}

type gadget struct {
	schema.Object
	ID      string
	Title   string
	Kind    string
	Count   int
	Enabled bool
	Created time.Time
	Tags    []string
	Config  map[string]interface{}
	Secret  string
	Note    string
	Owner   owner
	Options map[string]option
}

func (g *gadget) Fields() schema.Fields {
	return schema.Fields{
		schema.String("id", &g.ID).LoadOnly(),
		schema.String("title", &g.Title),
		schema.String("kind", &g.Kind).LoadFrom("type").Validate("oneof=small large"),
		schema.Int("count", &g.Count),
		schema.Bool("enabled", &g.Enabled).Default(true),
		schema.Time("created_at", &g.Created),
		schema.Strings("tags", &g.Tags).Missing([]interface{}{}),
		schema.Dict("config", &g.Config).Nullable(),
		schema.String("secret", &g.Secret).DumpOnly(),
		schema.String("note", &g.Note).Nullable(),
		schema.Nested("owner", &g.Owner),
		schema.NestedMap("options", &g.Options),
	}
}

func gadgetWire() map[string]interface{} {
	return map[string]interface{}{
		"id":         "g1",
		"title":      "Widget",
		"type":       "small",
		"count":      int64(3),
		"enabled":    false,
		"created_at": "2018-03-30T19:32:44.208Z",
		"tags":       []interface{}{"a", "b"},
		"config":     map[string]interface{}{"port": int64(12201)},
		"secret":     "hunter2",
		"note":       "hello",
		"owner": map[string]interface{}{
			"name":   "ann",
			"emails": []interface{}{"ann@example.com"},
		},
		"options": map[string]interface{}{
			"bind": map[string]interface{}{"label": "Bind address", "type": "text"},
		},
		"unknown": "ignored",
	}
}

func TestLoad(t *testing.T) {
	g, err := schema.Load[gadget](gadgetWire())
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "g1", g.ID)
	assert.Equal(t, "Widget", g.Title)
	assert.Equal(t, "small", g.Kind)
	assert.Equal(t, 3, g.Count)
	assert.False(t, g.Enabled)
	assert.Equal(t, time.Date(2018, 3, 30, 19, 32, 44, 208000000, time.UTC), g.Created.UTC())
	assert.Equal(t, []string{"a", "b"}, g.Tags)
	assert.Equal(t, map[string]interface{}{"port": int64(12201)}, g.Config)
	assert.Equal(t, "", g.Secret, "write-only field should not load")
	assert.Equal(t, owner{Name: "ann", Emails: []string{"ann@example.com"}}, g.Owner)
	assert.Equal(t, map[string]option{
		"bind": {Label: "Bind address", OptionType: "text"},
	}, g.Options)
	assert.False(t, g.IsDirty())
}

func TestDump(t *testing.T) {
	g, err := schema.Load[gadget](gadgetWire())
	if !assert.NoError(t, err) {
		return
	}
	g.Secret = "hunter2"
	data, err := schema.Dump(g)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, map[string]interface{}{
		"title":      "Widget",
		"kind":       "small",
		"count":      3,
		"enabled":    false,
		"created_at": "2018-03-30T19:32:44.208Z",
		"tags":       []string{"a", "b"},
		"config":     map[string]interface{}{"port": int64(12201)},
		"secret":     "hunter2",
		"note":       "hello",
		"owner": map[string]interface{}{
			"name":   "ann",
			"emails": []string{"ann@example.com"},
		},
		"options": map[string]interface{}{
			"bind": map[string]interface{}{"label": "Bind address", "type": "text"},
		},
	}, data)
}

// TestRoundTrip checks that every read-write field survives a dump
// and reload.
func TestRoundTrip(t *testing.T) {
	first, err := schema.Load[gadget](gadgetWire())
	if !assert.NoError(t, err) {
		return
	}
	data, err := schema.Dump(first)
	if !assert.NoError(t, err) {
		return
	}
	second, err := schema.Load[gadget](data)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Count, second.Count)
	assert.Equal(t, first.Enabled, second.Enabled)
	assert.True(t, first.Created.Equal(second.Created))
	assert.Equal(t, first.Tags, second.Tags)
	assert.Equal(t, first.Config, second.Config)
	assert.Equal(t, first.Note, second.Note)
	assert.Equal(t, first.Owner, second.Owner)
	assert.Equal(t, first.Options, second.Options)

	// kind is read from "type" but written as "kind", and id is
	// read-only, so neither comes back
	assert.Equal(t, "", second.Kind)
	assert.Equal(t, "", second.ID)
}

func TestTimeMilliseconds(t *testing.T) {
	created := time.Date(2017, 3, 14, 15, 9, 26, 535897932, time.UTC)
	g := &gadget{Title: "t", Created: created}
	data, err := schema.Dump(g)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "2017-03-14T15:09:26.535Z", data["created_at"])
	back, err := schema.Load[gadget](data)
	if assert.NoError(t, err) {
		assert.True(t, back.Created.Equal(created.Truncate(time.Millisecond)))
		assert.False(t, back.Created.Equal(created))
	}
}

func TestMissingAndDefault(t *testing.T) {
	fresh := schema.New[gadget]()
	assert.True(t, fresh.Enabled)
	assert.Nil(t, fresh.Tags)

	a, err := schema.Load[gadget](map[string]interface{}{"title": "a"})
	if !assert.NoError(t, err) {
		return
	}
	b, err := schema.Load[gadget](map[string]interface{}{"title": "b"})
	if !assert.NoError(t, err) {
		return
	}
	assert.True(t, a.Enabled)
	assert.NotNil(t, a.Tags)
	assert.Empty(t, a.Tags)
	a.Tags = append(a.Tags, "only-a")
	assert.Empty(t, b.Tags)
}

func TestNullable(t *testing.T) {
	g, err := schema.Load[gadget](map[string]interface{}{
		"config": nil,
		"note":   nil,
	})
	if !assert.NoError(t, err) {
		return
	}
	assert.Nil(t, g.Config)
	data, err := schema.Dump(g)
	if !assert.NoError(t, err) {
		return
	}
	assert.Contains(t, data, "config")
	assert.Nil(t, data["config"])
	assert.Contains(t, data, "note")
	assert.Nil(t, data["note"])
	assert.NotContains(t, data, "created_at")
}

func TestValidation(t *testing.T) {
	tests := []struct {
		Name  string
		Wire  map[string]interface{}
		Field string
	}{
		{"null", map[string]interface{}{"title": nil}, "title"},
		{"oneof", map[string]interface{}{"type": "medium"}, "kind"},
		{"fraction", map[string]interface{}{"count": 1.5}, "count"},
		{"type", map[string]interface{}{"enabled": "yes"}, "enabled"},
		{"time", map[string]interface{}{"created_at": "yesterday"}, "created_at"},
		{"nested", map[string]interface{}{
			"owner": map[string]interface{}{"name": 7},
		}, "owner.name"},
	}
	for _, test := range tests {
		_, err := schema.Load[gadget](test.Wire)
		if assert.Error(t, err, test.Name) && assert.IsType(t, &schema.ValidationError{}, err, test.Name) {
			verr := err.(*schema.ValidationError)
			assert.Contains(t, verr.Errors, test.Field, test.Name)
			assert.Len(t, verr.Errors, 1, test.Name)
		}
	}
}

func TestNumericTypes(t *testing.T) {
	for _, n := range []interface{}{3, int64(3), uint64(3), float64(3)} {
		g, err := schema.Load[gadget](map[string]interface{}{"count": n})
		if assert.NoError(t, err, "%T", n) {
			assert.Equal(t, 3, g.Count, "%T", n)
		}
	}
}

func TestUpdateSameValues(t *testing.T) {
	g, err := schema.Load[gadget](gadgetWire())
	if !assert.NoError(t, err) {
		return
	}
	err = schema.Update(g, map[string]interface{}{
		"title":   "Widget",
		"count":   3,
		"enabled": false,
		"tags":    []interface{}{"a", "b"},
	})
	assert.NoError(t, err)
	assert.False(t, g.IsDirty())
	assert.Empty(t, g.DirtyFields())
}

func TestUpdateChanges(t *testing.T) {
	g, err := schema.Load[gadget](gadgetWire())
	if !assert.NoError(t, err) {
		return
	}
	err = schema.Update(g, map[string]interface{}{
		"title": "Gizmo",
		"count": 3,
		"color": "red",
	})
	assert.NoError(t, err)
	assert.True(t, g.IsDirty())
	assert.True(t, g.IsFieldDirty("title"))
	assert.True(t, g.IsFieldDirty("color"), "new attributes are always dirty")
	assert.False(t, g.IsFieldDirty("count"))
	assert.Equal(t, "Gizmo", g.Title)
	assert.Equal(t, "red", g.Extra["color"])
	assert.Equal(t, []string{"color", "title"}, g.DirtyFields())

	g.Clean()
	assert.False(t, g.IsDirty())
	err = schema.Update(g, map[string]interface{}{"color": "red"})
	assert.NoError(t, err)
	assert.False(t, g.IsFieldDirty("color"), "existing extra with same value")

	err = schema.Update(g, map[string]interface{}{"count": "many"})
	assert.Error(t, err)
	assert.False(t, g.IsFieldDirty("count"))
	assert.Equal(t, 3, g.Count)
}

func TestAttr(t *testing.T) {
	g, err := schema.Load[gadget](gadgetWire())
	if !assert.NoError(t, err) {
		return
	}
	v, ok := schema.Attr(g, "id")
	assert.True(t, ok)
	assert.Equal(t, "g1", v)

	_, ok = schema.Attr(g, "secret")
	assert.False(t, ok, "zero values are absent")

	_, ok = schema.Attr(g, "stream_id")
	assert.False(t, ok)
	assert.NoError(t, schema.Update(g, map[string]interface{}{"stream_id": "s1"}))
	v, ok = schema.Attr(g, "stream_id")
	assert.True(t, ok)
	assert.Equal(t, "s1", v)

	assert.Equal(t, "kind", schema.DumpKey(g, "kind"))
	assert.Equal(t, "other", schema.DumpKey(g, "other"))
	assert.Equal(t, "type", schema.DumpKey(&option{}, "option_type"))
}
