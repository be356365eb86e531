// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package graylog_test

import (
	"testing"
	"time"

	"github.com/diffeo/go-gl2api/graylog"
	"github.com/diffeo/go-gl2api/schema"
	"github.com/stretchr/testify/assert"
)

func TestInputWire(t *testing.T) {
	in, err := schema.Load[graylog.Input](map[string]interface{}{
		"id":              "5abe8a9c2ab79c0001ae1e07",
		"title":           "gelf",
		"global":          true,
		"name":            "GELF UDP",
		"content_pack":    nil,
		"created_at":      "2018-03-30T19:32:44.208Z",
		"type":            "org.graylog2.inputs.gelf.udp.GELFUDPInput",
		"creator_user_id": "admin",
		"node":            nil,
		"attributes":      map[string]interface{}{"port": int64(12201)},
		"configuration":   map[string]interface{}{"port": int64(12201)},
	})
	if !assert.NoError(t, err) {
		return
	}
	assert.True(t, in.Global)
	assert.Equal(t, "org.graylog2.inputs.gelf.udp.GELFUDPInput", in.InputType)
	assert.Equal(t, "", in.Node)

	data, err := schema.Dump(in)
	if assert.NoError(t, err) {
		assert.Equal(t, true, data["global"])
		assert.Equal(t, in.InputType, data["type"])
		assert.Nil(t, data["node"])
		assert.NotContains(t, data, "global_flag")
	}

	data, err = schema.Dump(&graylog.Input{Title: "new"})
	if assert.NoError(t, err) {
		assert.NotContains(t, data, "id", "a new input has no id yet")
		assert.NotContains(t, data, "creator_user_id")
		assert.NotContains(t, data, "created_at")
	}
}

func TestInputTypeWire(t *testing.T) {
	it, err := schema.Load[graylog.InputType](map[string]interface{}{
		"type": "org.graylog2.inputs.gelf.udp.GELFUDPInput",
		"name": "GELF UDP",
		"requested_configuration": map[string]interface{}{
			"port": map[string]interface{}{
				"type":            "number",
				"human_name":      "Port",
				"additional_info": map[string]interface{}{},
				"default_value":   int64(12201),
				"attributes":      []interface{}{},
				"is_optional":     false,
			},
		},
		"link_to_docs": "",
		"is_exclusive": false,
	})
	if !assert.NoError(t, err) {
		return
	}
	port := it.RequestedConfiguration["port"]
	assert.Equal(t, "number", port.OptionType)
	assert.Equal(t, int64(12201), port.DefaultValue)
	assert.Equal(t, "", port.Description)
}

func extractorWire() map[string]interface{} {
	return map[string]interface{}{
		"id":    "e1",
		"title": "host",
		"type":  "regex",
		"converters": []interface{}{
			map[string]interface{}{"type": "lowercase", "config": map[string]interface{}{}},
		},
		"order":            int64(0),
		"cursor_strategy":  "copy",
		"source_field":     "message",
		"target_field":     "host",
		"extractor_config": map[string]interface{}{"regex_value": "^(\\S+)"},
		"creator_user_id":  "admin",
		"condition_type":   "none",
		"condition_value":  "",
	}
}

func TestExtractorWire(t *testing.T) {
	e, err := schema.Load[graylog.Extractor](extractorWire())
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "regex", e.ExtractorType)
	assert.Equal(t, "copy", e.CutOrCopy)
	assert.Len(t, e.ConverterStatus, 1)
	assert.Equal(t, map[string]interface{}{}, e.ConverterDef)

	e.ConverterDef = map[string]interface{}{"lowercase": map[string]interface{}{}}
	data, err := schema.Dump(e)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "regex", data["extractor_type"])
	assert.Equal(t, "copy", data["cut_or_copy"])
	assert.Equal(t, e.ConverterDef, data["converters"])
	assert.NotContains(t, data, "id")
	assert.NotContains(t, data, "type")
	assert.NotContains(t, data, "creator_user_id")
}

func TestExtractorValidation(t *testing.T) {
	raw := extractorWire()
	raw["type"] = "telepathy"
	raw["cursor_strategy"] = "paste"
	_, err := schema.Load[graylog.Extractor](raw)
	if assert.IsType(t, &schema.ValidationError{}, err) {
		verr := err.(*schema.ValidationError)
		assert.Contains(t, verr.Errors, "extractor_type")
		assert.Contains(t, verr.Errors, "cut_or_copy")
	}
}

func TestStreamDefaults(t *testing.T) {
	s, err := schema.Load[graylog.Stream](map[string]interface{}{
		"id":    "s1",
		"title": "errors",
	})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "AND", s.MatchingType)
	assert.True(t, s.IsDefault)
	assert.False(t, s.RemoveMatchesFromDefaultStream)
	assert.Equal(t, []string{}, s.Outputs)
	assert.Equal(t, []map[string]interface{}{}, s.Rules)

	_, err = schema.Load[graylog.Stream](map[string]interface{}{"matching_type": "XOR"})
	assert.Error(t, err)
}

func TestStreamRuleWire(t *testing.T) {
	r, err := schema.Load[graylog.StreamRule](map[string]interface{}{
		"id":        "r1",
		"stream_id": "s1",
		"field":     "source",
		"type":      int64(1),
		"value":     "web",
	})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 1, r.RuleType)
	assert.Equal(t, "", r.Description)
	assert.False(t, r.Inverted)

	data, err := schema.Dump(r)
	if assert.NoError(t, err) {
		assert.Equal(t, 1, data["type"])
		assert.NotContains(t, data, "rule_type")
	}
}

func TestIndexSetDefaults(t *testing.T) {
	set := schema.New[graylog.IndexSet]()
	assert.Equal(t, "standard", set.IndexAnalyzer)
	assert.Equal(t, 1, set.IndexOptimizationMaxNumSegments)
	assert.True(t, set.Writable)
	assert.False(t, set.Default)

	data, err := schema.Dump(set)
	if assert.NoError(t, err) {
		assert.NotContains(t, data, "id")
		assert.NotContains(t, data, "creation_date")
		assert.Contains(t, data, "description")
		assert.Nil(t, data["description"])
	}
}

func TestSearchResultsWire(t *testing.T) {
	r, err := schema.Load[graylog.SearchResults](map[string]interface{}{
		"query":       "*",
		"built_query": "{}",
		"messages": []interface{}{
			map[string]interface{}{
				"index":            "graylog_0",
				"message":          map[string]interface{}{"source": "web", "_id": "m1"},
				"highlight_ranges": map[string]interface{}{},
				"decoration_stats": nil,
			},
		},
		"fields":           []interface{}{"_id", "source"},
		"time":             int64(3),
		"total_results":    int64(1),
		"from":             "2018-03-30T19:00:00.000Z",
		"to":               "2018-03-30T20:00:00.000Z",
		"decoration_stats": nil,
	})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"_id", "source"}, r.MessageFields)
	assert.Equal(t, []map[string]interface{}{}, r.UsedIndices)
	assert.Equal(t, time.Hour, r.To.Sub(r.From))
	if assert.Len(t, r.Messages, 1) {
		v, ok := r.Messages[0].Field("source")
		assert.True(t, ok)
		assert.Equal(t, "web", v)
		assert.Nil(t, r.Messages[0].DecorationStats)
	}
}

func TestLDAPConfigWire(t *testing.T) {
	c, err := schema.Load[graylog.LDAPConfig](map[string]interface{}{
		"enabled":                true,
		"ldap_uri":               "ldap://ldap.example.com:389/",
		"group_search_base":      nil,
		"display_name_attribute": "cn",
	})
	if !assert.NoError(t, err) {
		return
	}
	assert.False(t, c.UseStartTLS)
	assert.Equal(t, []string{}, c.AdditionalDefaultGroups)
	assert.Equal(t, "cn", c.DisplayNameAttribute)
}

func TestResourcesValidate(t *testing.T) {
	reg := schema.NewRegistry()
	for _, r := range graylog.Resources {
		assert.NoError(t, reg.Add(r), r.Name)
	}
	assert.Len(t, reg.Names(), len(graylog.Resources), "resource names are unique")
}

// roundTrip dumps a freshly built T and loads the result back.
func roundTrip[T any, P schema.Ptr[T]](t *testing.T, name string) {
	d, err := schema.Dump(schema.New[T, P]())
	if !assert.NoError(t, err, name) {
		return
	}
	_, err = schema.Load[T, P](d)
	assert.NoError(t, err, name)
}

func TestNewRoundTrip(t *testing.T) {
	roundTrip[graylog.Input](t, "Input")
	roundTrip[graylog.InputTypeConfigOption](t, "InputTypeConfigOption")
	roundTrip[graylog.InputType](t, "InputType")
	roundTrip[graylog.IndexRetention](t, "IndexRetention")
	roundTrip[graylog.IndexRotation](t, "IndexRotation")
	roundTrip[graylog.IndexSet](t, "IndexSet")
	roundTrip[graylog.LDAPConfig](t, "LDAPConfig")
	roundTrip[graylog.AlertReceivers](t, "AlertReceivers")
	roundTrip[graylog.Stream](t, "Stream")
	roundTrip[graylog.StreamRuleType](t, "StreamRuleType")
	roundTrip[graylog.StreamRule](t, "StreamRule")
	roundTrip[graylog.Role](t, "Role")
	roundTrip[graylog.Message](t, "Message")
	roundTrip[graylog.SearchResults](t, "SearchResults")
}

func TestStreamLiteralRoundTrip(t *testing.T) {
	s := schema.New[graylog.Stream]()
	assert.Equal(t, "AND", s.MatchingType)
	assert.True(t, s.IsDefault)

	d, err := schema.Dump(&graylog.Stream{Title: "errors"})
	if !assert.NoError(t, err) {
		return
	}
	assert.NotContains(t, d, "matching_type")
	s, err = schema.Load[graylog.Stream](d)
	if assert.NoError(t, err) {
		assert.Equal(t, "AND", s.MatchingType)
		assert.Equal(t, "errors", s.Title)
	}
}

// Extractors load and dump under different keys, so only the dumped
// form is checked.
func TestExtractorDumpOmitsUnset(t *testing.T) {
	d, err := schema.Dump(&graylog.Extractor{Title: "host"})
	if !assert.NoError(t, err) {
		return
	}
	assert.NotContains(t, d, "extractor_type")
	assert.NotContains(t, d, "cut_or_copy")

	d, err = schema.Dump(schema.New[graylog.Extractor]())
	if !assert.NoError(t, err) {
		return
	}
	assert.NotContains(t, d, "extractor_type")
	assert.Equal(t, "copy", d["cut_or_copy"])
}
