// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package graylog

import (
	"time"

	"github.com/diffeo/go-gl2api/schema"
)

// AlertReceivers names who is notified when a stream alert fires.
type AlertReceivers struct {
	Emails []string
	Users  []string
}

func (a *AlertReceivers) Fields() schema.Fields {
	return schema.Fields{
		schema.Strings("emails", &a.Emails).Nullable().Missing([]interface{}{}),
		schema.Strings("users", &a.Users).Nullable().Missing([]interface{}{}),
	}
}

// Stream routes matching messages into an index set.
type Stream struct {
	schema.Object
	ID                             string
	CreatorUserID                  string
	Outputs                        []string
	MatchingType                   string
	Description                    string
	CreatedAt                      time.Time
	Disabled                       bool
	Rules                          []map[string]interface{}
	AlertConditions                []map[string]interface{}
	AlertReceivers                 AlertReceivers
	Title                          string
	ContentPack                    string
	RemoveMatchesFromDefaultStream bool
	IndexSetID                     string
	IsDefault                      bool
}

// Fields describes the wire form of a stream.
func (s *Stream) Fields() schema.Fields {
	return schema.Fields{
		schema.String("id", &s.ID).OmitEmpty(),
		schema.String("creator_user_id", &s.CreatorUserID).OmitEmpty(),
		schema.Strings("outputs", &s.Outputs).Nullable().Missing([]interface{}{}),
		schema.String("matching_type", &s.MatchingType).
			Default("AND").Missing("AND").OmitEmpty().Validate("oneof=AND OR"),
		schema.String("description", &s.Description).Nullable(),
		schema.Time("created_at", &s.CreatedAt),
		schema.Bool("disabled", &s.Disabled),
		schema.Dicts("rules", &s.Rules).Nullable().Missing([]interface{}{}),
		schema.Dicts("alert_conditions", &s.AlertConditions).Nullable().Missing([]interface{}{}),
		schema.Nested("alert_receivers", &s.AlertReceivers),
		schema.String("title", &s.Title),
		schema.String("content_pack", &s.ContentPack).Nullable(),
		schema.Bool("remove_matches_from_default_stream", &s.RemoveMatchesFromDefaultStream).Missing(false),
		schema.String("index_set_id", &s.IndexSetID),
		schema.Bool("is_default", &s.IsDefault).Default(true).Missing(true),
	}
}

// StreamResource is the stream collection.  Creating a stream answers
// with {"stream_id": ...}.
var StreamResource = &schema.Resource{
	Name: "streams",
	Path: "streams",
	Operations: []schema.Operation{
		{Name: schema.OpList, Method: "GET", Shape: schema.Keyed, Field: "streams"},
		{Name: schema.OpGet, Method: "GET", Path: "streams/{id}"},
		{Name: schema.OpAdd, Method: "POST", GetAttrs: map[string]string{"stream_id": "id"}},
		{Name: schema.OpUpdate, Method: "PUT", Path: "streams/{id}"},
		{Name: schema.OpDelete, Method: "DELETE", Path: "streams/{id}"},
		{Name: "resume", Method: "POST", Path: "streams/{id}/resume", NoGet: true},
		{Name: "pause", Method: "POST", Path: "streams/{id}/pause", NoGet: true},
	},
}

// StreamRuleType is one of the server's rule matchers, such as "match
// exactly" or "match regular expression".
type StreamRuleType struct {
	schema.Object
	ID        int
	Name      string
	ShortDesc string
	LongDesc  string
}

func (t *StreamRuleType) Fields() schema.Fields {
	return schema.Fields{
		schema.Int("id", &t.ID),
		schema.String("name", &t.Name),
		schema.String("short_desc", &t.ShortDesc),
		schema.String("long_desc", &t.LongDesc),
	}
}

// StreamRuleTypeResource lists rule types.  The server answers with a
// bare array.
var StreamRuleTypeResource = &schema.Resource{
	Name: "stream_rule_types",
	Path: "streams/{stream_id}/rules/types",
	Operations: []schema.Operation{
		{Name: schema.OpList, Method: "GET", Shape: schema.Array},
	},
}

// StreamRule matches one message field for a stream.
type StreamRule struct {
	schema.Object
	ID          string
	StreamID    string
	Description string
	Field       string
	RuleType    int
	Inverted    bool
	Value       string
}

// Fields describes the wire form of a stream rule.
func (r *StreamRule) Fields() schema.Fields {
	return schema.Fields{
		schema.String("id", &r.ID).OmitEmpty(),
		schema.String("stream_id", &r.StreamID),
		schema.String("description", &r.Description).Nullable().Missing(""),
		schema.String("field", &r.Field),
		schema.Int("rule_type", &r.RuleType).Wire("type"),
		schema.Bool("inverted", &r.Inverted).Missing(false),
		schema.String("value", &r.Value).Missing(""),
	}
}

// StreamRuleResource is the rule collection of one stream.  The stream
// id travels in the path only; the server rejects it in a body.
var StreamRuleResource = &schema.Resource{
	Name: "stream_rules",
	Path: "streams/{stream_id}/rules",
	Operations: []schema.Operation{
		{Name: schema.OpList, Method: "GET", Shape: schema.Keyed, Field: "stream_rules"},
		{Name: schema.OpGet, Method: "GET", Path: "streams/{stream_id}/rules/{id}"},
		{
			Name:     schema.OpAdd,
			Method:   "POST",
			Exclude:  []string{"stream_id"},
			GetAttrs: map[string]string{"streamrule_id": "id"},
		},
		{
			Name:    schema.OpUpdate,
			Method:  "PUT",
			Path:    "streams/{stream_id}/rules/{id}",
			Exclude: []string{"stream_id", "id"},
		},
		{Name: schema.OpDelete, Method: "DELETE", Path: "streams/{stream_id}/rules/{id}"},
	},
}
