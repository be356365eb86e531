// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package graylog

import (
	"strings"
	"time"

	"github.com/diffeo/go-gl2api/schema"
)

// Input is a message input running on one or all Graylog nodes.
type Input struct {
	schema.Object
	ID            string
	Title         string
	Global        bool
	Name          string
	ContentPack   string
	CreatedAt     time.Time
	InputType     string
	CreatorUserID string
	Node          string
	Attributes    map[string]interface{}
	Configuration map[string]interface{}
}

// Fields describes the wire form of an input.
func (i *Input) Fields() schema.Fields {
	return schema.Fields{
		schema.String("id", &i.ID).OmitEmpty(),
		schema.String("title", &i.Title),
		schema.Bool("global_flag", &i.Global).Wire("global"),
		schema.String("name", &i.Name),
		schema.String("content_pack", &i.ContentPack).Nullable(),
		schema.Time("created_at", &i.CreatedAt),
		schema.String("input_type", &i.InputType).Wire("type"),
		schema.String("creator_user_id", &i.CreatorUserID).OmitEmpty(),
		schema.String("node", &i.Node).Nullable(),
		schema.Dict("attributes", &i.Attributes).Nullable(),
		schema.Dict("configuration", &i.Configuration).Nullable(),
	}
}

// InputResource is the input collection.
var InputResource = &schema.Resource{
	Name: "inputs",
	Path: "system/inputs",
	Operations: []schema.Operation{
		{Name: schema.OpList, Method: "GET", Shape: schema.Keyed, Field: "inputs"},
		{Name: schema.OpGet, Method: "GET", Path: "system/inputs/{id}"},
		{Name: schema.OpAdd, Method: "POST"},
		{Name: schema.OpUpdate, Method: "PUT", Path: "system/inputs/{id}"},
		{Name: schema.OpDelete, Method: "DELETE", Path: "system/inputs/{id}"},
	},
}

// InputTypeConfigOption describes one configuration setting an input
// type accepts.
type InputTypeConfigOption struct {
	HumanName      string
	AdditionalInfo map[string]interface{}
	Description    string
	DefaultValue   interface{}
	Attributes     []string
	OptionType     string
	IsOptional     bool
}

// Fields describes the wire form of a configuration option.
func (o *InputTypeConfigOption) Fields() schema.Fields {
	return schema.Fields{
		schema.String("human_name", &o.HumanName),
		schema.Dict("additional_info", &o.AdditionalInfo),
		schema.String("description", &o.Description).Nullable().Missing(nil),
		schema.Raw("default_value", &o.DefaultValue).Nullable().Missing(nil),
		schema.Strings("attributes", &o.Attributes),
		schema.String("option_type", &o.OptionType).Wire("type"),
		schema.Bool("is_optional", &o.IsOptional),
	}
}

// InputType is one kind of input the server can run, such as GELF
// over UDP.
type InputType struct {
	schema.Object
	SystemType             string
	Name                   string
	RequestedConfiguration map[string]InputTypeConfigOption
	LinkToDocs             string
	IsExclusive            bool
}

// Fields describes the wire form of an input type.
func (t *InputType) Fields() schema.Fields {
	return schema.Fields{
		schema.String("system_type", &t.SystemType).Wire("type"),
		schema.String("name", &t.Name),
		schema.NestedMap("requested_configuration", &t.RequestedConfiguration),
		schema.String("link_to_docs", &t.LinkToDocs),
		schema.Bool("is_exclusive", &t.IsExclusive),
	}
}

// InputTypeResource lists the input types, keyed by Java class name.
var InputTypeResource = &schema.Resource{
	Name: "input_types",
	Path: "system/inputs/types",
	Operations: []schema.Operation{
		{Name: schema.OpList, Method: "GET", Path: "system/inputs/types/all", Shape: schema.DictOf},
	},
}

// ExtractorTypes are the values Extractor.ExtractorType may take.
var ExtractorTypes = []string{
	"copy_input", "grok", "json", "regex", "regex_replace",
	"split_and_index", "substring", "lookup_table",
}

var extractorTypeRule = "oneof=" + strings.Join(ExtractorTypes, " ")

// Extractor pulls fields out of messages as an input receives them.
// Extractors live under an input, so their paths need an {input_id}
// variable from the caller.
type Extractor struct {
	schema.Object
	ID              string
	Title           string
	ExtractorType   string
	ConverterStatus []map[string]interface{}
	ConverterDef    map[string]interface{}
	Order           int
	CutOrCopy       string
	SourceField     string
	TargetField     string
	ExtractorConfig map[string]interface{}
	CreatorUserID   string
	ConditionType   string
	ConditionValue  string
}

// Fields describes the wire form of an extractor.  The server reports
// converters as a list of statuses, but accepts their definition as
// an object.
func (e *Extractor) Fields() schema.Fields {
	return schema.Fields{
		schema.String("id", &e.ID).LoadOnly(),
		schema.String("title", &e.Title),
		schema.String("extractor_type", &e.ExtractorType).
			LoadFrom("type").OmitEmpty().
			Validate(extractorTypeRule),
		schema.Dicts("converter_status", &e.ConverterStatus).
			LoadFrom("converters").LoadOnly().Missing([]interface{}{}),
		schema.Dict("converter_def", &e.ConverterDef).
			DumpTo("converters").Missing(map[string]interface{}{}),
		schema.Int("order", &e.Order),
		schema.String("cut_or_copy", &e.CutOrCopy).
			LoadFrom("cursor_strategy").
			Default("copy").OmitEmpty().Validate("oneof=cut copy"),
		schema.String("source_field", &e.SourceField),
		schema.String("target_field", &e.TargetField).Missing(""),
		schema.Dict("extractor_config", &e.ExtractorConfig).Missing(map[string]interface{}{}),
		schema.String("creator_user_id", &e.CreatorUserID).LoadOnly(),
		schema.String("condition_type", &e.ConditionType).Missing("none"),
		schema.String("condition_value", &e.ConditionValue).Missing(""),
	}
}

// ExtractorResource is the extractor collection of one input.
var ExtractorResource = &schema.Resource{
	Name: "extractors",
	Path: "system/inputs/{input_id}/extractors",
	Operations: []schema.Operation{
		{Name: schema.OpList, Method: "GET", Shape: schema.Keyed, Field: "extractors"},
		{Name: schema.OpGet, Method: "GET", Path: "system/inputs/{input_id}/extractors/{id}"},
		{
			Name:     schema.OpAdd,
			Method:   "POST",
			GetAttrs: map[string]string{"extractor_id": "id"},
		},
		{
			Name:     schema.OpUpdate,
			Method:   "PUT",
			Path:     "system/inputs/{input_id}/extractors/{id}",
			GetAttrs: map[string]string{"extractor_id": "id"},
		},
		{Name: schema.OpDelete, Method: "DELETE", Path: "system/inputs/{input_id}/extractors/{id}"},
	},
}
