// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package graylog

import (
	"time"

	"github.com/diffeo/go-gl2api/schema"
)

// strategyFields is shared by the retention and rotation strategy
// descriptions, which have the same shape.
func strategyFields(typeName *string, defaultConfig, jsonSchema *map[string]interface{}) schema.Fields {
	return schema.Fields{
		schema.String("type_name", typeName).Wire("type"),
		schema.Dict("default_config", defaultConfig),
		schema.Dict("json_schema", jsonSchema),
	}
}

// IndexRetention describes one available index retention strategy.
type IndexRetention struct {
	schema.Object
	TypeName      string
	DefaultConfig map[string]interface{}
	JSONSchema    map[string]interface{}
}

// Fields describes the wire form of a retention strategy.
func (r *IndexRetention) Fields() schema.Fields {
	return strategyFields(&r.TypeName, &r.DefaultConfig, &r.JSONSchema)
}

// IndexRotation describes one available index rotation strategy.
type IndexRotation struct {
	schema.Object
	TypeName      string
	DefaultConfig map[string]interface{}
	JSONSchema    map[string]interface{}
}

// Fields describes the wire form of a rotation strategy.
func (r *IndexRotation) Fields() schema.Fields {
	return strategyFields(&r.TypeName, &r.DefaultConfig, &r.JSONSchema)
}

// IndexRetentionResource lists the retention strategies.
var IndexRetentionResource = &schema.Resource{
	Name: "index_retention_strategies",
	Path: "system/indices/retention/strategies",
	Operations: []schema.Operation{
		{Name: schema.OpList, Method: "GET", Shape: schema.Keyed, Field: "strategies"},
	},
}

// IndexRotationResource lists the rotation strategies.
var IndexRotationResource = &schema.Resource{
	Name: "index_rotation_strategies",
	Path: "system/indices/rotation/strategies",
	Operations: []schema.Operation{
		{Name: schema.OpList, Method: "GET", Shape: schema.Keyed, Field: "strategies"},
	},
}

// IndexSet is a family of Elasticsearch indices sharing a prefix and
// rotation and retention settings.
type IndexSet struct {
	schema.Object
	ID                              string
	Title                           string
	Description                     string
	IndexPrefix                     string
	Shards                          int
	Replicas                        int
	RotationStrategyClass           string
	RotationStrategy                map[string]interface{}
	RetentionStrategyClass          string
	RetentionStrategy               map[string]interface{}
	CreationDate                    time.Time
	IndexAnalyzer                   string
	IndexOptimizationMaxNumSegments int
	IndexOptimizationDisabled       bool
	Writable                        bool
	Default                         bool
}

// Fields describes the wire form of an index set.
func (s *IndexSet) Fields() schema.Fields {
	return schema.Fields{
		schema.String("id", &s.ID).OmitEmpty(),
		schema.String("title", &s.Title),
		schema.String("description", &s.Description).Nullable(),
		schema.String("index_prefix", &s.IndexPrefix),
		schema.Int("shards", &s.Shards),
		schema.Int("replicas", &s.Replicas),
		schema.String("rotation_strategy_class", &s.RotationStrategyClass),
		schema.Dict("rotation_strategy", &s.RotationStrategy),
		schema.String("retention_strategy_class", &s.RetentionStrategyClass),
		schema.Dict("retention_strategy", &s.RetentionStrategy),
		schema.Time("creation_date", &s.CreationDate),
		schema.String("index_analyzer", &s.IndexAnalyzer).Default("standard"),
		schema.Int("index_optimization_max_num_segments", &s.IndexOptimizationMaxNumSegments).Default(1),
		schema.Bool("index_optimization_disabled", &s.IndexOptimizationDisabled).Default(false),
		schema.Bool("writable", &s.Writable).Default(true),
		schema.Bool("default", &s.Default).Default(false),
	}
}

// IndexSetResource is the index set collection.
var IndexSetResource = &schema.Resource{
	Name: "index_sets",
	Path: "system/indices/index_sets",
	Operations: []schema.Operation{
		{Name: schema.OpList, Method: "GET", Shape: schema.Keyed, Field: "index_sets"},
		{Name: schema.OpGet, Method: "GET", Path: "system/indices/index_sets/{id}"},
		{Name: schema.OpAdd, Method: "POST"},
		{Name: schema.OpUpdate, Method: "PUT", Path: "system/indices/index_sets/{id}"},
		{Name: "set_default", Method: "PUT", Path: "system/indices/index_sets/{id}/default"},
		{Name: schema.OpDelete, Method: "DELETE", Path: "system/indices/index_sets/{id}"},
	},
}
