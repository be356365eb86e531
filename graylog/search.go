// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package graylog

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/diffeo/go-gl2api/schema"
	"github.com/go-playground/validator/v10"
)

// Message is one search hit: the stored message fields plus where it
// was found.
type Message struct {
	Index           string
	Message         map[string]interface{}
	HighlightRanges map[string]interface{}
	DecorationStats map[string]interface{}
}

func (m *Message) Fields() schema.Fields {
	return schema.Fields{
		schema.String("index", &m.Index),
		schema.Dict("message", &m.Message),
		schema.Dict("highlight_ranges", &m.HighlightRanges).Nullable(),
		schema.Dict("decoration_stats", &m.DecorationStats).Nullable(),
	}
}

// Field returns one field of the stored message, such as "source" or
// "timestamp".
func (m *Message) Field(name string) (interface{}, bool) {
	v, ok := m.Message[name]
	return v, ok
}

// SearchResults is the answer to a universal search.
type SearchResults struct {
	schema.Object
	Query           string
	BuiltQuery      string
	UsedIndices     []map[string]interface{}
	Messages        []Message
	MessageFields   []string
	Time            int
	TotalResults    int
	From            time.Time
	To              time.Time
	DecorationStats map[string]interface{}
}

// Fields describes the wire form of search results.
func (r *SearchResults) Fields() schema.Fields {
	return schema.Fields{
		schema.String("query", &r.Query),
		schema.String("built_query", &r.BuiltQuery),
		schema.Dicts("used_indices", &r.UsedIndices).Nullable().Missing([]interface{}{}),
		schema.NestedList("messages", &r.Messages).Nullable().Missing([]interface{}{}),
		schema.Strings("message_fields", &r.MessageFields).LoadFrom("fields").
			Nullable().Missing([]interface{}{}),
		schema.Int("time", &r.Time),
		schema.Int("total_results", &r.TotalResults),
		schema.Time("from", &r.From),
		schema.Time("to", &r.To),
		schema.Dict("decoration_stats", &r.DecorationStats).Nullable(),
	}
}

// RelativeSearchResource searches a window ending now.
var RelativeSearchResource = &schema.Resource{
	Name: "relative_search",
	Path: "search/universal/relative",
	Operations: []schema.Operation{
		{Name: schema.OpList, Method: "GET"},
	},
}

// AbsoluteSearchResource searches between two timestamps.
var AbsoluteSearchResource = &schema.Resource{
	Name: "absolute_search",
	Path: "search/universal/absolute",
	Operations: []schema.Operation{
		{Name: schema.OpList, Method: "GET"},
	},
}

// SearchQuery holds the parameters of a universal search.  Range is
// used by relative searches and From and To by absolute ones.
type SearchQuery struct {
	Query  string        `validate:"required"`
	Range  time.Duration `validate:"gte=0"`
	From   time.Time
	To     time.Time
	Limit  int `validate:"gte=0"`
	Offset int `validate:"gte=0"`
	Filter string
	Fields []string
	Sort   string `validate:"omitempty,endswith=:asc|endswith=:desc"`
}

var validate = validator.New()

// ErrMissingTimeRange is returned for an absolute search without both
// ends of its range.
var ErrMissingTimeRange = errors.New("absolute search needs both from and to")

// ErrBackwardsTimeRange is returned for an absolute search that ends
// before it starts.
var ErrBackwardsTimeRange = errors.New("search range ends before it starts")

func (q SearchQuery) common() url.Values {
	v := url.Values{}
	v.Set("query", q.Query)
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Filter != "" {
		v.Set("filter", q.Filter)
	}
	if len(q.Fields) > 0 {
		v.Set("fields", strings.Join(q.Fields, ","))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

// RelativeValues validates the query and returns its parameters for a
// relative search.  Range is sent in whole seconds; zero means all
// time.
func (q SearchQuery) RelativeValues() (url.Values, error) {
	if err := validate.Struct(q); err != nil {
		return nil, err
	}
	v := q.common()
	v.Set("range", strconv.FormatInt(int64(q.Range/time.Second), 10))
	return v, nil
}

// AbsoluteValues validates the query and returns its parameters for
// an absolute search.
func (q SearchQuery) AbsoluteValues() (url.Values, error) {
	if err := validate.Struct(q); err != nil {
		return nil, err
	}
	if q.From.IsZero() || q.To.IsZero() {
		return nil, ErrMissingTimeRange
	}
	if q.To.Before(q.From) {
		return nil, ErrBackwardsTimeRange
	}
	v := q.common()
	v.Set("from", q.From.UTC().Format(schema.TimeFormat))
	v.Set("to", q.To.UTC().Format(schema.TimeFormat))
	return v, nil
}
