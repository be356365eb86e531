// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package graylog_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/diffeo/go-gl2api/graylog"
	"github.com/diffeo/go-gl2api/memserver"
	"github.com/stretchr/testify/suite"
)

// SearchSuite runs searches over a few seeded messages.
type SearchSuite struct {
	suite.Suite
	a      *apiAssertions
	stream string
}

func (s *SearchSuite) SetupTest() {
	s.a = newAPI(s.T())
	s.a.Server.AddMessage(map[string]interface{}{
		"message":   "GET /index.html 200",
		"source":    "web",
		"timestamp": searchTime.Add(-10 * time.Minute),
	})
	s.a.Server.AddMessage(map[string]interface{}{
		"message":   "GET /missing 404",
		"source":    "web",
		"timestamp": searchTime.Add(-30 * time.Second),
	})
	s.stream = "0123456789abcdef01234567"
	s.a.Server.AddMessage(map[string]interface{}{
		"message":   "disk full",
		"source":    "db",
		"timestamp": searchTime.Add(-20 * time.Second),
		"streams":   []interface{}{s.stream},
	})
}

func (s *SearchSuite) messages(r *graylog.SearchResults) []string {
	out := make([]string, len(r.Messages))
	for i, m := range r.Messages {
		v, _ := m.Field("message")
		out[i], _ = v.(string)
	}
	return out
}

func (s *SearchSuite) TestRelativeWindow() {
	r, err := s.a.API.SearchRelative(ctx, graylog.SearchQuery{Query: "source:web", Range: time.Minute})
	if s.NoError(err) {
		s.Equal(1, r.TotalResults)
		s.Equal([]string{"GET /missing 404"}, s.messages(r))
		s.Equal(searchTime, r.To.UTC())
		s.Equal(searchTime.Add(-time.Minute), r.From.UTC())
		if s.Len(r.UsedIndices, 1) {
			s.Equal("graylog_0", r.UsedIndices[0]["index_name"])
		}
	}
}

func (s *SearchSuite) TestRelativeAllTime() {
	r, err := s.a.API.SearchRelative(ctx, graylog.SearchQuery{Query: "*"})
	if s.NoError(err) {
		s.Equal(3, r.TotalResults)
		s.Equal([]string{"disk full", "GET /missing 404", "GET /index.html 200"}, s.messages(r))
	}
}

func (s *SearchSuite) TestAbsoluteSortLimit() {
	r, err := s.a.API.SearchAbsolute(ctx, graylog.SearchQuery{
		Query: "*",
		From:  searchTime.Add(-time.Hour),
		To:    searchTime,
		Sort:  "timestamp:asc",
		Limit: 1,
	})
	if s.NoError(err) {
		s.Equal(3, r.TotalResults, "total counts every match")
		s.Equal([]string{"GET /index.html 200"}, s.messages(r))
	}

	r, err = s.a.API.SearchAbsolute(ctx, graylog.SearchQuery{
		Query:  "*",
		From:   searchTime.Add(-time.Hour),
		To:     searchTime,
		Sort:   "timestamp:asc",
		Offset: 1,
	})
	if s.NoError(err) {
		s.Equal([]string{"GET /missing 404", "disk full"}, s.messages(r))
	}
}

func (s *SearchSuite) TestFields() {
	r, err := s.a.API.SearchRelative(ctx, graylog.SearchQuery{
		Query:  "404",
		Fields: []string{"source"},
	})
	if s.NoError(err) && s.Len(r.Messages, 1) {
		source, _ := r.Messages[0].Field("source")
		s.Equal("web", source)
		_, present := r.Messages[0].Field("message")
		s.False(present)
		s.Equal([]string{"_id", "source"}, r.MessageFields)
	}
}

func (s *SearchSuite) TestStreamFilter() {
	r, err := s.a.API.SearchRelative(ctx, graylog.SearchQuery{Query: "*", Filter: "streams:" + s.stream})
	if s.NoError(err) {
		s.Equal([]string{"disk full"}, s.messages(r))
	}

	def, err := s.a.API.StreamByName(ctx, memserver.DefaultStreamTitle)
	if s.NoError(err) {
		r, err = s.a.API.SearchRelative(ctx, graylog.SearchQuery{Query: "*", Filter: "streams:" + def.ID})
		if s.NoError(err) {
			s.Equal(2, r.TotalResults)
		}
	}
}

func (s *SearchSuite) TestInvalidQueries() {
	_, err := s.a.API.SearchAbsolute(ctx, graylog.SearchQuery{Query: "*"})
	s.Equal(graylog.ErrMissingTimeRange, err)

	_, err = s.a.API.SearchAbsolute(ctx, graylog.SearchQuery{
		Query: "*",
		From:  searchTime,
		To:    searchTime.Add(-time.Hour),
	})
	s.Equal(graylog.ErrBackwardsTimeRange, err)

	_, err = s.a.API.SearchRelative(ctx, graylog.SearchQuery{})
	s.Error(err, "query is required")

	_, err = s.a.API.SearchRelative(ctx, graylog.SearchQuery{Query: "*", Sort: "timestamp"})
	s.Error(err, "sort needs a direction")
}

func (s *SearchSuite) TestServerRejectsSort() {
	r, err := s.a.API.Client.Fetch(ctx, "relative_search", "list", nil, url.Values{
		"query": {"*"},
		"sort":  {"timestamp:sideways"},
	})
	s.Nil(r)
	s.Error(err)
}

func TestSearchSuite(t *testing.T) {
	suite.Run(t, new(SearchSuite))
}
