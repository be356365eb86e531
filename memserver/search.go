// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memserver

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/diffeo/go-gl2api/schema"
	"github.com/gorilla/mux"
)

// AddMessage stores a message for searches to find, returning its
// id.  If fields has no "timestamp" the server clock's current time is
// used; a time.Time timestamp is stored in Graylog's format.  If it
// has no "streams" the message is routed to the default stream.
func (s *Server) AddMessage(fields map[string]interface{}) string {
	s.lock.Lock()
	defer s.lock.Unlock()
	msg := copyDoc(fields)
	id := newID()
	msg["_id"] = id
	switch ts := msg["timestamp"].(type) {
	case nil:
		msg["timestamp"] = s.now()
	case time.Time:
		msg["timestamp"] = ts.UTC().Format(schema.TimeFormat)
	}
	if _, present := msg["streams"]; !present {
		msg["streams"] = []interface{}{s.defaultStream}
	}
	s.messages = append(s.messages, msg)
	return id
}

// searchWindow is the time range and filters of one search.
type searchWindow struct {
	Query  string
	Filter string
	From   time.Time
	To     time.Time
}

func parseTime(name, value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.000", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, badRequestf("Invalid %s %q", name, value)
}

func messageTime(msg doc) time.Time {
	s, _ := msg["timestamp"].(string)
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// matches decides whether a message satisfies a very small subset of
// the Lucene query syntax: "*", "field:value", or a word that must
// appear in the message text.
func (w searchWindow) matches(msg doc) bool {
	ts := messageTime(msg)
	if ts.Before(w.From) || ts.After(w.To) {
		return false
	}
	if strings.HasPrefix(w.Filter, "streams:") {
		want := strings.TrimPrefix(w.Filter, "streams:")
		found := false
		streams, _ := msg["streams"].([]interface{})
		for _, id := range streams {
			if id == want {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	q := strings.TrimSpace(w.Query)
	if q == "" || q == "*" {
		return true
	}
	if i := strings.Index(q, ":"); i > 0 {
		v, present := msg[q[:i]]
		return present && fmt.Sprint(v) == strings.Trim(q[i+1:], `"`)
	}
	text, _ := msg["message"].(string)
	return strings.Contains(strings.ToLower(text), strings.ToLower(q))
}

func (s *Server) search(ctx *context, w searchWindow) (interface{}, error) {
	var hits []doc
	for _, msg := range s.messages {
		if w.matches(msg) {
			hits = append(hits, msg)
		}
	}

	sortField, desc := "timestamp", true
	if sortParam := ctx.Query.Get("sort"); sortParam != "" {
		parts := strings.SplitN(sortParam, ":", 2)
		if len(parts) != 2 || (parts[1] != "asc" && parts[1] != "desc") {
			return nil, badRequestf("Invalid sort %q", sortParam)
		}
		sortField, desc = parts[0], parts[1] == "desc"
	}
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := fmt.Sprint(hits[i][sortField]), fmt.Sprint(hits[j][sortField])
		if desc {
			return a > b
		}
		return a < b
	})

	total := len(hits)
	offset, err := ctx.IntParam("offset", 0)
	if err != nil {
		return nil, err
	}
	limit, err := ctx.IntParam("limit", 150)
	if err != nil {
		return nil, err
	}
	if offset > len(hits) {
		offset = len(hits)
	}
	hits = hits[offset:]
	if limit > 0 && limit < len(hits) {
		hits = hits[:limit]
	}

	var only []string
	if fields := ctx.Query.Get("fields"); fields != "" {
		only = strings.Split(fields, ",")
	}
	index := "graylog_0"
	for _, set := range s.indexSets {
		if set["default"] == true {
			index = fmt.Sprintf("%v_0", set["index_prefix"])
		}
	}

	seen := map[string]bool{}
	messages := make([]interface{}, len(hits))
	for i, hit := range hits {
		fields := hit
		if only != nil {
			fields = doc{"_id": hit["_id"]}
			for _, name := range only {
				if v, present := hit[name]; present {
					fields[name] = v
				}
			}
		}
		for name := range fields {
			seen[name] = true
		}
		messages[i] = doc{
			"message":          fields,
			"index":            index,
			"highlight_ranges": doc{},
			"decoration_stats": nil,
		}
	}
	names := make([]interface{}, 0, len(seen))
	for _, name := range sortedKeys(seen) {
		names = append(names, name)
	}

	used := doc{
		"index_name":    index,
		"begin":         w.From.UTC().Format(schema.TimeFormat),
		"end":           w.To.UTC().Format(schema.TimeFormat),
		"calculated_at": s.now(),
		"took_ms":       0,
	}
	return doc{
		"query":            w.Query,
		"built_query":      fmt.Sprintf(`{"query":{"query_string":{"query":%q}}}`, w.Query),
		"used_indices":     []interface{}{used},
		"messages":         messages,
		"fields":           names,
		"time":             1,
		"total_results":    total,
		"from":             w.From.UTC().Format(schema.TimeFormat),
		"to":               w.To.UTC().Format(schema.TimeFormat),
		"decoration_stats": nil,
	}, nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RelativeSearch searches messages from range seconds ago until now.
// A range of zero searches all messages.
func (s *Server) RelativeSearch(ctx *context) (interface{}, error) {
	seconds, err := ctx.IntParam("range", 0)
	if err != nil {
		return nil, err
	}
	if seconds < 0 {
		return nil, badRequestf("Invalid range %d", seconds)
	}
	now := s.Clock.Now()
	w := searchWindow{
		Query:  ctx.Query.Get("query"),
		Filter: ctx.Query.Get("filter"),
		From:   time.Unix(0, 0),
		To:     now,
	}
	if seconds > 0 {
		w.From = now.Add(-time.Duration(seconds) * time.Second)
	}
	return s.search(ctx, w)
}

// AbsoluteSearch searches messages between two timestamps.
func (s *Server) AbsoluteSearch(ctx *context) (interface{}, error) {
	w := searchWindow{
		Query:  ctx.Query.Get("query"),
		Filter: ctx.Query.Get("filter"),
	}
	var err error
	if w.From, err = parseTime("from", ctx.Query.Get("from")); err != nil {
		return nil, err
	}
	if w.To, err = parseTime("to", ctx.Query.Get("to")); err != nil {
		return nil, err
	}
	return s.search(ctx, w)
}

func (s *Server) populateSearch(r *mux.Router) {
	r.Path("/search/universal/relative").Handler(&resourceHandler{
		Server: s,
		Get:    s.RelativeSearch,
	})
	r.Path("/search/universal/absolute").Handler(&resourceHandler{
		Server: s,
		Get:    s.AbsoluteSearch,
	})
}
