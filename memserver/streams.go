// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memserver

import "github.com/gorilla/mux"

// toInt accepts the integer shapes a JSON decoder produces.
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func (s *Server) stream(ctx *context) (doc, error) {
	id := ctx.Vars["stream_id"]
	if id == "" {
		id = ctx.Vars["id"]
	}
	stream, present := s.streams[id]
	if !present {
		return nil, notFoundf("Stream <%s> not found!", id)
	}
	return stream, nil
}

// render returns a stream document with its current rules.
func (s *Server) render(stream doc) doc {
	out := copyDoc(stream)
	out["rules"] = values(s.rules[stream["id"].(string)])
	return out
}

// StreamList lists all streams.
func (s *Server) StreamList(ctx *context) (interface{}, error) {
	items := values(s.streams)
	for i, item := range items {
		items[i] = s.render(item.(doc))
	}
	return list("streams", items), nil
}

// setStream copies the updatable stream settings from a request.
func (s *Server) setStream(stream, in doc) error {
	if id, present := in["index_set_id"]; present {
		indexSetID, _ := id.(string)
		if _, exists := s.indexSets[indexSetID]; !exists {
			return badRequestf("Index set with ID <%s> does not exist!", indexSetID)
		}
		stream["index_set_id"] = indexSetID
	}
	if title, present := in["title"]; present {
		stream["title"] = title
	}
	if description, present := in["description"]; present {
		stream["description"] = description
	}
	if mt, present := in["matching_type"]; present && mt != nil {
		if mt != "AND" && mt != "OR" {
			return badRequestf("Invalid matching type %v", mt)
		}
		stream["matching_type"] = mt
	}
	if remove, present := in["remove_matches_from_default_stream"]; present {
		stream["remove_matches_from_default_stream"] = remove == true
	}
	return nil
}

// StreamPost creates a stream.  New streams start paused.
func (s *Server) StreamPost(ctx *context, in doc) (interface{}, error) {
	if err := requireKeys(in, "title", "index_set_id"); err != nil {
		return nil, err
	}
	if err := rejectKeys(in, "id"); err != nil {
		return nil, err
	}
	id := newID()
	stream := doc{
		"id":                                 id,
		"creator_user_id":                    "admin",
		"outputs":                            []interface{}{},
		"matching_type":                      "AND",
		"description":                        nil,
		"created_at":                         s.now(),
		"disabled":                           true,
		"alert_conditions":                   []interface{}{},
		"alert_receivers":                    doc{"emails": []interface{}{}, "users": []interface{}{}},
		"content_pack":                       nil,
		"remove_matches_from_default_stream": false,
		"is_default":                         false,
	}
	if err := s.setStream(stream, in); err != nil {
		return nil, err
	}
	rules := make(map[string]doc)
	if items, ok := in["rules"].([]interface{}); ok {
		for _, item := range items {
			rule, ok := item.(map[string]interface{})
			if !ok {
				return nil, badRequestf("Invalid stream rule %v", item)
			}
			created, err := newRule(id, rule)
			if err != nil {
				return nil, err
			}
			rules[created["id"].(string)] = created
		}
	}
	s.streams[id] = stream
	s.rules[id] = rules
	return responseCreated{Body: doc{"stream_id": id}}, nil
}

// StreamGet returns one stream.
func (s *Server) StreamGet(ctx *context) (interface{}, error) {
	stream, err := s.stream(ctx)
	if err != nil {
		return nil, err
	}
	return s.render(stream), nil
}

// StreamPut updates a stream's settings.
func (s *Server) StreamPut(ctx *context, in doc) (interface{}, error) {
	stream, err := s.stream(ctx)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, errNoBody
	}
	updated := copyDoc(stream)
	if err := s.setStream(updated, in); err != nil {
		return nil, err
	}
	s.streams[stream["id"].(string)] = updated
	return s.render(updated), nil
}

// StreamDelete removes a stream and its rules.
func (s *Server) StreamDelete(ctx *context) (interface{}, error) {
	stream, err := s.stream(ctx)
	if err != nil {
		return nil, err
	}
	if stream["is_default"] == true {
		return nil, badRequestf("The default stream cannot be deleted.")
	}
	id := stream["id"].(string)
	delete(s.streams, id)
	delete(s.rules, id)
	return nil, nil
}

func (s *Server) setDisabled(ctx *context, disabled bool) (interface{}, error) {
	stream, err := s.stream(ctx)
	if err != nil {
		return nil, err
	}
	updated := copyDoc(stream)
	updated["disabled"] = disabled
	s.streams[stream["id"].(string)] = updated
	return nil, nil
}

// StreamResume starts a stream.
func (s *Server) StreamResume(ctx *context, in doc) (interface{}, error) {
	return s.setDisabled(ctx, false)
}

// StreamPause stops a stream.
func (s *Server) StreamPause(ctx *context, in doc) (interface{}, error) {
	return s.setDisabled(ctx, true)
}

// RuleTypes lists the stream rule types.
func (s *Server) RuleTypes(ctx *context) (interface{}, error) {
	if _, err := s.stream(ctx); err != nil {
		return nil, err
	}
	items := make([]interface{}, len(s.ruleTypes))
	for i, t := range s.ruleTypes {
		items[i] = t
	}
	return items, nil
}

// setRule validates and copies the settings of a stream rule request.
// The stream id comes from the path and may not appear in the body.
func setRule(rule, in doc) error {
	if err := requireKeys(in, "field", "type"); err != nil {
		return err
	}
	if err := rejectKeys(in, "stream_id", "id"); err != nil {
		return err
	}
	kind, ok := toInt(in["type"])
	if !ok || kind < 1 || kind > 5 {
		return badRequestf("Invalid stream rule type %v", in["type"])
	}
	rule["field"] = in["field"]
	rule["type"] = kind
	rule["value"] = stringOr(in["value"], "")
	rule["inverted"] = in["inverted"] == true
	rule["description"] = stringOr(in["description"], "")
	return nil
}

func newRule(streamID string, in doc) (doc, error) {
	rule := doc{"id": newID(), "stream_id": streamID}
	if err := setRule(rule, in); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *Server) rule(ctx *context) (doc, error) {
	stream, err := s.stream(ctx)
	if err != nil {
		return nil, err
	}
	id := ctx.Vars["id"]
	rule, present := s.rules[stream["id"].(string)][id]
	if !present {
		return nil, notFoundf("Stream rule <%s> not found", id)
	}
	return rule, nil
}

// RuleList lists the rules of one stream.
func (s *Server) RuleList(ctx *context) (interface{}, error) {
	stream, err := s.stream(ctx)
	if err != nil {
		return nil, err
	}
	return list("stream_rules", values(s.rules[stream["id"].(string)])), nil
}

// RulePost adds a rule to a stream.
func (s *Server) RulePost(ctx *context, in doc) (interface{}, error) {
	stream, err := s.stream(ctx)
	if err != nil {
		return nil, err
	}
	streamID := stream["id"].(string)
	rule, err := newRule(streamID, in)
	if err != nil {
		return nil, err
	}
	id := rule["id"].(string)
	s.rules[streamID][id] = rule
	return responseCreated{Body: doc{"streamrule_id": id}}, nil
}

// RuleGet returns one stream rule.
func (s *Server) RuleGet(ctx *context) (interface{}, error) {
	return s.rule(ctx)
}

// RulePut replaces a stream rule.
func (s *Server) RulePut(ctx *context, in doc) (interface{}, error) {
	rule, err := s.rule(ctx)
	if err != nil {
		return nil, err
	}
	updated := copyDoc(rule)
	if err := setRule(updated, in); err != nil {
		return nil, err
	}
	id := rule["id"].(string)
	s.rules[rule["stream_id"].(string)][id] = updated
	return doc{"streamrule_id": id}, nil
}

// RuleDelete removes a stream rule.
func (s *Server) RuleDelete(ctx *context) (interface{}, error) {
	rule, err := s.rule(ctx)
	if err != nil {
		return nil, err
	}
	delete(s.rules[rule["stream_id"].(string)], rule["id"].(string))
	return nil, nil
}

func (s *Server) populateStreams(r *mux.Router) {
	r.Path("/streams").Handler(&resourceHandler{
		Server: s,
		Get:    s.StreamList,
		Post:   s.StreamPost,
	})
	r.Path("/streams/{id}").Handler(&resourceHandler{
		Server: s,
		Get:    s.StreamGet,
		Put:    s.StreamPut,
		Delete: s.StreamDelete,
	})
	r.Path("/streams/{id}/resume").Handler(&resourceHandler{
		Server: s,
		Post:   s.StreamResume,
	})
	r.Path("/streams/{id}/pause").Handler(&resourceHandler{
		Server: s,
		Post:   s.StreamPause,
	})
	// This must precede the rule route, which would also match it
	r.Path("/streams/{stream_id}/rules/types").Handler(&resourceHandler{
		Server: s,
		Get:    s.RuleTypes,
	})
	r.Path("/streams/{stream_id}/rules").Handler(&resourceHandler{
		Server: s,
		Get:    s.RuleList,
		Post:   s.RulePost,
	})
	r.Path("/streams/{stream_id}/rules/{id}").Handler(&resourceHandler{
		Server: s,
		Get:    s.RuleGet,
		Put:    s.RulePut,
		Delete: s.RuleDelete,
	})
}
