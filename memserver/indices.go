// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memserver

import "github.com/gorilla/mux"

var indexSetKeys = []string{
	"title", "index_prefix", "shards", "replicas",
	"rotation_strategy_class", "rotation_strategy",
	"retention_strategy_class", "retention_strategy",
}

func (s *Server) indexSet(ctx *context) (doc, error) {
	id := ctx.Vars["id"]
	set, present := s.indexSets[id]
	if !present {
		return nil, notFoundf("Couldn't load index set with ID <%s>", id)
	}
	return set, nil
}

// IndexSetList lists all index sets.
func (s *Server) IndexSetList(ctx *context) (interface{}, error) {
	out := list("index_sets", values(s.indexSets))
	out["stats"] = doc{}
	return out, nil
}

// IndexSetPost creates an index set.  Graylog answers with the whole
// new index set and 200 OK.
func (s *Server) IndexSetPost(ctx *context, in doc) (interface{}, error) {
	if err := requireKeys(in, indexSetKeys...); err != nil {
		return nil, err
	}
	if err := rejectKeys(in, "id"); err != nil {
		return nil, err
	}
	for _, other := range s.indexSets {
		if other["index_prefix"] == in["index_prefix"] {
			return nil, badRequestf("Index prefix %q would conflict with an existing index set", in["index_prefix"])
		}
	}
	id := newID()
	set := doc{
		"index_analyzer":                      "standard",
		"index_optimization_max_num_segments": 1,
		"index_optimization_disabled":         false,
		"writable":                            true,
	}
	merge(set, in, "default")
	set["id"] = id
	set["default"] = false
	if _, present := set["creation_date"]; !present {
		set["creation_date"] = s.now()
	}
	s.indexSets[id] = set
	return set, nil
}

// IndexSetGet returns one index set.
func (s *Server) IndexSetGet(ctx *context) (interface{}, error) {
	return s.indexSet(ctx)
}

// IndexSetPut updates an index set.  Its id, prefix, creation date,
// and default flag cannot change this way.
func (s *Server) IndexSetPut(ctx *context, in doc) (interface{}, error) {
	set, err := s.indexSet(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireKeys(in, indexSetKeys...); err != nil {
		return nil, err
	}
	updated := copyDoc(set)
	merge(updated, in, "id", "index_prefix", "creation_date", "default")
	s.indexSets[set["id"].(string)] = updated
	return updated, nil
}

// IndexSetDelete removes an index set other than the default one.
func (s *Server) IndexSetDelete(ctx *context) (interface{}, error) {
	set, err := s.indexSet(ctx)
	if err != nil {
		return nil, err
	}
	if set["default"] == true {
		return nil, badRequestf("Default index set <%s> cannot be deleted!", set["id"])
	}
	delete(s.indexSets, set["id"].(string))
	return nil, nil
}

// IndexSetDefault makes one index set the default.
func (s *Server) IndexSetDefault(ctx *context, in doc) (interface{}, error) {
	set, err := s.indexSet(ctx)
	if err != nil {
		return nil, err
	}
	if set["writable"] == false {
		return nil, badRequestf("Default index set must be writable.")
	}
	for id, other := range s.indexSets {
		if id != set["id"] && other["default"] == true {
			updated := copyDoc(other)
			updated["default"] = false
			s.indexSets[id] = updated
		}
	}
	updated := copyDoc(set)
	updated["default"] = true
	s.indexSets[set["id"].(string)] = updated
	return updated, nil
}

// RetentionStrategies lists the available retention strategies.
func (s *Server) RetentionStrategies(ctx *context) (interface{}, error) {
	return strategies(s.retention), nil
}

// RotationStrategies lists the available rotation strategies.
func (s *Server) RotationStrategies(ctx *context) (interface{}, error) {
	return strategies(s.rotation), nil
}

func strategies(ds []doc) doc {
	items := make([]interface{}, len(ds))
	for i, d := range ds {
		items[i] = d
	}
	return list("strategies", items)
}

func (s *Server) populateIndices(r *mux.Router) {
	r.Path("/system/indices/index_sets").Handler(&resourceHandler{
		Server: s,
		Get:    s.IndexSetList,
		Post:   s.IndexSetPost,
	})
	r.Path("/system/indices/index_sets/{id}").Handler(&resourceHandler{
		Server: s,
		Get:    s.IndexSetGet,
		Put:    s.IndexSetPut,
		Delete: s.IndexSetDelete,
	})
	r.Path("/system/indices/index_sets/{id}/default").Handler(&resourceHandler{
		Server: s,
		Put:    s.IndexSetDefault,
	})
	r.Path("/system/indices/retention/strategies").Handler(&resourceHandler{
		Server: s,
		Get:    s.RetentionStrategies,
	})
	r.Path("/system/indices/rotation/strategies").Handler(&resourceHandler{
		Server: s,
		Get:    s.RotationStrategies,
	})
}
