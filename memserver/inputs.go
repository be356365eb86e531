// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memserver

import "github.com/gorilla/mux"

var extractorTypes = map[string]bool{
	"copy_input": true, "grok": true, "json": true, "regex": true,
	"regex_replace": true, "split_and_index": true, "substring": true,
	"lookup_table": true,
}

func (s *Server) input(ctx *context) (doc, error) {
	id := ctx.Vars["input_id"]
	if id == "" {
		id = ctx.Vars["id"]
	}
	input, present := s.inputs[id]
	if !present {
		return nil, notFoundf("Input <%s> not found", id)
	}
	return input, nil
}

// InputList lists all inputs.
func (s *Server) InputList(ctx *context) (interface{}, error) {
	return list("inputs", values(s.inputs)), nil
}

// setInput fills an input document from a create or update request.
// Server-assigned keys in the request are ignored.
func (s *Server) setInput(input, in doc) error {
	if err := requireKeys(in, "title", "type", "configuration"); err != nil {
		return err
	}
	class, _ := in["type"].(string)
	inputType, present := s.inputTypes[class]
	if !present {
		return badRequestf("There is no such input type registered.")
	}
	input["title"] = in["title"]
	input["type"] = class
	input["name"] = inputType["name"]
	input["global"] = in["global"] == true
	input["node"] = in["node"]
	if input["global"] == true {
		input["node"] = nil
	}
	config, _ := in["configuration"].(map[string]interface{})
	input["configuration"] = copyDoc(config)
	input["attributes"] = copyDoc(config)
	if _, present := input["content_pack"]; !present {
		input["content_pack"] = nil
	}
	return nil
}

// InputPost launches a new input.
func (s *Server) InputPost(ctx *context, in doc) (interface{}, error) {
	if err := rejectKeys(in, "id"); err != nil {
		return nil, err
	}
	id := newID()
	input := doc{
		"id":              id,
		"created_at":      s.now(),
		"creator_user_id": "admin",
	}
	if err := s.setInput(input, in); err != nil {
		return nil, err
	}
	s.inputs[id] = input
	s.extractors[id] = make(map[string]doc)
	return responseCreated{Body: doc{"id": id}}, nil
}

// InputGet returns one input.
func (s *Server) InputGet(ctx *context) (interface{}, error) {
	return s.input(ctx)
}

// InputPut replaces an input's settings.  Graylog answers this with
// 201 Created and the input id.
func (s *Server) InputPut(ctx *context, in doc) (interface{}, error) {
	input, err := s.input(ctx)
	if err != nil {
		return nil, err
	}
	updated := copyDoc(input)
	if err := s.setInput(updated, in); err != nil {
		return nil, err
	}
	s.inputs[input["id"].(string)] = updated
	return responseCreated{Body: doc{"id": input["id"]}}, nil
}

// InputDelete terminates an input and drops its extractors.
func (s *Server) InputDelete(ctx *context) (interface{}, error) {
	input, err := s.input(ctx)
	if err != nil {
		return nil, err
	}
	id := input["id"].(string)
	delete(s.inputs, id)
	delete(s.extractors, id)
	return nil, nil
}

// InputTypesAll describes every input type, keyed by class name.
func (s *Server) InputTypesAll(ctx *context) (interface{}, error) {
	out := make(doc, len(s.inputTypes))
	for class, t := range s.inputTypes {
		out[class] = t
	}
	return out, nil
}

func (s *Server) extractor(ctx *context) (doc, error) {
	input, err := s.input(ctx)
	if err != nil {
		return nil, err
	}
	id := ctx.Vars["id"]
	extractor, present := s.extractors[input["id"].(string)][id]
	if !present {
		return nil, notFoundf("Extractor <%s> not found", id)
	}
	return extractor, nil
}

// setExtractor fills an extractor document from a create or update
// request.  Requests name the type and cursor strategy differently
// than responses, and carry converters as an object keyed by type.
func setExtractor(extractor, in doc) error {
	if err := requireKeys(in, "title", "extractor_type", "cut_or_copy", "source_field"); err != nil {
		return err
	}
	if err := rejectKeys(in, "id", "type", "cursor_strategy", "creator_user_id"); err != nil {
		return err
	}
	kind, _ := in["extractor_type"].(string)
	if !extractorTypes[kind] {
		return badRequestf("Unknown extractor type %q", kind)
	}
	cursor, _ := in["cut_or_copy"].(string)
	if cursor != "cut" && cursor != "copy" {
		return badRequestf("Unknown cursor strategy %q", cursor)
	}
	converters := []interface{}{}
	if defs, ok := in["converters"].(map[string]interface{}); ok {
		for kind, config := range defs {
			converters = append(converters, doc{"type": kind, "config": config})
		}
	}
	extractor["title"] = in["title"]
	extractor["type"] = kind
	extractor["cursor_strategy"] = cursor
	extractor["converters"] = converters
	extractor["source_field"] = in["source_field"]
	extractor["target_field"] = stringOr(in["target_field"], "")
	extractor["extractor_config"] = in["extractor_config"]
	if extractor["extractor_config"] == nil {
		extractor["extractor_config"] = doc{}
	}
	extractor["condition_type"] = stringOr(in["condition_type"], "none")
	extractor["condition_value"] = stringOr(in["condition_value"], "")
	if order, present := in["order"]; present {
		extractor["order"] = order
	}
	return nil
}

func stringOr(v interface{}, def string) interface{} {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

// ExtractorList lists the extractors of one input.
func (s *Server) ExtractorList(ctx *context) (interface{}, error) {
	input, err := s.input(ctx)
	if err != nil {
		return nil, err
	}
	return list("extractors", values(s.extractors[input["id"].(string)])), nil
}

// ExtractorPost adds an extractor to an input.
func (s *Server) ExtractorPost(ctx *context, in doc) (interface{}, error) {
	input, err := s.input(ctx)
	if err != nil {
		return nil, err
	}
	inputID := input["id"].(string)
	id := newID()
	extractor := doc{
		"id":                   id,
		"creator_user_id":      "admin",
		"order":                len(s.extractors[inputID]),
		"exceptions":           0,
		"converter_exceptions": 0,
		"metrics":              doc{},
	}
	if err := setExtractor(extractor, in); err != nil {
		return nil, err
	}
	s.extractors[inputID][id] = extractor
	return responseCreated{Body: doc{"extractor_id": id}}, nil
}

// ExtractorGet returns one extractor.
func (s *Server) ExtractorGet(ctx *context) (interface{}, error) {
	return s.extractor(ctx)
}

// ExtractorPut replaces an extractor.
func (s *Server) ExtractorPut(ctx *context, in doc) (interface{}, error) {
	extractor, err := s.extractor(ctx)
	if err != nil {
		return nil, err
	}
	updated := copyDoc(extractor)
	if err := setExtractor(updated, in); err != nil {
		return nil, err
	}
	id := extractor["id"].(string)
	s.extractors[ctx.Vars["input_id"]][id] = updated
	return doc{"extractor_id": id}, nil
}

// ExtractorDelete removes an extractor.
func (s *Server) ExtractorDelete(ctx *context) (interface{}, error) {
	extractor, err := s.extractor(ctx)
	if err != nil {
		return nil, err
	}
	delete(s.extractors[ctx.Vars["input_id"]], extractor["id"].(string))
	return nil, nil
}

func (s *Server) populateInputs(r *mux.Router) {
	r.Path("/system/inputs").Handler(&resourceHandler{
		Server: s,
		Get:    s.InputList,
		Post:   s.InputPost,
	})
	r.Path("/system/inputs/types/all").Handler(&resourceHandler{
		Server: s,
		Get:    s.InputTypesAll,
	})
	r.Path("/system/inputs/{id}").Handler(&resourceHandler{
		Server: s,
		Get:    s.InputGet,
		Put:    s.InputPut,
		Delete: s.InputDelete,
	})
	r.Path("/system/inputs/{input_id}/extractors").Handler(&resourceHandler{
		Server: s,
		Get:    s.ExtractorList,
		Post:   s.ExtractorPost,
	})
	r.Path("/system/inputs/{input_id}/extractors/{id}").Handler(&resourceHandler{
		Server: s,
		Get:    s.ExtractorGet,
		Put:    s.ExtractorPut,
		Delete: s.ExtractorDelete,
	})
}
