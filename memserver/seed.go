// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memserver

// Class names of the seeded input types.
const (
	GELFUDPInput   = "org.graylog2.inputs.gelf.udp.GELFUDPInput"
	SyslogUDPInput = "org.graylog2.inputs.syslog.udp.SyslogUDPInput"
)

// Class names of the seeded index strategies.
const (
	DeletionRetention    = "org.graylog2.indexer.retention.strategies.DeletionRetentionStrategy"
	MessageCountRotation = "org.graylog2.indexer.rotation.strategies.MessageCountRotationStrategy"
)

func bindOption(defaultPort int) doc {
	return doc{
		"bind_address": doc{
			"type":            "text",
			"human_name":      "Bind address",
			"additional_info": doc{},
			"default_value":   "0.0.0.0",
			"description":     "Address to listen on. For example 0.0.0.0 or 127.0.0.1.",
			"attributes":      []interface{}{},
			"is_optional":     false,
		},
		"port": doc{
			"type":            "number",
			"human_name":      "Port",
			"additional_info": doc{},
			"default_value":   defaultPort,
			"description":     "Port to listen on.",
			"attributes":      []interface{}{},
			"is_optional":     false,
		},
		"override_source": doc{
			"type":            "text",
			"human_name":      "Override source",
			"additional_info": doc{},
			"default_value":   nil,
			"description":     nil,
			"attributes":      []interface{}{"is_optional"},
			"is_optional":     true,
		},
	}
}

// seed populates a new server.  It runs before the server is shared.
func (s *Server) seed() {
	s.inputTypes[GELFUDPInput] = doc{
		"type":                    GELFUDPInput,
		"name":                    "GELF UDP",
		"requested_configuration": bindOption(12201),
		"link_to_docs":            "http://docs.graylog.org/en/2.4/pages/sending_data.html#gelf-graylog-extended-log-format",
		"is_exclusive":            false,
	}
	s.inputTypes[SyslogUDPInput] = doc{
		"type":                    SyslogUDPInput,
		"name":                    "Syslog UDP",
		"requested_configuration": bindOption(514),
		"link_to_docs":            "http://docs.graylog.org/en/2.4/pages/sending_data.html#syslog",
		"is_exclusive":            false,
	}

	s.retention = []doc{{
		"type":           DeletionRetention,
		"default_config": doc{"type": "org.graylog2.indexer.retention.strategies.DeletionRetentionStrategyConfig", "max_number_of_indices": 20},
		"json_schema":    doc{"type": "object", "id": "urn:jsonschema:org:graylog2:indexer:retention:strategies:DeletionRetentionStrategyConfig"},
	}}
	s.rotation = []doc{{
		"type":           MessageCountRotation,
		"default_config": doc{"type": "org.graylog2.indexer.rotation.strategies.MessageCountRotationStrategyConfig", "max_docs_per_index": 20000000},
		"json_schema":    doc{"type": "object", "id": "urn:jsonschema:org:graylog2:indexer:rotation:strategies:MessageCountRotationStrategyConfig"},
	}}

	indexSetID := newID()
	s.indexSets[indexSetID] = doc{
		"id":                                  indexSetID,
		"title":                               DefaultIndexSetTitle,
		"description":                         "The Graylog default index set",
		"index_prefix":                        "graylog",
		"shards":                              4,
		"replicas":                            0,
		"rotation_strategy_class":             MessageCountRotation,
		"rotation_strategy":                   s.rotation[0]["default_config"],
		"retention_strategy_class":            DeletionRetention,
		"retention_strategy":                  s.retention[0]["default_config"],
		"creation_date":                       s.now(),
		"index_analyzer":                      "standard",
		"index_optimization_max_num_segments": 1,
		"index_optimization_disabled":         false,
		"writable":                            true,
		"default":                             true,
	}

	streamID := newID()
	s.streams[streamID] = doc{
		"id":                                 streamID,
		"creator_user_id":                    "local:admin",
		"outputs":                            []interface{}{},
		"matching_type":                      "AND",
		"description":                        "Stream containing all messages",
		"created_at":                         s.now(),
		"disabled":                           false,
		"alert_conditions":                   []interface{}{},
		"alert_receivers":                    doc{"emails": []interface{}{}, "users": []interface{}{}},
		"title":                              DefaultStreamTitle,
		"content_pack":                       nil,
		"remove_matches_from_default_stream": false,
		"index_set_id":                       indexSetID,
		"is_default":                         true,
	}
	s.rules[streamID] = make(map[string]doc)
	s.defaultStream = streamID

	s.ruleTypes = []doc{
		{"id": 1, "name": "EXACT", "short_desc": "match exactly", "long_desc": "match exactly"},
		{"id": 2, "name": "REGEX", "short_desc": "match regular expression", "long_desc": "match regular expression"},
		{"id": 3, "name": "GREATER", "short_desc": "greater than", "long_desc": "be greater than"},
		{"id": 4, "name": "SMALLER", "short_desc": "smaller than", "long_desc": "be smaller than"},
		{"id": 5, "name": "PRESENCE", "short_desc": "field presence", "long_desc": "be present"},
	}

	s.roles["Admin"] = doc{
		"name":        "Admin",
		"description": "Grants all permissions for Graylog administrators (built-in)",
		"permissions": []interface{}{"*"},
		"read_only":   true,
	}
	s.roles["Reader"] = doc{
		"name":        "Reader",
		"description": "Grants basic permissions for every Graylog user (built-in)",
		"permissions": []interface{}{"indexercluster:read", "messagecount:read", "journal:read", "messages:read"},
		"read_only":   true,
	}
}

// AddInputType registers an additional input type, keyed by its
// "type" class name.
func (s *Server) AddInputType(t map[string]interface{}) {
	s.lock.Lock()
	defer s.lock.Unlock()
	class, _ := t["type"].(string)
	s.inputTypes[class] = copyDoc(t)
}
