// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package memserver is an in-memory imitation of the parts of the
// Graylog 2 REST API that the graylog package declares.  It is meant
// for tests and for the gl2mock command, not for production use.
//
// Status Codes
//
// The server mirrors Graylog's replies where clients depend on them.
// Creating an input answers 201 with {"id": ...}; creating a stream,
// a stream rule, or an extractor answers 201 with {"stream_id": ...},
// {"streamrule_id": ...}, or {"extractor_id": ...}.  Creating a role
// answers 201 with the whole role, and creating an index set answers
// 200 with the whole index set.  Deletes, stream resume and pause, and
// LDAP settings updates answer 204 No Content.  Errors are JSON
// documents of the form
//
//     {"type": "ApiError", "message": "..."}
//
// Authentication
//
// If Server.Username is set, every request must carry matching HTTP
// basic authentication or is refused with 401.
//
// URL Scheme
//
// All paths are under /api:
//
//     /system/inputs
//     /system/inputs/{id}
//     /system/inputs/types/all
//     /system/inputs/{input_id}/extractors
//     /system/inputs/{input_id}/extractors/{id}
//     /system/indices/index_sets
//     /system/indices/index_sets/{id}
//     /system/indices/index_sets/{id}/default
//     /system/indices/retention/strategies
//     /system/indices/rotation/strategies
//     /system/ldap/settings
//     /streams
//     /streams/{id}
//     /streams/{id}/resume
//     /streams/{id}/pause
//     /streams/{stream_id}/rules
//     /streams/{stream_id}/rules/{id}
//     /streams/{stream_id}/rules/types
//     /roles
//     /roles/{name}
//     /search/universal/relative
//     /search/universal/absolute
package memserver
