// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memserver

import "github.com/gorilla/mux"

func defaultLDAP() doc {
	return doc{
		"enabled":                   false,
		"system_username":           "",
		"system_password":           "",
		"ldap_uri":                  "ldap://localhost:389/",
		"use_start_tls":             false,
		"trust_all_certificates":    false,
		"active_directory":          false,
		"search_base":               "",
		"search_pattern":            "",
		"display_name_attribute":    "",
		"default_group":             "Reader",
		"group_mapping":             doc{},
		"group_search_base":         nil,
		"group_id_attribute":        nil,
		"additional_default_groups": []interface{}{},
		"group_search_pattern":      nil,
	}
}

// LDAPGet returns the LDAP settings, or the defaults if none have been
// saved.
func (s *Server) LDAPGet(ctx *context) (interface{}, error) {
	if s.ldap == nil {
		return defaultLDAP(), nil
	}
	return s.ldap, nil
}

// LDAPPut saves the LDAP settings.
func (s *Server) LDAPPut(ctx *context, in doc) (interface{}, error) {
	if err := requireKeys(in, "ldap_uri", "search_base", "search_pattern"); err != nil {
		return nil, err
	}
	settings := defaultLDAP()
	merge(settings, in)
	s.ldap = settings
	return nil, nil
}

// LDAPDelete forgets the saved LDAP settings.
func (s *Server) LDAPDelete(ctx *context) (interface{}, error) {
	s.ldap = nil
	return nil, nil
}

func (s *Server) populateLDAP(r *mux.Router) {
	r.Path("/system/ldap/settings").Handler(&resourceHandler{
		Server: s,
		Get:    s.LDAPGet,
		Put:    s.LDAPPut,
		Delete: s.LDAPDelete,
	})
}
