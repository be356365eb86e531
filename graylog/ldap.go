// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package graylog

import "github.com/diffeo/go-gl2api/schema"

// LDAPConfig holds the server's single set of LDAP settings.
type LDAPConfig struct {
	schema.Object
	Enabled                 bool
	SystemUsername          string
	SystemPassword          string
	LDAPURI                 string
	UseStartTLS             bool
	TrustAllCertificates    bool
	ActiveDirectory         bool
	SearchBase              string
	SearchPattern           string
	DefaultGroup            string
	GroupMapping            map[string]interface{}
	GroupSearchBase         string
	GroupIDAttribute        string
	GroupSearchPattern      string
	DisplayNameAttribute    string
	AdditionalDefaultGroups []string
}

func (c *LDAPConfig) Fields() schema.Fields {
	return schema.Fields{
		schema.Bool("enabled", &c.Enabled),
		schema.String("system_username", &c.SystemUsername),
		schema.String("system_password", &c.SystemPassword),
		schema.String("ldap_uri", &c.LDAPURI),
		schema.Bool("use_start_tls", &c.UseStartTLS).Missing(false),
		schema.Bool("trust_all_certificates", &c.TrustAllCertificates).Missing(false),
		schema.Bool("active_directory", &c.ActiveDirectory),
		schema.String("search_base", &c.SearchBase),
		schema.String("search_pattern", &c.SearchPattern),
		schema.String("default_group", &c.DefaultGroup),
		schema.Dict("group_mapping", &c.GroupMapping).Nullable(),
		schema.String("group_search_base", &c.GroupSearchBase).Nullable(),
		schema.String("group_id_attribute", &c.GroupIDAttribute).Nullable(),
		schema.String("group_search_pattern", &c.GroupSearchPattern).Nullable(),
		schema.String("display_name_attribute", &c.DisplayNameAttribute).Nullable(),
		schema.Strings("additional_default_groups", &c.AdditionalDefaultGroups).
			Nullable().Missing([]interface{}{}),
	}
}

// LDAPConfigResource is the LDAP settings document.  Creating and
// updating it are the same PUT.
var LDAPConfigResource = &schema.Resource{
	Name: "ldap_config",
	Path: "system/ldap/settings",
	Operations: []schema.Operation{
		{Name: schema.OpGet, Method: "GET"},
		{Name: schema.OpAdd, Method: "PUT"},
		{Name: schema.OpUpdate, Method: "PUT"},
		{Name: schema.OpDelete, Method: "DELETE"},
	},
}
