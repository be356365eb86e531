// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package graylog

import "github.com/diffeo/go-gl2api/schema"

// Role is a named set of permissions.  Roles are addressed by name,
// not by id.
type Role struct {
	schema.Object
	Name        string
	Description string
	Permissions []string
	ReadOnly    bool
}

func (r *Role) Fields() schema.Fields {
	return schema.Fields{
		schema.String("name", &r.Name),
		schema.String("description", &r.Description).Nullable(),
		schema.Strings("permissions", &r.Permissions).Missing([]interface{}{}),
		schema.Bool("read_only", &r.ReadOnly).Missing(false),
	}
}

var RoleResource = &schema.Resource{
	Name: "roles",
	Path: "roles",
	Operations: []schema.Operation{
		{Name: schema.OpList, Method: "GET", Shape: schema.Keyed, Field: "roles"},
		{Name: schema.OpGet, Method: "GET", Path: "roles/{name}"},
		{Name: schema.OpAdd, Method: "POST"},
		{Name: schema.OpUpdate, Method: "PUT", Path: "roles/{name}"},
		{Name: schema.OpDelete, Method: "DELETE", Path: "roles/{name}"},
	},
}
