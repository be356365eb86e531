// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memserver

import "github.com/gorilla/mux"

func (s *Server) role(ctx *context) (doc, error) {
	name := ctx.Vars["name"]
	role, present := s.roles[name]
	if !present {
		return nil, notFoundf("Couldn't find role %s", name)
	}
	return role, nil
}

func setRole(role, in doc) error {
	if err := requireKeys(in, "name", "permissions"); err != nil {
		return err
	}
	if _, ok := in["permissions"].([]interface{}); !ok {
		return badRequestf("permissions must be a list")
	}
	role["name"] = in["name"]
	role["description"] = in["description"]
	role["permissions"] = in["permissions"]
	return nil
}

// RoleList lists all roles.
func (s *Server) RoleList(ctx *context) (interface{}, error) {
	return list("roles", values(s.roles)), nil
}

// RolePost creates a role.  Graylog answers with the whole role and
// 201 Created.
func (s *Server) RolePost(ctx *context, in doc) (interface{}, error) {
	role := doc{"read_only": false}
	if err := setRole(role, in); err != nil {
		return nil, err
	}
	name, _ := role["name"].(string)
	if _, exists := s.roles[name]; exists {
		return nil, badRequestf("Role %s already exists", name)
	}
	s.roles[name] = role
	return responseCreated{Body: role}, nil
}

// RoleGet returns one role.
func (s *Server) RoleGet(ctx *context) (interface{}, error) {
	return s.role(ctx)
}

// RolePut replaces a role, possibly renaming it.  Built-in roles are
// read-only.
func (s *Server) RolePut(ctx *context, in doc) (interface{}, error) {
	role, err := s.role(ctx)
	if err != nil {
		return nil, err
	}
	if role["read_only"] == true {
		return nil, badRequestf("Cannot update read only role %s", role["name"])
	}
	updated := copyDoc(role)
	if err := setRole(updated, in); err != nil {
		return nil, err
	}
	name, _ := updated["name"].(string)
	if _, exists := s.roles[name]; exists && name != role["name"] {
		return nil, badRequestf("Role %s already exists", name)
	}
	delete(s.roles, role["name"].(string))
	s.roles[name] = updated
	return updated, nil
}

// RoleDelete removes a role.  Built-in roles cannot be removed.
func (s *Server) RoleDelete(ctx *context) (interface{}, error) {
	role, err := s.role(ctx)
	if err != nil {
		return nil, err
	}
	if role["read_only"] == true {
		return nil, badRequestf("Cannot delete read only system role %s", role["name"])
	}
	delete(s.roles, role["name"].(string))
	return nil, nil
}

func (s *Server) populateRoles(r *mux.Router) {
	r.Path("/roles").Handler(&resourceHandler{
		Server: s,
		Get:    s.RoleList,
		Post:   s.RolePost,
	})
	r.Path("/roles/{name}").Handler(&resourceHandler{
		Server: s,
		Get:    s.RoleGet,
		Put:    s.RolePut,
		Delete: s.RoleDelete,
	})
}
