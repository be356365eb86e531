// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package graylog

import "fmt"

// ErrObjectNotFound is returned when a lookup by name or id finds
// nothing.
type ErrObjectNotFound struct {
	// Type is the kind of object, such as "Stream".
	Type string

	// Name is the title that was searched for, if any.
	Name string

	// ID is the identifier that was searched for, if any.
	ID string
}

func (e ErrObjectNotFound) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("No %s object with name %s found", e.Type, e.Name)
	}
	if e.ID != "" {
		return fmt.Sprintf("No %s object with id %s found", e.Type, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Type)
}

// FindByTitle returns the first item whose title is name.  kind names
// the object type in the error if there is no match.
func FindByTitle[P any](items []P, title func(P) string, kind, name string) (P, error) {
	for _, item := range items {
		if title(item) == name {
			return item, nil
		}
	}
	var zero P
	return zero, ErrObjectNotFound{Type: kind, Name: name}
}
