// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package graylog_test

import (
	"testing"

	"github.com/diffeo/go-gl2api/graylog"
	"github.com/stretchr/testify/assert"
)

func streamTitle(s *graylog.Stream) string { return s.Title }

func TestFindByTitle(t *testing.T) {
	streams := []*graylog.Stream{
		{ID: "a", Title: "errors"},
		{ID: "b", Title: "audit"},
		{ID: "c", Title: "errors"},
	}
	s, err := graylog.FindByTitle(streams, streamTitle, "Stream", "errors")
	if assert.NoError(t, err) {
		assert.Equal(t, "a", s.ID, "first match wins")
	}

	s, err = graylog.FindByTitle(streams, streamTitle, "Stream", "audit")
	if assert.NoError(t, err) {
		assert.Equal(t, "b", s.ID)
	}
}

func TestFindByTitleMissing(t *testing.T) {
	s, err := graylog.FindByTitle(nil, streamTitle, "Stream", "errors")
	assert.Nil(t, s)
	assert.Equal(t, graylog.ErrObjectNotFound{Type: "Stream", Name: "errors"}, err)
	assert.EqualError(t, err, "No Stream object with name errors found")
}

func TestErrObjectNotFound(t *testing.T) {
	assert.EqualError(t, graylog.ErrObjectNotFound{Type: "Input", ID: "abc"},
		"No Input object with id abc found")
	assert.EqualError(t, graylog.ErrObjectNotFound{Type: "LDAPConfig"},
		"LDAPConfig not found")
}
