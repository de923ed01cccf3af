package note

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationPath(t *testing.T) {
	tests := []struct {
		loc  Location
		want string
	}{
		{Location{Title: "todo"}, "todo"},
		{Location{Title: "todo", Folder: "work"}, "work/todo"},
		{Location{Title: "a b", Folder: "x/y"}, "x/y/a b"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc.Path())
		})
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in   string
		want Location
	}{
		{"todo", Location{Title: "todo"}},
		{"work/todo", Location{Title: "todo", Folder: "work"}},
		{"/x/y/a b/", Location{Title: "a b", Folder: "x/y"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseLocation(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Path(), ParseLocation(got.Path()).Path())
		})
	}
}

func TestNormalizeFolder(t *testing.T) {
	assert.Equal(t, "work", NormalizeFolder(" /work/ "))
	assert.Equal(t, "", NormalizeFolder("/"))
	assert.Equal(t, "a/b", NormalizeFolder("a/b"))
}

func TestErrorMatching(t *testing.T) {
	conflict := fmt.Errorf("save: %w", &ConflictError{Op: "move", Detail: "exists"})
	assert.True(t, IsConflict(conflict))
	assert.False(t, IsValidation(conflict))

	inner := errors.New("connection refused")
	te := &TransportError{Op: "list", Err: inner}
	assert.ErrorIs(t, te, inner)
	assert.Equal(t, "list: connection refused", te.Error())

	te = &TransportError{Op: "write", Status: 500, Detail: "boom"}
	assert.Equal(t, "write: status 500: boom", te.Error())
	assert.True(t, IsTransport(fmt.Errorf("refresh: %w", te)))
	assert.False(t, IsTransport(conflict))
}
