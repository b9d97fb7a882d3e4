// Package idgen generates prefix-qualified, K-sortable identifiers
// ("je_01h2xcejqtf2nbrexx3vqjhp41") backed by TypeID.
package idgen

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// TypeID generates identifiers with typeid.Generate.
type TypeID struct{}

// NewID generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func (TypeID) NewID(prefix string) string {
	tid, err := typeid.Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("idgen: invalid prefix %q: %v", prefix, err))
	}
	return tid.String()
}

// Validate reports whether s is a well-formed id carrying the expected prefix.
func Validate(s string, prefix string) error {
	tid, err := typeid.Parse(s)
	if err != nil {
		return fmt.Errorf("idgen: parse %q: %w", s, err)
	}
	if tid.Prefix() != prefix {
		return fmt.Errorf("idgen: expected prefix %q, got %q", prefix, tid.Prefix())
	}
	return nil
}
