// Package id generates prefixed identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// RevisionPrefix marks identifiers of published timeline snapshots.
const RevisionPrefix = "rev"

// Generate creates a prefixed NanoID such as "rev-V1StGXR8_Z5jdHi6B-myT".
// It fails only when the system cannot supply secure randomness.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// Revision returns a new snapshot revision identifier.
func Revision() (string, error) {
	return Generate(RevisionPrefix)
}
