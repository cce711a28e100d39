package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for range 500 {
		id, err := Generate("seg")
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestRevision_Format(t *testing.T) {
	rev, err := Revision()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rev, RevisionPrefix+"-"))
	// prefix, hyphen and the 21 character NanoID
	assert.Len(t, rev, len(RevisionPrefix)+1+21)
}
