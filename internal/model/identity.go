package model

import (
	"slices"
	"strings"
)

// Identity is the name a player connects with. Matching is exact and
// case-sensitive; only surrounding whitespace is trimmed.
type Identity = string

// NormalizeIdentity trims surrounding whitespace. ok is false for a blank identity.
func NormalizeIdentity(raw string) (id Identity, ok bool) {
	id = strings.TrimSpace(raw)
	return id, id != ""
}

// SortedIdentities returns the identities as a new lexicographically sorted slice
func SortedIdentities(ids []Identity) []Identity {
	out := slices.Clone(ids)
	if out == nil {
		out = []Identity{}
	}
	slices.Sort(out)
	return out
}
