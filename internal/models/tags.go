// ABOUTME: Tag-set helpers shared by the database, CLI, and MCP layers
// ABOUTME: Tags are additive; EncodeTags never drops an existing tag
package models

import (
	"sort"
	"strings"
)

// EncodeTags appends the given tags to an existing tag set, skipping any that
// are already present. Existing order is preserved; new tags keep their given
// order after the old ones.
func EncodeTags(tags []string, old []string) []string {
	out := make([]string, len(old), len(old)+len(tags))
	copy(out, old)
	for _, t := range tags {
		if t == "" {
			continue
		}
		if !containsTag(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// HasAllTags reports whether the tag set contains every tag in want.
func HasAllTags(set []string, want []string) bool {
	for _, t := range want {
		if !containsTag(set, t) {
			return false
		}
	}
	return true
}

// SortTags sorts a list of tag names case-insensitively in place, with a
// case-sensitive tiebreak so the order is deterministic.
func SortTags(tags []string) {
	sort.Slice(tags, func(i, j int) bool {
		li, lj := strings.ToLower(tags[i]), strings.ToLower(tags[j])
		if li != lj {
			return li < lj
		}
		return tags[i] < tags[j]
	})
}

func containsTag(set []string, tag string) bool {
	for _, t := range set {
		if t == tag {
			return true
		}
	}
	return false
}
