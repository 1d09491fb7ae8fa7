// ABOUTME: Tests for tag-set helpers
// ABOUTME: Verifies additive encoding, superset tests, and sort order

package models

import (
	"reflect"
	"testing"
)

func TestEncodeTags(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		old  []string
		want []string
	}{
		{
			name: "append new tag",
			tags: []string{"Lead"},
			old:  []string{"Bass", "Pad"},
			want: []string{"Bass", "Pad", "Lead"},
		},
		{
			name: "no duplicate inserted",
			tags: []string{"Bass"},
			old:  []string{"Bass", "Pad"},
			want: []string{"Bass", "Pad"},
		},
		{
			name: "empty old",
			tags: []string{"Bass"},
			old:  nil,
			want: []string{"Bass"},
		},
		{
			name: "several at once",
			tags: []string{"Bass", "Sub", "Bass"},
			old:  []string{"Sub"},
			want: []string{"Sub", "Bass"},
		},
		{
			name: "blank tags skipped",
			tags: []string{"", "Keys"},
			old:  nil,
			want: []string{"Keys"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeTags(tt.tags, tt.old)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("EncodeTags(%v, %v) = %v, want %v", tt.tags, tt.old, got, tt.want)
			}
		})
	}
}

func TestEncodeTags_DoesNotMutateOld(t *testing.T) {
	old := []string{"Bass"}
	_ = EncodeTags([]string{"Lead"}, old)
	if len(old) != 1 || old[0] != "Bass" {
		t.Errorf("old slice mutated: %v", old)
	}
}

func TestHasAllTags(t *testing.T) {
	set := []string{"Bass", "Lead", "Sub"}

	if !HasAllTags(set, []string{"Bass", "Lead"}) {
		t.Error("superset should match")
	}
	if HasAllTags(set, []string{"Bass", "Pad"}) {
		t.Error("missing tag should not match")
	}
	if !HasAllTags(set, nil) {
		t.Error("empty want should always match")
	}
	if HasAllTags(nil, []string{"Bass"}) {
		t.Error("empty set should not match a non-empty want")
	}
}

func TestSortTags(t *testing.T) {
	tags := []string{"pad", "Bass", "FX", "arp", "Acid"}
	SortTags(tags)

	want := []string{"Acid", "arp", "Bass", "FX", "pad"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("SortTags = %v, want %v", tags, want)
	}
}

func TestPatchClone(t *testing.T) {
	p := &Patch{
		Name:   "Saw Lead",
		Bank:   "factory",
		Meta:   map[string]string{"color": "red"},
		Params: []int{1, 2, 3},
		Tags:   []string{"Lead"},
	}
	c := p.Clone()

	c.Params[0] = 99
	c.Tags[0] = "Pad"
	c.Meta["color"] = "blue"

	if p.Params[0] != 1 || p.Tags[0] != "Lead" || p.Meta["color"] != "red" {
		t.Error("Clone should not share storage with the original")
	}
}
