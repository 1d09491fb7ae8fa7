// ABOUTME: Tests for the patch database's bootstrap, search, tag, and export operations
// ABOUTME: Runs against a small synthetic schema to keep fixtures readable

package library

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/thomashuss/patch1/internal/models"
	"github.com/thomashuss/patch1/internal/schema"
	"github.com/thomashuss/patch1/internal/synth1"
)

func testEngine(t *testing.T) *schema.Engine {
	t.Helper()
	e, err := schema.NewEngine(&schema.Definition{
		SynthName:     "Test",
		PluginID:      0x54455354,
		FilePattern:   regexp.MustCompile(`^[0-9]{3}\.tst$`),
		FileBase:      "001",
		FileExt:       "tst",
		MetaFields:    []string{"color"},
		MetaDefaults:  map[string]string{"color": "red"},
		ParamNames:    []string{"a", "b", "c"},
		ParamDefaults: []int{0, 1, 2},
		ParamMax:      []int{127, 127, 127},
		FileLayout:    "{name}\ncolor={color}\n{params}",
		ParamLayout:   "{index},{value}",
		ParamDelim:    "\n",
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// loadedDatabase builds a database holding the given patches without going
// through the filesystem.
func loadedDatabase(t *testing.T, patches ...*models.Patch) *Database {
	t.Helper()
	db := New(testEngine(t))
	db.patches = patches
	db.loaded = true
	db.rebuilt()
	db.refresh()
	return db
}

func patch(name, bank string, params []int, tags ...string) *models.Patch {
	return &models.Patch{
		Name:   name,
		Bank:   bank,
		Meta:   map[string]string{"color": "red"},
		Params: params,
		Tags:   tags,
	}
}

func writeBank(t *testing.T, root, bank string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, bank)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBootstrap(t *testing.T) {
	root := t.TempDir()
	writeBank(t, root, "Factory", map[string]string{
		"001.tst":   "Warm Pad\ncolor=red\n0,1\n1,2\n2,3",
		"002.tst":   "Saw Lead\ncolor=blue\n0,4",
		"003.tst":   "complete garbage",        // matches the name pattern, fails to parse
		"notes.txt": "not a patch file at all", // name pattern rejects it
	})
	writeBank(t, root, "User", map[string]string{
		"001.tst": "My Bass\ncolor=red\n1,9",
	})

	db := New(testEngine(t))
	if err := db.Bootstrap(root); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if db.Len() != 3 {
		t.Fatalf("Len = %d, want 3 parsed patches", db.Len())
	}
	if !db.IsLoaded() || !db.Modified() {
		t.Error("bootstrap should leave the database loaded and modified")
	}
	if want := []string{"Factory", "User"}; !reflect.DeepEqual(db.Banks(), want) {
		t.Errorf("Banks = %v, want %v", db.Banks(), want)
	}

	// Unset parameters were filled with schema defaults.
	infos, err := db.KeywordSearch("Saw Lead")
	if err != nil {
		t.Fatalf("KeywordSearch: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("found %d patches named Saw Lead, want 1", len(infos))
	}
	p, err := db.Patch(infos[0].Index)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{4, 1, 2}; !reflect.DeepEqual(p.Params, want) {
		t.Errorf("params = %v, want %v", p.Params, want)
	}
}

func TestBootstrap_Errors(t *testing.T) {
	db := New(testEngine(t))

	if err := db.Bootstrap(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("Bootstrap should fail for a missing directory")
	}

	empty := t.TempDir()
	if err := db.Bootstrap(empty); err == nil {
		t.Error("Bootstrap should fail when no patch files parse")
	}
	if db.IsLoaded() {
		t.Error("failed bootstrap should not mark the database loaded")
	}
}

func TestFindByValue(t *testing.T) {
	db := loadedDatabase(t,
		patch("Warm Pad", "Factory", []int{1, 2, 3}, "Pad"),
		patch("Ice Lead", "Factory", []int{4, 5, 6}, "Lead"),
		patch("warmth", "User", []int{7, 8, 9}),
	)

	tests := []struct {
		name  string
		find  string
		field string
		mode  SearchMode
		want  []string
	}{
		{"substring is case-insensitive", "WARM", "name", MatchSubstring, []string{"Warm Pad", "warmth"}},
		{"exact matches whole value", "Warm Pad", "name", MatchExact, []string{"Warm Pad"}},
		{"exact is case-sensitive", "warm pad", "name", MatchExact, nil},
		{"pattern anchors", "^warm", "name", MatchPattern, []string{"Warm Pad", "warmth"}},
		{"bank field", "User", "bank", MatchExact, []string{"warmth"}},
		{"tags field", "lead", "tags", MatchSubstring, []string{"Ice Lead"}},
		{"meta field", "red", "color", MatchExact, []string{"Warm Pad", "Ice Lead", "warmth"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			infos, err := db.FindByValue(tt.find, tt.field, tt.mode)
			if err != nil {
				t.Fatalf("FindByValue: %v", err)
			}
			var names []string
			for _, info := range infos {
				names = append(names, info.Name)
			}
			if !reflect.DeepEqual(names, tt.want) {
				t.Errorf("names = %v, want %v", names, tt.want)
			}
		})
	}

	if _, err := db.FindByValue("x", "nonsense", MatchSubstring); err == nil {
		t.Error("unknown field should be an error")
	}
	if _, err := db.FindByValue("(", "name", MatchPattern); err == nil {
		t.Error("bad pattern should be an error")
	}
}

func TestFindByValue_Unloaded(t *testing.T) {
	db := New(testEngine(t))
	if _, err := db.FindByValue("x", "name", MatchSubstring); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("err = %v, want ErrNoDatabase", err)
	}
}

func TestFindByTags(t *testing.T) {
	db := loadedDatabase(t,
		patch("A", "F", []int{1, 2, 3}, "Bass", "Warm"),
		patch("B", "F", []int{4, 5, 6}, "Bass"),
		patch("C", "F", []int{7, 8, 9}),
	)

	got, err := db.FindByTags([]string{"Bass"})
	if err != nil {
		t.Fatalf("FindByTags: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("found %d patches tagged Bass, want 2", len(got))
	}

	got, err = db.FindByTags([]string{"Bass", "Warm"})
	if err != nil {
		t.Fatalf("FindByTags: %v", err)
	}
	if len(got) != 1 || got[0].Name != "A" {
		t.Errorf("superset query = %v, want only A", got)
	}

	// An empty tag list matches everything.
	got, err = db.FindByTags(nil)
	if err != nil {
		t.Fatalf("FindByTags: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("empty query matched %d patches, want all 3", len(got))
	}
}

func TestFindByTags_Unloaded(t *testing.T) {
	db := New(testEngine(t))
	if _, err := db.FindByTags([]string{"Bass"}); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("err = %v, want ErrNoDatabase", err)
	}
}

func TestTagsFromRules(t *testing.T) {
	db := loadedDatabase(t,
		patch("Deep Bass", "F", []int{1, 2, 3}),
		patch("Bass Drum", "F", []int{4, 5, 6}),
		patch("Soft Pad", "F", []int{7, 8, 9}, "Existing"),
	)

	added, err := db.TagsFromRules(map[string]string{
		"bass": `bass(?! ?drum)`,
		"pad":  `pad`,
	}, "name")
	if err != nil {
		t.Fatalf("TagsFromRules: %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	for i, want := range [][]string{{"bass"}, nil, {"Existing", "pad"}} {
		p, err := db.Patch(i)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(p.Tags, want) {
			t.Errorf("patch %d tags = %v, want %v", i, p.Tags, want)
		}
	}

	if _, err := db.TagsFromRules(map[string]string{"x": "("}, "name"); err == nil {
		t.Error("invalid rule pattern should be an error")
	}
}

func TestTagsFromRules_BadRuleLeavesStateUntouched(t *testing.T) {
	db := loadedDatabase(t, patch("Deep Bass", "F", []int{1, 2, 3}))

	// One rule matches, one does not compile. Rule order is map order, so a
	// lazy compile could apply the good rule before hitting the bad one; the
	// whole call must fail without mutating anything.
	added, err := db.TagsFromRules(map[string]string{
		"Bass":   `bass`,
		"Broken": `(`,
	}, "name")
	if err == nil {
		t.Fatal("a rule that does not compile should fail the call")
	}
	if added != 0 {
		t.Errorf("added = %d, want 0", added)
	}

	tags, err := db.GetTags(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 0 {
		t.Errorf("tags = %v, want none applied", tags)
	}
	if db.Modified() {
		t.Error("failed call should not mark the database modified")
	}
	if len(db.Tags()) != 0 {
		t.Errorf("tag cache = %v, want empty", db.Tags())
	}
}

func TestTagsFromRules_BadFieldLeavesStateUntouched(t *testing.T) {
	db := loadedDatabase(t, patch("Deep Bass", "F", []int{1, 2, 3}))

	if _, err := db.TagsFromRules(map[string]string{"Bass": `bass`}, "nonsense"); err == nil {
		t.Fatal("an unknown field should fail the call")
	}
	tags, err := db.GetTags(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 0 || db.Modified() {
		t.Errorf("tags = %v, Modified = %v; want no mutation", tags, db.Modified())
	}
}

func TestRefreshIdempotent(t *testing.T) {
	db := loadedDatabase(t,
		patch("A", "Factory", []int{1, 2, 3}, "Bass", "Warm"),
		patch("B", "User", []int{4, 5, 6}, "Pad"),
	)

	tags := append([]string(nil), db.Tags()...)
	banks := append([]string(nil), db.Banks()...)

	db.refresh()
	db.refresh()

	if !reflect.DeepEqual(db.Tags(), tags) {
		t.Errorf("Tags after refresh = %v, want unchanged %v", db.Tags(), tags)
	}
	if !reflect.DeepEqual(db.Banks(), banks) {
		t.Errorf("Banks after refresh = %v, want unchanged %v", db.Banks(), banks)
	}
}

func TestChangeTags(t *testing.T) {
	db := loadedDatabase(t, patch("A", "F", []int{1, 2, 3}, "Old"))

	if err := db.ChangeTags(0, []string{"New"}, false); err != nil {
		t.Fatalf("ChangeTags: %v", err)
	}
	tags, _ := db.GetTags(0)
	if want := []string{"Old", "New"}; !reflect.DeepEqual(tags, want) {
		t.Errorf("additive tags = %v, want %v", tags, want)
	}

	if err := db.ChangeTags(0, []string{"Only"}, true); err != nil {
		t.Fatalf("ChangeTags: %v", err)
	}
	tags, _ = db.GetTags(0)
	if want := []string{"Only"}; !reflect.DeepEqual(tags, want) {
		t.Errorf("replaced tags = %v, want %v", tags, want)
	}

	if err := db.ChangeTags(99, []string{"x"}, false); err == nil {
		t.Error("out-of-range index should be an error")
	}
}

func TestTagsCacheDropsOrphans(t *testing.T) {
	db := loadedDatabase(t, patch("A", "F", []int{1, 2, 3}, "Gone"))

	if err := db.ChangeTags(0, []string{"Kept"}, true); err != nil {
		t.Fatal(err)
	}
	if want := []string{"Kept"}; !reflect.DeepEqual(db.Tags(), want) {
		t.Errorf("Tags = %v, want %v; orphaned names must not linger", db.Tags(), want)
	}
}

func TestRemoveDuplicates(t *testing.T) {
	db := loadedDatabase(t,
		patch("First", "F", []int{1, 2, 3}, "Bass"),
		patch("Copy", "F", []int{1, 2, 3}, "Warm"),
		patch("Other", "F", []int{9, 9, 9}),
	)

	if removed := db.RemoveDuplicates(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if db.Len() != 2 {
		t.Errorf("Len = %d, want 2", db.Len())
	}

	// The representative keeps the union of the duplicates' tags.
	p, err := db.Patch(0)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Bass", "Warm"}; !reflect.DeepEqual(p.Tags, want) {
		t.Errorf("merged tags = %v, want %v", p.Tags, want)
	}

	empty := New(testEngine(t))
	if removed := empty.RemoveDuplicates(); removed != 0 {
		t.Errorf("unloaded database removed %d", removed)
	}
	if empty.Modified() {
		t.Error("unloaded database should stay unmodified")
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patches.db")
	db := loadedDatabase(t,
		patch("Warm Pad", "Factory", []int{1, 2, 3}, "Pad"),
		patch("Ice Lead", "User", []int{4, 5, 6}),
	)
	db.modified = true

	if err := db.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if db.Modified() {
		t.Error("Save should clear the modified flag")
	}
	// A second save with no changes must not touch the file.
	before, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Save(path); err != nil {
		t.Fatalf("no-op Save: %v", err)
	}
	after, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Error("no-op Save rewrote the file")
	}

	fresh := New(testEngine(t))
	if err := fresh.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if fresh.Len() != 2 {
		t.Errorf("loaded Len = %d, want 2", fresh.Len())
	}
	if fresh.Modified() {
		t.Error("a freshly loaded database should not be modified")
	}
	if want := []string{"Pad"}; !reflect.DeepEqual(fresh.Tags(), want) {
		t.Errorf("Tags = %v, want %v", fresh.Tags(), want)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.db")
	if err := os.WriteFile(path, []byte("this is not sqlite"), 0o644); err != nil {
		t.Fatal(err)
	}

	db := loadedDatabase(t, patch("A", "F", []int{1, 2, 3}))
	err := db.Load(path)
	if !errors.Is(err, ErrInvalidDatabase) {
		t.Errorf("err = %v, want ErrInvalidDatabase", err)
	}
	if db.IsLoaded() || db.Len() != 0 {
		t.Error("failed load should leave the database empty")
	}
}

func TestSaveUnloaded(t *testing.T) {
	db := New(testEngine(t))
	if err := db.Save(filepath.Join(t.TempDir(), "x.db")); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("err = %v, want ErrNoDatabase", err)
	}
}

func TestWritePatch_Native(t *testing.T) {
	db := loadedDatabase(t, patch("Warm Pad", "F", []int{1, 2, 3}))
	dir := t.TempDir()

	written, err := db.WritePatch(0, ExportNative, dir)
	if err != nil {
		t.Fatalf("WritePatch: %v", err)
	}
	if want := filepath.Join(dir, "001.tst"); written != want {
		t.Errorf("written = %q, want synthesized %q", written, want)
	}

	raw, err := os.ReadFile(written)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), "Warm Pad\n") {
		t.Errorf("file starts with %q", raw[:min(len(raw), 16)])
	}
}

func TestWritePatch_ContainerNaming(t *testing.T) {
	db := loadedDatabase(t, patch("Warm Pad!", "F", []int{1, 2, 3}))
	dir := t.TempDir()

	written, err := db.WritePatch(0, ExportFXPParams, dir)
	if err != nil {
		t.Fatalf("WritePatch: %v", err)
	}
	if want := filepath.Join(dir, "WarmPad.fxp"); written != want {
		t.Errorf("written = %q, want sanitized %q", written, want)
	}
}

func TestWritePatch_ChunkNeedsSchemaSupport(t *testing.T) {
	db := loadedDatabase(t, patch("A", "F", []int{1, 2, 3}))
	if _, err := db.WritePatch(0, ExportFXPChunk, t.TempDir()); err == nil {
		t.Error("chunk export should fail for a schema without a chunk format")
	}
}

func TestWritePatch_Synth1Chunk(t *testing.T) {
	e, err := schema.NewEngine(synth1.New())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	db := New(e)
	params := make([]int, e.Definition().NumParams())
	e.FillDefaults(params)
	db.patches = []*models.Patch{{
		Name:   "Init",
		Bank:   "Factory",
		Meta:   map[string]string{"color": "default", "ver": "113"},
		Params: params,
	}}
	db.loaded = true
	db.rebuilt()
	db.refresh()

	written, err := db.WritePatch(0, ExportFXPChunk, t.TempDir())
	if err != nil {
		t.Fatalf("WritePatch: %v", err)
	}
	info, err := os.Stat(written)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("chunk export wrote an empty file")
	}
}

func TestWritePatch_UnknownKind(t *testing.T) {
	db := loadedDatabase(t, patch("A", "F", []int{1, 2, 3}))
	if _, err := db.WritePatch(0, ExportKind("midi"), t.TempDir()); err == nil {
		t.Error("unknown export kind should be an error")
	}
}
