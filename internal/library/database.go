// ABOUTME: In-memory indexed patch collection with tags, search, dedup, and export
// ABOUTME: Single-threaded by contract; callers serialize operations themselves
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thomashuss/patch1/internal/fxp"
	"github.com/thomashuss/patch1/internal/models"
	"github.com/thomashuss/patch1/internal/schema"
	"github.com/thomashuss/patch1/internal/storage/sqlite"
	"github.com/thomashuss/patch1/internal/util"
)

// SearchMode selects how FindByValue matches values.
type SearchMode int

const (
	// MatchSubstring is a case-insensitive substring match, the default.
	MatchSubstring SearchMode = iota
	// MatchExact requires the whole value to match, case-sensitively.
	MatchExact
	// MatchPattern treats the query as a case-insensitive regular expression.
	MatchPattern
)

// ExportKind selects the on-disk format WritePatch produces.
type ExportKind string

const (
	// ExportNative writes the synthesizer's own text patch file.
	ExportNative ExportKind = "native"
	// ExportFXPParams writes a preset container holding a plain float
	// parameter array. Lossy; prefer ExportFXPChunk when available.
	ExportFXPParams ExportKind = "fxp-params"
	// ExportFXPChunk writes a preset container holding the vendor's
	// opaque chunk.
	ExportFXPChunk ExportKind = "fxp-chunk"
)

var (
	// ErrNoDatabase reports an operation that needs a loaded database.
	ErrNoDatabase = errors.New("no patch database is loaded")
	// ErrNotTrained reports classification without a live classifier model.
	ErrNotTrained = errors.New("no classifier model; train one first")
	// ErrInvalidDatabase reports an unreadable or corrupt persisted database.
	ErrInvalidDatabase = errors.New("invalid patch database")
)

// Database is the central patch collection for one schema. All operations
// run on the caller's goroutine; bootstrap parsing is the only internally
// parallel step.
type Database struct {
	engine  *schema.Engine
	patches []*models.Patch

	tags  []string // distinct tags, case-insensitive sorted, zero-member names pruned
	banks []string // distinct banks, case-insensitive sorted

	// generation changes whenever the table is rebuilt or reloaded; a
	// classifier model is only valid for the generation it was fit against.
	generation string
	model      *knnModel

	loaded   bool
	modified bool
	jobs     int
}

// New creates an empty database for the given schema engine.
func New(engine *schema.Engine) *Database {
	return &Database{engine: engine, jobs: defaultJobs()}
}

func defaultJobs() int {
	if n := runtime.NumCPU(); n < 4 {
		return n
	}
	return 4
}

// SetJobs bounds the bootstrap worker pool.
func (db *Database) SetJobs(n int) {
	if n > 0 {
		db.jobs = n
	}
}

// Engine returns the schema engine the database was built with.
func (db *Database) Engine() *schema.Engine { return db.engine }

// IsLoaded reports whether a database is active.
func (db *Database) IsLoaded() bool { return db.loaded }

// Modified reports whether the database has unsaved changes.
func (db *Database) Modified() bool { return db.modified }

// Len returns the number of patches.
func (db *Database) Len() int { return len(db.patches) }

// Tags returns the cached distinct tag names.
func (db *Database) Tags() []string { return db.tags }

// Banks returns the cached distinct bank names.
func (db *Database) Banks() []string { return db.banks }

// Patch returns the full patch at index.
func (db *Database) Patch(index int) (*models.Patch, error) {
	if !db.loaded {
		return nil, ErrNoDatabase
	}
	if index < 0 || index >= len(db.patches) {
		return nil, fmt.Errorf("patch index %d out of range", index)
	}
	return db.patches[index], nil
}

// GetTags returns the tag set of the patch at index.
func (db *Database) GetTags(index int) ([]string, error) {
	p, err := db.Patch(index)
	if err != nil {
		return nil, err
	}
	return p.Tags, nil
}

// Bootstrap builds a new database from every native patch file under root,
// replacing the current one. Files failing the schema's sanity check or
// parse are silently skipped. Parsing runs on a small bounded worker pool;
// result order is not preserved.
func (db *Database) Bootstrap(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("patch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("patch directory: %s is not a directory", root)
	}

	pattern := db.engine.Definition().FilePattern
	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && pattern.MatchString(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning patch directory: %w", err)
	}

	var (
		mu      sync.Mutex
		patches []*models.Patch
	)
	var g errgroup.Group
	g.SetLimit(db.jobs)
	for _, path := range files {
		g.Go(func() error {
			p, err := db.engine.ReadPatchFile(path)
			if err != nil {
				// Malformed files are not fatal during bootstrap.
				return nil
			}
			db.engine.FillDefaults(p.Params)
			mu.Lock()
			patches = append(patches, p)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(patches) == 0 {
		return fmt.Errorf("no %s patch files found under %s", db.engine.Definition().SynthName, root)
	}

	db.patches = patches
	db.loaded = true
	db.rebuilt()
	db.dirty()
	return nil
}

// Load replaces the database with the persisted unit at path. Any read or
// format error is reported as an invalid database and the in-memory state
// reverts to empty.
func (db *Database) Load(path string) error {
	def := db.engine.Definition()
	patches, err := sqlite.LoadLibrary(path, def.SynthName, def.NumParams())
	if err != nil {
		db.reset()
		return fmt.Errorf("%w: %v", ErrInvalidDatabase, err)
	}

	db.patches = patches
	db.loaded = true
	db.modified = false
	db.rebuilt()
	db.refresh()
	return nil
}

// Save persists the database to path as one unit, rewriting it entirely.
// It is a no-op when nothing changed since the last save.
func (db *Database) Save(path string) error {
	if !db.loaded {
		return ErrNoDatabase
	}
	if !db.modified {
		return nil
	}
	if err := sqlite.SaveLibrary(path, db.engine.Definition().SynthName, db.patches); err != nil {
		return fmt.Errorf("saving patch database: %w", err)
	}
	db.modified = false
	return nil
}

// FindByValue finds patches whose field matches the query under the given
// mode. field is "name", "bank", "tags", or a schema metadata field.
// Returns a metadata-only view keyed by stable patch index.
func (db *Database) FindByValue(find, field string, mode SearchMode) ([]models.PatchInfo, error) {
	if !db.loaded {
		return nil, ErrNoDatabase
	}

	var match func(string) bool
	switch mode {
	case MatchExact:
		match = func(v string) bool { return v == find }
	case MatchPattern:
		re, err := regexp.Compile("(?i)" + find)
		if err != nil {
			return nil, fmt.Errorf("search pattern: %w", err)
		}
		match = re.MatchString
	default:
		lower := strings.ToLower(find)
		match = func(v string) bool { return strings.Contains(strings.ToLower(v), lower) }
	}

	var out []models.PatchInfo
	for i, p := range db.patches {
		v, err := db.fieldValue(p, field)
		if err != nil {
			return nil, err
		}
		if match(v) {
			out = append(out, p.Info(i))
		}
	}
	return out, nil
}

// FindByTags finds patches whose tag set is a superset of tags. An empty
// tag list matches every patch.
func (db *Database) FindByTags(tags []string) ([]models.PatchInfo, error) {
	if !db.loaded {
		return nil, ErrNoDatabase
	}
	var out []models.PatchInfo
	for i, p := range db.patches {
		if models.HasAllTags(p.Tags, tags) {
			out = append(out, p.Info(i))
		}
	}
	return out, nil
}

// KeywordSearch finds patches whose display name matches the keyword as a
// case-insensitive substring.
func (db *Database) KeywordSearch(kwd string) ([]models.PatchInfo, error) {
	return db.FindByValue(kwd, "name", MatchSubstring)
}

// TagsFromRules tags patches whose field value matches a rule's regular
// expression, case-insensitively, with the rule's tag name. Existing tags
// are never removed; one patch may gain several tags in one call. Returns
// the number of tag assignments added.
func (db *Database) TagsFromRules(rules map[string]string, field string) (int, error) {
	if !db.loaded {
		return 0, ErrNoDatabase
	}

	// Compile every rule and check the field before touching any patch, so
	// a bad rule or field cannot leave a half-applied mutation behind.
	type rule struct {
		tag string
		re  *regexp2.Regexp
	}
	compiled := make([]rule, 0, len(rules))
	for tag, pattern := range rules {
		// Rule patterns follow the lookaround-heavy conventions of shared
		// rule sets, which RE2 can't express; regexp2 matches them.
		re, err := regexp2.Compile(pattern, regexp2.IgnoreCase)
		if err != nil {
			return 0, fmt.Errorf("rule %q: %w", tag, err)
		}
		compiled = append(compiled, rule{tag: tag, re: re})
	}
	if len(db.patches) > 0 {
		if _, err := db.fieldValue(db.patches[0], field); err != nil {
			return 0, err
		}
	}

	added := 0
	for _, r := range compiled {
		for _, p := range db.patches {
			v, err := db.fieldValue(p, field)
			if err != nil {
				return added, err
			}
			ok, err := r.re.MatchString(v)
			if err != nil {
				return added, fmt.Errorf("rule %q against %q: %w", r.tag, v, err)
			}
			if ok {
				if next := models.EncodeTags([]string{r.tag}, p.Tags); len(next) > len(p.Tags) {
					p.Tags = next
					added++
				}
			}
		}
	}
	db.dirty()
	return added, nil
}

// ChangeTags sets the tags of the patch at index, or adds them to the
// existing set when replace is false.
func (db *Database) ChangeTags(index int, tags []string, replace bool) error {
	p, err := db.Patch(index)
	if err != nil {
		return err
	}
	old := p.Tags
	if replace {
		old = nil
	}
	p.Tags = models.EncodeTags(tags, old)
	db.dirty()
	return nil
}

// RemoveDuplicates collapses patches sharing an identical parameter vector
// to one representative, which keeps the union of the duplicates' tags.
// Returns the number of patches removed.
func (db *Database) RemoveDuplicates() int {
	if !db.loaded {
		return 0
	}
	seen := make(map[string]*models.Patch, len(db.patches))
	kept := db.patches[:0]
	removed := 0
	for _, p := range db.patches {
		key := paramKey(p.Params)
		if rep, ok := seen[key]; ok {
			rep.Tags = models.EncodeTags(p.Tags, rep.Tags)
			removed++
			continue
		}
		seen[key] = p
		kept = append(kept, p)
	}
	db.patches = kept
	db.dirty()
	return removed
}

// WritePatch exports the patch at index to path in the given kind. When
// path is a directory the file name is synthesized: the schema's native
// numbering for a native export, the sanitized display name for a container
// export. Returns the path written.
func (db *Database) WritePatch(index int, kind ExportKind, path string) (string, error) {
	p, err := db.Patch(index)
	if err != nil {
		return "", err
	}
	def := db.engine.Definition()

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, db.exportFileName(p, kind))
	}

	switch kind {
	case ExportNative:
		return path, db.engine.WritePatchFile(p, path)

	case ExportFXPParams:
		params, err := db.engine.FloatParams(p.Params)
		if err != nil {
			return "", err
		}
		return path, fxp.WriteFile(path, &fxp.ParamsPreset{
			PluginID:  def.PluginID,
			Label:     p.Name,
			NumParams: int32(def.NumParams()),
			Params:    params,
		})

	case ExportFXPChunk:
		if def.MakeChunk == nil {
			return "", fmt.Errorf("schema %s has no chunk format", def.SynthName)
		}
		chunk, err := def.MakeChunk(p.Params, p.Meta)
		if err != nil {
			return "", err
		}
		return path, fxp.WriteFile(path, &fxp.ChunkPreset{
			PluginID:  def.PluginID,
			Label:     p.Name,
			NumParams: int32(def.NumParams()),
			Chunk:     chunk,
		})

	default:
		return "", fmt.Errorf("cannot write a patch to a file type of %q", kind)
	}
}

func (db *Database) exportFileName(p *models.Patch, kind ExportKind) string {
	def := db.engine.Definition()
	if kind == ExportNative {
		return def.FileBase + "." + def.FileExt
	}
	return util.SanitizeFileName(p.Name) + "." + fxp.FileExt
}

func (db *Database) fieldValue(p *models.Patch, field string) (string, error) {
	switch field {
	case "name":
		return p.Name, nil
	case "bank":
		return p.Bank, nil
	case "tags":
		return strings.Join(p.Tags, "|"), nil
	}
	if v, ok := p.Meta[field]; ok {
		return v, nil
	}
	return "", fmt.Errorf("unknown field %q", field)
}

// dirty marks the database modified and refreshes cached indexes; every
// mutating operation ends here.
func (db *Database) dirty() {
	db.modified = true
	db.refresh()
}

// rebuilt notes that the underlying table was replaced wholesale: the
// generation changes and any classifier model dies with the old table.
func (db *Database) rebuilt() {
	db.generation = uuid.NewString()
	db.model = nil
}

// refresh resynchronizes cached indexes with the patch table: distinct tag
// names (zero-member tags disappear by construction) and bank names, both
// in stable case-insensitive order.
func (db *Database) refresh() {
	tagSet := make(map[string]bool)
	bankSet := make(map[string]bool)
	for _, p := range db.patches {
		for _, t := range p.Tags {
			tagSet[t] = true
		}
		bankSet[p.Bank] = true
	}

	db.tags = setToSorted(tagSet)
	db.banks = setToSorted(bankSet)
}

func (db *Database) reset() {
	db.patches = nil
	db.loaded = false
	db.modified = false
	db.rebuilt()
	db.refresh()
}

func setToSorted(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	models.SortTags(out)
	return out
}

func paramKey(params []int) string {
	var b strings.Builder
	for _, v := range params {
		fmt.Fprintf(&b, "%d,", v)
	}
	return b.String()
}
