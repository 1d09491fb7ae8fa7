// ABOUTME: Declarative per-synthesizer patch format definition and its parse/serialize engine
// ABOUTME: One Engine is written against the Definition strategy, never duplicated per vendor
package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/thomashuss/patch1/internal/models"
	"github.com/thomashuss/patch1/internal/util"
)

// ErrNotAPatch reports that a file is not a patch in this schema's format.
// During bootstrap such files are silently skipped; an explicit single-file
// read surfaces the error.
var ErrNotAPatch = errors.New("not a patch file")

// ParamsField is the reserved placeholder in a file layout that receives the
// rendered parameter block.
const ParamsField = "params"

// NameField is the reserved placeholder holding the patch display name.
const NameField = "name"

// Definition declares one synthesizer's patch format. It is immutable after
// the Engine is built from it.
type Definition struct {
	SynthName string
	PluginID  int32 // unique VST identifier used in preset containers

	FilePattern *regexp.Regexp // matches native patch file names
	FileBase    string         // stem for a synthesized native file name
	FileExt     string         // native file extension, without the dot

	MetaFields   []string            // metadata placeholder names, in file order
	MetaDefaults map[string]string   // default value per metadata field
	MetaValues   map[string][]string // legal values per constrained field

	ParamNames    []string // ordered parameter names; fixed length per schema
	ParamDefaults []int    // default value per parameter
	ParamMax      []int    // declared maximum per parameter; minimum is 0

	FileLayout  string // pattern with {name}, metadata fields, and exactly one {params}
	ParamLayout string // pattern with {value} plus {name} or {index}
	ParamDelim  string // separator between rendered parameter lines

	// Repair inspects raw decoded file text before parsing and may correct
	// it. Returning ErrNotAPatch rejects the file outright. Nil means the
	// text is used as-is.
	Repair func(text string) (string, error)

	// MakeChunk encodes a full parameter vector into the vendor's internal
	// chunk format for embedding in a preset container. Nil when the vendor
	// has no chunk format.
	MakeChunk func(params []int, meta map[string]string) ([]byte, error)

	// FloatCorrections holds per-index additive corrections applied before
	// normalizing parameters to [0,1] for the float-array export path.
	FloatCorrections map[int]int
}

// NumParams returns the fixed parameter count of the schema.
func (d *Definition) NumParams() int { return len(d.ParamNames) }

// Engine parses and serializes native patch files for one Definition.
type Engine struct {
	def        *Definition
	filePat    *pattern
	paramPat   *pattern
	paramIndex map[string]int
	hasIndex   bool // param layout addresses slots by {index} rather than {name}
}

// NewEngine compiles the layout patterns of a Definition and validates its
// parameter table.
func NewEngine(def *Definition) (*Engine, error) {
	if len(def.ParamDefaults) != len(def.ParamNames) || len(def.ParamMax) != len(def.ParamNames) {
		return nil, fmt.Errorf("schema %s: parameter table lengths disagree", def.SynthName)
	}

	filePat, err := compilePattern(def.FileLayout)
	if err != nil {
		return nil, fmt.Errorf("schema %s: file layout: %w", def.SynthName, err)
	}
	paramPat, err := compilePattern(def.ParamLayout)
	if err != nil {
		return nil, fmt.Errorf("schema %s: param layout: %w", def.SynthName, err)
	}

	nParams := 0
	for _, ph := range filePat.placeholders() {
		if ph == ParamsField {
			nParams++
		}
	}
	if nParams != 1 {
		return nil, fmt.Errorf("schema %s: file layout needs exactly one {%s}", def.SynthName, ParamsField)
	}

	var hasValue, hasIndex, hasName bool
	for _, ph := range paramPat.placeholders() {
		switch ph {
		case "value":
			hasValue = true
		case "index":
			hasIndex = true
		case NameField:
			hasName = true
		}
	}
	if !hasValue || hasIndex == hasName {
		return nil, fmt.Errorf("schema %s: param layout needs {value} plus one of {index} or {%s}", def.SynthName, NameField)
	}

	paramIndex := make(map[string]int, len(def.ParamNames))
	for i, name := range def.ParamNames {
		paramIndex[name] = i
	}

	return &Engine{
		def:        def,
		filePat:    filePat,
		paramPat:   paramPat,
		paramIndex: paramIndex,
		hasIndex:   hasIndex,
	}, nil
}

// Definition returns the schema definition the engine was built from.
func (e *Engine) Definition() *Definition { return e.def }

// ReadPatchFile parses a native patch file. Parameters absent from the file
// are left at models.ParamUnset; FillDefaults completes them. The patch's
// bank is the name of the file's parent directory, never file content.
func (e *Engine) ReadPatchFile(path string) (*models.Patch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading patch file: %w", err)
	}
	text := strings.TrimSpace(util.DecodeLatin1(raw))

	if e.def.Repair != nil {
		text, err = e.def.Repair(text)
		if err != nil {
			if errors.Is(err, ErrNotAPatch) {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			return nil, fmt.Errorf("repairing %s: %w", path, err)
		}
	}

	vals, err := e.filePat.Unformat(text)
	if err != nil {
		return nil, fmt.Errorf("patch file %s is not properly formatted: %w", path, err)
	}

	params := make([]int, e.def.NumParams())
	for i := range params {
		params[i] = models.ParamUnset
	}
	for _, line := range strings.Split(vals[ParamsField], e.def.ParamDelim) {
		if line == "" {
			continue
		}
		if err := e.parseParamLine(line, params); err != nil {
			return nil, fmt.Errorf("patch file %s is not properly formatted: %w", path, err)
		}
	}

	meta := make(map[string]string, len(e.def.MetaFields))
	for _, field := range e.def.MetaFields {
		v, ok := vals[field]
		if !ok || !e.legalMeta(field, v) {
			v = e.def.MetaDefaults[field]
		}
		meta[field] = v
	}

	return &models.Patch{
		Name:   strings.TrimSpace(vals[NameField]),
		Bank:   filepath.Base(filepath.Dir(path)),
		Meta:   meta,
		Params: params,
	}, nil
}

func (e *Engine) parseParamLine(line string, params []int) error {
	vals, err := e.paramPat.Unformat(line)
	if err != nil {
		return err
	}

	var slot int
	if e.hasIndex {
		slot, err = strconv.Atoi(strings.TrimSpace(vals["index"]))
		if err != nil {
			return fmt.Errorf("parameter index %q: %w", vals["index"], err)
		}
	} else {
		var ok bool
		slot, ok = e.paramIndex[vals[NameField]]
		if !ok {
			return fmt.Errorf("unknown parameter %q", vals[NameField])
		}
	}
	if slot < 0 || slot >= len(params) {
		return fmt.Errorf("parameter index %d out of range", slot)
	}

	v, err := strconv.Atoi(strings.TrimSpace(vals["value"]))
	if err != nil {
		return fmt.Errorf("parameter value %q: %w", vals["value"], err)
	}
	params[slot] = clamp(v, 0, e.def.ParamMax[slot])
	return nil
}

// FillDefaults replaces unset parameter slots with the schema defaults.
func (e *Engine) FillDefaults(params []int) {
	for i, v := range params {
		if v == models.ParamUnset {
			params[i] = e.def.ParamDefaults[i]
		}
	}
}

// WritePatchFile renders the patch into the native file layout at path,
// using the archive's legacy single-byte encoding.
func (e *Engine) WritePatchFile(p *models.Patch, path string) error {
	if len(p.Params) != e.def.NumParams() {
		return fmt.Errorf("expected %d parameters, got %d", e.def.NumParams(), len(p.Params))
	}

	lines := make([]string, len(p.Params))
	for i, v := range p.Params {
		lines[i] = e.paramPat.Format(map[string]string{
			"index":   strconv.Itoa(i),
			NameField: e.def.ParamNames[i],
			"value":   strconv.Itoa(v),
		})
	}

	vals := map[string]string{
		NameField:   p.Name,
		ParamsField: strings.Join(lines, e.def.ParamDelim),
	}
	for _, field := range e.def.MetaFields {
		v, ok := p.Meta[field]
		if !ok {
			v = e.def.MetaDefaults[field]
		}
		vals[field] = v
	}

	text := e.filePat.Format(vals)
	if err := os.WriteFile(path, util.EncodeLatin1(text), 0o644); err != nil {
		return fmt.Errorf("writing patch file: %w", err)
	}
	return nil
}

// FloatParams converts native integer parameters to the 0-1 float range used
// by the plain-parameter preset container. Exporting a chunk is preferred
// when the schema supports one; this path is lossy.
func (e *Engine) FloatParams(params []int) ([]float32, error) {
	if len(params) != e.def.NumParams() {
		return nil, fmt.Errorf("expected %d parameters, got %d", e.def.NumParams(), len(params))
	}
	out := make([]float32, len(params))
	for i, v := range params {
		f := float64(v+e.def.FloatCorrections[i]) / float64(e.def.ParamMax[i])
		if f < 0 {
			f = 0
		} else if f > 1 {
			f = 1
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (e *Engine) legalMeta(field, v string) bool {
	legal, ok := e.def.MetaValues[field]
	if !ok {
		return true
	}
	for _, l := range legal {
		if v == l {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
