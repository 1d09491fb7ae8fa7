// ABOUTME: Patch represents one synthesizer preset with metadata and parameters
// ABOUTME: Owned by the library database, created on parse or tag mutation
package models

// ParamUnset marks a parameter slot that was absent from a patch file.
// Slots holding this value are filled from the schema defaults before the
// patch enters the database.
const ParamUnset = -1

// Patch is one saved synthesizer preset: schema metadata plus a fixed-size
// ordered parameter vector and a set of tags.
type Patch struct {
	Name   string            `json:"name"`
	Bank   string            `json:"bank"`
	Meta   map[string]string `json:"meta"`
	Params []int             `json:"params"`
	Tags   []string          `json:"tags"`
}

// Clone returns a deep copy of the patch.
func (p *Patch) Clone() *Patch {
	c := &Patch{
		Name:   p.Name,
		Bank:   p.Bank,
		Meta:   make(map[string]string, len(p.Meta)),
		Params: make([]int, len(p.Params)),
		Tags:   make([]string, len(p.Tags)),
	}
	for k, v := range p.Meta {
		c.Meta[k] = v
	}
	copy(c.Params, p.Params)
	copy(c.Tags, p.Tags)
	return c
}

// PatchInfo is the metadata-only view of a patch returned by search
// operations. Index is the stable identifier usable in later database calls.
type PatchInfo struct {
	Index int               `json:"index"`
	Name  string            `json:"name"`
	Bank  string            `json:"bank"`
	Meta  map[string]string `json:"meta"`
	Tags  []string          `json:"tags"`
}

// Info returns the metadata view for a patch at the given index.
func (p *Patch) Info(index int) PatchInfo {
	return PatchInfo{
		Index: index,
		Name:  p.Name,
		Bank:  p.Bank,
		Meta:  p.Meta,
		Tags:  p.Tags,
	}
}
