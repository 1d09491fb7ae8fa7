// ABOUTME: Codec for the FXP single-preset exchange container
// ABOUTME: Pure framing layer; payload semantics are the plugin's business
package fxp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/thomashuss/patch1/internal/util"
)

const (
	// FormatVersion is the container format version written in the header.
	FormatVersion = 1

	// DefaultPluginVersion is used when a preset does not carry one.
	DefaultPluginVersion = 1

	// FileExt is the conventional container file extension.
	FileExt = "fxp"

	labelLen = 28
)

var (
	chunkMagic  = []byte("CcnK")
	magicParams = []byte("FxCk") // payload is a plain float parameter array
	magicChunk  = []byte("FPCh") // payload is an opaque plugin chunk
)

// Preset is one of the two container payload variants.
type Preset interface {
	// Header fields shared by both variants.
	Plugin() (id, version int32)
	PresetLabel() string
	ParamCount() int32

	payloadMagic() []byte
	payloadLen() int
	writePayload(w io.Writer) error
	validate() error
}

// ParamsPreset carries a plain array of 0-1 float parameters.
type ParamsPreset struct {
	PluginID      int32
	PluginVersion int32
	Label         string
	NumParams     int32 // 0 means len(Params)
	Params        []float32
}

// ChunkPreset carries an opaque chunk produced by the plugin itself.
type ChunkPreset struct {
	PluginID      int32
	PluginVersion int32
	Label         string
	NumParams     int32 // 0 means len(Chunk)/4
	Chunk         []byte
}

func (p *ParamsPreset) Plugin() (int32, int32) { return p.PluginID, pluginVersion(p.PluginVersion) }
func (p *ParamsPreset) PresetLabel() string    { return p.Label }

func (p *ParamsPreset) ParamCount() int32 {
	if p.NumParams > 0 {
		return p.NumParams
	}
	return int32(len(p.Params))
}

func (p *ParamsPreset) payloadMagic() []byte { return magicParams }
func (p *ParamsPreset) payloadLen() int      { return 4 * int(p.ParamCount()) }

// The declared parameter count sizes the header; it must agree with the
// floats actually written.
func (p *ParamsPreset) validate() error {
	if n := int(p.ParamCount()); n != len(p.Params) {
		return fmt.Errorf("preset declares %d parameters but holds %d", n, len(p.Params))
	}
	return nil
}

func (p *ParamsPreset) writePayload(w io.Writer) error {
	return binary.Write(w, binary.BigEndian, p.Params)
}

func (p *ChunkPreset) Plugin() (int32, int32) { return p.PluginID, pluginVersion(p.PluginVersion) }
func (p *ChunkPreset) PresetLabel() string    { return p.Label }

func (p *ChunkPreset) ParamCount() int32 {
	if p.NumParams > 0 {
		return p.NumParams
	}
	return int32(len(p.Chunk) / 4)
}

func (p *ChunkPreset) payloadMagic() []byte { return magicChunk }
func (p *ChunkPreset) payloadLen() int      { return 4 + len(p.Chunk) }

// The declared count is the plugin's parameter count, independent of the
// opaque chunk length, so any combination is valid.
func (p *ChunkPreset) validate() error { return nil }

func (p *ChunkPreset) writePayload(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, int32(len(p.Chunk))); err != nil {
		return err
	}
	_, err := w.Write(p.Chunk)
	return err
}

// Write serializes a preset to the container wire format: a big-endian fixed
// header followed by the variant payload. The declared total size excludes
// the magic and the size field itself.
func Write(w io.Writer, p Preset) error {
	if err := p.validate(); err != nil {
		return err
	}
	id, ver := p.Plugin()

	// Everything after the preamble: payload-kind magic, format version,
	// plugin id, plugin version, parameter count, 28-byte label, payload.
	size := int32(4 + 4*4 + labelLen + p.payloadLen())

	label := make([]byte, labelLen)
	copy(label, util.EncodeLatin1(p.PresetLabel()))

	var buf bytes.Buffer
	buf.Write(chunkMagic)
	if err := binary.Write(&buf, binary.BigEndian, size); err != nil {
		return err
	}
	buf.Write(p.payloadMagic())
	for _, v := range []int32{FormatVersion, id, ver, p.ParamCount()} {
		if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
			return err
		}
	}
	buf.Write(label)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing preset header: %w", err)
	}
	if err := p.writePayload(w); err != nil {
		return fmt.Errorf("writing preset payload: %w", err)
	}
	return nil
}

// WriteFile writes a preset container to a file at path.
func WriteFile(path string, p Preset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating preset file: %w", err)
	}
	if err := Write(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func pluginVersion(v int32) int32 {
	if v == 0 {
		return DefaultPluginVersion
	}
	return v
}
