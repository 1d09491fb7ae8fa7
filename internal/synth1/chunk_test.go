// ABOUTME: Tests for the Synth1 chunk encoder
// ABOUTME: Compares against a golden chunk captured from real plugin output

package synth1

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestMakeChunk_Golden(t *testing.T) {
	want, err := os.ReadFile(filepath.Join("testdata", "default_chunk_v113.bin"))
	if err != nil {
		t.Fatalf("reading golden chunk: %v", err)
	}

	got, err := MakeChunk(paramDefaults, DefaultVersion)
	if err != nil {
		t.Fatalf("MakeChunk: %v", err)
	}
	if !bytes.Equal(got, want) {
		if len(got) != len(want) {
			t.Fatalf("chunk length = %d, want %d", len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("chunk differs at offset %#x: got %#02x, want %#02x", i, got[i], want[i])
			}
		}
	}
}

func TestMakeChunk_WrongLength(t *testing.T) {
	if _, err := MakeChunk(make([]int, NumParams-1), DefaultVersion); err == nil {
		t.Error("MakeChunk should reject a short parameter vector")
	}
	if _, err := MakeChunk(make([]int, NumParams+1), DefaultVersion); err == nil {
		t.Error("MakeChunk should reject a long parameter vector")
	}
}

func TestMakeChunk_Framing(t *testing.T) {
	chunk, err := MakeChunk(paramDefaults, 108)
	if err != nil {
		t.Fatalf("MakeChunk: %v", err)
	}

	if !bytes.HasPrefix(chunk, headerMagic) {
		t.Error("chunk should open with the header magic")
	}
	if chunk[560] != 108 {
		t.Errorf("header version byte = %d, want 108", chunk[560])
	}
	if chunk[len(chunk)-footerLen+1211] != 108 {
		t.Errorf("footer version byte = %d, want 108", chunk[len(chunk)-footerLen+1211])
	}

	// 95 conforming entries of 8 bytes, leading 4 bytes stripped, zero
	// terminator appended, filler spliced in.
	wantList := 95*8 - 4 + 4 + len(ignoredFiller)
	if got := len(chunk) - headerLen - footerLen; got != wantList {
		t.Errorf("entry list length = %d, want %d", got, wantList)
	}
}

func TestPackEntryList(t *testing.T) {
	params := make([]int, NumParams)
	for i := range params {
		params[i] = i
	}
	list := packEntryList(params)

	// First word is the value of parameter 0; its flag word was stripped.
	if v := binary.BigEndian.Uint32(list[:4]); v != 0 {
		t.Errorf("first value = %d, want 0", v)
	}
	// Then (flag, value) pairs continue with parameter 1.
	if f := binary.BigEndian.Uint32(list[4:8]); f != 1 {
		t.Errorf("flag word = %d, want 1", f)
	}
	if v := binary.BigEndian.Uint32(list[8:12]); v != 1 {
		t.Errorf("second value = %d, want 1", v)
	}
	// Zero terminator at the end.
	if v := binary.BigEndian.Uint32(list[len(list)-4:]); v != 0 {
		t.Errorf("terminator = %d, want 0", v)
	}

	// The MIDI controller parameters are excluded from the list, so the
	// value after parameter 85 is parameter 90.
	off := 4 + 85*8
	if v := binary.BigEndian.Uint32(list[off-4 : off]); v != 85 {
		t.Errorf("value before skip = %d, want 85", v)
	}
	if v := binary.BigEndian.Uint32(list[off+4 : off+8]); v != 90 {
		t.Errorf("value after skip = %d, want 90", v)
	}
}

func TestSpliceFiller(t *testing.T) {
	buf := make([]byte, ignoredOffset+8)
	for i := range buf {
		buf[i] = 0xAA
	}
	out := spliceFiller(buf)

	if len(out) != len(buf)+len(ignoredFiller) {
		t.Fatalf("spliced length = %d, want %d", len(out), len(buf)+len(ignoredFiller))
	}
	if !bytes.Equal(out[ignoredOffset:ignoredOffset+len(ignoredFiller)], ignoredFiller) {
		t.Error("filler bytes not at the fixed offset")
	}
	if out[ignoredOffset-1] != 0xAA || out[ignoredOffset+len(ignoredFiller)] != 0xAA {
		t.Error("surrounding bytes disturbed by splice")
	}
}

func TestReverseKeyShift(t *testing.T) {
	buf := make([]byte, keyShiftEnd+4)
	for i := range buf {
		buf[i] = byte(i)
	}
	reverseKeyShift(buf)

	for i := 0; i < keyShiftStart; i++ {
		if buf[i] != byte(i) {
			t.Fatalf("byte %#x before range changed", i)
		}
	}
	for i := keyShiftStart; i < keyShiftEnd; i++ {
		want := byte(keyShiftEnd - 1 - (i - keyShiftStart))
		if buf[i] != want {
			t.Errorf("buf[%#x] = %#x, want %#x", i, buf[i], want)
		}
	}
	for i := keyShiftEnd; i < len(buf); i++ {
		if buf[i] != byte(i) {
			t.Fatalf("byte %#x after range changed", i)
		}
	}
}
