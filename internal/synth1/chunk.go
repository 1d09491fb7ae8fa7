// ABOUTME: Byte-exact encoder for Synth1's internal VST chunk format
// ABOUTME: Offsets and flag bytes are reverse-engineered from real plugin output
package synth1

import (
	"encoding/binary"
	"fmt"
)

// NumParams is the fixed parameter count of a Synth1 patch.
const NumParams = 99

// Parameters in Synth1 chunk data form an ordered XDR-style list of
// big-endian (flag, value) int32 pairs, with exceptions. The four MIDI
// controller parameters do not conform to the list structure; they are
// removed before packing and a fixed filler standing in for their default
// encoding is spliced back at ignoredOffset. The offset is invariant because
// every preceding entry is fixed-width.
var ignoredParams = map[int]bool{86: true, 87: true, 88: true, 89: true}

var ignoredFiller = []byte{
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0xb0, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x2c,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0xb0, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x2b,
}

const ignoredOffset = 0x2AC

// The key shift field is stored little endian, unlike the rest of the
// parameters. These 7 bytes of the packed list are reversed in place.
const (
	keyShiftStart = 0x48
	keyShiftEnd   = 0x4F
)

const (
	headerLen = 569
	footerLen = 1263
)

var headerMagic = []byte("Synth1 VST Chunk Data")

// chunkHeader builds the fixed header. Sparse single-byte flags at fixed
// positions; the patch version lands at offset 560.
func chunkHeader(ver int) []byte {
	h := make([]byte, headerLen)
	copy(h, headerMagic)
	h[32] = 0x02
	h[560] = byte(ver)
	h[565] = 0x01
	h[568] = 0x01
	return h
}

// chunkFooter builds the fixed footer; the patch version repeats at
// offset 1211.
func chunkFooter(ver int) []byte {
	f := make([]byte, footerLen)
	f[1207] = 0x01
	f[1211] = byte(ver)
	f[1215] = 0x01
	f[1223] = 0x01
	f[1239] = 0x01
	f[1243] = 0x40
	return f
}

// packEntryList packs the conforming parameters as an XDR-style list of
// (flag=1, value) big-endian int32 pairs followed by a zero terminator.
// Synth1 supplies its own magic in the header instead of the list's leading
// flag, so the first 4 bytes are stripped.
func packEntryList(params []int) []byte {
	buf := make([]byte, 0, 8*len(params)+4)
	var word [4]byte
	for i, v := range params {
		if ignoredParams[i] {
			continue
		}
		binary.BigEndian.PutUint32(word[:], 1)
		buf = append(buf, word[:]...)
		binary.BigEndian.PutUint32(word[:], uint32(int32(v)))
		buf = append(buf, word[:]...)
	}
	binary.BigEndian.PutUint32(word[:], 0)
	buf = append(buf, word[:]...)
	return buf[4:]
}

// spliceFiller inserts the filler bytes for the removed parameters at the
// fixed offset.
func spliceFiller(buf []byte) []byte {
	out := make([]byte, 0, len(buf)+len(ignoredFiller))
	out = append(out, buf[:ignoredOffset]...)
	out = append(out, ignoredFiller...)
	out = append(out, buf[ignoredOffset:]...)
	return out
}

// reverseKeyShift reverses the key shift byte range in place.
func reverseKeyShift(buf []byte) {
	for i, j := keyShiftStart, keyShiftEnd-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}

// MakeChunk encodes a full Synth1 parameter vector into the plugin's
// internal chunk format for embedding in a preset container.
func MakeChunk(params []int, ver int) ([]byte, error) {
	if len(params) != NumParams {
		return nil, fmt.Errorf("expected %d parameters, got %d", NumParams, len(params))
	}

	list := packEntryList(params)
	list = spliceFiller(list)
	reverseKeyShift(list)

	chunk := make([]byte, 0, headerLen+len(list)+footerLen)
	chunk = append(chunk, chunkHeader(ver)...)
	chunk = append(chunk, list...)
	chunk = append(chunk, chunkFooter(ver)...)
	return chunk, nil
}
