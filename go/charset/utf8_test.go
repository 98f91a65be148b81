/*
Copyright 2026 The ArchiveText Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUTF8Valid(t *testing.T) {
	testCases := []struct {
		in   []byte
		r    rune
		n    int
	}{
		{[]byte("a"), 'a', 1},
		{[]byte("\x00"), 0, 1},
		{[]byte("é"), 0xE9, 2},
		{[]byte("€"), 0x20AC, 3},
		{[]byte("\U0001F600"), 0x1F600, 4},
		{[]byte("가"), 0xAC00, 3},
	}
	for _, tc := range testCases {
		r, n := DecodeUTF8(tc.in)
		assert.Equal(t, tc.r, r, "rune for % x", tc.in)
		assert.Equal(t, tc.n, n, "consumed for % x", tc.in)
	}
}

func TestDecodeUTF8Invalid(t *testing.T) {
	testCases := []struct {
		name string
		in   []byte
		n    int
	}{
		{"lone continuation", []byte{0x80}, -1},
		{"truncated 3-byte lead", []byte{0xE2}, -1},
		{"truncated 3-byte with continuation", []byte{0xE2, 0x82}, -2},
		{"continuation mismatch", []byte{0xE2, 0x41, 0x41}, -1},
		{"overlong 2-byte C0", []byte{0xC0, 0xAF}, -2},
		{"overlong 3-byte", []byte{0xE0, 0x80, 0x80}, -3},
		{"overlong 4-byte", []byte{0xF0, 0x80, 0x80, 0x80}, -4},
		{"above U+10FFFF", []byte{0xF4, 0x90, 0x80, 0x80}, -4},
		{"F5 lead", []byte{0xF5, 0x80, 0x80, 0x80}, -4},
		{"FE byte", []byte{0xFE}, -1},
		{"encoded high surrogate", []byte{0xED, 0xA0, 0x81}, -3},
		{"encoded low surrogate", []byte{0xED, 0xB0, 0x80}, -3},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, n := DecodeUTF8(tc.in)
			assert.Equal(t, rune(RuneError), r)
			assert.Equal(t, tc.n, n)
		})
	}
}

func TestDecodeUTF8NeverReadsPastBound(t *testing.T) {
	// The backing array has valid continuations past the slice
	// bound; the decoder must not see them.
	backing := []byte{0xE2, 0x82, 0xAC}
	r, n := DecodeUTF8(backing[:1])
	assert.Equal(t, rune(RuneError), r)
	assert.Equal(t, -1, n)

	r, n = DecodeUTF8(backing[:2])
	assert.Equal(t, rune(RuneError), r)
	assert.Equal(t, -2, n)
}

func TestUTF8RoundTripAllScalars(t *testing.T) {
	var buf [4]byte
	for r := rune(0); r <= MaxRune; r++ {
		if isSurrogate(r) {
			continue
		}
		n := EncodeUTF8(buf[:], r)
		require.Greater(t, n, 0, "encode U+%04X", r)
		got, consumed := DecodeUTF8(buf[:n])
		require.Equal(t, r, got, "round trip U+%04X", r)
		require.Equal(t, n, consumed, "consumed U+%04X", r)
	}
}

func TestEncodeUTF8Substitution(t *testing.T) {
	var buf [4]byte
	for _, r := range []rune{-1, 0xD800, 0xDFFF, MaxRune + 1, 1 << 30} {
		n := EncodeUTF8(buf[:], r)
		assert.Equal(t, 3, n, "U+FFFD is 3 bytes for %#x", r)
		got, _ := DecodeUTF8(buf[:n])
		assert.Equal(t, rune(RuneError), got)
	}
}

func TestEncodeUTF8ShortDst(t *testing.T) {
	var buf [4]byte
	assert.Equal(t, 0, EncodeUTF8(buf[:0], 'a'))
	assert.Equal(t, 0, EncodeUTF8(buf[:1], 0xE9))
	assert.Equal(t, 0, EncodeUTF8(buf[:2], 0x20AC))
	assert.Equal(t, 0, EncodeUTF8(buf[:3], 0x1F600))
}

func TestDecodeCESU8(t *testing.T) {
	// U+10400 as a CESU-8 surrogate pair: ED A0 81 ED B0 80.
	cesu := []byte{0xED, 0xA0, 0x81, 0xED, 0xB0, 0x80}

	r, n := DecodeCESU8(cesu)
	assert.Equal(t, rune(0x10400), r)
	assert.Equal(t, 6, n)

	// Strict UTF-8 rejects the same bytes.
	r, n = DecodeUTF8(cesu)
	assert.Equal(t, rune(RuneError), r)
	assert.Equal(t, -3, n)

	// A lone high surrogate half is invalid.
	r, n = DecodeCESU8(cesu[:3])
	assert.Equal(t, rune(RuneError), r)
	assert.Equal(t, -3, n)

	// High surrogate followed by a non-surrogate is invalid.
	r, n = DecodeCESU8([]byte{0xED, 0xA0, 0x81, 'a', 'b', 'c'})
	assert.Equal(t, rune(RuneError), r)
	assert.Equal(t, -3, n)

	// A lone low surrogate half is invalid.
	r, n = DecodeCESU8([]byte{0xED, 0xB0, 0x80})
	assert.Equal(t, rune(RuneError), r)
	assert.Equal(t, -3, n)

	// Regular sequences pass through unchanged.
	r, n = DecodeCESU8([]byte("é"))
	assert.Equal(t, rune(0xE9), r)
	assert.Equal(t, 2, n)
}

func TestValidUTF8(t *testing.T) {
	assert.True(t, ValidUTF8([]byte("café 가 \U0001F600")))
	assert.True(t, ValidUTF8(nil))
	assert.False(t, ValidUTF8([]byte{0x61, 0xFF}))
	assert.False(t, ValidUTF8([]byte{0xE2, 0x82}))
	assert.False(t, ValidUTF8([]byte{0xED, 0xA0, 0x81, 0xED, 0xB0, 0x80}), "CESU-8 is not valid strict UTF-8")
}
