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

package norm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xnorm "golang.org/x/text/unicode/norm"

	"github.com/archivetext/archivetext/go/bufferx"
	"github.com/archivetext/archivetext/go/charset"
)

func composeUTF8(t *testing.T, in string) (string, Status) {
	t.Helper()
	var dst bufferx.Buffer
	st, err := ComposeC(&dst, []byte(in), charset.UnitUTF8, charset.UnitUTF8)
	require.NoError(t, err)
	return dst.String(), st
}

func TestComposePairs(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain ascii", "plain ascii"},
		{"é", "é"},
		{"café", "café"},
		{"Å", "Å"},
		// Multi-step: A + ring + acute composes through the
		// intermediate ring form.
		{"Ǻ", "Ǻ"},
		// Reordered marks still find each other: dot below (220)
		// does not block circumflex (230).
		{"ậ", "ậ"},
		{"ậ", "ậ"},
		// Already composed input passes through.
		{"éÅ", "éÅ"},
		// A starter between marks ends the run.
		{"éx́", "éx́"},
	}
	for _, tc := range cases {
		got, st := composeUTF8(t, tc.in)
		assert.Equal(t, tc.want, got, "compose(%q)", tc.in)
		assert.Equal(t, StatusOK, st, "compose(%q)", tc.in)
	}
}

func TestComposeMatchesReferenceNFC(t *testing.T) {
	// Inputs already in canonical mark order; the composer does not
	// reorder, so only ordered input is guaranteed to match the
	// reference form.
	inputs := []string{
		"sómuch ñormalization",
		"à֮̕", // class 228 commutes past the others
		"ἄ",       // Greek psili then oxia, stepwise
		"각가",
	}
	for _, in := range inputs {
		got, _ := composeUTF8(t, in)
		assert.Equal(t, xnorm.NFC.String(in), got, "compose(%q)", in)
	}
}

func TestComposeHangul(t *testing.T) {
	// L+V composes to an LV syllable, L+V+T to LVT.
	got, st := composeUTF8(t, "가")
	assert.Equal(t, "가", got)
	assert.Equal(t, StatusOK, st)

	got, _ = composeUTF8(t, "각")
	assert.Equal(t, "각", got)

	// A T jamo with no preceding LV stays put.
	got, _ = composeUTF8(t, "ᆨᅡ")
	assert.Equal(t, "ᆨᅡ", got)

	// Round trip a full decomposed sentence.
	in := string(xnorm.NFD.Bytes([]byte("한국어 text")))
	got, _ = composeUTF8(t, in)
	assert.Equal(t, "한국어 text", got)
}

func TestComposeMalformedInput(t *testing.T) {
	got, st := composeUTF8(t, "ab\xffcd")
	assert.Equal(t, "ab�cd", got)
	assert.Equal(t, StatusBestEffort, st)

	// A truncated sequence at the end still flushes the base.
	got, st = composeUTF8(t, "é\xe2\x82")
	assert.Equal(t, "é�", got)
	assert.Equal(t, StatusBestEffort, st)
}

func TestComposeLongCombiningRun(t *testing.T) {
	// A run longer than the reorder window is passed through
	// unnormalized rather than buffered without bound.
	// Class 228 commutes with everything, so repeated zinor marks
	// keep the collector going until the window fills.
	in := "a" + strings.Repeat("֮", 12)
	got, st := composeUTF8(t, in)
	assert.Equal(t, StatusBestEffort, st)
	assert.NotEmpty(t, got)
}

func TestComposeAcrossForms(t *testing.T) {
	// UTF-16BE in, UTF-8 out.
	src := []byte{0x00, 'e', 0x03, 0x01}
	var dst bufferx.Buffer
	st, err := ComposeC(&dst, src, charset.UnitUTF16BE, charset.UnitUTF8)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, st)
	assert.Equal(t, "é", dst.String())

	// UTF-8 in, UTF-16LE out.
	dst.Clear()
	st, err = ComposeC(&dst, []byte("é"), charset.UnitUTF8, charset.UnitUTF16LE)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, st)
	assert.Equal(t, []byte{0xe9, 0x00}, dst.Bytes())
}

func TestDecompose(t *testing.T) {
	var dst bufferx.Buffer
	st, err := DecomposeD(&dst, []byte("café"), charset.UnitUTF8, charset.UnitUTF8, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, st)
	assert.Equal(t, "café", dst.String())

	// Hangul LVT decomposes to three jamo and recomposes cleanly.
	dst.Clear()
	_, err = DecomposeD(&dst, []byte("각"), charset.UnitUTF8, charset.UnitUTF8, nil)
	require.NoError(t, err)
	assert.Equal(t, "각", dst.String())

	var back bufferx.Buffer
	_, err = ComposeC(&back, dst.Bytes(), charset.UnitUTF8, charset.UnitUTF8)
	require.NoError(t, err)
	assert.Equal(t, "각", back.String())
}

func TestDecomposeIntoUTF16(t *testing.T) {
	var dst bufferx.Buffer
	st, err := DecomposeD(&dst, []byte("é"), charset.UnitUTF8, charset.UnitUTF16BE, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, st)
	assert.Equal(t, []byte{0x00, 'e', 0x03, 0x01}, dst.Bytes())
}

func TestCombiningClass(t *testing.T) {
	assert.EqualValues(t, 0, CombiningClass('a'))
	assert.EqualValues(t, 230, CombiningClass(0x0301))
	assert.EqualValues(t, 220, CombiningClass(0x0323))
	assert.EqualValues(t, 0, CombiningClass(0xac00))
}

func TestComposedTable(t *testing.T) {
	assert.EqualValues(t, 0x00e9, Composed('e', 0x0301))
	assert.EqualValues(t, 0x1ead, Composed(0x1ea1, 0x0302))
	assert.EqualValues(t, 0, Composed('x', 0x0301))
	// Composition exclusions never appear in the table.
	assert.EqualValues(t, 0, Composed(0x0915, 0x093c))
}
