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

// utf8Count maps a lead byte to its claimed sequence length. Zero
// marks bytes that can never start a sequence: continuations, the
// overlong leads C0/C1, and leads above F4.
var utf8Count = [256]uint8{
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 00 - 0F
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 10 - 1F
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 20 - 2F
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 30 - 3F
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 40 - 4F
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 50 - 5F
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 60 - 6F
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 70 - 7F
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 80 - 8F
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 90 - 9F
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // A0 - AF
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // B0 - BF
	0, 0, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, // C0 - CF
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, // D0 - DF
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, // E0 - EF
	4, 4, 4, 4, 4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // F0 - FF
}

func isContinuation(b byte) bool {
	return b&0xC0 == 0x80
}

// invalidPrefixLen determines how many bytes of p belong to an
// invalid sequence whose lead byte claims want bytes: the lead plus
// every immediately following continuation byte, clamped to both the
// claimed length and the input bound.
func invalidPrefixLen(p []byte, want int) int {
	if want > len(p) {
		want = len(p)
	}
	n := 1
	for n < want && isContinuation(p[n]) {
		n++
	}
	return n
}

// decodeUTF8Raw decodes one UTF-8 sequence without rejecting
// surrogate halves, which the CESU-8 decoder needs to see.
func decodeUTF8Raw(p []byte) (rune, int) {
	if len(p) == 0 {
		return RuneError, 0
	}
	lead := p[0]
	cnt := int(utf8Count[lead])

	if cnt == 0 {
		// Never a valid lead. Consume the phantom sequence its
		// byte pattern claims, as recommended by Unicode PR #121.
		var claim int
		switch {
		case lead == 0xC0 || lead == 0xC1:
			claim = 2
		case lead >= 0xF5 && lead <= 0xF7:
			claim = 4
		case lead >= 0xF8 && lead <= 0xFB:
			claim = 5
		case lead == 0xFC || lead == 0xFD:
			claim = 6
		default:
			claim = 1
		}
		return RuneError, -invalidPrefixLen(p, claim)
	}
	if len(p) < cnt {
		return RuneError, -invalidPrefixLen(p, cnt)
	}

	switch cnt {
	case 1:
		return rune(lead), 1
	case 2:
		if !isContinuation(p[1]) {
			return RuneError, -1
		}
		return rune(lead&0x1F)<<6 | rune(p[1]&0x3F), 2
	case 3:
		if !isContinuation(p[1]) {
			return RuneError, -1
		}
		if !isContinuation(p[2]) {
			return RuneError, -2
		}
		r := rune(lead&0x0F)<<12 | rune(p[1]&0x3F)<<6 | rune(p[2]&0x3F)
		if r < 0x800 {
			return RuneError, -3 // overlong
		}
		return r, 3
	default: // 4
		if !isContinuation(p[1]) {
			return RuneError, -1
		}
		if !isContinuation(p[2]) {
			return RuneError, -2
		}
		if !isContinuation(p[3]) {
			return RuneError, -3
		}
		r := rune(lead&0x07)<<18 | rune(p[1]&0x3F)<<12 | rune(p[2]&0x3F)<<6 | rune(p[3]&0x3F)
		if r < 0x10000 {
			return RuneError, -4 // overlong
		}
		if r > MaxRune {
			return RuneError, -4
		}
		return r, 4
	}
}

// DecodeUTF8 decodes one strict UTF-8 sequence from p. See the
// package comment for the consumed-count convention.
func DecodeUTF8(p []byte) (rune, int) {
	r, n := decodeUTF8Raw(p)
	if n == 3 && isSurrogate(r) {
		return RuneError, -3
	}
	return r, n
}

// DecodeCESU8 decodes like DecodeUTF8 but additionally accepts a
// 3-byte-encoded high surrogate followed by a 3-byte-encoded low
// surrogate, combining them into one supplementary-plane codepoint
// (6 bytes consumed). A lone encoded surrogate half is invalid.
func DecodeCESU8(p []byte) (rune, int) {
	r, n := decodeUTF8Raw(p)
	if n == 3 && isHighSurrogate(r) {
		if len(p) < 6 {
			return RuneError, -3
		}
		r2, n2 := decodeUTF8Raw(p[3:])
		if n2 != 3 || !isLowSurrogate(r2) {
			return RuneError, -3
		}
		return combineSurrogatePair(r, r2), 6
	}
	if n == 3 && isLowSurrogate(r) {
		return RuneError, -3
	}
	return r, n
}

// EncodeUTF8 writes the UTF-8 encoding of r into dst, substituting
// RuneError for values outside the scalar range. It returns the
// number of bytes written, or 0 if dst is too short.
func EncodeUTF8(dst []byte, r rune) int {
	if !ValidScalar(r) {
		r = RuneError
	}
	switch {
	case r <= 0x7F:
		if len(dst) < 1 {
			return 0
		}
		dst[0] = byte(r)
		return 1
	case r <= 0x7FF:
		if len(dst) < 2 {
			return 0
		}
		dst[0] = 0xC0 | byte(r>>6)
		dst[1] = 0x80 | byte(r)&0x3F
		return 2
	case r <= 0xFFFF:
		if len(dst) < 3 {
			return 0
		}
		dst[0] = 0xE0 | byte(r>>12)
		dst[1] = 0x80 | byte(r>>6)&0x3F
		dst[2] = 0x80 | byte(r)&0x3F
		return 3
	default:
		if len(dst) < 4 {
			return 0
		}
		dst[0] = 0xF0 | byte(r>>18)
		dst[1] = 0x80 | byte(r>>12)&0x3F
		dst[2] = 0x80 | byte(r>>6)&0x3F
		dst[3] = 0x80 | byte(r)&0x3F
		return 4
	}
}

// ValidUTF8 reports whether p is entirely well-formed strict UTF-8.
func ValidUTF8(p []byte) bool {
	for len(p) > 0 {
		_, n := DecodeUTF8(p)
		if n <= 0 {
			return false
		}
		p = p[n:]
	}
	return true
}
