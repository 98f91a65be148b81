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

func get16(p []byte, bo ByteOrder) rune {
	if bo == BigEndian {
		return rune(p[0])<<8 | rune(p[1])
	}
	return rune(p[1])<<8 | rune(p[0])
}

func put16(dst []byte, u uint16, bo ByteOrder) {
	if bo == BigEndian {
		dst[0] = byte(u >> 8)
		dst[1] = byte(u)
	} else {
		dst[0] = byte(u)
		dst[1] = byte(u >> 8)
	}
}

// DecodeUTF16 decodes one UTF-16 codepoint from p in the given byte
// order, combining valid surrogate pairs. Truncated input, a lone
// surrogate half, and a mismatched pair all decode to RuneError with
// a negative consumed count covering the offending bytes.
func DecodeUTF16(p []byte, bo ByteOrder) (rune, int) {
	if len(p) == 0 {
		return RuneError, 0
	}
	if len(p) == 1 {
		return RuneError, -1
	}
	r := get16(p, bo)
	consumed := 2

	if isHighSurrogate(r) {
		var r2 rune = -1
		if len(p) >= 4 {
			r2 = get16(p[2:], bo)
		}
		if !isLowSurrogate(r2) {
			return RuneError, -2
		}
		r = combineSurrogatePair(r, r2)
		consumed = 4
	}
	if isSurrogate(r) || r > MaxRune {
		return RuneError, -consumed
	}
	return r, consumed
}

// EncodeUTF16 writes r into dst in the given byte order, splitting
// supplementary-plane codepoints into a surrogate pair and
// substituting RuneError for values outside the scalar range. It
// returns the number of bytes written, or 0 if dst is too short.
func EncodeUTF16(dst []byte, r rune, bo ByteOrder) int {
	if !ValidScalar(r) {
		r = RuneError
	}
	if r > 0xFFFF {
		if len(dst) < 4 {
			return 0
		}
		r -= surrogateSelf
		put16(dst, uint16((r>>10)&0x3FF)+surrogateMin, bo)
		put16(dst[2:], uint16(r&0x3FF)+surrogateLowMin, bo)
		return 4
	}
	if len(dst) < 2 {
		return 0
	}
	put16(dst, uint16(r), bo)
	return 2
}

// ValidUTF16 reports whether p is entirely well-formed UTF-16 in the
// given byte order.
func ValidUTF16(p []byte, bo ByteOrder) bool {
	for len(p) > 0 {
		_, n := DecodeUTF16(p, bo)
		if n <= 0 {
			return false
		}
		p = p[n:]
	}
	return true
}
