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

// Package charset implements the codec primitives of the conversion
// engine: single-codepoint UTF-8, CESU-8-tolerant UTF-8 and UTF-16
// decode/encode, plus resolution of legacy charset names to a
// transcoding backend.
//
// The decoders share one convention: a positive return count is the
// number of bytes consumed by a valid sequence; a negative count -k
// means the first k bytes form an invalid sequence, the decoded rune
// is RuneError, and the caller must advance by k. Decoders never read
// past the slice they are given, so truncated and adversarial input
// is safe. Encoders accept any 32-bit value and substitute RuneError
// for anything outside the Unicode scalar range; they return 0 only
// when the destination is too short, in which case the caller grows
// and retries.
package charset

// ByteOrder selects the code-unit serialization for UTF-16.
type ByteOrder int

const (
	BigEndian ByteOrder = iota
	LittleEndian
)

const (
	// RuneError is the Unicode replacement character U+FFFD.
	RuneError = '�'

	// MaxRune is the highest valid Unicode code point.
	MaxRune = '\U0010FFFF'

	surrogateMin    = 0xD800
	surrogateLowMin = 0xDC00
	surrogateMax    = 0xDFFF
	surrogateSelf   = 0x10000
)

func isSurrogate(r rune) bool {
	return surrogateMin <= r && r <= surrogateMax
}

func isHighSurrogate(r rune) bool {
	return surrogateMin <= r && r < surrogateLowMin
}

func isLowSurrogate(r rune) bool {
	return surrogateLowMin <= r && r <= surrogateMax
}

// ValidScalar reports whether r is a Unicode scalar value: in range
// and not a surrogate half.
func ValidScalar(r rune) bool {
	return r >= 0 && r <= MaxRune && !isSurrogate(r)
}

func combineSurrogatePair(hi, lo rune) rune {
	return (hi-surrogateMin)<<10 + (lo - surrogateLowMin) + surrogateSelf
}
