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

import "github.com/archivetext/archivetext/go/bufferx"

// UnitForm identifies the code-unit serialization of a Unicode byte
// stream the codec layer can transcode without a backend.
type UnitForm int

const (
	UnitUTF8 UnitForm = iota
	UnitUTF16BE
	UnitUTF16LE
)

func (f UnitForm) String() string {
	switch f {
	case UnitUTF16BE:
		return "UTF-16BE"
	case UnitUTF16LE:
		return "UTF-16LE"
	default:
		return "UTF-8"
	}
}

// UnitFormOf maps a Unicode charset name to its form. The bool is
// false for non-Unicode names.
func UnitFormOf(name string) (UnitForm, bool) {
	switch {
	case IsUTF8(name):
		return UnitUTF8, true
	case IsUTF16BE(name):
		return UnitUTF16BE, true
	case IsUTF16LE(name):
		return UnitUTF16LE, true
	default:
		return UnitUTF8, false
	}
}

// DecodeFunc decodes one codepoint, returning the signed consumed
// count described in the package comment.
type DecodeFunc func(p []byte) (rune, int)

// EncodeFunc encodes one codepoint, returning 0 when dst is too
// short.
type EncodeFunc func(dst []byte, r rune) int

// DecoderFor returns the decoder for form. The UTF-8 decoder is the
// CESU-8-tolerant one: archive encoders in the wild emit surrogate
// pairs as paired 3-byte sequences and those names must survive.
func DecoderFor(f UnitForm) DecodeFunc {
	switch f {
	case UnitUTF16BE:
		return func(p []byte) (rune, int) { return DecodeUTF16(p, BigEndian) }
	case UnitUTF16LE:
		return func(p []byte) (rune, int) { return DecodeUTF16(p, LittleEndian) }
	default:
		return DecodeCESU8
	}
}

// EncoderFor returns the encoder for form.
func EncoderFor(f UnitForm) EncodeFunc {
	switch f {
	case UnitUTF16BE:
		return func(dst []byte, r rune) int { return EncodeUTF16(dst, r, BigEndian) }
	case UnitUTF16LE:
		return func(dst []byte, r rune) int { return EncodeUTF16(dst, r, LittleEndian) }
	default:
		return EncodeUTF8
	}
}

// AppendRune encodes r in form onto dst, growing as needed.
func AppendRune(dst *bufferx.Buffer, r rune, f UnitForm) error {
	return appendRune(dst, r, EncoderFor(f))
}

func appendRune(dst *bufferx.Buffer, r rune, encode EncodeFunc) error {
	var buf [4]byte
	n := encode(buf[:], r)
	return dst.Append(buf[:n])
}

// ConvertUnicode transcodes src between two Unicode forms, appending
// to dst. Malformed input decodes to RuneError and is reported via
// the replaced return, but conversion always runs to completion:
// partial, substituted output is preferable to none.
func ConvertUnicode(dst *bufferx.Buffer, src []byte, from, to UnitForm) (replaced bool, err error) {
	decode := DecoderFor(from)
	encode := EncoderFor(to)

	// Worst case one source unit per codepoint in the widest target
	// encoding; further growth happens per append if this guess is
	// short.
	if err := dst.Ensure(dst.Len() + len(src)*2 + 1); err != nil {
		return false, err
	}
	for len(src) > 0 {
		r, n := decode(src)
		if n == 0 {
			break
		}
		if n < 0 {
			replaced = true
			n = -n
		}
		src = src[n:]
		if err := appendRune(dst, r, encode); err != nil {
			return replaced, err
		}
	}
	return replaced, nil
}
