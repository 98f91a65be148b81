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

// Package norm canonically composes (NFC) and decomposes (NFD)
// streams of Unicode code units.
//
// Composition exists so that text compares equal no matter how an
// encoder decomposed it, and so that transcoding backends that cannot
// normalize still receive composed input. The composer works over any
// of the codec layer's unit forms on both sides, so a profile can
// normalize UTF-16BE input directly into UTF-8 output in one pass.
package norm

import (
	xnorm "golang.org/x/text/unicode/norm"

	"github.com/archivetext/archivetext/go/bufferx"
	"github.com/archivetext/archivetext/go/charset"
)

// Status reports whether an operation preserved the input exactly.
type Status int

const (
	// StatusOK: output is the exact normalization of the input.
	StatusOK Status = iota

	// StatusBestEffort: output was produced but replacements were
	// substituted for malformed input, or a pathological combining
	// run exceeded the reorder window and was emitted unnormalized.
	StatusBestEffort
)

// maxCombiningRun bounds the lookahead window used to compose across
// blocked combining marks. Runs longer than this are emitted as-is
// with StatusBestEffort; exact handling of pathological-length runs
// is out of scope.
const maxCombiningRun = 10

// ComposeC appends the canonical composition (NFC) of src to dst,
// reading src as from-form units and writing to-form units.
func ComposeC(dst *bufferx.Buffer, src []byte, from, to charset.UnitForm) (Status, error) {
	decode := charset.DecoderFor(from)
	encode := charset.EncoderFor(to)
	status := StatusOK

	emit := func(r rune) error {
		var buf [4]byte
		n := encode(buf[:], r)
		return dst.Append(buf[:n])
	}

	if err := dst.Ensure(dst.Len() + len(src) + 1); err != nil {
		return status, err
	}

	var base rune
	haveBase := false
	for len(src) > 0 {
		r, n := decode(src)
		if n == 0 {
			break
		}
		if n < 0 {
			// Flush the pending base, then the replacement; a
			// malformed sequence never composes with anything.
			if haveBase {
				if err := emit(base); err != nil {
					return status, err
				}
				haveBase = false
			}
			if err := emit(r); err != nil {
				return status, err
			}
			status = StatusBestEffort
			src = src[-n:]
			continue
		}
		src = src[n:]
		if !haveBase {
			base, haveBase = r, true
			continue
		}
		next := r

		if c := composeHangul(base, next); c != 0 {
			base = c
			continue
		}
		if c := Composed(base, next); c != 0 {
			base = c
			continue
		}
		cl := CombiningClass(next)
		if cl == 0 {
			if err := emit(base); err != nil {
				return status, err
			}
			base = next
			continue
		}

		// next combines but not with base directly. Collect the run
		// of subsequent marks that are not blocked: a mark is blocked
		// once an earlier-collected mark has a combining class >= its
		// own, except that class 228 commutes with anything.
		var run [maxCombiningRun]rune
		run[0] = next
		size := 1
		for size < maxCombiningRun && len(src) > 0 {
			r2, n2 := decode(src)
			if n2 <= 0 {
				break // let the outer loop report it
			}
			cx := CombiningClass(r2)
			if cl >= cx && cl != 228 && cx != 228 {
				break
			}
			src = src[n2:]
			run[size] = r2
			size++
			cl = cx
		}
		if size == maxCombiningRun {
			status = StatusBestEffort
		}

		// Compose base with any member of the run, restarting the
		// scan from the front after every hit since the new base may
		// compose with marks already passed over.
		for i := 0; i < size; {
			c := Composed(base, run[i])
			if c == 0 {
				i++
				continue
			}
			base = c
			copy(run[i:size], run[i+1:size])
			size--
			i = 0
		}

		if err := emit(base); err != nil {
			return status, err
		}
		for i := 0; i < size; i++ {
			if err := emit(run[i]); err != nil {
				return status, err
			}
		}
		haveBase = false
	}
	if haveBase {
		if err := emit(base); err != nil {
			return status, err
		}
	}
	return status, nil
}

// Decomposer is the platform decomposition service consumed by
// DecomposeD: given UTF-8 text, it returns the canonically
// decomposed equivalent.
type Decomposer interface {
	Decompose(utf8Text []byte) []byte
}

type platformDecomposer struct{}

func (platformDecomposer) Decompose(p []byte) []byte {
	return xnorm.NFD.Bytes(p)
}

// DefaultDecomposer decomposes with the Unicode tables shipped in
// x/text.
var DefaultDecomposer Decomposer = platformDecomposer{}

// DecomposeD appends the canonical decomposition (NFD) of src to
// dst, for targets that store decomposed names. The driving loop
// matches ComposeC; the decomposition step itself is delegated to
// dec (DefaultDecomposer when nil).
func DecomposeD(dst *bufferx.Buffer, src []byte, from, to charset.UnitForm, dec Decomposer) (Status, error) {
	if dec == nil {
		dec = DefaultDecomposer
	}
	status := StatusOK

	var tmp bufferx.Buffer
	replaced, err := charset.ConvertUnicode(&tmp, src, from, charset.UnitUTF8)
	if err != nil {
		return status, err
	}
	if replaced {
		status = StatusBestEffort
	}
	d := dec.Decompose(tmp.Bytes())
	if to == charset.UnitUTF8 {
		return status, dst.Append(d)
	}
	_, err = charset.ConvertUnicode(dst, d, charset.UnitUTF8, to)
	return status, err
}
