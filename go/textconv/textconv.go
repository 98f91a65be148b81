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

// Package textconv converts strings between character sets.
//
// A Profile is a prebuilt conversion pipeline for one (from, to)
// charset pair: at most two stages, selected once at construction
// time and dispatched as data on every Convert call. A Registry
// caches profiles per pair the way an archive handle would. A
// MultiFormString carries one logical string in up to three encodings
// at once, deriving missing forms lazily.
//
// Conversions produce output whenever they possibly can. Malformed
// input and unmappable characters are substituted and reported
// through the error, never silently dropped; only memory exhaustion
// or an unsupported pair without best-effort leaves the destination
// untouched.
package textconv

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"

	"github.com/archivetext/archivetext/go/bufferx"
	"github.com/archivetext/archivetext/go/charset"
	"github.com/archivetext/archivetext/go/charset/norm"
	"github.com/archivetext/archivetext/go/terrors"
)

// NormalizationForm selects which canonical form a Unicode source is
// normalized to before the terminal transcode stage.
type NormalizationForm int

const (
	// NormC composes (NFC). The default: backends compare and store
	// composed text.
	NormC NormalizationForm = iota

	// NormD decomposes (NFD), for targets that store decomposed
	// names.
	NormD

	// NormNone skips normalization. Writers emitting text they
	// already control use this; the codec validation still runs.
	NormNone
)

// Options carries the behavior toggles for one profile. There is no
// implicit global state; everything travels here.
type Options struct {
	// BestEffort permits a degraded conversion (ASCII copied,
	// everything else substituted) when no real pipeline exists for
	// the pair.
	BestEffort bool

	// LegacyUTF8 reinterprets the source as UTF-8 that was once
	// round-tripped through a 16-bit wide-character type, so that
	// strings written by old producers still read back.
	LegacyUTF8 bool

	// NormalizationForm applies when the source is a Unicode form.
	NormalizationForm NormalizationForm
}

// Flags records the capabilities derived from the charset pair and
// Options at profile build time.
type Flags uint16

const (
	FlagToUTF8 Flags = 1 << iota
	FlagFromUTF8
	FlagToUTF16BE
	FlagFromUTF16BE
	FlagToUTF16LE
	FlagFromUTF16LE
	FlagBestEffort
	FlagLegacyUTF8
	FlagNormalizationC
	FlagNormalizationD

	flagsFromUnicode = FlagFromUTF8 | FlagFromUTF16BE | FlagFromUTF16LE
	flagsToUnicode   = FlagToUTF8 | FlagToUTF16BE | FlagToUTF16LE
	flagsToUTF16     = FlagToUTF16BE | FlagToUTF16LE
	flagsFromUTF16   = FlagFromUTF16BE | FlagFromUTF16LE
)

type stageKind int

const (
	stageNormalize stageKind = iota
	stageUnicode
	stageLegacyUTF8
	stageBackend
	stageIdentity
	stageBestEffort
)

// stage is one pipeline step. from/to are meaningful only for the
// codec-driven kinds.
type stage struct {
	kind stageKind
	from charset.UnitForm
	to   charset.UnitForm
}

// Profile converts byte strings from one charset to another. It is
// immutable after construction except for SetLegacyUTF8, which
// rebuilds the pipeline. A Profile is not safe for concurrent use;
// callers needing parallelism build one per goroutine.
type Profile struct {
	From string
	To   string

	flags Flags
	same  bool

	srcForm charset.UnitForm // valid when flags has a From-Unicode bit
	dstForm charset.UnitForm // valid when flags has a To-Unicode bit

	fromBackend charset.Backend
	toBackend   charset.Backend
	dec         *encoding.Decoder
	enc         *encoding.Encoder

	stages  [2]stage
	nstages int

	scratch bufferx.Buffer // stage A output
	interm  bufferx.Buffer // backend stage intermediate
}

// NewProfile builds a transient profile for one (from, to) pair. An
// empty name means the system charset. The caller owns the result
// and must Close it; profiles obtained from a Registry are closed by
// the Registry instead.
func NewProfile(from, to string, opts Options) (*Profile, error) {
	if from == "" {
		from = charset.SystemCharset()
	}
	if to == "" {
		to = charset.SystemCharset()
	}
	p := &Profile{From: from, To: to}

	if opts.BestEffort {
		p.flags |= FlagBestEffort
	}
	if opts.LegacyUTF8 {
		p.flags |= FlagLegacyUTF8
	}
	switch {
	case charset.IsUTF8(from):
		p.flags |= FlagFromUTF8
		p.srcForm = charset.UnitUTF8
	case charset.IsUTF16BE(from):
		p.flags |= FlagFromUTF16BE
		p.srcForm = charset.UnitUTF16BE
	case charset.IsUTF16LE(from):
		p.flags |= FlagFromUTF16LE
		p.srcForm = charset.UnitUTF16LE
	}
	switch {
	case charset.IsUTF8(to):
		p.flags |= FlagToUTF8
		p.dstForm = charset.UnitUTF8
	case charset.IsUTF16BE(to):
		p.flags |= FlagToUTF16BE
		p.dstForm = charset.UnitUTF16BE
	case charset.IsUTF16LE(to):
		p.flags |= FlagToUTF16LE
		p.dstForm = charset.UnitUTF16LE
	}

	// A Unicode source may arrive in either canonical form from
	// different producers; normalize so equal names compare equal.
	if p.flags&flagsFromUnicode != 0 {
		switch opts.NormalizationForm {
		case NormD:
			p.flags |= FlagNormalizationD
		case NormNone:
		default:
			p.flags |= FlagNormalizationC
		}
	}

	if p.flags&flagsFromUnicode == 0 {
		if b, err := charset.ResolveBackend(from); err == nil {
			p.fromBackend = b
			p.dec = b.NewDecoder()
		}
	}
	if p.flags&flagsToUnicode == 0 {
		if b, err := charset.ResolveBackend(to); err == nil {
			p.toBackend = b
			p.enc = b.NewEncoder()
		}
	}

	p.same = from == to ||
		(p.fromBackend != nil && p.toBackend != nil &&
			p.fromBackend.Name() == p.toBackend.Name())

	if err := p.setup(); err != nil {
		return nil, err
	}
	return p, nil
}

// setup selects the pipeline stages from the flag set. First match
// wins at every step; the result is at most one normalization stage
// followed by one terminal stage.
func (p *Profile) setup() error {
	p.nstages = 0

	if p.flags&FlagLegacyUTF8 != 0 {
		p.addStage(stage{kind: stageLegacyUTF8})
		return nil
	}

	if p.flags&flagsToUTF16 != 0 {
		if p.flags&flagsFromUnicode != 0 {
			p.addStage(stage{kind: stageUnicode, from: p.srcForm, to: p.dstForm})
			return nil
		}
		if p.fromBackend != nil {
			p.addStage(stage{kind: stageBackend})
			return nil
		}
		return p.fallback()
	}

	if p.flags&flagsFromUTF16 != 0 {
		terminalNorm := p.addNormStage()
		if p.flags&FlagToUTF8 != 0 {
			if !terminalNorm {
				p.addStage(stage{kind: stageUnicode, from: p.srcForm, to: p.dstForm})
			}
			return nil
		}
		if p.toBackend != nil {
			p.addStage(stage{kind: stageBackend})
			return nil
		}
		return p.fallback()
	}

	if p.flags&FlagFromUTF8 != 0 {
		terminalNorm := p.addNormStage()
		if p.flags&FlagToUTF8 != 0 {
			if !terminalNorm {
				// Same-form copy still runs the codec so CESU-8
				// pairs collapse and malformed input is replaced.
				p.addStage(stage{kind: stageUnicode, from: p.srcForm, to: p.dstForm})
			}
			return nil
		}
		if p.toBackend != nil {
			p.addStage(stage{kind: stageBackend})
			return nil
		}
		return p.fallback()
	}

	if p.fromBackend != nil && (p.toBackend != nil || p.flags&FlagToUTF8 != 0) {
		p.addStage(stage{kind: stageBackend})
		return nil
	}
	return p.fallback()
}

// addNormStage appends the normalization stage for a Unicode source
// and reports whether it is also the terminal stage (the normalizer
// changes unit form on its way to a UTF-8 target).
func (p *Profile) addNormStage() bool {
	if p.flags&(FlagNormalizationC|FlagNormalizationD) == 0 {
		return false
	}
	out := p.srcForm
	terminal := false
	if p.flags&FlagToUTF8 != 0 {
		out = p.dstForm
		terminal = true
	}
	p.addStage(stage{kind: stageNormalize, from: p.srcForm, to: out})
	return terminal
}

// fallback closes the selection when no real pipeline exists:
// identity for a same-charset pair, degraded copy when best effort
// is allowed, otherwise the pair is unsupported.
func (p *Profile) fallback() error {
	if p.same {
		p.addStage(stage{kind: stageIdentity})
		return nil
	}
	if p.flags&FlagBestEffort != 0 {
		p.addStage(stage{kind: stageBestEffort})
		return nil
	}
	return terrors.Errorf(terrors.UnsupportedConversion,
		"no conversion pipeline from %q to %q", p.From, p.To)
}

func (p *Profile) addStage(st stage) {
	if p.nstages >= len(p.stages) {
		panic("textconv: stage list overflow")
	}
	p.stages[p.nstages] = st
	p.nstages++
}

// Flags reports the capability set selected at build time.
func (p *Profile) Flags() Flags { return p.flags }

// SetLegacyUTF8 toggles the legacy reinterpretation mode and
// rebuilds the pipeline. This is the one permitted mutation.
func (p *Profile) SetLegacyUTF8(on bool) error {
	if on {
		p.flags |= FlagLegacyUTF8
	} else {
		p.flags &^= FlagLegacyUTF8
	}
	return p.setup()
}

// Close releases the profile's buffers and backend handles. The
// profile must not be used afterwards.
func (p *Profile) Close() {
	p.scratch.Release()
	p.interm.Release()
	p.dec = nil
	p.enc = nil
	p.fromBackend = nil
	p.toBackend = nil
	p.nstages = 0
}

// Convert appends the conversion of src to dst. A nil return means a
// clean conversion. MalformedInput and Unrepresentable returns mean
// substitutions were made but dst still received the full output;
// only OutOfMemory leaves dst without it.
func (p *Profile) Convert(dst *bufferx.Buffer, src []byte) error {
	if p.nstages == 0 {
		return terrors.Errorf(terrors.UnsupportedConversion,
			"no conversion pipeline from %q to %q", p.From, p.To)
	}
	var firstErr error
	input := src
	if p.nstages == 2 {
		p.scratch.Clear()
		if err := p.runStage(p.stages[0], &p.scratch, input); err != nil {
			if terrors.CodeOf(err) == terrors.OutOfMemory {
				return err
			}
			firstErr = err
		}
		input = p.scratch.Bytes()
	}
	if err := p.runStage(p.stages[p.nstages-1], dst, input); err != nil {
		if terrors.CodeOf(err) == terrors.OutOfMemory || firstErr == nil {
			return err
		}
	}
	return firstErr
}

func (p *Profile) runStage(st stage, dst *bufferx.Buffer, src []byte) error {
	switch st.kind {
	case stageNormalize:
		var status norm.Status
		var err error
		if p.flags&FlagNormalizationD != 0 {
			status, err = norm.DecomposeD(dst, src, st.from, st.to, nil)
		} else {
			status, err = norm.ComposeC(dst, src, st.from, st.to)
		}
		if err != nil {
			return err
		}
		if status == norm.StatusBestEffort {
			return terrors.Errorf(terrors.MalformedInput,
				"normalizing %s: replacements substituted", p.From)
		}
		return nil

	case stageUnicode:
		replaced, err := charset.ConvertUnicode(dst, src, st.from, st.to)
		if err != nil {
			return err
		}
		if replaced {
			return terrors.Errorf(terrors.MalformedInput,
				"decoding %s: replacements substituted", p.From)
		}
		return nil

	case stageLegacyUTF8:
		return p.runLegacy(dst, src)

	case stageBackend:
		return p.runBackend(dst, src)

	case stageIdentity:
		return p.runIdentity(dst, src)

	case stageBestEffort:
		return p.runBestEffort(dst, src)
	}
	return terrors.Errorf(terrors.Undefined, "unknown stage kind %d", st.kind)
}

// runLegacy reads the source as UTF-8 produced by a program that
// stored names in a 16-bit wide-character type, truncating every
// scalar to 16 bits before re-encoding it for the target.
func (p *Profile) runLegacy(dst *bufferx.Buffer, src []byte) error {
	if err := dst.Ensure(dst.Len() + len(src) + 1); err != nil {
		return err
	}
	substituted := false
	for len(src) > 0 {
		r, n := charset.DecodeUTF8(src)
		if n == 0 {
			break
		}
		if n < 0 {
			r = '?'
			n = -n
			substituted = true
		} else {
			r = rune(uint16(r))
		}
		src = src[n:]
		sub, err := p.encodeOut(dst, r)
		if err != nil {
			return err
		}
		substituted = substituted || sub
	}
	if substituted {
		return terrors.Errorf(terrors.MalformedInput,
			"legacy reinterpretation of %s: replacements substituted", p.From)
	}
	return nil
}

// runBackend delegates to the resolved charset backends through a
// UTF-8 intermediate: decode the source side into interm, then
// encode interm for the target side.
func (p *Profile) runBackend(dst *bufferx.Buffer, src []byte) error {
	p.interm.Clear()
	substituted := false

	if p.flags&flagsFromUnicode != 0 {
		replaced, err := charset.ConvertUnicode(&p.interm, src, p.srcForm, charset.UnitUTF8)
		if err != nil {
			return err
		}
		substituted = replaced
	} else {
		out, err := p.dec.Bytes(src)
		if err != nil {
			return terrors.WithCode(terrors.MalformedInput,
				terrors.Wrapf(err, "decoding %s", p.From))
		}
		// The backend substitutes U+FFFD for undecodable bytes
		// rather than failing; its presence is the illegal-sequence
		// signal.
		if bytes.ContainsRune(out, charset.RuneError) {
			substituted = true
		}
		if err := p.interm.Append(out); err != nil {
			return err
		}
	}

	in := p.interm.Bytes()
	if p.flags&flagsToUnicode != 0 {
		replaced, err := charset.ConvertUnicode(dst, in, charset.UnitUTF8, p.dstForm)
		if err != nil {
			return err
		}
		substituted = substituted || replaced
	} else {
		if err := dst.Ensure(dst.Len() + len(in) + 1); err != nil {
			return err
		}
		unrep := false
		for len(in) > 0 {
			r, n := charset.DecodeUTF8(in)
			if n < 0 {
				n = -n
			}
			in = in[n:]
			sub, err := encodeRuneBackend(p.enc, dst, r)
			if err != nil {
				return err
			}
			unrep = unrep || sub
		}
		if unrep && !substituted {
			return terrors.Errorf(terrors.Unrepresentable,
				"encoding %s: characters replaced with '?'", p.To)
		}
		substituted = substituted || unrep
	}
	if substituted {
		return terrors.Errorf(terrors.MalformedInput,
			"converting %s to %s: replacements substituted", p.From, p.To)
	}
	return nil
}

// runIdentity copies the bytes unchanged and then checks they are
// well formed in the shared charset. Invalid input is reported but
// never altered.
func (p *Profile) runIdentity(dst *bufferx.Buffer, src []byte) error {
	if err := dst.Append(src); err != nil {
		return err
	}
	valid := true
	switch {
	case p.flags&FlagFromUTF8 != 0:
		valid = charset.ValidUTF8(src)
	case p.flags&FlagFromUTF16BE != 0:
		valid = charset.ValidUTF16(src, charset.BigEndian)
	case p.flags&FlagFromUTF16LE != 0:
		valid = charset.ValidUTF16(src, charset.LittleEndian)
	case p.dec != nil:
		out, err := p.dec.Bytes(src)
		valid = err == nil && !bytes.ContainsRune(out, charset.RuneError)
	}
	if !valid {
		return terrors.Errorf(terrors.MalformedInput,
			"copied %q string contains invalid sequences", p.From)
	}
	return nil
}

// runBestEffort copies ASCII through and substitutes everything
// else. Degraded output beats no output for diagnostics.
func (p *Profile) runBestEffort(dst *bufferx.Buffer, src []byte) error {
	if err := dst.Ensure(dst.Len() + len(src) + 1); err != nil {
		return err
	}
	substituted := false
	for _, b := range src {
		var err error
		switch {
		case b < 0x80 && p.flags&flagsToUnicode != 0:
			err = charset.AppendRune(dst, rune(b), p.dstForm)
		case b < 0x80:
			err = dst.AppendByte(b)
		case p.flags&flagsToUnicode != 0:
			substituted = true
			err = charset.AppendRune(dst, charset.RuneError, p.dstForm)
		default:
			substituted = true
			err = dst.AppendByte('?')
		}
		if err != nil {
			return err
		}
	}
	if substituted {
		return terrors.Errorf(terrors.Unrepresentable,
			"best-effort conversion from %q to %q replaced characters", p.From, p.To)
	}
	return nil
}

// encodeOut writes one scalar in the profile's target encoding,
// reporting whether a substitution was needed.
func (p *Profile) encodeOut(dst *bufferx.Buffer, r rune) (bool, error) {
	if p.flags&flagsToUnicode != 0 {
		if !charset.ValidScalar(r) {
			return true, charset.AppendRune(dst, charset.RuneError, p.dstForm)
		}
		return false, charset.AppendRune(dst, r, p.dstForm)
	}
	if p.enc != nil {
		return encodeRuneBackend(p.enc, dst, r)
	}
	if r < 0x80 {
		return false, dst.AppendByte(byte(r))
	}
	return true, dst.AppendByte('?')
}

// encodeRuneBackend pushes a single rune through a backend encoder,
// substituting '?' when the target has no mapping for it.
func encodeRuneBackend(enc *encoding.Encoder, dst *bufferx.Buffer, r rune) (bool, error) {
	if !charset.ValidScalar(r) {
		return true, dst.AppendByte('?')
	}
	var in [utf8.UTFMax]byte
	var out [16]byte
	n := utf8.EncodeRune(in[:], r)
	enc.Reset()
	nDst, _, err := enc.Transform(out[:], in[:n], true)
	if err != nil {
		return true, dst.AppendByte('?')
	}
	return false, dst.Append(out[:nDst])
}
