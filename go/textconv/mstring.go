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

package textconv

import (
	"github.com/archivetext/archivetext/go/bufferx"
	"github.com/archivetext/archivetext/go/charset"
	"github.com/archivetext/archivetext/go/terrors"
)

// Form identifies one cached encoding of a MultiFormString.
type Form uint8

const (
	FormUTF8 Form = 1 << iota
	FormSystem
	FormWide
)

// MultiFormString holds one logical string in up to three encodings:
// UTF-8, the system charset, and wide (UTF-16 units). Forms are
// derived lazily on first access and cached; a store into one form
// invalidates the others. Buffers are reused across the string's
// lifetime, so a name that is set repeatedly (the common archive
// entry pattern) stops allocating after the first few operations.
type MultiFormString struct {
	utf8   bufferx.Buffer
	system bufferx.Buffer
	wide   bufferx.WideBuffer

	// scratch holds a localized rendering for CopyIntoLocale and
	// GetLocale, which target a caller-chosen charset rather than
	// one of the three standing forms.
	scratch bufferx.Buffer

	set Form
}

// IsSet reports whether the form's cached buffer is current.
func (m *MultiFormString) IsSet(f Form) bool { return m.set&f != 0 }

// Clear unsets every form and releases the cached buffers.
func (m *MultiFormString) Clear() {
	m.utf8.Release()
	m.system.Release()
	m.wide.Release()
	m.scratch.Release()
	m.set = 0
}

// CopyFrom makes m an independent copy of other, cached forms
// included.
func (m *MultiFormString) CopyFrom(other *MultiFormString) error {
	if err := m.utf8.Copy(&other.utf8); err != nil {
		return err
	}
	if err := m.system.Copy(&other.system); err != nil {
		return err
	}
	if err := m.wide.Copy(&other.wide); err != nil {
		return err
	}
	m.set = other.set
	return nil
}

// CopyUTF8 stores s as the UTF-8 form and invalidates the others.
func (m *MultiFormString) CopyUTF8(s string) error {
	m.utf8.Clear()
	if err := m.utf8.AppendString(s); err != nil {
		m.set = 0
		return err
	}
	m.set = FormUTF8
	return nil
}

// CopySystem stores data as the system-charset form and invalidates
// the others.
func (m *MultiFormString) CopySystem(data []byte) error {
	m.system.Clear()
	if err := m.system.Append(data); err != nil {
		m.set = 0
		return err
	}
	m.set = FormSystem
	return nil
}

// CopyWide stores units as the wide form and invalidates the others.
func (m *MultiFormString) CopyWide(units []uint16) error {
	m.wide.Clear()
	if err := m.wide.Append(units); err != nil {
		m.set = 0
		return err
	}
	m.set = FormWide
	return nil
}

// CopyIntoLocale stores data, a string in the source charset of the
// supplied profile, converting it through the profile into the
// system form. On conversion failure no form is marked set, matching
// the contract that a failed store leaves the string logically
// empty.
func (m *MultiFormString) CopyIntoLocale(data []byte, p *Profile) error {
	m.utf8.Clear()
	m.wide.Clear()
	m.system.Clear()
	m.set = 0
	if p == nil {
		if err := m.system.Append(data); err != nil {
			return err
		}
		m.set = FormSystem
		return nil
	}
	if err := p.Convert(&m.system, data); err != nil {
		return err
	}
	m.set = FormSystem
	return nil
}

// GetUTF8 returns the UTF-8 form, deriving it if needed. On a
// best-effort derivation the substituted text is returned alongside
// the error and stays cached.
func (m *MultiFormString) GetUTF8(reg *Registry) (string, error) {
	if m.set&FormUTF8 != 0 {
		return m.utf8.String(), nil
	}
	if m.set == 0 {
		return "", nil
	}
	if m.set&FormSystem == 0 {
		// Wide only: go through the system-free path directly.
		m.utf8.Clear()
		replaced, err := appendUTF8FromWide(&m.utf8, m.wide.Units())
		if err != nil {
			return "", err
		}
		m.set |= FormUTF8
		if replaced {
			return m.utf8.String(), terrors.New(terrors.MalformedInput,
				"wide form contained invalid units")
		}
		return m.utf8.String(), nil
	}
	p, err := reg.Get("", "UTF-8", Options{BestEffort: true})
	if err != nil {
		return "", err
	}
	m.utf8.Clear()
	convErr := p.Convert(&m.utf8, m.system.Bytes())
	if convErr != nil && terrors.CodeOf(convErr) == terrors.OutOfMemory {
		return "", convErr
	}
	m.set |= FormUTF8
	return m.utf8.String(), convErr
}

// GetSystem returns the system-charset form, deriving it if needed.
func (m *MultiFormString) GetSystem(reg *Registry) ([]byte, error) {
	if m.set&FormSystem != 0 {
		return m.system.Bytes(), nil
	}
	if m.set == 0 {
		return nil, nil
	}
	// Make sure a UTF-8 rendering exists, then localize it.
	var firstErr error
	if m.set&FormUTF8 == 0 {
		if _, err := m.GetUTF8(reg); err != nil {
			if terrors.CodeOf(err) == terrors.OutOfMemory {
				return nil, err
			}
			firstErr = err
		}
	}
	p, err := reg.Get("UTF-8", "", Options{BestEffort: true})
	if err != nil {
		return nil, err
	}
	m.system.Clear()
	convErr := p.Convert(&m.system, m.utf8.Bytes())
	if convErr != nil && terrors.CodeOf(convErr) == terrors.OutOfMemory {
		return nil, convErr
	}
	m.set |= FormSystem
	if firstErr != nil {
		return m.system.Bytes(), firstErr
	}
	return m.system.Bytes(), convErr
}

// GetWide returns the wide (UTF-16 unit) form, deriving it if
// needed.
func (m *MultiFormString) GetWide(reg *Registry) ([]uint16, error) {
	if m.set&FormWide != 0 {
		return m.wide.Units(), nil
	}
	if m.set == 0 {
		return nil, nil
	}
	var firstErr error
	if m.set&FormUTF8 == 0 {
		if _, err := m.GetUTF8(reg); err != nil {
			if terrors.CodeOf(err) == terrors.OutOfMemory {
				return nil, err
			}
			firstErr = err
		}
	}
	m.wide.Clear()
	replaced, err := appendWideFromUTF8(&m.wide, m.utf8.Bytes())
	if err != nil {
		return nil, err
	}
	m.set |= FormWide
	if firstErr != nil {
		return m.wide.Units(), firstErr
	}
	if replaced {
		return m.wide.Units(), terrors.New(terrors.MalformedInput,
			"cached text contained invalid sequences")
	}
	return m.wide.Units(), nil
}

// GetLocale returns the string rendered in the target charset of p,
// deriving the system form first if necessary. The rendering lives
// in a scratch buffer that the next GetLocale call reuses. A nil
// profile returns the system form itself.
func (m *MultiFormString) GetLocale(reg *Registry, p *Profile) ([]byte, error) {
	sys, err := m.GetSystem(reg)
	if err != nil && terrors.CodeOf(err) == terrors.OutOfMemory {
		return nil, err
	}
	firstErr := err
	if m.set&FormSystem == 0 {
		return nil, firstErr
	}
	if p == nil {
		return sys, firstErr
	}
	m.scratch.Clear()
	if err := p.Convert(&m.scratch, sys); err != nil {
		if terrors.CodeOf(err) == terrors.OutOfMemory {
			return nil, err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return m.scratch.Bytes(), firstErr
}

// Update stores utf8Text as ground truth and eagerly derives the
// system and wide forms, stopping at the first derivation that
// cannot fully succeed. The failing form keeps its best-effort
// rendering and stays available to later gets; the error tells the
// caller the round trip was lossy.
func (m *MultiFormString) Update(utf8Text string, reg *Registry) error {
	if err := m.CopyUTF8(utf8Text); err != nil {
		return err
	}
	p, err := reg.Get("UTF-8", "", Options{BestEffort: true})
	if err != nil {
		return err
	}
	m.system.Clear()
	if err := p.Convert(&m.system, m.utf8.Bytes()); err != nil {
		if terrors.CodeOf(err) != terrors.OutOfMemory {
			m.set |= FormSystem
		}
		return err
	}
	m.set |= FormSystem

	m.wide.Clear()
	replaced, err := appendWideFromUTF8(&m.wide, m.utf8.Bytes())
	if err != nil {
		return err
	}
	m.set |= FormWide
	if replaced {
		return terrors.New(terrors.MalformedInput,
			"text is not valid UTF-8")
	}
	return nil
}

// appendWideFromUTF8 decodes UTF-8 (CESU-8 tolerated) into UTF-16
// units, substituting U+FFFD for malformed sequences.
func appendWideFromUTF8(dst *bufferx.WideBuffer, src []byte) (replaced bool, err error) {
	if err := dst.Ensure(dst.Len() + len(src) + 1); err != nil {
		return false, err
	}
	for len(src) > 0 {
		r, n := charset.DecodeCESU8(src)
		if n == 0 {
			break
		}
		if n < 0 {
			n = -n
			replaced = true
		}
		src = src[n:]
		var buf [4]byte
		w := charset.EncodeUTF16(buf[:], r, charset.BigEndian)
		for i := 0; i < w; i += 2 {
			u := uint16(buf[i])<<8 | uint16(buf[i+1])
			if err := dst.AppendUnit(u); err != nil {
				return replaced, err
			}
		}
	}
	return replaced, nil
}

// appendUTF8FromWide encodes UTF-16 units as UTF-8, substituting
// U+FFFD for lone surrogate halves.
func appendUTF8FromWide(dst *bufferx.Buffer, units []uint16) (replaced bool, err error) {
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		buf[i*2] = byte(u >> 8)
		buf[i*2+1] = byte(u)
	}
	return charset.ConvertUnicode(dst, buf, charset.UnitUTF16BE, charset.UnitUTF8)
}
