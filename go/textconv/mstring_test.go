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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivetext/archivetext/go/terrors"
)

func TestMStringLazyDerivation(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	var m MultiFormString
	require.NoError(t, m.CopyUTF8("café"))
	assert.True(t, m.IsSet(FormUTF8))
	assert.False(t, m.IsSet(FormSystem))
	assert.False(t, m.IsSet(FormWide))

	sys, err := m.GetSystem(r)
	require.NoError(t, err)
	assert.NotEmpty(t, sys)
	assert.True(t, m.IsSet(FormSystem))

	wide, err := m.GetWide(r)
	require.NoError(t, err)
	assert.Equal(t, []uint16{'c', 'a', 'f', 0xe9}, wide)

	// Deriving never invalidates what was already cached.
	assert.True(t, m.IsSet(FormUTF8))
	s, err := m.GetUTF8(r)
	require.NoError(t, err)
	assert.Equal(t, "café", s)
}

func TestMStringWideRoundTrip(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	var m MultiFormString
	// A surrogate pair in the wide form comes back as one scalar.
	require.NoError(t, m.CopyWide([]uint16{0xd801, 0xdc00, 'x'}))
	s, err := m.GetUTF8(r)
	require.NoError(t, err)
	assert.Equal(t, "\U00010400x", s)

	// And back out to wide units unchanged.
	m2 := MultiFormString{}
	require.NoError(t, m2.CopyUTF8(s))
	wide, err := m2.GetWide(r)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0xd801, 0xdc00, 'x'}, wide)
}

func TestMStringCopyInvalidates(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	var m MultiFormString
	require.NoError(t, m.CopyUTF8("first"))
	_, err := m.GetWide(r)
	require.NoError(t, err)
	require.True(t, m.IsSet(FormWide))

	require.NoError(t, m.CopySystem([]byte("second")))
	assert.True(t, m.IsSet(FormSystem))
	assert.False(t, m.IsSet(FormUTF8))
	assert.False(t, m.IsSet(FormWide))

	s, err := m.GetUTF8(r)
	require.NoError(t, err)
	assert.Equal(t, "second", s)
}

func TestMStringUpdateFailureKeepsBestEffort(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	var m MultiFormString
	err := m.Update("caf\xff", r)
	require.Error(t, err)
	assert.Equal(t, terrors.MalformedInput, terrors.CodeOf(err))

	// The failed derivation still left a usable rendering behind.
	sys, err := m.GetSystem(r)
	require.NotEmpty(t, sys)
	assert.NoError(t, err, "cached best-effort form returns without re-deriving")
}

func TestMStringUpdateSetsAllForms(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	var m MultiFormString
	require.NoError(t, m.Update("café", r))
	assert.True(t, m.IsSet(FormUTF8))
	assert.True(t, m.IsSet(FormSystem))
	assert.True(t, m.IsSet(FormWide))
}

func TestMStringClear(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	var m MultiFormString
	require.NoError(t, m.Update("name", r))
	m.Clear()
	assert.False(t, m.IsSet(FormUTF8|FormSystem|FormWide))
	s, err := m.GetUTF8(r)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestMStringCopyFrom(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	var src MultiFormString
	require.NoError(t, src.Update("shared name", r))

	var dst MultiFormString
	require.NoError(t, dst.CopyFrom(&src))
	assert.Equal(t, src.set, dst.set)
	s, err := dst.GetUTF8(r)
	require.NoError(t, err)
	assert.Equal(t, "shared name", s)

	// The copy is independent of the source.
	require.NoError(t, src.CopyUTF8("changed"))
	s, err = dst.GetUTF8(r)
	require.NoError(t, err)
	assert.Equal(t, "shared name", s)
}

func TestMStringCopyIntoLocale(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	p := mustProfile(t, "ISO-8859-1", "UTF-8", Options{})
	var m MultiFormString
	require.NoError(t, m.CopyIntoLocale([]byte("caf\xe9"), p))
	assert.True(t, m.IsSet(FormSystem))

	s, err := m.GetUTF8(r)
	require.NoError(t, err)
	assert.Equal(t, "café", s)
}

func TestMStringGetLocale(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	p := mustProfile(t, "UTF-8", "ISO-8859-1", Options{})
	var m MultiFormString
	require.NoError(t, m.CopyUTF8("café"))
	got, err := m.GetLocale(r, p)
	require.NoError(t, err)
	assert.Equal(t, []byte("caf\xe9"), got)

	// A nil profile hands back the system form.
	got, err = m.GetLocale(r, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}
