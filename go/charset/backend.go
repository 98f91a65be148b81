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
	"os"
	"strings"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/archivetext/archivetext/go/log"
	"github.com/archivetext/archivetext/go/terrors"
)

// Backend is an opaque transcoding service for one legacy charset.
// Decoders produce UTF-8 and substitute RuneError for illegal input;
// encoders consume UTF-8 and fail on unrepresentable runes unless
// wrapped by the caller.
type Backend interface {
	Name() string
	NewDecoder() *encoding.Decoder
	NewEncoder() *encoding.Encoder
}

type backend struct {
	name string
	enc  encoding.Encoding
}

func (b *backend) Name() string                  { return b.name }
func (b *backend) NewDecoder() *encoding.Decoder { return b.enc.NewDecoder() }
func (b *backend) NewEncoder() *encoding.Encoder { return b.enc.NewEncoder() }

// aliases maps spellings that archive metadata and iconv accept to
// the names the IANA index resolves. ASCII and the latin1 family map
// to windows-1252, matching the codepage table this replaces.
var aliases = map[string]string{
	"SJIS":           "Shift_JIS",
	"SHIFT-JIS":      "Shift_JIS",
	"CP932":          "Shift_JIS",
	"MS_KANJI":       "Shift_JIS",
	"EUCJP":          "EUC-JP",
	"EUCKR":          "EUC-KR",
	"KS_C_5601-1987": "EUC-KR",
	"EUCCN":          "GBK",
	"EUC-CN":         "GBK",
	"CHINESE":        "GBK",
	"ASCII":          "windows-1252",
	"US":             "windows-1252",
	"US-ASCII":       "windows-1252",
	"ANSI_X3.4-1968": "windows-1252",
	"CP367":          "windows-1252",
	"IBM367":         "windows-1252",
	"LATIN1":         "windows-1252",
	"LATIN2":         "ISO-8859-2",
	"CP819":          "windows-1252",
	"IBM819":         "windows-1252",
	"CP866":          "IBM866",
	"ARABIC":         "ISO-8859-6",
	"GREEK":          "ISO-8859-7",
	"HEBREW":         "ISO-8859-8",
}

// ResolveBackend maps a canonical charset name to a transcoding
// backend. It returns a BackendUnavailable error when no encoding is
// known for the name.
func ResolveBackend(name string) (Backend, error) {
	lookup := name
	if alias, ok := aliases[strings.ToUpper(name)]; ok {
		log.V(2).Infof("charset: resolving %q through alias %q", name, alias)
		lookup = alias
	}
	enc, err := ianaindex.IANA.Encoding(lookup)
	if err != nil || enc == nil {
		return nil, terrors.Errorf(terrors.BackendUnavailable,
			"no transcoding backend for charset %q", name)
	}
	return &backend{name: name, enc: enc}, nil
}

// Charset-name inspection. The engine computes these charsets
// directly instead of going through a backend.

func IsUTF8(name string) bool {
	return strings.EqualFold(name, "UTF-8") || strings.EqualFold(name, "UTF8")
}

func IsUTF16BE(name string) bool {
	return strings.EqualFold(name, "UTF-16BE") || strings.EqualFold(name, "UTF16BE")
}

func IsUTF16LE(name string) bool {
	return strings.EqualFold(name, "UTF-16LE") || strings.EqualFold(name, "UTF16LE")
}

// IsUnicode reports whether name is one of the Unicode forms the
// codec layer handles without a backend.
func IsUnicode(name string) bool {
	return IsUTF8(name) || IsUTF16BE(name) || IsUTF16LE(name)
}

var (
	systemOnce    sync.Once
	systemCharset string
)

// SystemCharset returns the charset name to use as the implicit
// system encoding, derived once from the locale environment. An
// unset or codeset-less locale defaults to UTF-8.
func SystemCharset() string {
	systemOnce.Do(func() {
		systemCharset = localeCharset(os.Getenv("LC_ALL"),
			os.Getenv("LC_CTYPE"), os.Getenv("LANG"))
	})
	return systemCharset
}

func localeCharset(vars ...string) string {
	for _, v := range vars {
		if v == "" {
			continue
		}
		if v == "C" || v == "POSIX" {
			return "US-ASCII"
		}
		// Locale syntax: lang_territory.codeset@modifier
		if at := strings.IndexByte(v, '@'); at >= 0 {
			v = v[:at]
		}
		dot := strings.IndexByte(v, '.')
		if dot < 0 || dot == len(v)-1 {
			continue
		}
		cs := v[dot+1:]
		if strings.EqualFold(cs, "utf8") {
			return "UTF-8"
		}
		return cs
	}
	return "UTF-8"
}
