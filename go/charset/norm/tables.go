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
	"sort"
	"sync"
	"unicode/utf8"

	xnorm "golang.org/x/text/unicode/norm"
)

// compositionPair maps an ordered (base, combining) codepoint pair to
// its primary composite.
type compositionPair struct {
	cp1, cp2, nfc rune
}

var (
	tableOnce    sync.Once
	compositions []compositionPair
)

// compositionTable derives the sorted primary-composite table from
// the Unicode data embedded in x/text. A composite qualifies when its
// canonical decomposition ends in one combining codepoint whose
// removal recomposes to a single rune, and when recomposition
// round-trips (which excludes the composition exclusions). Hangul
// syllables are composed algorithmically and skipped here.
func compositionTable() []compositionPair {
	tableOnce.Do(func() {
		var buf [utf8.UTFMax]byte
		for r := rune(0); r <= utf8.MaxRune; r++ {
			if r >= surrogateMin && r <= surrogateMax {
				continue
			}
			if r >= hangulSBase && r < hangulSBase+hangulSCount {
				continue
			}
			n := utf8.EncodeRune(buf[:], r)
			d := xnorm.NFD.Properties(buf[:n]).Decomposition()
			if d == nil {
				continue
			}
			second, sz := utf8.DecodeLastRune(d)
			if sz == len(d) {
				continue // singleton decomposition
			}
			head := xnorm.NFC.String(string(d[:len(d)-sz]))
			first, sz1 := utf8.DecodeRuneInString(head)
			if sz1 != len(head) {
				continue // head does not recompose to one rune
			}
			if xnorm.NFC.String(string(first)+string(second)) != string(buf[:n]) {
				continue // composition exclusion
			}
			compositions = append(compositions, compositionPair{first, second, r})
		}
		sort.Slice(compositions, func(i, j int) bool {
			a, b := compositions[i], compositions[j]
			if a.cp1 != b.cp1 {
				return a.cp1 < b.cp1
			}
			return a.cp2 < b.cp2
		})
	})
	return compositions
}

// Composed returns the primary composite of (a, b), or 0 when the
// pair has none. Hangul is not handled here.
func Composed(a, b rune) rune {
	table := compositionTable()
	i := sort.Search(len(table), func(i int) bool {
		t := table[i]
		return t.cp1 > a || (t.cp1 == a && t.cp2 >= b)
	})
	if i < len(table) && table[i].cp1 == a && table[i].cp2 == b {
		return table[i].nfc
	}
	return 0
}

// CombiningClass returns the canonical combining class of r.
func CombiningClass(r rune) uint8 {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	return xnorm.NFD.Properties(buf[:n]).CCC()
}

const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
)

// Hangul composition constants, per the standard composition formula.
const (
	hangulSBase  = 0xAC00
	hangulLBase  = 0x1100
	hangulVBase  = 0x1161
	hangulTBase  = 0x11A7
	hangulLCount = 19
	hangulVCount = 21
	hangulTCount = 28
	hangulSCount = hangulLCount * hangulVCount * hangulTCount
)

// composeHangul combines (a, b) when they form L+V or LV+T. It
// returns 0 when they do not.
func composeHangul(a, b rune) rune {
	if l := a - hangulLBase; l >= 0 && l < hangulLCount {
		if v := b - hangulVBase; v >= 0 && v < hangulVCount {
			return hangulSBase + (l*hangulVCount+v)*hangulTCount
		}
		return 0
	}
	if s := a - hangulSBase; s >= 0 && s < hangulSCount && s%hangulTCount == 0 {
		if t := b - hangulTBase; t > 0 && t < hangulTCount {
			return a + t
		}
	}
	return 0
}
