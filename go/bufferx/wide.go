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

package bufferx

import "github.com/archivetext/archivetext/go/terrors"

// WideBuffer is the 16-bit-unit counterpart of Buffer. It holds the
// platform-wide representation of a string as UTF-16 code units.
//
// The zero value is ready to use.
type WideBuffer struct {
	buf []uint16 // len(buf) is the capacity; buf[n] == 0 whenever buf != nil
	n   int
}

// Len returns the logical length in code units.
func (b *WideBuffer) Len() int { return b.n }

// Cap returns the allocated capacity in code units.
func (b *WideBuffer) Cap() int { return len(b.buf) }

// Units returns the contents without the terminator. The slice
// aliases the buffer and is invalidated by the next append.
func (b *WideBuffer) Units() []uint16 {
	if b.buf == nil {
		return nil
	}
	return b.buf[:b.n]
}

// Terminated returns the contents including the zero sentinel.
func (b *WideBuffer) Terminated() []uint16 {
	if b.buf == nil {
		return nil
	}
	return b.buf[:b.n+1]
}

// Ensure grows the buffer so that its capacity is at least minCap
// units, with the same growth rule and overflow behavior as
// Buffer.Ensure.
func (b *WideBuffer) Ensure(minCap int) error {
	if minCap < 0 {
		b.Release()
		return terrors.New(terrors.OutOfMemory, "wide buffer size overflow")
	}
	if minCap <= len(b.buf) {
		return nil
	}
	next := growCapacity(len(b.buf), minCap)
	if next < 0 {
		b.Release()
		return terrors.New(terrors.OutOfMemory, "wide buffer size overflow")
	}
	grown := make([]uint16, next)
	copy(grown, b.buf[:b.n])
	b.buf = grown
	return nil
}

// Append copies p onto the end of the buffer and re-terminates.
func (b *WideBuffer) Append(p []uint16) error {
	if len(p) == 0 {
		return b.Ensure(b.n + 1)
	}
	if err := b.Ensure(b.n + len(p) + 1); err != nil {
		return err
	}
	copy(b.buf[b.n:], p)
	b.n += len(p)
	b.buf[b.n] = 0
	return nil
}

// AppendUnit appends a single code unit.
func (b *WideBuffer) AppendUnit(u uint16) error {
	if err := b.Ensure(b.n + 2); err != nil {
		return err
	}
	b.buf[b.n] = u
	b.n++
	b.buf[b.n] = 0
	return nil
}

// Strncat appends at most max units of p, stopping early at a zero
// unit.
func (b *WideBuffer) Strncat(p []uint16, max int) error {
	s := 0
	for s < max && s < len(p) && p[s] != 0 {
		s++
	}
	return b.Append(p[:s])
}

// Concat appends the contents of src.
func (b *WideBuffer) Concat(src *WideBuffer) error {
	return b.Append(src.Units())
}

// Copy replaces the contents with those of src, keeping capacity.
func (b *WideBuffer) Copy(src *WideBuffer) error {
	b.Clear()
	return b.Append(src.Units())
}

// Clear resets the length to zero without releasing capacity.
func (b *WideBuffer) Clear() {
	b.n = 0
	if len(b.buf) > 0 {
		b.buf[0] = 0
	}
}

// Release frees the backing storage entirely.
func (b *WideBuffer) Release() {
	b.buf = nil
	b.n = 0
}

// MustAppend is the fatal-tier compatibility form of Append.
func (b *WideBuffer) MustAppend(p []uint16) {
	if err := b.Append(p); err != nil {
		panic(err)
	}
}
