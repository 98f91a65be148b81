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

// Package bufferx implements the growable text buffers used by the
// conversion engine.
//
// A Buffer holds bytes, a WideBuffer holds 16-bit code units. Both
// keep a zero sentinel one position past their logical length and
// grow with the same amortized rule: a fresh buffer starts at 32
// units, buffers under 8192 units double, larger buffers grow by 25%,
// and in every case the new capacity is at least the requested one.
// Capacity never shrinks across Clear so that a buffer reused for
// many conversions of the same logical string settles at its
// high-water mark.
package bufferx

import (
	"github.com/archivetext/archivetext/go/hack"
	"github.com/archivetext/archivetext/go/terrors"
)

const (
	minCapacity = 32
	doubleBelow = 8192
)

// growCapacity applies the growth rule to the current capacity and
// the requested minimum. It returns -1 if the size arithmetic
// overflows.
func growCapacity(cur, want int) int {
	var next int
	switch {
	case cur < minCapacity:
		next = minCapacity
	case cur < doubleBelow:
		next = cur * 2
	default:
		next = cur + cur/4
		if next < cur {
			return -1
		}
	}
	if next < want {
		next = want
	}
	return next
}

// Buffer is a growable, always-terminated byte buffer.
//
// The zero value is ready to use. Buffer values must not be copied
// after first use.
type Buffer struct {
	buf []byte // len(buf) is the capacity; buf[n] == 0 whenever buf != nil
	n   int
}

// Len returns the logical length in bytes.
func (b *Buffer) Len() int { return b.n }

// Cap returns the allocated capacity in bytes.
func (b *Buffer) Cap() int { return len(b.buf) }

// Bytes returns the buffer contents without the terminator. The slice
// aliases the buffer and is invalidated by the next append.
func (b *Buffer) Bytes() []byte {
	if b.buf == nil {
		return nil
	}
	return b.buf[:b.n]
}

// Terminated returns the contents including the zero sentinel.
func (b *Buffer) Terminated() []byte {
	if b.buf == nil {
		return nil
	}
	return b.buf[:b.n+1]
}

// String copies nothing; the result aliases the buffer like Bytes.
func (b *Buffer) String() string {
	return hack.String(b.Bytes())
}

// Ensure grows the buffer so that its capacity is at least minCap.
// On size-arithmetic overflow the buffer is reset to empty and an
// OutOfMemory error is returned, so no dangling partial state
// survives a failed grow.
func (b *Buffer) Ensure(minCap int) error {
	if minCap < 0 {
		b.Release()
		return terrors.New(terrors.OutOfMemory, "buffer size overflow")
	}
	if minCap <= len(b.buf) {
		return nil
	}
	next := growCapacity(len(b.buf), minCap)
	if next < 0 {
		b.Release()
		return terrors.New(terrors.OutOfMemory, "buffer size overflow")
	}
	grown := make([]byte, next)
	copy(grown, b.buf[:b.n])
	b.buf = grown
	return nil
}

// Append copies p onto the end of the buffer and re-terminates.
func (b *Buffer) Append(p []byte) error {
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

// AppendString appends the bytes of s.
func (b *Buffer) AppendString(s string) error {
	return b.Append(hack.StringBytes(s))
}

// AppendByte appends a single byte.
func (b *Buffer) AppendByte(c byte) error {
	if err := b.Ensure(b.n + 2); err != nil {
		return err
	}
	b.buf[b.n] = c
	b.n++
	b.buf[b.n] = 0
	return nil
}

// Strncat appends at most max bytes of p, stopping early at a zero
// byte. It never reads past min(max, len(p)) even if p has no
// terminator.
func (b *Buffer) Strncat(p []byte, max int) error {
	s := 0
	for s < max && s < len(p) && p[s] != 0 {
		s++
	}
	return b.Append(p[:s])
}

// Concat appends the contents of src.
func (b *Buffer) Concat(src *Buffer) error {
	return b.Append(src.Bytes())
}

// Copy replaces the contents with those of src, keeping capacity.
func (b *Buffer) Copy(src *Buffer) error {
	b.Clear()
	return b.Append(src.Bytes())
}

// Clear resets the length to zero without releasing capacity.
func (b *Buffer) Clear() {
	b.n = 0
	if len(b.buf) > 0 {
		b.buf[0] = 0
	}
}

// Release frees the backing storage entirely.
func (b *Buffer) Release() {
	b.buf = nil
	b.n = 0
}

// MustAppend is the fatal-tier compatibility form of Append: it
// panics instead of returning an error. New code should use Append.
func (b *Buffer) MustAppend(p []byte) {
	if err := b.Append(p); err != nil {
		panic(err)
	}
}

// MustAppendString is the fatal-tier form of AppendString.
func (b *Buffer) MustAppendString(s string) {
	if err := b.AppendString(s); err != nil {
		panic(err)
	}
}
