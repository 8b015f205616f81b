/*
 * edumips64 - Fixed width bit string primitives.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package bitfield implements the fixed-width binary-string primitives the
// rest of the simulator is built on. The original simulator represented
// every register and operand as a string of '0'/'1' characters; here a
// BitString is a plain uint64 paired with a declared bit length, which makes
// the IrregularBitString condition of the source simulator statically
// impossible while keeping the same "declared length never changes" contract.
package bitfield

import "fmt"

// ErrIrregular is returned whenever an operation would change the declared
// length of a BitString, or receives a length outside [1, 64].
var ErrIrregular = fmt.Errorf("irregular bit string")

// BitString is a two's-complement value of a fixed declared bit length.
type BitString struct {
	value uint64
	len   uint
}

// New builds a BitString of the given length holding value, masked to that
// length. len must be in [1, 64].
func New(value uint64, length uint) (BitString, error) {
	if length == 0 || length > 64 {
		return BitString{}, ErrIrregular
	}
	return BitString{value: value & mask(length), len: length}, nil
}

// MustNew is New, panicking on error. Used for compile-time-known widths
// (8, 16, 32, 64) where a failure would be a programming mistake.
func MustNew(value uint64, length uint) BitString {
	b, err := New(value, length)
	if err != nil {
		panic(err)
	}
	return b
}

func mask(length uint) uint64 {
	if length >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << length) - 1
}

// Len returns the declared bit length.
func (b BitString) Len() uint { return b.len }

// Uint64 returns the unsigned interpretation of the bits.
func (b BitString) Uint64() uint64 { return b.value }

// Int64 returns the two's-complement signed interpretation of the bits.
func (b BitString) Int64() int64 {
	if b.len == 64 {
		return int64(b.value)
	}
	signBit := uint64(1) << (b.len - 1)
	if b.value&signBit != 0 {
		return int64(b.value) - int64(mask(b.len)) - 1
	}
	return int64(b.value)
}

// SignExtend returns a new BitString of width `to` holding the sign-extended
// value of b. to must be >= b.Len(), else ErrIrregular (a sign-extend can
// never shrink the declared length).
func (b BitString) SignExtend(to uint) (BitString, error) {
	if to < b.len {
		return BitString{}, ErrIrregular
	}
	return New(uint64(b.Int64()), to)
}

// ZeroExtend returns a new BitString of width `to` holding the zero-extended
// value of b. to must be >= b.Len().
func (b BitString) ZeroExtend(to uint) (BitString, error) {
	if to < b.len {
		return BitString{}, ErrIrregular
	}
	return New(b.value, to)
}

// Truncate returns the low `to` bits of b as a new BitString. to must be
// <= b.Len().
func (b BitString) Truncate(to uint) (BitString, error) {
	if to > b.len {
		return BitString{}, ErrIrregular
	}
	return New(b.value, to)
}

// FitsSigned reports whether v can be represented in `bits` bits of
// two's-complement without loss, the check used by IrregularWrite.
func FitsSigned(v int64, bits uint) bool {
	if bits >= 64 {
		return true
	}
	lo := -(int64(1) << (bits - 1))
	hi := (int64(1) << (bits - 1)) - 1
	return v >= lo && v <= hi
}

// String renders the bit string as '0'/'1' characters, most significant
// bit first, for textual/UI display only.
func (b BitString) String() string {
	out := make([]byte, b.len)
	for i := uint(0); i < b.len; i++ {
		bit := (b.value >> (b.len - 1 - i)) & 1
		if bit == 1 {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}
