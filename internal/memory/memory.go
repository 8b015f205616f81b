/*
 * edumips64 - Data memory and symbol table.
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

// Package memory implements the byte-addressable data memory and the label
// symbol table; code memory is not kept here (the cpu package holds the
// decoded instructions by address). The source simulator keeps these as
// process-wide singletons (see emu/memory in the reference material); here
// Memory is a value constructed by and owned by one Simulator, per
// SPEC_FULL.md's §9 design note on singletons.
package memory

import (
	"errors"
	"fmt"
)

// ErrAddressError is returned when an access falls outside the declared
// memory bounds.
var ErrAddressError = errors.New("address error")

// ErrNotAlign is returned when an access of a given width is not aligned to
// that width.
var ErrNotAlign = errors.New("not align")

// DefaultSize is the default data segment size, in bytes, used when a
// program does not request a larger one explicitly.
const DefaultSize = 1 << 20 // 1 MiB

// Memory is the byte-addressable data segment. Addresses are 32-bit;
// doublewords are the natural alignment unit but byte/half/word accesses
// are permitted provided they respect their own alignment.
type Memory struct {
	bytes []byte
}

// New allocates a data memory of the given size in bytes.
func New(size uint32) *Memory {
	if size == 0 {
		size = DefaultSize
	}
	return &Memory{bytes: make([]byte, size)}
}

// Size returns the memory's byte length.
func (m *Memory) Size() uint32 { return uint32(len(m.bytes)) }

func (m *Memory) checkBounds(addr uint32, width uint32) error {
	if uint64(addr)+uint64(width) > uint64(len(m.bytes)) {
		return fmt.Errorf("%w: address %#x width %d", ErrAddressError, addr, width)
	}
	if addr%width != 0 {
		return fmt.Errorf("%w: address %#x not aligned to %d", ErrNotAlign, addr, width)
	}
	return nil
}

// ReadByte reads one byte.
func (m *Memory) ReadByte(addr uint32) (uint8, error) {
	if err := m.checkBounds(addr, 1); err != nil {
		return 0, err
	}
	return m.bytes[addr], nil
}

// WriteByte writes one byte.
func (m *Memory) WriteByte(addr uint32, v uint8) error {
	if err := m.checkBounds(addr, 1); err != nil {
		return err
	}
	m.bytes[addr] = v
	return nil
}

// ReadHalf reads a 16-bit big-endian half word.
func (m *Memory) ReadHalf(addr uint32) (uint16, error) {
	if err := m.checkBounds(addr, 2); err != nil {
		return 0, err
	}
	return uint16(m.bytes[addr])<<8 | uint16(m.bytes[addr+1]), nil
}

// WriteHalf writes a 16-bit big-endian half word.
func (m *Memory) WriteHalf(addr uint32, v uint16) error {
	if err := m.checkBounds(addr, 2); err != nil {
		return err
	}
	m.bytes[addr] = uint8(v >> 8)
	m.bytes[addr+1] = uint8(v)
	return nil
}

// ReadWord reads a 32-bit big-endian word.
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	if err := m.checkBounds(addr, 4); err != nil {
		return 0, err
	}
	v := uint32(0)
	for i := uint32(0); i < 4; i++ {
		v = v<<8 | uint32(m.bytes[addr+i])
	}
	return v, nil
}

// WriteWord writes a 32-bit big-endian word.
func (m *Memory) WriteWord(addr uint32, v uint32) error {
	if err := m.checkBounds(addr, 4); err != nil {
		return err
	}
	for i := uint32(0); i < 4; i++ {
		m.bytes[addr+i] = uint8(v >> (8 * (3 - i)))
	}
	return nil
}

// ReadDouble reads a 64-bit big-endian doubleword, the aligned cell the
// data model describes.
func (m *Memory) ReadDouble(addr uint32) (uint64, error) {
	if err := m.checkBounds(addr, 8); err != nil {
		return 0, err
	}
	v := uint64(0)
	for i := uint32(0); i < 8; i++ {
		v = v<<8 | uint64(m.bytes[addr+i])
	}
	return v, nil
}

// WriteDouble writes a 64-bit big-endian doubleword.
func (m *Memory) WriteDouble(addr uint32, v uint64) error {
	if err := m.checkBounds(addr, 8); err != nil {
		return err
	}
	for i := uint32(0); i < 8; i++ {
		m.bytes[addr+i] = uint8(v >> (8 * (7 - i)))
	}
	return nil
}

// WriteBytes copies raw bytes starting at addr, used by the parser to lay
// down .ascii/.asciiz/.space data without per-byte alignment checks.
func (m *Memory) WriteBytes(addr uint32, data []byte) error {
	if uint64(addr)+uint64(len(data)) > uint64(len(m.bytes)) {
		return fmt.Errorf("%w: address %#x length %d", ErrAddressError, addr, len(data))
	}
	copy(m.bytes[addr:], data)
	return nil
}
