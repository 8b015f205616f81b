/*
 * edumips64 - Register file: GPRs, FPRs, PC/HI/LO and per-register semaphores.
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

package register

import (
	"errors"

	"github.com/edumips64/sim/internal/bitfield"
)

// ErrIrregularWrite is returned when a write would overflow the declared
// signed range of a register.
var ErrIrregularWrite = errors.New("irregular write")

// NumGPR and NumFPR are the architectural register counts.
const (
	NumGPR = 32
	NumFPR = 32
)

// GPR is one 64-bit general purpose register plus its write-semaphore.
// R0 is wired to zero: Write is silently discarded, Read always returns 0.
type GPR struct {
	value   uint64
	writers int // count of in-flight writers, incremented in ID, decremented in WB
	isZero  bool
}

// Word reads the full 64-bit value.
func (g *GPR) Word() uint64 {
	if g.isZero {
		return 0
	}
	return g.value
}

// Half reads the low 32 bits, sign-extended to 64 for arithmetic use.
func (g *GPR) Half() int64 {
	return int64(int32(uint32(g.Word())))
}

// Byte reads the low 8 bits.
func (g *GPR) Byte() uint8 {
	return uint8(g.Word())
}

// SetWord writes the full 64-bit value. A no-op on R0.
func (g *GPR) SetWord(v uint64) error {
	if g.isZero {
		return nil
	}
	g.value = v
	return nil
}

// SetWordSigned writes a signed value, failing with ErrIrregularWrite if it
// does not fit in width bits (at most 64 for a GPR). No package in this
// module calls it.
func (g *GPR) SetWordSigned(v int64, width uint) error {
	if !bitfield.FitsSigned(v, width) {
		return ErrIrregularWrite
	}
	return g.SetWord(uint64(v))
}

// Writers reports the current write-semaphore count.
func (g *GPR) Writers() int { return g.writers }

// Reserve increments the write-semaphore; called from ID when this register
// is the destination of an in-flight instruction.
func (g *GPR) Reserve() {
	if g.isZero {
		return
	}
	g.writers++
}

// Retire decrements the write-semaphore; called from WB on commit.
func (g *GPR) Retire() {
	if g.isZero {
		return
	}
	if g.writers > 0 {
		g.writers--
	}
}

// FPR is one 64-bit floating point register plus its WAW semaphore.
type FPR struct {
	bits   uint64 // IEEE-754 double bit pattern
	wawers int    // WAW semaphore: incremented on FP dispatch, decremented on commit
}

func (f *FPR) Bits() uint64     { return f.bits }
func (f *FPR) SetBits(v uint64) { f.bits = v }
func (f *FPR) WAW() int         { return f.wawers }
func (f *FPR) ReserveWAW()      { f.wawers++ }
func (f *FPR) RetireWAW() {
	if f.wawers > 0 {
		f.wawers--
	}
}

// File is the complete register state of one CPU: GPRs, FPRs, PC/old-PC,
// HI/LO for integer multiply/divide, and the FCSR. It replaces the source
// simulator's process-wide register singleton: a File is constructed by and
// owned by exactly one Simulator (see design notes in SPEC_FULL.md §9).
type File struct {
	gpr [NumGPR]GPR
	fpr [NumFPR]FPR

	PC    uint32
	OldPC uint32
	HI    uint64
	LO    uint64

	FCSR FCSR
}

// New returns a freshly reset register file.
func New() *File {
	f := &File{}
	f.Reset()
	return f
}

// Reset clears every register, the program counter and the FCSR to power-on
// state. R0 keeps isZero set across reset.
func (f *File) Reset() {
	for i := range f.gpr {
		f.gpr[i] = GPR{isZero: i == 0}
	}
	for i := range f.fpr {
		f.fpr[i] = FPR{}
	}
	f.PC = 0
	f.OldPC = 0
	f.HI = 0
	f.LO = 0
	f.FCSR = FCSR{}
}

// GPRReg returns a pointer to general purpose register n (0..31).
func (f *File) GPRReg(n int) *GPR { return &f.gpr[n] }

// FPRReg returns a pointer to floating point register n (0..31).
func (f *File) FPRReg(n int) *FPR { return &f.fpr[n] }
