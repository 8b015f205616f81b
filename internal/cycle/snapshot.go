/*
 * edumips64 - Per-cycle simulator snapshot.
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

// Package cycle defines Snapshot, the cpu package's sole external read
// surface (SPEC_FULL.md §4.8): a flat, immutable value built once per
// Step() call and handed to cmd/edumips64 and repl. Snapshot carries only
// plain values, never pointers into live simulator state, so a consumer
// can hold one past the next Step() without racing the core.
package cycle

// Occupant describes one pipeline stage's contents at the moment a
// Snapshot was built.
type Occupant struct {
	Name     string
	Encoding uint32
	Bubble   bool
	Empty    bool
}

// FPUnitOccupant describes one in-flight instruction inside the FP
// sub-pipeline's Adder, Multiplier or Divider queue.
type FPUnitOccupant struct {
	Unit      string // "divider", "multiplier", "adder"
	Name      string
	Remaining int
}

// StallCounts tallies the distinct stall counters of SPEC_FULL.md §4.3.
type StallCounts struct {
	RAW               uint64
	WAW               uint64
	StructuralDivider uint64
	StructuralFPUnit  uint64
	StructuralEX      uint64
	StructuralMemory  uint64
}

// Sum is the "sum(stalls)+instructions <= cycles" testable property of
// SPEC_FULL.md §8.
func (s StallCounts) Sum() uint64 {
	return s.RAW + s.WAW + s.StructuralDivider + s.StructuralFPUnit + s.StructuralEX + s.StructuralMemory
}

// FCSRView is a flat, read-only copy of the floating point control and
// status register.
type FCSRView struct {
	EnableInvalid   bool
	EnableDivByZero bool
	EnableOverflow  bool
	EnableUnderflow bool
	EnableInexact   bool

	CauseInvalid   bool
	CauseDivByZero bool
	CauseOverflow  bool
	CauseUnderflow bool
	CauseInexact   bool

	FlagInvalid   bool
	FlagDivByZero bool
	FlagOverflow  bool
	FlagUnderflow bool
	FlagInexact   bool

	ConditionCodes [8]bool
	Rounding       uint8
}

// Snapshot is the immutable value produced once per CPU.Step() call: cycle
// count, per-stage occupant, FP sub-pipeline occupancy, stall counters and
// a copy of every architectural register. The core never mutates a
// Snapshot after returning it.
type Snapshot struct {
	Cycle        uint64
	Status       string
	Instructions uint64

	IF, ID, EX, MEM, WB Occupant
	FPUnits             []FPUnitOccupant
	Stalls              StallCounts

	GPR [32]uint64
	FPR [32]uint64

	PC, OldPC uint32
	HI, LO    uint64
	FCSR      FCSRView
}
