/*
 * edumips64 - Floating point sub-pipeline: Adder, Multiplier, Divider.
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

// Package fpu models the three independent FP functional units of
// SPEC_FULL.md §4.4: a 4-stage pipelined Adder, a 7-stage pipelined
// Multiplier, and a non-pipelined Divider with a fixed countdown. All
// three share one entry point (from ID) and one exit (to EX/MEM); each
// in-flight instruction is tracked by cycles-remaining rather than by an
// explicit array of shift positions, which gives the same latency
// behavior with less bookkeeping.
package fpu

import "github.com/edumips64/sim/internal/isa"

const (
	adderLatency      = 4
	multiplierLatency = 7
	defaultDivider    = 24
)

type inflight struct {
	in        *isa.Instruction
	remaining int
}

// unit is one functional unit: a FIFO of in-flight instructions, each
// counting down to zero. The head of the queue is the oldest admission and
// therefore the first to become ready, matching the "shift toward
// completion" rule of a real pipeline without modeling individual stages.
type unit struct {
	capacity     int
	nonPipelined bool
	queue        []*inflight
}

func newUnit(capacity int, nonPipelined bool) *unit {
	return &unit{capacity: capacity, nonPipelined: nonPipelined}
}

func (u *unit) reserve(in *isa.Instruction, latency int) bool {
	if u.nonPipelined && len(u.queue) > 0 {
		return false
	}
	if len(u.queue) >= u.capacity {
		return false
	}
	u.queue = append(u.queue, &inflight{in: in, remaining: latency})
	return true
}

func (u *unit) advance() {
	for _, op := range u.queue {
		if op.remaining > 0 {
			op.remaining--
		}
	}
}

func (u *unit) ready() bool {
	return len(u.queue) > 0 && u.queue[0].remaining <= 0
}

func (u *unit) take() *isa.Instruction {
	if !u.ready() {
		return nil
	}
	op := u.queue[0]
	u.queue = u.queue[1:]
	return op.in
}

func (u *unit) occupancy() int { return len(u.queue) }

// Pipe is the complete FP sub-pipeline owned by one cpu.
type Pipe struct {
	adder          *unit
	multiplier     *unit
	divider        *unit
	dividerLatency int
}

// New returns an empty Pipe. dividerLatency is the Divider's fixed
// countdown in cycles; 0 selects the spec default of 24.
func New(dividerLatency int) *Pipe {
	if dividerLatency <= 0 {
		dividerLatency = defaultDivider
	}
	return &Pipe{
		adder:          newUnit(adderLatency, false),
		multiplier:     newUnit(multiplierLatency, false),
		divider:        newUnit(1, true),
		dividerLatency: dividerLatency,
	}
}

// Reserve admits in into the functional unit its mnemonic selects. A
// false return carries the stall Outcome the ID stage should raise:
// OutcomeStructuralDivider when the divider is busy, OutcomeStructuralFPUnit
// when the Adder/Multiplier queue is full (SPEC_FULL.md §4.3).
func (p *Pipe) Reserve(in *isa.Instruction) (bool, isa.OutcomeKind) {
	switch in.Name() {
	case "DIV.D":
		if !p.divider.reserve(in, p.dividerLatency) {
			return false, isa.OutcomeStructuralDivider
		}
	case "MUL.D":
		if !p.multiplier.reserve(in, multiplierLatency) {
			return false, isa.OutcomeStructuralFPUnit
		}
	default: // ADD.D, SUB.D
		if !p.adder.reserve(in, adderLatency) {
			return false, isa.OutcomeStructuralFPUnit
		}
	}
	return true, isa.OutcomeOK
}

// Advance shifts every in-flight instruction one cycle closer to
// completion. Called once per cycle from the EX stage (SPEC_FULL.md §4.3:
// "Advance the FP sub-pipeline by one shift").
func (p *Pipe) Advance() {
	p.adder.advance()
	p.multiplier.advance()
	p.divider.advance()
}

// Peek reports the FP instruction (if any) that would win this cycle's
// completion arbitration, without removing it from its unit. The second
// return reports whether more than one unit was ready simultaneously.
func (p *Pipe) Peek() (*isa.Instruction, bool) {
	ready := 0
	for _, u := range []*unit{p.divider, p.multiplier, p.adder} {
		if u.ready() {
			ready++
		}
	}
	if ready == 0 {
		return nil, false
	}
	contended := ready > 1
	switch {
	case p.divider.ready():
		return p.divider.queue[0].in, contended
	case p.multiplier.ready():
		return p.multiplier.queue[0].in, contended
	default:
		return p.adder.queue[0].in, contended
	}
}

// TakeCompleted is Peek followed by removal: it commits the arbitration
// decision Peek already made. The unchosen unit (if Peek reported
// contended) is left untouched and will be ready again next cycle.
func (p *Pipe) TakeCompleted() (*isa.Instruction, bool) {
	in, contended := p.Peek()
	if in == nil {
		return nil, false
	}
	switch {
	case p.divider.ready() && p.divider.queue[0].in == in:
		return p.divider.take(), contended
	case p.multiplier.ready() && p.multiplier.queue[0].in == in:
		return p.multiplier.take(), contended
	default:
		return p.adder.take(), contended
	}
}

// Occupant describes one in-flight instruction inside a functional unit's
// queue, for the cycle package's snapshot builder.
type Occupant struct {
	Unit      string // "divider", "multiplier", "adder"
	Instr     *isa.Instruction
	Remaining int
}

// Occupants lists every in-flight instruction across all three functional
// units, oldest-first within each unit.
func (p *Pipe) Occupants() []Occupant {
	var out []Occupant
	appendUnit := func(name string, u *unit) {
		for _, op := range u.queue {
			out = append(out, Occupant{Unit: name, Instr: op.in, Remaining: op.remaining})
		}
	}
	appendUnit("divider", p.divider)
	appendUnit("multiplier", p.multiplier)
	appendUnit("adder", p.adder)
	return out
}

// Busy reports whether any functional unit still holds an instruction —
// used by the cycle loop to decide when STOPPING may transition to
// HALTED (SPEC_FULL.md §3).
func (p *Pipe) Busy() bool {
	return p.adder.occupancy() > 0 || p.multiplier.occupancy() > 0 || p.divider.occupancy() > 0
}
