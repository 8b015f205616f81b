/*
 * edumips64 - Five-stage integer pipeline controller.
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

package cpu

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/edumips64/sim/internal/config"
	"github.com/edumips64/sim/internal/cycle"
	"github.com/edumips64/sim/internal/fpu"
	"github.com/edumips64/sim/internal/isa"
	"github.com/edumips64/sim/internal/logging"
	"github.com/edumips64/sim/internal/memory"
	"github.com/edumips64/sim/internal/register"
)

// Status is the CPU state machine of SPEC_FULL.md §3.
type Status int

const (
	StatusReady Status = iota
	StatusRunning
	StatusStopping
	StatusHalted
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "RUNNING"
	case StatusStopping:
		return "STOPPING"
	case StatusHalted:
		return "HALTED"
	default:
		return "READY"
	}
}

// Signal is a control signal the cycle loop raised this cycle, surfaced
// to the caller after Step returns (SPEC_FULL.md §7).
type Signal int

const (
	SignalNone Signal = iota
	SignalBreak
	SignalHalt
	SignalException
)

// ErrStoppedCPU is returned by Step when called in READY or HALTED.
var ErrStoppedCPU = errors.New("stepped cpu in READY or HALTED state")

// Stalls tallies the distinct stall counters of SPEC_FULL.md §4.3.
type Stalls struct {
	RAW               uint64
	WAW               uint64
	StructuralDivider uint64
	StructuralFPUnit  uint64
	StructuralEX      uint64
	StructuralMemory  uint64
}

// Sum returns the total stall count, used by the "sum(stalls)+instructions
// <= cycles" testable property of SPEC_FULL.md §8.
func (s Stalls) Sum() uint64 {
	return s.RAW + s.WAW + s.StructuralDivider + s.StructuralFPUnit + s.StructuralEX + s.StructuralMemory
}

// CPU is one MIPS64 pipeline: register file, data memory, code memory and
// the FP sub-pipeline, wired together through the isa.Machine adapter in
// machine.go. A CPU is constructed by and owned by exactly one caller —
// there is no package-level singleton (SPEC_FULL.md §9).
type CPU struct {
	Regs *register.File
	Mem  *memory.Memory
	Cfg  config.Config

	Status       Status
	Cycles       uint64
	Instructions uint64
	Stalls       Stalls
	LastSignal   Signal
	LastException isa.ExceptionCode

	code  []*isa.Instruction
	table *isa.Table
	fp    *fpu.Pipe
	m     *machine
	log   *slog.Logger

	ifSlot, idSlot, exSlot, memSlot, wbSlot *isa.Instruction

	jumpPending bool
	jumpTarget  uint32

	last cycle.Snapshot
}

// New returns a CPU ready to run code, a slice of pre-decoded instructions
// in address order (as produced by internal/parser's Program.Instructions)
// backed by dataMem and governed by cfg.
func New(table *isa.Table, code []*isa.Instruction, dataMem *memory.Memory, cfg config.Config) *CPU {
	regs := register.New()
	c := &CPU{
		Regs:  regs,
		Mem:   dataMem,
		Cfg:   cfg,
		table: table,
		code:  code,
		fp:    fpu.New(cfg.DividerLatency),
		m:     &machine{regs: regs, mem: dataMem, forwarding: cfg.Forwarding},
		log:   logging.New(io.Discard, slog.LevelInfo),
	}
	return c
}

// SetLogger replaces the CPU's structured logger, used by cmd/edumips64 and
// repl to route cycle events (stalls, exceptions, jumps, halts) to a real
// sink instead of the silent default.
func (c *CPU) SetLogger(l *slog.Logger) { c.log = l }

// Start transitions the CPU to RUNNING, ready for the first Step. A CPU
// leaving RUNNING, STOPPING or HALTED is Reset first; a CPU in READY is
// already in its reset state, so register values set while READY are kept.
func (c *CPU) Start() {
	if c.Status != StatusReady {
		c.Reset()
	}
	c.Status = StatusRunning
}

// Reset clears registers, pipeline slots, the FP pipe and all counters,
// returning the CPU to READY.
func (c *CPU) Reset() {
	c.Regs.Reset()
	c.Status = StatusReady
	c.Cycles = 0
	c.Instructions = 0
	c.Stalls = Stalls{}
	c.LastSignal = SignalNone
	c.LastException = isa.ExceptionNone
	c.ifSlot, c.idSlot, c.exSlot, c.memSlot, c.wbSlot = nil, nil, nil, nil, nil
	c.jumpPending = false
	c.fp = fpu.New(c.Cfg.DividerLatency)
	c.m = &machine{regs: c.Regs, mem: c.Mem, forwarding: c.Cfg.Forwarding}
	c.last = cycle.Snapshot{}
}

// Step runs one cycle to completion: WB, MEM, EX, ID, IF, in that order
// (SPEC_FULL.md §4.3 — the reverse order lets each stage consume a slot
// only after its downstream slot has already been vacated this cycle).
func (c *CPU) Step() error {
	if c.Status == StatusReady || c.Status == StatusHalted {
		return ErrStoppedCPU
	}
	c.Cycles++
	c.LastSignal = SignalNone

	c.stageWB()
	if c.Status == StatusHalted {
		c.last = c.buildSnapshot()
		return nil
	}
	c.stageMEM()
	c.stageEX()
	c.stageID()
	c.stageIF()
	c.last = c.buildSnapshot()
	return nil
}

// Snapshot returns the Snapshot built by the most recent Step() call
// (SPEC_FULL.md §4.8), the sole external read surface onto the pipeline.
func (c *CPU) Snapshot() cycle.Snapshot { return c.last }

func occupantOf(in *isa.Instruction) cycle.Occupant {
	if in == nil {
		return cycle.Occupant{Empty: true}
	}
	if isa.IsBubble(in) {
		return cycle.Occupant{Bubble: true, Name: "BUBBLE"}
	}
	return cycle.Occupant{Name: in.Name(), Encoding: in.Encoding}
}

func (c *CPU) buildSnapshot() cycle.Snapshot {
	var fpUnits []cycle.FPUnitOccupant
	for _, o := range c.fp.Occupants() {
		fpUnits = append(fpUnits, cycle.FPUnitOccupant{
			Unit:      o.Unit,
			Name:      nameOf(o.Instr),
			Remaining: o.Remaining,
		})
	}

	var gpr, fpr [32]uint64
	for i := 0; i < register.NumGPR; i++ {
		gpr[i] = c.Regs.GPRReg(i).Word()
	}
	for i := 0; i < register.NumFPR; i++ {
		fpr[i] = c.Regs.FPRReg(i).Bits()
	}
	f := c.Regs.FCSR

	return cycle.Snapshot{
		Cycle:        c.Cycles,
		Status:       c.Status.String(),
		Instructions: c.Instructions,
		IF:           occupantOf(c.ifSlot),
		ID:           occupantOf(c.idSlot),
		EX:           occupantOf(c.exSlot),
		MEM:          occupantOf(c.memSlot),
		WB:           occupantOf(c.wbSlot),
		FPUnits:      fpUnits,
		Stalls: cycle.StallCounts{
			RAW:               c.Stalls.RAW,
			WAW:               c.Stalls.WAW,
			StructuralDivider: c.Stalls.StructuralDivider,
			StructuralFPUnit:  c.Stalls.StructuralFPUnit,
			StructuralEX:      c.Stalls.StructuralEX,
			StructuralMemory:  c.Stalls.StructuralMemory,
		},
		GPR:   gpr,
		FPR:   fpr,
		PC:    c.Regs.PC,
		OldPC: c.Regs.OldPC,
		HI:    c.Regs.HI,
		LO:    c.Regs.LO,
		FCSR: cycle.FCSRView{
			EnableInvalid:   f.EnableInvalid,
			EnableDivByZero: f.EnableDivByZero,
			EnableOverflow:  f.EnableOverflow,
			EnableUnderflow: f.EnableUnderflow,
			EnableInexact:   f.EnableInexact,
			CauseInvalid:    f.CauseInvalid,
			CauseDivByZero:  f.CauseDivByZero,
			CauseOverflow:   f.CauseOverflow,
			CauseUnderflow:  f.CauseUnderflow,
			CauseInexact:    f.CauseInexact,
			FlagInvalid:     f.FlagInvalid,
			FlagDivByZero:   f.FlagDivByZero,
			FlagOverflow:    f.FlagOverflow,
			FlagUnderflow:   f.FlagUnderflow,
			FlagInexact:     f.FlagInexact,
			ConditionCodes:  f.ConditionCodes,
			Rounding:        uint8(f.Rounding),
		},
	}
}

func empty(in *isa.Instruction) bool { return in == nil || isa.IsBubble(in) }

func (c *CPU) pipelineEmpty() bool {
	return empty(c.ifSlot) && empty(c.idSlot) && empty(c.exSlot) && empty(c.memSlot) && !c.fp.Busy()
}

func (c *CPU) fetchAt(addr uint32) *isa.Instruction {
	idx := addr / 4
	if int(idx) >= len(c.code) || c.code[idx] == nil {
		if def, ok := c.table.Lookup("HALT"); ok {
			return &isa.Instruction{Def: def, Address: addr, Encoding: isa.EncodingHalt, Dest: -1}
		}
		return isa.Bubble
	}
	return c.code[idx].Clone()
}

// isGPRLoad reports whether in loads a GPR destination — the only case
// the load-use hazard in machine.go tracks. FP loads are covered by the
// FPR WAW semaphore instead; there is no FP forwarding path to bypass.
func isGPRLoad(in *isa.Instruction) bool {
	if in == nil || in.Def == nil || in.Def.Family != isa.FamilyLoadStore {
		return false
	}
	return in.Def.DestGPR >= 0
}

// handleOutcome reacts to one stage's Outcome: tallies the matching stall
// counter, records a control signal, or applies the configured policy to a
// synchronous exception (SPEC_FULL.md §7).
func (c *CPU) handleOutcome(in *isa.Instruction, outcome isa.Outcome) {
	switch outcome.Kind {
	case isa.OutcomeOK:
	case isa.OutcomeRAW:
		c.Stalls.RAW++
		c.log.Debug("stall", "cycle", c.Cycles, "kind", "RAW", "instr", nameOf(in))
	case isa.OutcomeWAW:
		c.Stalls.WAW++
		c.log.Debug("stall", "cycle", c.Cycles, "kind", "WAW", "instr", nameOf(in))
	case isa.OutcomeStructuralDivider:
		c.Stalls.StructuralDivider++
		c.log.Debug("stall", "cycle", c.Cycles, "kind", "structural-divider", "instr", nameOf(in))
	case isa.OutcomeStructuralFPUnit:
		c.Stalls.StructuralFPUnit++
		c.log.Debug("stall", "cycle", c.Cycles, "kind", "structural-fpunit", "instr", nameOf(in))
	case isa.OutcomeStructuralEX:
		c.Stalls.StructuralEX++
		c.log.Debug("stall", "cycle", c.Cycles, "kind", "structural-ex", "instr", nameOf(in))
	case isa.OutcomeStructuralMemory:
		c.Stalls.StructuralMemory++
		c.log.Debug("stall", "cycle", c.Cycles, "kind", "structural-memory")
	case isa.OutcomeJump:
		c.jumpPending = true
		c.jumpTarget = outcome.Target
		c.log.Info("jump", "cycle", c.Cycles, "instr", nameOf(in), "target", fmt.Sprintf("%#08x", outcome.Target))
	case isa.OutcomeBreak:
		c.LastSignal = SignalBreak
		c.log.Info("break", "cycle", c.Cycles, "instr", nameOf(in))
	case isa.OutcomeHalt:
		c.LastSignal = SignalHalt
		c.log.Info("halt", "cycle", c.Cycles, "instr", nameOf(in))
	case isa.OutcomeSyncException:
		c.applyException(in, outcome)
	}
}

func nameOf(in *isa.Instruction) string {
	if in == nil {
		return "?"
	}
	return in.Name()
}

func (c *CPU) applyException(in *isa.Instruction, outcome isa.Outcome) {
	switch c.Cfg.SyncExceptions {
	case config.SyncExceptionMasked:
		c.log.Debug("exception", "cycle", c.Cycles, "instr", nameOf(in), "code", outcome.Code.String(), "policy", "masked")
		return
	case config.SyncExceptionTerminate:
		c.Status = StatusHalted
		c.LastSignal = SignalException
		c.LastException = outcome.Code
		c.log.Warn("exception", "cycle", c.Cycles, "instr", nameOf(in), "code", outcome.Code.String(), "policy", "terminate")
	default: // continue: finish the cycle, raise to caller as a recorded signal
		c.LastSignal = SignalException
		c.LastException = outcome.Code
		c.log.Warn("exception", "cycle", c.Cycles, "instr", nameOf(in), "code", outcome.Code.String(), "policy", "continue")
	}
}

func (c *CPU) String() string {
	return fmt.Sprintf("cpu[%s cycle=%d instr=%d]", c.Status, c.Cycles, c.Instructions)
}
