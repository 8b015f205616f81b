/*
 * edumips64 - Per-stage pipeline behavior.
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

import "github.com/edumips64/sim/internal/isa"

// stageWB commits the WB slot. A terminating instruction (HALT or
// SYSCALL 0) that reaches WB while the FP pipe or the MEM slot still holds
// work is held in place rather than retired, so the CPU only
// moves STOPPING -> HALTED once every other in-flight instruction has
// drained (SPEC_FULL.md §3, §4.3).
func (c *CPU) stageWB() {
	in := c.wbSlot
	if in == nil {
		return
	}
	if in.IsTerminating() && (c.fp.Busy() || !empty(c.memSlot)) {
		return
	}
	if !isa.IsBubble(in) {
		outcome := in.WB(c.m)
		c.handleOutcome(in, outcome)
		c.Instructions++
	}
	c.wbSlot = nil
	if c.Status == StatusStopping && c.pipelineEmpty() {
		c.Status = StatusHalted
		c.log.Info("status", "cycle", c.Cycles, "from", "STOPPING", "to", "HALTED")
	}
}

// stageMEM runs the MEM slot's memory access and advances it to WB.
func (c *CPU) stageMEM() {
	in := c.memSlot
	if in != nil && !isa.IsBubble(in) {
		outcome := in.MEM(c.m)
		c.handleOutcome(in, outcome)
		if isGPRLoad(in) {
			c.m.clearLoadUse(in.Dest)
		}
	}
	c.wbSlot = in
	c.memSlot = nil
}

// stageEX resolves the single shared MEM-stage slot between the integer
// EX occupant and the FP sub-pipeline's oldest completion, with the
// Divider-over-Multiplier-over-Adder priority of SPEC_FULL.md §4.4 already
// applied by fpu.Pipe.Peek. When both are ready the same cycle, the FP
// completion wins and the integer instruction is retained in EX for
// another cycle (a structural-memory stall).
func (c *CPU) stageEX() {
	fpReady, fpContended := c.fp.Peek()
	intOcc := c.exSlot
	intBusy := intOcc != nil && !isa.IsBubble(intOcc)

	var winner *isa.Instruction
	fpWins := false
	switch {
	case fpReady != nil && intBusy:
		winner = fpReady
		fpWins = true
		c.handleOutcome(nil, isa.Outcome{Kind: isa.OutcomeStructuralMemory})
	case fpReady != nil:
		winner = fpReady
		fpWins = true
	default:
		winner = intOcc
	}
	if fpContended {
		c.handleOutcome(nil, isa.Outcome{Kind: isa.OutcomeStructuralMemory})
	}
	if fpWins {
		c.fp.TakeCompleted()
	}

	if winner != nil && !isa.IsBubble(winner) {
		outcome := winner.EX(c.m)
		c.handleOutcome(winner, outcome)
	}

	c.memSlot = winner
	if !fpWins {
		c.exSlot = nil
	}
	c.fp.Advance()
}

// stageID dispatches the ID slot: every instruction runs the shared
// hazard-detection behavior; on success FP-arithmetic instructions leave the
// integer pipeline for the FP sub-pipeline and everything else advances
// into EX. With forwarding on, a GPR source whose writer now sits in MEM or
// WB takes that writer's result.
// A RAW, WAW or structural stall leaves the instruction in ID and (when EX
// would otherwise sit empty) fills EX with an explicit bubble rather than
// nil, so a cycle trace shows the stall instead of a gap.
func (c *CPU) stageID() {
	in := c.idSlot
	if in == nil {
		return
	}
	if isa.IsBubble(in) {
		if c.exSlot == nil {
			c.exSlot = in
			c.idSlot = nil
		}
		return
	}

	if in.IsFPArith() {
		if outcome := in.ID(c.m); outcome.Kind != isa.OutcomeOK {
			c.handleOutcome(in, outcome)
			if c.exSlot == nil {
				c.exSlot = isa.Bubble
			}
			return
		}
		ok, kind := c.fp.Reserve(in)
		if !ok {
			c.m.FPRRetireWAW(in.Dest)
			c.handleOutcome(in, isa.Outcome{Kind: kind})
			if c.exSlot == nil {
				c.exSlot = isa.Bubble
			}
			return
		}
		c.idSlot = nil
		return
	}

	if c.exSlot != nil && !isa.IsBubble(c.exSlot) {
		c.handleOutcome(in, isa.Outcome{Kind: isa.OutcomeStructuralEX})
		return
	}

	outcome := in.ID(c.m)
	if outcome.Kind != isa.OutcomeOK {
		c.handleOutcome(in, outcome)
		c.exSlot = isa.Bubble
		return
	}
	if c.Cfg.Forwarding {
		for i, idx := range in.Def.SrcGPR {
			if idx >= len(in.Operands) || in.Operands[idx].Reg == 0 {
				continue
			}
			n := in.Operands[idx].Reg
			for _, p := range []*isa.Instruction{c.memSlot, c.wbSlot} {
				if !empty(p) && !p.DestFPR && p.Dest == n {
					in.TR[i] = p.TR[0]
					break
				}
			}
		}
	}
	if isGPRLoad(in) {
		c.m.markLoadUse(in.Dest)
	}
	c.exSlot = in
	c.idSlot = nil
}

// stageIF fetches the next instruction. A pending jump (raised from EX
// this same cycle, before ID or IF ran) unwinds per SPEC_FULL.md §4.3: the
// stale IF occupant runs its IF behavior for side effects only (any Break
// it raises is discarded), ID receives a bubble instead of that stale
// instruction, and IF is refilled from the jump target.
func (c *CPU) stageIF() {
	if c.jumpPending {
		stale := c.ifSlot
		if stale != nil && !isa.IsBubble(stale) {
			_ = stale.IF(c.m)
		}
		c.idSlot = isa.Bubble
		c.ifSlot = c.fetchAt(c.jumpTarget)
		c.Regs.OldPC = c.jumpTarget
		c.Regs.PC = c.jumpTarget + 4
		c.jumpPending = false
		if c.ifSlot != nil && c.ifSlot.IsTerminating() {
			c.Status = StatusStopping
			c.log.Info("status", "cycle", c.Cycles, "from", "RUNNING", "to", "STOPPING")
		}
		return
	}

	// ID still holds an instruction it could not advance this cycle (a
	// stall): IF keeps its own occupant and fetches nothing.
	if c.idSlot != nil && !isa.IsBubble(c.idSlot) {
		return
	}

	switch c.Status {
	case StatusRunning:
		cur := c.ifSlot
		if cur != nil && !isa.IsBubble(cur) {
			outcome := cur.IF(c.m)
			c.handleOutcome(cur, outcome)
		}
		c.idSlot = cur
		pc := c.Regs.PC
		c.ifSlot = c.fetchAt(pc)
		c.Regs.OldPC = pc
		c.Regs.PC = pc + 4
		if c.ifSlot != nil && c.ifSlot.IsTerminating() {
			c.Status = StatusStopping
			c.log.Info("status", "cycle", c.Cycles, "from", "RUNNING", "to", "STOPPING")
		}
	case StatusStopping:
		// No further fetch once a terminating instruction has been seen;
		// let whatever is already in IF (the terminating instruction
		// itself, the first time this branch runs) drain normally.
		cur := c.ifSlot
		if cur != nil && !isa.IsBubble(cur) {
			outcome := cur.IF(c.m)
			c.handleOutcome(cur, outcome)
		}
		c.idSlot = cur
		c.ifSlot = isa.Bubble
	}
}
