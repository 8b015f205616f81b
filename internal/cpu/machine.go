/*
 * edumips64 - isa.Machine adapter over register.File and memory.Memory.
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

// Package cpu implements the integer pipeline controller of
// SPEC_FULL.md §4.3: a five-stage CPU wired to a register.File, a
// memory.Memory, and an fpu.Pipe through the isa.Machine interface, the
// way the source simulator's emu/cpu wires a stepInfo through a
// per-opcode function table onto its own memory/device state.
package cpu

import (
	"github.com/edumips64/sim/internal/memory"
	"github.com/edumips64/sim/internal/register"
)

// machine adapts one CPU's register file and data memory to isa.Machine.
// It additionally tracks, per GPR, whether the sole in-flight writer is a
// load whose MEM result is not yet available — the one RAW forwarding
// cannot cover (SPEC_FULL.md §4.5).
type machine struct {
	regs       *register.File
	mem        *memory.Memory
	forwarding bool
	loadUse    [register.NumGPR]bool
}

func (m *machine) GPRWord(n int) uint64            { return m.regs.GPRReg(n).Word() }
func (m *machine) SetGPRWord(n int, v uint64) error { return m.regs.GPRReg(n).SetWord(v) }
func (m *machine) GPRReserve(n int)                { m.regs.GPRReg(n).Reserve() }
func (m *machine) GPRRetire(n int) {
	m.regs.GPRReg(n).Retire()
	if m.regs.GPRReg(n).Writers() == 0 {
		m.loadUse[n] = false
	}
}
func (m *machine) GPRWriters(n int) int { return m.regs.GPRReg(n).Writers() }

func (m *machine) FPRBits(n int) uint64        { return m.regs.FPRReg(n).Bits() }
func (m *machine) SetFPRBits(n int, v uint64)  { m.regs.FPRReg(n).SetBits(v) }
func (m *machine) FPRWAW(n int) int            { return m.regs.FPRReg(n).WAW() }
func (m *machine) FPRReserveWAW(n int)         { m.regs.FPRReg(n).ReserveWAW() }
func (m *machine) FPRRetireWAW(n int)          { m.regs.FPRReg(n).RetireWAW() }

func (m *machine) ReadByte(addr uint32) (uint8, error)    { return m.mem.ReadByte(addr) }
func (m *machine) WriteByte(addr uint32, v uint8) error   { return m.mem.WriteByte(addr, v) }
func (m *machine) ReadHalf(addr uint32) (uint16, error)   { return m.mem.ReadHalf(addr) }
func (m *machine) WriteHalf(addr uint32, v uint16) error  { return m.mem.WriteHalf(addr, v) }
func (m *machine) ReadWord(addr uint32) (uint32, error)   { return m.mem.ReadWord(addr) }
func (m *machine) WriteWord(addr uint32, v uint32) error  { return m.mem.WriteWord(addr, v) }
func (m *machine) ReadDouble(addr uint32) (uint64, error) { return m.mem.ReadDouble(addr) }
func (m *machine) WriteDouble(addr uint32, v uint64) error {
	return m.mem.WriteDouble(addr, v)
}

func (m *machine) PC() uint32     { return m.regs.PC }
func (m *machine) SetPC(v uint32) { m.regs.PC = v }
func (m *machine) HI() uint64     { return m.regs.HI }
func (m *machine) SetHI(v uint64) { m.regs.HI = v }
func (m *machine) LO() uint64     { return m.regs.LO }
func (m *machine) SetLO(v uint64) { m.regs.LO = v }

func (m *machine) Forwarding() bool { return m.forwarding }

func (m *machine) LoadUseHazard(n int) bool {
	return m.forwarding && m.loadUse[n]
}

// markLoadUse flags destGPR as carrying a load result not yet available
// for forwarding; called when a load instruction leaves ID.
func (m *machine) markLoadUse(destGPR int) {
	if destGPR >= 0 {
		m.loadUse[destGPR] = true
	}
}

// clearLoadUse is called once the load reaches MEM (its result becomes
// forwardable from the MEM/WB boundary onward).
func (m *machine) clearLoadUse(destGPR int) {
	if destGPR >= 0 {
		m.loadUse[destGPR] = false
	}
}
