/*
 * edumips64 - Decoded instruction model.
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

// Package isa decodes and represents MIPS64 instructions. An Instruction is
// a polymorphic value over {IF, ID, EX, MEM, WB, Pack} (SPEC_FULL.md §4.2):
// the Family fixes the encoding skeleton and operand conventions, and each
// opcode's Def supplies only the behavior hooks it needs to override. This
// mirrors the way the teacher's emu/cpu dispatches through a per-opcode
// function table (cpudefs.go's `table [256]func(*stepInfo) uint16`) rather
// than one giant switch.
package isa

import "fmt"

// Family groups instructions that share an encoding skeleton and the
// pipeline stage where their real work happens.
type Family int

const (
	FamilyALURType Family = iota
	FamilyALUIType
	FamilyLoadStore
	FamilyBranchJump
	FamilyFPArith
	FamilyFPLoadStore
	FamilyControl
)

func (f Family) String() string {
	switch f {
	case FamilyALURType:
		return "ALU-R"
	case FamilyALUIType:
		return "ALU-I"
	case FamilyLoadStore:
		return "LOAD-STORE"
	case FamilyBranchJump:
		return "BRANCH-JUMP"
	case FamilyFPArith:
		return "FP-ARITH"
	case FamilyFPLoadStore:
		return "FP-LOAD-STORE"
	case FamilyControl:
		return "CONTROL"
	default:
		return "UNKNOWN"
	}
}

// OperandKind is the `%R %F %I %L %U %B` syntax-string vocabulary the
// parser validates operands against (SPEC_FULL.md §4.1).
type OperandKind byte

const (
	OperandGPR       OperandKind = 'R'
	OperandFPR       OperandKind = 'F'
	OperandImmediate OperandKind = 'I'
	OperandLabel     OperandKind = 'L'
	OperandUnsigned  OperandKind = 'U'
	OperandByteOff   OperandKind = 'B'
)

// OperandValue is one resolved operand: at most one of the fields is
// meaningful, selected by Kind.
type OperandValue struct {
	Kind  OperandKind
	Reg   int    // GPR/FPR number
	Imm   int64  // signed/unsigned immediate or resolved label address
	Label string // raw label text, kept for the second-pass resolve
}

// TempRegs holds the decode/execute scratch registers (TR[0..]) an
// instruction's behavior hooks use to carry values between stages.
type TempRegs [4]uint64

// Outcome is the explicit result variant stage behaviors return instead of
// raising an exception, per SPEC_FULL.md §9 ("Exceptions as control flow").
// The cycle loop matches on Kind.
type Outcome struct {
	Kind    OutcomeKind
	Target  uint32 // Jump target, when Kind == OutcomeJump
	Code    ExceptionCode
	Message string
}

type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeRAW
	OutcomeWAW
	OutcomeStructuralDivider
	OutcomeStructuralFPUnit
	OutcomeStructuralEX
	OutcomeStructuralMemory
	OutcomeJump
	OutcomeBreak
	OutcomeHalt
	OutcomeSyncException
)

// ExceptionCode enumerates the synchronous exceptions of SPEC_FULL.md §7.
type ExceptionCode int

const (
	ExceptionNone ExceptionCode = iota
	ExceptionIntegerOverflow
	ExceptionTwosComplementSum
	ExceptionDivByZero
	ExceptionAddressError
	ExceptionNotAlign
	ExceptionTrap
	ExceptionFPInvalidOperation
)

func (c ExceptionCode) String() string {
	switch c {
	case ExceptionIntegerOverflow:
		return "IntegerOverflow"
	case ExceptionTwosComplementSum:
		return "TwosComplementSum"
	case ExceptionDivByZero:
		return "DivByZero"
	case ExceptionAddressError:
		return "AddressError"
	case ExceptionNotAlign:
		return "NotAlign"
	case ExceptionTrap:
		return "Trap"
	case ExceptionFPInvalidOperation:
		return "FPInvalidOperation"
	default:
		return "None"
	}
}

// Ok is the zero-value "nothing happened, proceed" outcome.
func Ok() Outcome { return Outcome{Kind: OutcomeOK} }

// Stage is one of the five pipeline behavior hooks.
type Stage int

const (
	StageIF Stage = iota
	StageID
	StageEX
	StageMEM
	StageWB
)

// Machine is the subset of simulator state a stage behavior needs: the
// register file, data memory, and the instruction's own temp registers.
// Defined as an interface here (rather than importing internal/register and
// internal/memory directly) so isa has no dependency on the packages that
// depend on it — cpu wires the concrete types through at Step() time.
type Machine interface {
	GPRWord(n int) uint64
	SetGPRWord(n int, v uint64) error
	GPRReserve(n int)
	GPRRetire(n int)
	GPRWriters(n int) int
	FPRBits(n int) uint64
	SetFPRBits(n int, v uint64)
	FPRWAW(n int) int
	FPRReserveWAW(n int)
	FPRRetireWAW(n int)
	ReadByte(addr uint32) (uint8, error)
	WriteByte(addr uint32, v uint8) error
	ReadHalf(addr uint32) (uint16, error)
	WriteHalf(addr uint32, v uint16) error
	ReadWord(addr uint32) (uint32, error)
	WriteWord(addr uint32, v uint32) error
	ReadDouble(addr uint32) (uint64, error)
	WriteDouble(addr uint32, v uint64) error
	PC() uint32
	SetPC(v uint32)
	HI() uint64
	SetHI(v uint64)
	LO() uint64
	SetLO(v uint64)
	Forwarding() bool
	// LoadUseHazard reports whether GPR n's sole in-flight writer is a load
	// whose MEM result is not yet available, the one RAW case forwarding
	// cannot cover (SPEC_FULL.md §4.5).
	LoadUseHazard(n int) bool
}

// Behavior is one stage hook. Defaults are no-ops returning Ok(); opcode
// definitions override only the stages where real work happens.
type Behavior func(in *Instruction, m Machine) Outcome

func noopBehavior(*Instruction, Machine) Outcome { return Ok() }

// Def is the static, shared-per-mnemonic description of one opcode: its
// encoding skeleton, operand syntax, and stage behaviors. One Def is built
// once per mnemonic by the instruction set tables in this package and
// referenced (never copied) by every decoded Instruction of that mnemonic.
type Def struct {
	Mnemonic string
	Family   Family
	Opcode   uint32 // primary 6-bit opcode field (or function field for R-type)
	Funct    uint32 // function field, R-type only
	Syntax   string // operand kind string, e.g. "RRR", "RRI", "RIL"

	// Operand roles, as indices into Instruction.Operands. Populated by the
	// table definitions below and used by the generic ID behavior every
	// family shares (SPEC_FULL.md §4.3): which operands are GPR/FPR
	// sources to be read into TR and RAW-checked, and which operand (if
	// any) is the destination whose write-semaphore ID reserves.
	SrcGPR  []int
	SrcFPR  []int
	DestGPR int // operand index of the GPR destination, or -1
	DestFPR int // operand index of the FPR destination, or -1

	IF  Behavior
	ID  Behavior
	EX  Behavior
	MEM Behavior
	WB  Behavior
}

func (d *Def) ifBehavior() Behavior { return orNoop(d.IF) }
func (d *Def) idBehavior() Behavior {
	if d.ID != nil {
		return d.ID
	}
	return genericID
}
func (d *Def) exBehavior() Behavior  { return orNoop(d.EX) }
func (d *Def) memBehavior() Behavior { return orNoop(d.MEM) }
func (d *Def) wbBehavior() Behavior  { return orNoop(d.WB) }

func orNoop(b Behavior) Behavior {
	if b == nil {
		return noopBehavior
	}
	return b
}

// Instruction is one decoded occurrence of a Def at a particular code
// address with resolved operands and live temp registers.
type Instruction struct {
	Def      *Def
	Address  uint32
	Encoding uint32
	Operands []OperandValue
	TR       TempRegs

	// Dest is the GPR/FPR number this instruction will write in WB, or -1
	// if it writes nothing (stores, branches, control). Resolved once by
	// the parser/decoder from Operands and Syntax.
	Dest    int
	DestFPR bool
}

// Name returns the mnemonic, for cycle traces and disassembly.
func (in *Instruction) Name() string {
	if in == nil || in.Def == nil {
		return "?"
	}
	return in.Def.Mnemonic
}

// IsFPArith reports whether this instruction dispatches into the FP
// sub-pipeline at the end of ID rather than into EX.
func (in *Instruction) IsFPArith() bool {
	return in != nil && in.Def != nil && in.Def.Family == FamilyFPArith
}

// IsTerminating reports whether this is HALT or SYSCALL 0, the two
// encodings that transition the CPU to HALTED when they retire with no
// other instruction in flight.
func (in *Instruction) IsTerminating() bool {
	if in == nil || in.Def == nil {
		return false
	}
	return in.Encoding == EncodingHalt || in.Encoding == EncodingSyscall0
}

const (
	EncodingHalt     uint32 = 0x04000000
	EncodingSyscall0 uint32 = 0x0000000C
)

func (in *Instruction) String() string {
	if in == nil {
		return "<empty>"
	}
	return fmt.Sprintf("%-8s @%#08x enc=%#08x", in.Name(), in.Address, in.Encoding)
}

// Clone returns a fresh occurrence of the same decoded instruction, with
// empty temp registers. The cycle loop fetches through Clone rather than
// handing out the program's shared *Instruction so that a loop re-fetching
// the same code address never sees another iteration's stale TR values.
func (in *Instruction) Clone() *Instruction {
	if in == nil {
		return nil
	}
	out := *in
	out.TR = TempRegs{}
	return &out
}

// IF runs the instruction's fetch-stage behavior.
func (in *Instruction) IF(m Machine) Outcome { return in.Def.ifBehavior()(in, m) }

// ID runs the instruction's decode-stage behavior.
func (in *Instruction) ID(m Machine) Outcome { return in.Def.idBehavior()(in, m) }

// EX runs the instruction's execute-stage behavior.
func (in *Instruction) EX(m Machine) Outcome { return in.Def.exBehavior()(in, m) }

// MEM runs the instruction's memory-stage behavior.
func (in *Instruction) MEM(m Machine) Outcome { return in.Def.memBehavior()(in, m) }

// WB runs the instruction's writeback-stage behavior.
func (in *Instruction) WB(m Machine) Outcome { return in.Def.wbBehavior()(in, m) }
