package isa

import "fmt"

// MIPS64 field layout, R-type: op[31:26] rs[25:21] rt[20:16] rd[15:11]
// shamt[10:6] funct[5:0]. I-type: op[31:26] rs[25:21] rt[20:16] imm[15:0].
// J-type: op[31:26] target[25:0].
const (
	shiftOp    = 26
	shiftRs    = 21
	shiftRt    = 16
	shiftRd    = 11
	shiftShamt = 6

	maskOp    = 0x3f
	maskReg   = 0x1f
	maskImm16 = 0xffff
	maskShamt = 0x1f
	maskJump  = 0x3ffffff
)

func field(word uint32, shift uint, mask uint32) uint32 {
	return (word >> shift) & mask
}

// Pack produces the 32-bit encoding for in from its resolved operands,
// using the field layout its Family declares (SPEC_FULL.md §4.1's
// "pack() produces the 32-bit encoding ... using the field layout declared
// by the family"). Control instructions with a fixed encoding (HALT,
// SYSCALL 0) simply return that literal.
func Pack(in *Instruction) (uint32, error) {
	switch in.Def.Mnemonic {
	case "HALT":
		return EncodingHalt, nil
	case "SYSCALL":
		return EncodingSyscall0, nil
	case "BREAK":
		return 0x0000000D, nil
	case "TRAP":
		return 0x0000000E, nil
	case "NOP":
		return 0x00000000, nil
	}
	switch in.Def.Family {
	case FamilyALURType:
		return packRType(in)
	case FamilyALUIType:
		return packIType(in)
	case FamilyLoadStore, FamilyFPLoadStore:
		return packIType(in)
	case FamilyBranchJump:
		return packBranchJump(in)
	case FamilyFPArith:
		return packRType(in)
	case FamilyControl:
		return in.Encoding, nil
	default:
		return 0, fmt.Errorf("pack: unknown family for %s", in.Name())
	}
}

func operand(ops []OperandValue, kind OperandKind, idx int) (OperandValue, bool) {
	seen := 0
	for _, o := range ops {
		if o.Kind == kind {
			if seen == idx {
				return o, true
			}
			seen++
		}
	}
	return OperandValue{}, false
}

func packRType(in *Instruction) (uint32, error) {
	ops := in.Operands
	rd, _ := operand(ops, OperandGPR, 0)
	rs, _ := operand(ops, OperandGPR, 1)
	rt, _ := operand(ops, OperandGPR, 2)
	shamt := uint32(0)
	if s, ok := operand(ops, OperandImmediate, 0); ok {
		shamt = uint32(s.Imm) & maskShamt
	}
	word := (in.Def.Opcode & maskOp) << shiftOp
	word |= uint32(rs.Reg&maskReg) << shiftRs
	word |= uint32(rt.Reg&maskReg) << shiftRt
	word |= uint32(rd.Reg&maskReg) << shiftRd
	word |= shamt << shiftShamt
	word |= in.Def.Funct & maskOp
	return word, nil
}

func packIType(in *Instruction) (uint32, error) {
	ops := in.Operands
	rt, _ := operand(ops, OperandGPR, 0)
	if in.Def.Family == FamilyFPLoadStore {
		rt, _ = operand(ops, OperandFPR, 0)
	}
	rs, okRs := operand(ops, OperandGPR, 1)
	if !okRs {
		rs, _ = operand(ops, OperandGPR, 0)
	}
	imm, _ := operand(ops, OperandImmediate, 0)

	word := (in.Def.Opcode & maskOp) << shiftOp
	word |= uint32(rs.Reg&maskReg) << shiftRs
	word |= uint32(rt.Reg&maskReg) << shiftRt
	word |= uint32(imm.Imm) & maskImm16
	return word, nil
}

func packBranchJump(in *Instruction) (uint32, error) {
	ops := in.Operands
	word := (in.Def.Opcode & maskOp) << shiftOp
	if lbl, ok := operand(ops, OperandLabel, 0); ok {
		switch in.Def.Syntax {
		case "L": // j/jal: 26-bit target
			word |= uint32(lbl.Imm) & maskJump
			return word, nil
		default: // beq/bne/etc: rs, rt, 16-bit offset
		}
	}
	if rs, ok := operand(ops, OperandGPR, 0); ok {
		word |= uint32(rs.Reg&maskReg) << shiftRs
	}
	if rt, ok := operand(ops, OperandGPR, 1); ok {
		word |= uint32(rt.Reg&maskReg) << shiftRt
	}
	if lbl, ok := operand(ops, OperandLabel, 0); ok {
		word |= uint32(lbl.Imm) & maskImm16
	}
	return word, nil
}
