package isa

import "fmt"

// Decode reconstructs an Instruction from its 32-bit encoding using the
// registered Def table, the inverse of Pack. It is used by the pack/unpack
// round-trip tests of SPEC_FULL.md §8; the cpu fetches the parser's
// decoded instructions directly rather than decoding code words.
func Decode(table *Table, word uint32, address uint32) (*Instruction, error) {
	switch word {
	case EncodingHalt:
		return decodeControl(table, word, address, "halt")
	case EncodingSyscall0:
		return decodeControl(table, word, address, "syscall")
	case 0x0000000D:
		return decodeControl(table, word, address, "break")
	case 0x0000000E:
		return decodeControl(table, word, address, "trap")
	case 0x00000000:
		return decodeControl(table, word, address, "nop")
	}
	op := field(word, shiftOp, maskOp)
	funct := word & maskOp
	def, ok := table.lookup(op, funct)
	if !ok {
		return nil, fmt.Errorf("decode: unknown opcode %#x funct %#x", op, funct)
	}
	in := &Instruction{Def: def, Address: address, Encoding: word, Dest: -1}
	switch def.Family {
	case FamilyALURType:
		decodeRType(in, word)
	case FamilyALUIType:
		decodeIType(in, word, false)
	case FamilyLoadStore:
		decodeIType(in, word, false)
	case FamilyFPLoadStore:
		decodeIType(in, word, true)
	case FamilyBranchJump:
		decodeBranchJump(in, word)
	case FamilyFPArith:
		decodeRType(in, word)
	case FamilyControl:
		// nothing further to decode; encoding carries no operands.
	}
	return in, nil
}

func decodeControl(table *Table, word, address uint32, mnemonic string) (*Instruction, error) {
	def, ok := table.lookupMnemonic(mnemonic)
	if !ok {
		return nil, fmt.Errorf("decode: control opcode %s not registered", mnemonic)
	}
	return &Instruction{Def: def, Address: address, Encoding: word, Dest: -1}, nil
}

func decodeRType(in *Instruction, word uint32) {
	rs := int(field(word, shiftRs, maskReg))
	rt := int(field(word, shiftRt, maskReg))
	rd := int(field(word, shiftRd, maskReg))
	shamt := int(field(word, shiftShamt, maskShamt))
	in.Operands = []OperandValue{
		{Kind: OperandGPR, Reg: rd},
		{Kind: OperandGPR, Reg: rs},
		{Kind: OperandGPR, Reg: rt},
	}
	if shamt != 0 {
		in.Operands = append(in.Operands, OperandValue{Kind: OperandImmediate, Imm: int64(shamt)})
	}
	in.Dest = rd
}

func decodeIType(in *Instruction, word uint32, fpDest bool) {
	rs := int(field(word, shiftRs, maskReg))
	rt := int(field(word, shiftRt, maskReg))
	imm := int16(word & maskImm16)
	destKind := OperandGPR
	if fpDest {
		destKind = OperandFPR
	}
	in.Operands = []OperandValue{
		{Kind: destKind, Reg: rt},
		{Kind: OperandGPR, Reg: rs},
		{Kind: OperandImmediate, Imm: int64(imm)},
	}
	in.Dest = rt
	in.DestFPR = fpDest
}

func decodeBranchJump(in *Instruction, word uint32) {
	rs := int(field(word, shiftRs, maskReg))
	rt := int(field(word, shiftRt, maskReg))
	switch in.Def.Syntax {
	case "L": // j/jal: 26-bit absolute target, no registers
		target := int64(word & maskJump)
		in.Operands = []OperandValue{{Kind: OperandLabel, Imm: target}}
	case "R": // jr/jalr: one register, no offset
		in.Operands = []OperandValue{{Kind: OperandGPR, Reg: rs}}
	case "RL": // beqz/bnez/bgez/bltz: one register and an offset
		off := int16(word & maskImm16)
		in.Operands = []OperandValue{
			{Kind: OperandGPR, Reg: rs},
			{Kind: OperandLabel, Imm: int64(off)},
		}
	default: // "RRL": beq/bne: two registers and an offset
		off := int16(word & maskImm16)
		in.Operands = []OperandValue{
			{Kind: OperandGPR, Reg: rs},
			{Kind: OperandGPR, Reg: rt},
			{Kind: OperandLabel, Imm: int64(off)},
		}
	}
}
