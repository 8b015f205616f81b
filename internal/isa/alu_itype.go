package isa

// ALU I-type family: operands are (rt, rs, imm16); each opcode decides
// whether to sign- or zero-extend the immediate (SPEC_FULL.md §4.2).

type iFn func(rs int64, imm int64) (int64, bool)

var iOps = map[string]iFn{
	"ADDI":  func(rs, imm int64) (int64, bool) { return overflowingAdd(rs, imm) },
	"ADDIU": func(rs, imm int64) (int64, bool) { return rs + imm, false },
	"ANDI":  func(rs, imm int64) (int64, bool) { return rs & (imm & 0xffff), false },
	"ORI":   func(rs, imm int64) (int64, bool) { return rs | (imm & 0xffff), false },
	"XORI":  func(rs, imm int64) (int64, bool) { return rs ^ (imm & 0xffff), false },
	"SLTI":  func(rs, imm int64) (int64, bool) { return boolToI64(rs < imm), false },
	"SLTIU": func(rs, imm int64) (int64, bool) { return boolToI64(uint64(rs) < uint64(imm)), false },
}

func iTypeEX(name string) Behavior {
	fn := iOps[name]
	zeroExtend := name == "ANDI" || name == "ORI" || name == "XORI"
	return func(in *Instruction, m Machine) Outcome {
		imm, _ := operand(in.Operands, OperandImmediate, 0)
		immVal := imm.Imm
		if zeroExtend {
			immVal &= 0xffff
		} else {
			immVal = int64(int16(imm.Imm)) // sign extend 16 bits
		}
		result, overflow := fn(int64(in.TR[0]), immVal)
		if overflow {
			return Outcome{Kind: OutcomeSyncException, Code: ExceptionIntegerOverflow}
		}
		in.TR[0] = uint64(result)
		return Ok()
	}
}

func luiEX(in *Instruction, m Machine) Outcome {
	imm, _ := operand(in.Operands, OperandImmediate, 0)
	in.TR[0] = uint64(imm.Imm&0xffff) << 16
	return Ok()
}

func aluITypeDefs() []*Def {
	var defs []*Def
	opcode := uint32(0x07)
	for _, name := range []string{"ADDI", "ADDIU", "ANDI", "ORI", "XORI", "SLTI", "SLTIU"} {
		opcode++
		defs = append(defs, &Def{
			Mnemonic: name,
			Family:   FamilyALUIType,
			Opcode:   opcode,
			Syntax:   "RRI",
			SrcGPR:   []int{1}, // rs
			DestGPR:  0,        // rt
			DestFPR:  -1,
			EX:       iTypeEX(name),
			WB:       rrWB,
		})
	}
	defs = append(defs, &Def{
		Mnemonic: "LUI",
		Family:   FamilyALUIType,
		Opcode:   0x0f,
		Syntax:   "RI",
		SrcGPR:   nil,
		DestGPR:  0,
		DestFPR:  -1,
		EX:       luiEX,
		WB:       rrWB,
	})
	return defs
}
