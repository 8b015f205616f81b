package isa

// Branch/jump family. All variants are resolved in EX (SPEC_FULL.md's open
// question on where branches decide — see DESIGN.md for why EX was picked
// uniformly). A taken branch or jump returns OutcomeJump with the absolute
// target address; the cpu package's jump handling then flushes IF/ID per
// SPEC_FULL.md §4.3.

type condFn func(rs, rt int64) bool

var condOps = map[string]condFn{
	"BEQ":  func(rs, rt int64) bool { return rs == rt },
	"BNE":  func(rs, rt int64) bool { return rs != rt },
	"BEQZ": func(rs, _ int64) bool { return rs == 0 },
	"BNEZ": func(rs, _ int64) bool { return rs != 0 },
	"BGEZ": func(rs, _ int64) bool { return rs >= 0 },
	"BLTZ": func(rs, _ int64) bool { return rs < 0 },
}

func condBranchEX(name string) Behavior {
	fn := condOps[name]
	twoReg := name == "BEQ" || name == "BNE"
	return func(in *Instruction, m Machine) Outcome {
		rs := int64(in.TR[0])
		var rt int64
		if twoReg {
			rt = int64(in.TR[1])
		}
		if !fn(rs, rt) {
			return Ok()
		}
		lbl, _ := operand(in.Operands, OperandLabel, 0)
		return Outcome{Kind: OutcomeJump, Target: uint32(lbl.Imm)}
	}
}

func jEX(in *Instruction, m Machine) Outcome {
	lbl, _ := operand(in.Operands, OperandLabel, 0)
	return Outcome{Kind: OutcomeJump, Target: uint32(lbl.Imm)}
}

func jalEX(in *Instruction, m Machine) Outcome {
	in.TR[0] = uint64(in.Address + 4)
	lbl, _ := operand(in.Operands, OperandLabel, 0)
	return Outcome{Kind: OutcomeJump, Target: uint32(lbl.Imm)}
}

func jrEX(in *Instruction, m Machine) Outcome {
	return Outcome{Kind: OutcomeJump, Target: uint32(in.TR[0])}
}

func jalrEX(in *Instruction, m Machine) Outcome {
	target := uint32(in.TR[0])
	in.TR[0] = uint64(in.Address + 4)
	return Outcome{Kind: OutcomeJump, Target: target}
}

func branchJumpDefs() []*Def {
	var defs []*Def
	opcode := uint32(0x40)
	for _, name := range []string{"BEQ", "BNE", "BEQZ", "BNEZ", "BGEZ", "BLTZ"} {
		opcode++
		twoReg := name == "BEQ" || name == "BNE"
		srcs := []int{0}
		syntax := "RL"
		if twoReg {
			srcs = []int{0, 1}
			syntax = "RRL"
		}
		defs = append(defs, &Def{
			Mnemonic: name,
			Family:   FamilyBranchJump,
			Opcode:   opcode,
			Syntax:   syntax,
			SrcGPR:   srcs,
			DestGPR:  -1,
			DestFPR:  -1,
			EX:       condBranchEX(name),
		})
	}
	defs = append(defs,
		&Def{Mnemonic: "J", Family: FamilyBranchJump, Opcode: 0x50, Syntax: "L",
			DestGPR: -1, DestFPR: -1, EX: jEX},
		&Def{Mnemonic: "JAL", Family: FamilyBranchJump, Opcode: 0x51, Syntax: "L",
			DestGPR: -1, DestFPR: -1, EX: jalEX, WB: jalWB},
		&Def{Mnemonic: "JR", Family: FamilyBranchJump, Opcode: 0x52, Syntax: "R",
			SrcGPR: []int{0}, DestGPR: -1, DestFPR: -1, EX: jrEX},
		&Def{Mnemonic: "JALR", Family: FamilyBranchJump, Opcode: 0x53, Syntax: "R",
			SrcGPR: []int{0}, DestGPR: -1, DestFPR: -1, EX: jalrEX, WB: jalWB},
	)
	return defs
}

func jalWB(in *Instruction, m Machine) Outcome {
	if err := m.SetGPRWord(31, in.TR[0]); err != nil {
		return Outcome{Kind: OutcomeSyncException, Code: ExceptionTwosComplementSum}
	}
	m.GPRRetire(31)
	return Ok()
}
