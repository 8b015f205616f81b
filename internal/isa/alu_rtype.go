package isa

// ALU R-type family: operands are (rd, rs, rt) in that order for
// arithmetic/logical ops, (rd, rt, shamt) for fixed shifts, and
// (rd, rt, rs) for variable shifts — matching real MIPS64 encoding. Two
// GPRs are read in ID (via genericID, SrcGPR), the opcode's EX computes
// into TR[0], and WB writes TR[0] to the destination GPR.

type rrFn func(a, b int64) (int64, bool)

var rrOps = map[string]rrFn{
	"ADD":  func(a, b int64) (int64, bool) { return overflowingAdd(a, b) },
	"ADDU": func(a, b int64) (int64, bool) { return a + b, false },
	"SUB":  func(a, b int64) (int64, bool) { return overflowingAdd(a, -b) },
	"SUBU": func(a, b int64) (int64, bool) { return a - b, false },
	"AND":  func(a, b int64) (int64, bool) { return a & b, false },
	"OR":   func(a, b int64) (int64, bool) { return a | b, false },
	"XOR":  func(a, b int64) (int64, bool) { return a ^ b, false },
	"NOR":  func(a, b int64) (int64, bool) { return ^(a | b), false },
	"SLT":  func(a, b int64) (int64, bool) { return boolToI64(a < b), false },
	"SLTU": func(a, b int64) (int64, bool) { return boolToI64(uint64(a) < uint64(b)), false },
}

func overflowingAdd(a, b int64) (int64, bool) {
	sum := a + b
	overflow := ((a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum > 0))
	return sum, overflow
}

func boolToI64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func rrEX(name string) Behavior {
	fn := rrOps[name]
	return func(in *Instruction, m Machine) Outcome {
		rs := int64(in.TR[0])
		rt := int64(in.TR[1])
		result, overflow := fn(rs, rt)
		if overflow {
			return Outcome{Kind: OutcomeSyncException, Code: ExceptionIntegerOverflow}
		}
		in.TR[0] = uint64(result)
		return Ok()
	}
}

func rrWB(in *Instruction, m Machine) Outcome {
	if err := m.SetGPRWord(in.Dest, in.TR[0]); err != nil {
		return Outcome{Kind: OutcomeSyncException, Code: ExceptionTwosComplementSum, Message: err.Error()}
	}
	m.GPRRetire(in.Dest)
	return Ok()
}

type shiftFn func(v uint64, shamt uint) uint64

var shiftOps = map[string]shiftFn{
	"SLL": func(v uint64, s uint) uint64 { return uint64(uint32(v) << s) },
	"SRL": func(v uint64, s uint) uint64 { return uint64(uint32(v) >> s) },
	"SRA": func(v uint64, s uint) uint64 { return uint64(int32(uint32(v)) >> s) },
}

func shiftEX(name string, variable bool) Behavior {
	fn := shiftOps[name]
	return func(in *Instruction, m Machine) Outcome {
		var shamt uint
		var value uint64
		if variable {
			value = in.TR[0]
			shamt = uint(in.TR[1] & 0x1f)
		} else {
			value = in.TR[0]
			if imm, ok := operand(in.Operands, OperandImmediate, 0); ok {
				shamt = uint(imm.Imm) & 0x1f
			}
		}
		in.TR[0] = fn(value, shamt)
		return Ok()
	}
}

func multDivEX(div bool) Behavior {
	return func(in *Instruction, m Machine) Outcome {
		a := int64(in.TR[0])
		b := int64(in.TR[1])
		if div {
			if b == 0 {
				return Outcome{Kind: OutcomeSyncException, Code: ExceptionDivByZero}
			}
			m.SetLO(uint64(a / b))
			m.SetHI(uint64(a % b))
			return Ok()
		}
		prod := a * b
		m.SetLO(uint64(prod))
		m.SetHI(uint64(prod >> 32))
		return Ok()
	}
}

func aluRTypeDefs() []*Def {
	var defs []*Def
	for name := range rrOps {
		name := name
		defs = append(defs, &Def{
			Mnemonic: name,
			Family:   FamilyALURType,
			Opcode:   0,
			Funct:    rTypeFunct(name),
			Syntax:   "RRR",
			SrcGPR:   []int{1, 2}, // rs, rt
			DestGPR:  0,           // rd
			DestFPR:  -1,
			EX:       rrEX(name),
			WB:       rrWB,
		})
	}
	for _, name := range []string{"SLL", "SRL", "SRA"} {
		defs = append(defs, &Def{
			Mnemonic: name,
			Family:   FamilyALURType,
			Opcode:   0,
			Funct:    rTypeFunct(name),
			Syntax:   "RRI",
			SrcGPR:   []int{1}, // rt
			DestGPR:  0,
			DestFPR:  -1,
			EX:       shiftEX(name, false),
			WB:       rrWB,
		})
	}
	for _, name := range []string{"SLLV", "SRLV", "SRAV"} {
		base := name[:3]
		defs = append(defs, &Def{
			Mnemonic: name,
			Family:   FamilyALURType,
			Opcode:   0,
			Funct:    rTypeFunct(name),
			Syntax:   "RRR",
			SrcGPR:   []int{1, 2}, // rt, rs
			DestGPR:  0,
			DestFPR:  -1,
			EX:       shiftEX(base, true),
			WB:       rrWB,
		})
	}
	for _, name := range []string{"MULT", "DIV"} {
		defs = append(defs, &Def{
			Mnemonic: name,
			Family:   FamilyALURType,
			Opcode:   0,
			Funct:    rTypeFunct(name),
			Syntax:   "RR",
			SrcGPR:   []int{0, 1}, // rs, rt
			DestGPR:  -1,
			DestFPR:  -1,
			EX:       multDivEX(name == "DIV"),
		})
	}
	return defs
}

// rTypeFunct assigns a unique low-6-bit function code per mnemonic; the
// exact numbering is this simulator's own, not required to match silicon
// (Non-goals, spec.md §1).
func rTypeFunct(name string) uint32 {
	order := []string{
		"ADD", "ADDU", "SUB", "SUBU", "AND", "OR", "XOR", "NOR",
		"SLT", "SLTU", "SLL", "SRL", "SRA", "SLLV", "SRLV", "SRAV",
		"MULT", "DIV",
	}
	for i, n := range order {
		if n == name {
			return uint32(i)
		}
	}
	return 0x3f
}
