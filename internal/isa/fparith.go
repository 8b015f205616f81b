package isa

import "math"

// FP arithmetic family: add.d, sub.d, mul.d, div.d. Two FPRs are read in ID
// (SrcFPR, landing in TR[2]/TR[3]); the actual computation lives in Def.EX,
// which the cpu's EX stage runs when the instruction leaves its
// Adder/Multiplier/Divider queue (internal/fpu) on its way to MEM, not when
// it enters the FP sub-pipeline — see SPEC_FULL.md §4.4. WB writes the
// result FPR.

type fpFn func(a, b float64) (float64, Outcome)

var fpOps = map[string]fpFn{
	"ADD.D": func(a, b float64) (float64, Outcome) { return a + b, Ok() },
	"SUB.D": func(a, b float64) (float64, Outcome) { return a - b, Ok() },
	"MUL.D": func(a, b float64) (float64, Outcome) { return a * b, Ok() },
	"DIV.D": func(a, b float64) (float64, Outcome) {
		if b == 0 {
			return 0, Outcome{Kind: OutcomeSyncException, Code: ExceptionFPInvalidOperation}
		}
		return a / b, Ok()
	},
}

func fpArithEX(name string) Behavior {
	fn := fpOps[name]
	return func(in *Instruction, m Machine) Outcome {
		a := math.Float64frombits(in.TR[2])
		b := math.Float64frombits(in.TR[3])
		result, outcome := fn(a, b)
		if outcome.Kind != OutcomeOK {
			return outcome
		}
		in.TR[0] = math.Float64bits(result)
		return Ok()
	}
}

func fpWB(in *Instruction, m Machine) Outcome {
	m.SetFPRBits(in.Dest, in.TR[0])
	m.FPRRetireWAW(in.Dest)
	return Ok()
}

func fpArithDefs() []*Def {
	var defs []*Def
	opcode := uint32(0x60)
	for _, name := range []string{"ADD.D", "SUB.D", "MUL.D", "DIV.D"} {
		opcode++
		defs = append(defs, &Def{
			Mnemonic: name,
			Family:   FamilyFPArith,
			Opcode:   opcode,
			Funct:    opcode,
			Syntax:   "FFF",
			SrcFPR:   []int{1, 2}, // fs, ft
			DestGPR:  -1,
			DestFPR:  0, // fd
			EX:       fpArithEX(name),
			WB:       fpWB,
		})
	}
	return defs
}
