package isa

// genericID is the shared ID-stage behavior of SPEC_FULL.md §4.3: read
// source registers into TR, reserve the destination's write-semaphore (GPR
// or FPR WAW for FP arithmetic), and report a hazard if any source cannot
// be satisfied. This is deliberately the *only* place that walks
// Def.SrcGPR/SrcFPR/DestGPR/DestFPR, so every family — ALU, load/store,
// branch, FP — gets identical hazard bookkeeping from one function; only
// EX/MEM/WB differ per opcode.
func genericID(in *Instruction, m Machine) Outcome {
	for i, idx := range in.Def.SrcGPR {
		if idx >= len(in.Operands) {
			continue
		}
		n := in.Operands[idx].Reg
		in.TR[i] = m.GPRWord(n)
		if m.GPRWriters(n) > 0 {
			if !m.Forwarding() {
				return Outcome{Kind: OutcomeRAW}
			}
			if m.LoadUseHazard(n) {
				return Outcome{Kind: OutcomeRAW}
			}
		}
	}
	for i, idx := range in.Def.SrcFPR {
		if idx >= len(in.Operands) {
			continue
		}
		n := in.Operands[idx].Reg
		in.TR[2+i] = m.FPRBits(n)
	}

	if in.Def.DestGPR >= 0 && in.Def.DestGPR < len(in.Operands) {
		n := in.Operands[in.Def.DestGPR].Reg
		m.GPRReserve(n)
		in.Dest = n
	}
	if in.Def.DestFPR >= 0 && in.Def.DestFPR < len(in.Operands) {
		n := in.Operands[in.Def.DestFPR].Reg
		if m.FPRWAW(n) > 0 {
			return Outcome{Kind: OutcomeWAW}
		}
		m.FPRReserveWAW(n)
		in.Dest = n
		in.DestFPR = true
	}
	return Ok()
}
