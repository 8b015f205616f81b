package isa

import "math"

// FP load/store/move/convert family: l.d/s.d mirror the integer
// load/store address computation but target an FPR; mov.d copies between
// FPRs; cvt.d.w / cvt.w.d convert between the GPR integer and FPR double
// representations.

func fpLoadEX(in *Instruction, m Machine) Outcome {
	in.TR[3] = uint64(effectiveAddress(in, in.TR[0]))
	return Ok()
}

func fpLoadMEM(in *Instruction, m Machine) Outcome {
	addr := uint32(in.TR[3])
	v, err := m.ReadDouble(addr)
	if err != nil {
		return memoryException(err)
	}
	in.TR[0] = v
	return Ok()
}

func fpStoreEX(in *Instruction, m Machine) Outcome {
	in.TR[3] = uint64(effectiveAddress(in, in.TR[0]))
	return Ok()
}

func fpStoreMEM(in *Instruction, m Machine) Outcome {
	addr := uint32(in.TR[3])
	if err := m.WriteDouble(addr, in.TR[2]); err != nil {
		return memoryException(err)
	}
	return Ok()
}

func movDEX(in *Instruction, m Machine) Outcome {
	in.TR[0] = in.TR[2]
	return Ok()
}

func cvtDWEX(in *Instruction, m Machine) Outcome {
	in.TR[0] = math.Float64bits(float64(int32(in.TR[0])))
	return Ok()
}

func cvtWDEX(in *Instruction, m Machine) Outcome {
	in.TR[0] = uint64(uint32(int32(math.Float64frombits(in.TR[2]))))
	return Ok()
}

func fpLoadStoreDefs() []*Def {
	return []*Def{
		{
			Mnemonic: "L.D", Family: FamilyFPLoadStore, Opcode: 0x70, Syntax: "FRI",
			SrcGPR: []int{1}, DestGPR: -1, DestFPR: 0,
			EX: fpLoadEX, MEM: fpLoadMEM, WB: fpWB,
		},
		{
			Mnemonic: "S.D", Family: FamilyFPLoadStore, Opcode: 0x71, Syntax: "FRI",
			SrcGPR: []int{1}, SrcFPR: []int{0}, DestGPR: -1, DestFPR: -1,
			EX: fpStoreEX, MEM: fpStoreMEM,
		},
		{
			Mnemonic: "MOV.D", Family: FamilyFPLoadStore, Opcode: 0x72, Syntax: "FF",
			SrcFPR: []int{1}, DestGPR: -1, DestFPR: 0,
			EX: movDEX, WB: fpWB,
		},
		{
			Mnemonic: "CVT.D.W", Family: FamilyFPLoadStore, Opcode: 0x73, Syntax: "FR",
			SrcGPR: []int{1}, DestGPR: -1, DestFPR: 0,
			EX: cvtDWEX, WB: fpWB,
		},
		{
			Mnemonic: "CVT.W.D", Family: FamilyFPLoadStore, Opcode: 0x74, Syntax: "RF",
			SrcFPR: []int{1}, DestGPR: 0, DestFPR: -1,
			EX: cvtWDEX, WB: rrWB,
		},
	}
}
