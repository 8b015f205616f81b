package isa

// Control/trap family: halt (0x04000000), syscall 0 (0x0000000C), break,
// trap, nop. halt/syscall carry fixed encodings and no operands; their
// terminating-ness is recognized structurally by IsTerminating rather than
// by mnemonic, so any future opcode that happens to pack to the same
// bits would behave the same way.

func haltWB(in *Instruction, m Machine) Outcome {
	return Outcome{Kind: OutcomeHalt}
}

func breakIF(in *Instruction, m Machine) Outcome {
	return Outcome{Kind: OutcomeBreak}
}

func trapEX(in *Instruction, m Machine) Outcome {
	return Outcome{Kind: OutcomeSyncException, Code: ExceptionTrap}
}

func controlDefs() []*Def {
	return []*Def{
		{Mnemonic: "HALT", Family: FamilyControl, Syntax: "", DestGPR: -1, DestFPR: -1, WB: haltWB},
		{Mnemonic: "SYSCALL", Family: FamilyControl, Syntax: "U", DestGPR: -1, DestFPR: -1, WB: haltWB},
		{Mnemonic: "BREAK", Family: FamilyControl, Syntax: "", DestGPR: -1, DestFPR: -1, IF: breakIF},
		{Mnemonic: "TRAP", Family: FamilyControl, Syntax: "", DestGPR: -1, DestFPR: -1, EX: trapEX},
		{Mnemonic: "NOP", Family: FamilyControl, Syntax: "", DestGPR: -1, DestFPR: -1},
	}
}
