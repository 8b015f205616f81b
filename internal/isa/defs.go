package isa

// defaultDefs assembles the complete instruction set of SPEC_FULL.md §4.2:
// ALU R-type, ALU I-type, loads/stores, branches/jumps, FP arithmetic, FP
// load/store/move/convert, and control/trap.
func defaultDefs() []*Def {
	var all []*Def
	all = append(all, aluRTypeDefs()...)
	all = append(all, aluITypeDefs()...)
	all = append(all, loadStoreDefs()...)
	all = append(all, branchJumpDefs()...)
	all = append(all, fpArithDefs()...)
	all = append(all, fpLoadStoreDefs()...)
	all = append(all, controlDefs()...)
	return all
}
