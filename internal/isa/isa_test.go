package isa

import "testing"

type fakeMachine struct {
	gpr        [32]uint64
	gprWriters [32]int
	fpr        [32]uint64
	fprWAW     [32]int
	mem        map[uint32][]byte
	pc, hi, lo uint64
	forwarding bool
	loadUse    map[int]bool
}

func newFakeMachine() *fakeMachine {
	return &fakeMachine{mem: map[uint32][]byte{}, loadUse: map[int]bool{}}
}

func (f *fakeMachine) GPRWord(n int) uint64 { return f.gpr[n] }
func (f *fakeMachine) SetGPRWord(n int, v uint64) error {
	f.gpr[n] = v
	return nil
}
func (f *fakeMachine) GPRReserve(n int)     { f.gprWriters[n]++ }
func (f *fakeMachine) GPRRetire(n int)      { f.gprWriters[n]-- }
func (f *fakeMachine) GPRWriters(n int) int { return f.gprWriters[n] }
func (f *fakeMachine) FPRBits(n int) uint64 { return f.fpr[n] }
func (f *fakeMachine) SetFPRBits(n int, v uint64) {
	f.fpr[n] = v
}
func (f *fakeMachine) FPRWAW(n int) int    { return f.fprWAW[n] }
func (f *fakeMachine) FPRReserveWAW(n int) { f.fprWAW[n]++ }
func (f *fakeMachine) FPRRetireWAW(n int)  { f.fprWAW[n]-- }
func (f *fakeMachine) ReadByte(addr uint32) (uint8, error)  { return f.mem[addr][0], nil }
func (f *fakeMachine) WriteByte(addr uint32, v uint8) error { f.mem[addr] = []byte{v}; return nil }
func (f *fakeMachine) ReadHalf(addr uint32) (uint16, error) { return 0, nil }
func (f *fakeMachine) WriteHalf(addr uint32, v uint16) error { return nil }
func (f *fakeMachine) ReadWord(addr uint32) (uint32, error) { return 0, nil }
func (f *fakeMachine) WriteWord(addr uint32, v uint32) error { return nil }
func (f *fakeMachine) ReadDouble(addr uint32) (uint64, error) { return 0, nil }
func (f *fakeMachine) WriteDouble(addr uint32, v uint64) error { return nil }
func (f *fakeMachine) PC() uint32      { return uint32(f.pc) }
func (f *fakeMachine) SetPC(v uint32)  { f.pc = uint64(v) }
func (f *fakeMachine) HI() uint64      { return f.hi }
func (f *fakeMachine) SetHI(v uint64)  { f.hi = v }
func (f *fakeMachine) LO() uint64      { return f.lo }
func (f *fakeMachine) SetLO(v uint64)  { f.lo = v }
func (f *fakeMachine) Forwarding() bool { return f.forwarding }
func (f *fakeMachine) LoadUseHazard(n int) bool { return f.loadUse[n] }

func TestPackDecodeRoundTripRType(t *testing.T) {
	table := NewTable()
	def, ok := table.Lookup("ADD")
	if !ok {
		t.Fatal("ADD not registered")
	}
	in := &Instruction{
		Def: def,
		Operands: []OperandValue{
			{Kind: OperandGPR, Reg: 3}, // rd
			{Kind: OperandGPR, Reg: 1}, // rs
			{Kind: OperandGPR, Reg: 2}, // rt
		},
		Dest: 3,
	}
	enc, err := Pack(in)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	out, err := Decode(table, enc, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Name() != "ADD" {
		t.Errorf("got mnemonic %s, want ADD", out.Name())
	}
	if out.Dest != 3 {
		t.Errorf("got dest %d, want 3", out.Dest)
	}
}

func TestPackDecodeRoundTripIType(t *testing.T) {
	table := NewTable()
	def, _ := table.Lookup("ADDI")
	in := &Instruction{
		Def: def,
		Operands: []OperandValue{
			{Kind: OperandGPR, Reg: 1},
			{Kind: OperandGPR, Reg: 0},
			{Kind: OperandImmediate, Imm: 5},
		},
		Dest: 1,
	}
	enc, err := Pack(in)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	out, err := Decode(table, enc, 4)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Name() != "ADDI" {
		t.Errorf("got %s, want ADDI", out.Name())
	}
	imm, ok := operand(out.Operands, OperandImmediate, 0)
	if !ok || imm.Imm != 5 {
		t.Errorf("got imm %+v", imm)
	}
}

func TestHaltSyscallFixedEncodings(t *testing.T) {
	table := NewTable()
	def, _ := table.Lookup("HALT")
	in := &Instruction{Def: def, Dest: -1}
	enc, _ := Pack(in)
	if enc != EncodingHalt {
		t.Errorf("got %#x, want %#x", enc, EncodingHalt)
	}
	out, err := Decode(table, enc, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !out.IsTerminating() {
		t.Errorf("halt should be terminating")
	}
}

func TestGenericIDRAWWithoutForwarding(t *testing.T) {
	m := newFakeMachine()
	m.gprWriters[1] = 1 // a prior writer still in flight
	table := NewTable()
	def, _ := table.Lookup("ADD")
	in := &Instruction{Def: def, Operands: []OperandValue{
		{Kind: OperandGPR, Reg: 2}, {Kind: OperandGPR, Reg: 1}, {Kind: OperandGPR, Reg: 0},
	}}
	out := in.ID(m)
	if out.Kind != OutcomeRAW {
		t.Errorf("got %v, want RAW", out.Kind)
	}
}

func TestGenericIDForwardingResolvesRAW(t *testing.T) {
	m := newFakeMachine()
	m.forwarding = true
	m.gprWriters[1] = 1
	table := NewTable()
	def, _ := table.Lookup("ADD")
	in := &Instruction{Def: def, Operands: []OperandValue{
		{Kind: OperandGPR, Reg: 2}, {Kind: OperandGPR, Reg: 1}, {Kind: OperandGPR, Reg: 0},
	}}
	out := in.ID(m)
	if out.Kind != OutcomeOK {
		t.Errorf("got %v, want OK", out.Kind)
	}
}

func TestIntegerOverflowRaisesException(t *testing.T) {
	m := newFakeMachine()
	table := NewTable()
	def, _ := table.Lookup("ADD")
	in := &Instruction{Def: def}
	in.TR[0] = uint64(int64(1) << 62)
	in.TR[1] = uint64(int64(1) << 62)
	out := in.EX(m)
	if out.Kind != OutcomeSyncException || out.Code != ExceptionIntegerOverflow {
		t.Errorf("got %+v, want IntegerOverflow", out)
	}
}
