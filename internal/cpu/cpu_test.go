package cpu

import (
	"testing"

	"github.com/edumips64/sim/internal/config"
	"github.com/edumips64/sim/internal/isa"
	"github.com/edumips64/sim/internal/memory"
)

func reg(n int) isa.OperandValue { return isa.OperandValue{Kind: isa.OperandGPR, Reg: n} }

func mustDef(t *testing.T, tbl *isa.Table, mnemonic string) *isa.Def {
	t.Helper()
	d, ok := tbl.Lookup(mnemonic)
	if !ok {
		t.Fatalf("no def for %s", mnemonic)
	}
	return d
}

// addProgram builds `ADD r3, r1, r2` followed by HALT, at addresses 0 and 4.
func addProgram(t *testing.T, tbl *isa.Table) []*isa.Instruction {
	add := mustDef(t, tbl, "ADD")
	halt := mustDef(t, tbl, "HALT")
	return []*isa.Instruction{
		{Def: add, Address: 0, Operands: []isa.OperandValue{reg(3), reg(1), reg(2)}, Dest: -1},
		{Def: halt, Address: 4, Encoding: isa.EncodingHalt, Dest: -1},
	}
}

func runToHalt(t *testing.T, c *CPU, maxCycles int) {
	t.Helper()
	c.Start()
	for i := 0; i < maxCycles; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if c.Status == StatusHalted {
			return
		}
	}
	t.Fatalf("did not halt within %d cycles (status=%s)", maxCycles, c.Status)
}

func TestSimpleAddReachesWriteback(t *testing.T) {
	tbl := isa.NewTable()
	code := addProgram(t, tbl)
	c := New(tbl, code, memory.New(1024), config.Default())
	c.Regs.GPRReg(1).SetWord(10)
	c.Regs.GPRReg(2).SetWord(32)

	runToHalt(t, c, 20)

	if got := c.Regs.GPRReg(3).Word(); got != 42 {
		t.Errorf("got r3=%d, want 42", got)
	}
	if c.Instructions != 2 {
		t.Errorf("got %d instructions retired, want 2", c.Instructions)
	}
	if c.Stalls.Sum()+c.Instructions > c.Cycles {
		t.Errorf("stalls(%d)+instructions(%d) > cycles(%d)", c.Stalls.Sum(), c.Instructions, c.Cycles)
	}
}

func TestRAWStallsWithoutForwarding(t *testing.T) {
	tbl := isa.NewTable()
	add := mustDef(t, tbl, "ADD")
	halt := mustDef(t, tbl, "HALT")
	code := []*isa.Instruction{
		{Def: add, Address: 0, Operands: []isa.OperandValue{reg(3), reg(1), reg(2)}, Dest: -1},
		{Def: add, Address: 4, Operands: []isa.OperandValue{reg(4), reg(3), reg(3)}, Dest: -1},
		{Def: halt, Address: 8, Encoding: isa.EncodingHalt, Dest: -1},
	}
	cfg := config.Default()
	cfg.Forwarding = false
	c := New(tbl, code, memory.New(1024), cfg)
	c.Regs.GPRReg(1).SetWord(1)
	c.Regs.GPRReg(2).SetWord(1)

	runToHalt(t, c, 30)

	if got := c.Regs.GPRReg(4).Word(); got != 4 {
		t.Errorf("got r4=%d, want 4", got)
	}
	if c.Stalls.RAW == 0 {
		t.Error("expected at least one RAW stall without forwarding")
	}
}

func TestForwardingAvoidsRAWStall(t *testing.T) {
	tbl := isa.NewTable()
	add := mustDef(t, tbl, "ADD")
	halt := mustDef(t, tbl, "HALT")
	code := []*isa.Instruction{
		{Def: add, Address: 0, Operands: []isa.OperandValue{reg(3), reg(1), reg(2)}, Dest: -1},
		{Def: add, Address: 4, Operands: []isa.OperandValue{reg(4), reg(3), reg(3)}, Dest: -1},
		{Def: halt, Address: 8, Encoding: isa.EncodingHalt, Dest: -1},
	}
	cfg := config.Default()
	cfg.Forwarding = true
	c := New(tbl, code, memory.New(1024), cfg)
	c.Regs.GPRReg(1).SetWord(1)
	c.Regs.GPRReg(2).SetWord(1)

	runToHalt(t, c, 30)

	if got := c.Regs.GPRReg(4).Word(); got != 4 {
		t.Errorf("got r4=%d, want 4", got)
	}
	if c.Stalls.RAW != 0 {
		t.Errorf("expected no RAW stalls with forwarding enabled, got %d", c.Stalls.RAW)
	}
}

func TestHaltDrainsInFlightBeforeHalting(t *testing.T) {
	tbl := isa.NewTable()
	code := addProgram(t, tbl)
	c := New(tbl, code, memory.New(1024), config.Default())
	c.Start()

	for i := 0; i < 2; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if c.Status == StatusHalted {
			t.Fatalf("halted too early at cycle %d", i)
		}
	}
}

func TestSnapshotReflectsRegistersAndStatus(t *testing.T) {
	tbl := isa.NewTable()
	code := addProgram(t, tbl)
	c := New(tbl, code, memory.New(1024), config.Default())
	c.Regs.GPRReg(1).SetWord(10)
	c.Regs.GPRReg(2).SetWord(32)

	runToHalt(t, c, 20)

	snap := c.Snapshot()
	if snap.Status != "HALTED" {
		t.Errorf("got status %s, want HALTED", snap.Status)
	}
	if snap.GPR[3] != 42 {
		t.Errorf("got snapshot GPR[3]=%d, want 42", snap.GPR[3])
	}
	if snap.Instructions != c.Instructions {
		t.Errorf("got snapshot instructions=%d, want %d", snap.Instructions, c.Instructions)
	}
	if snap.Cycle != c.Cycles {
		t.Errorf("got snapshot cycle=%d, want %d", snap.Cycle, c.Cycles)
	}
}

func TestResetClearsState(t *testing.T) {
	tbl := isa.NewTable()
	code := addProgram(t, tbl)
	c := New(tbl, code, memory.New(1024), config.Default())
	c.Regs.GPRReg(1).SetWord(10)
	c.Regs.GPRReg(2).SetWord(32)
	runToHalt(t, c, 20)

	c.Reset()
	if c.Status != StatusReady {
		t.Errorf("got status %s, want READY", c.Status)
	}
	if c.Cycles != 0 || c.Instructions != 0 {
		t.Errorf("got cycles=%d instructions=%d, want 0/0", c.Cycles, c.Instructions)
	}
	if c.Regs.GPRReg(3).Word() != 0 {
		t.Error("expected registers cleared after Reset")
	}
}
