package simulator

import (
	"context"
	"testing"

	"github.com/edumips64/sim/internal/config"
	"github.com/edumips64/sim/internal/cpu"
)

const addHalt = ".code\n" +
	"\taddi R1, R0, 10\n" +
	"\taddi R2, R0, 32\n" +
	"\tadd  R3, R1, R2\n" +
	"\thalt\n"

func TestAssembleAndRun(t *testing.T) {
	sim, err := Assemble(addHalt, config.Default())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	sim.Start()

	n, err := sim.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n == 0 {
		t.Fatal("expected at least one cycle")
	}
	if sim.CPU.Status != cpu.StatusHalted {
		t.Fatalf("got status %s, want HALTED", sim.CPU.Status)
	}
	if got := sim.CPU.Regs.GPRReg(3).Word(); got != 42 {
		t.Errorf("got r3=%d, want 42", got)
	}
}

func TestRunRespectsMaxCycles(t *testing.T) {
	sim, err := Assemble(addHalt, config.Default())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	sim.Start()

	n, err := sim.Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 1 {
		t.Errorf("got %d cycles, want 1", n)
	}
	if sim.CPU.Status == cpu.StatusHalted {
		t.Fatal("did not expect halt after a single cycle")
	}
}

func TestAssembleReportsParseErrors(t *testing.T) {
	if _, err := Assemble(".code\nbogus r1, r2\n", config.Default()); err == nil {
		t.Fatal("expected parse error for unknown mnemonic")
	}
}
