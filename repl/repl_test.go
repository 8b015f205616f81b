package repl

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edumips64/sim/internal/config"
	"github.com/edumips64/sim/internal/cpu"
	"github.com/edumips64/sim/internal/logging"
)

func TestResolveCommandExactAndPrefix(t *testing.T) {
	cmd, err := resolveCommand("step")
	if err != nil || cmd.name != "step" {
		t.Fatalf("got %v, %v; want step", cmd, err)
	}

	cmd, err = resolveCommand("st")
	if err != nil || cmd.name != "step" {
		t.Fatalf("got %v, %v; want step", cmd, err)
	}
}

func TestResolveCommandAmbiguous(t *testing.T) {
	// "re" matches both "regs" and "reset".
	_, err := resolveCommand("re")
	if err == nil {
		t.Fatal("expected ambiguous command error")
	}
}

func TestResolveCommandUnknown(t *testing.T) {
	_, err := resolveCommand("bogus")
	if err == nil {
		t.Fatal("expected unknown command error")
	}
}

func newTestREPL(t *testing.T) (*REPL, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	r := &REPL{
		cfg:         config.Default(),
		log:         logging.New(&buf, slog.LevelError+4),
		breakpoints: make(map[uint32]bool),
		out:         &buf,
	}
	return r, &buf
}

func writeProgram(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.s")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write program: %v", err)
	}
	return path
}

const addHaltSource = ".code\n" +
	"\taddi R1, R0, 10\n" +
	"\taddi R2, R0, 32\n" +
	"\tadd  R3, R1, R2\n" +
	"\thalt\n"

func TestCmdLoadAndRun(t *testing.T) {
	r, buf := newTestREPL(t)
	path := writeProgram(t, addHaltSource)

	if err := r.cmdLoad([]string{path}); err != nil {
		t.Fatalf("load: %v", err)
	}
	buf.Reset()

	if err := r.cmdRun(nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.sim.CPU.Status != cpu.StatusHalted {
		t.Fatalf("got status %s, want HALTED", r.sim.CPU.Status)
	}
	if !strings.Contains(buf.String(), "HALTED") {
		t.Errorf("expected run output to mention HALTED, got %q", buf.String())
	}
}

func TestCmdStepWithoutLoadErrors(t *testing.T) {
	r, _ := newTestREPL(t)
	if err := r.cmdStep(nil); err == nil {
		t.Fatal("expected error stepping without a loaded program")
	}
}

func TestCmdBreakStopsRun(t *testing.T) {
	r, buf := newTestREPL(t)
	path := writeProgram(t, addHaltSource)
	if err := r.cmdLoad([]string{path}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := r.cmdBreak([]string{"4"}); err != nil {
		t.Fatalf("break: %v", err)
	}
	buf.Reset()

	if err := r.cmdRun(nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.sim.CPU.Status == cpu.StatusHalted {
		t.Fatal("expected run to stop at the breakpoint before halting")
	}
	if !strings.Contains(buf.String(), "breakpoint hit") {
		t.Errorf("expected breakpoint message, got %q", buf.String())
	}
}

func TestCmdRegsReportsValues(t *testing.T) {
	r, buf := newTestREPL(t)
	path := writeProgram(t, addHaltSource)
	if err := r.cmdLoad([]string{path}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := r.cmdRun(nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	buf.Reset()

	if err := r.cmdRegs(nil); err != nil {
		t.Fatalf("regs: %v", err)
	}
	if !strings.Contains(buf.String(), "R3 ") {
		t.Errorf("expected R3 in regs output, got %q", buf.String())
	}
}
