package fpu

import (
	"testing"

	"github.com/edumips64/sim/internal/isa"
)

func TestAdderLatency(t *testing.T) {
	p := New(0)
	in := &isa.Instruction{Def: &isa.Def{Mnemonic: "ADD.D"}}
	ok, _ := p.Reserve(in)
	if !ok {
		t.Fatal("expected reserve to succeed")
	}
	for i := 0; i < adderLatency-1; i++ {
		p.Advance()
		if out, _ := p.TakeCompleted(); out != nil {
			t.Fatalf("completed early at cycle %d", i)
		}
	}
	p.Advance()
	out, _ := p.TakeCompleted()
	if out != in {
		t.Fatalf("got %v, want %v", out, in)
	}
}

func TestDividerRejectsSecondInstruction(t *testing.T) {
	p := New(4)
	a := &isa.Instruction{Def: &isa.Def{Mnemonic: "DIV.D"}}
	b := &isa.Instruction{Def: &isa.Def{Mnemonic: "DIV.D"}}
	ok, _ := p.Reserve(a)
	if !ok {
		t.Fatal("first reserve should succeed")
	}
	ok, kind := p.Reserve(b)
	if ok || kind != isa.OutcomeStructuralDivider {
		t.Fatalf("got ok=%v kind=%v, want structural divider stall", ok, kind)
	}
}

func TestCompletionPriorityDividerOverMultiplier(t *testing.T) {
	p := New(1) // 1-cycle divider latency for the test
	div := &isa.Instruction{Def: &isa.Def{Mnemonic: "DIV.D"}}
	mul := &isa.Instruction{Def: &isa.Def{Mnemonic: "MUL.D"}}
	p.Reserve(div)
	// Advance the multiplier to be ready at the same cycle as the divider
	// by reserving it multiplierLatency-1 cycles later... instead, drive
	// both to readiness directly via repeated Advance from a 1-cycle mult.
	for i := 0; i < multiplierLatency-1; i++ {
		p.multiplier.advance()
	}
	p.multiplier.queue = nil
	p.multiplier.reserve(mul, 1)
	p.Advance()
	out, contended := p.TakeCompleted()
	if out != div {
		t.Fatalf("got %v, want divider instruction first", out)
	}
	if !contended {
		t.Error("expected contended completion")
	}
	out2, _ := p.TakeCompleted()
	if out2 != mul {
		t.Fatalf("got %v, want multiplier instruction retained for next cycle", out2)
	}
}
