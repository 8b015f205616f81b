package parser

import (
	"testing"

	"github.com/edumips64/sim/internal/isa"
)

func TestParseSimpleProgram(t *testing.T) {
	src := `.data
count: .word64 5
.code
start:
	addi R1, R0, 1
	add  R2, R1, R1
	halt
`
	p := New(isa.NewTable(), 0)
	prog, err := p.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Instructions) != 3 {
		t.Fatalf("got %d instructions, want 3", len(prog.Instructions))
	}
	if prog.Instructions[0].Name() != "ADDI" {
		t.Errorf("got %s, want ADDI", prog.Instructions[0].Name())
	}
	sym, ok := prog.Symbols.Lookup("start")
	if !ok || sym.Address != 0 {
		t.Errorf("start label: got %+v ok=%v", sym, ok)
	}
	countSym, ok := prog.Symbols.Lookup("count")
	if !ok || countSym.Address != 0 {
		t.Errorf("count label: got %+v ok=%v", countSym, ok)
	}
}

func TestParseForwardBranchLabel(t *testing.T) {
	src := `.code
	beq R0, R0, done
	addi R1, R0, 1
done:
	halt
`
	p := New(isa.NewTable(), 0)
	prog, err := p.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	branch := prog.Instructions[0]
	lbl, ok := operandByKind(branch, isa.OperandLabel)
	if !ok {
		t.Fatal("expected label operand on beq")
	}
	if uint32(lbl.Imm) != 8 {
		t.Errorf("got target %d, want 8", lbl.Imm)
	}
}

func TestParseUndefinedLabelError(t *testing.T) {
	p := New(isa.NewTable(), 0)
	_, err := p.Parse(".code\n\tj nowhere\n")
	if err == nil {
		t.Fatal("expected error for undefined label")
	}
}

func TestParseDuplicateLabelError(t *testing.T) {
	p := New(isa.NewTable(), 0)
	_, err := p.Parse(".code\nfoo:\n\tnop\nfoo:\n\tnop\n")
	if err == nil {
		t.Fatal("expected error for duplicate label")
	}
}

func TestParseDataDirectives(t *testing.T) {
	src := `.data
bytes: .byte 1, 2, 3
msg:   .asciiz "hi"
`
	p := New(isa.NewTable(), 0)
	prog, err := p.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b0, _ := prog.Memory.ReadByte(0)
	if b0 != 1 {
		t.Errorf("got %d, want 1", b0)
	}
	msgSym, ok := prog.Symbols.Lookup("msg")
	if !ok || msgSym.Address != 3 {
		t.Errorf("msg label: got %+v ok=%v", msgSym, ok)
	}
}

func operandByKind(in *isa.Instruction, kind isa.OperandKind) (isa.OperandValue, bool) {
	for _, o := range in.Operands {
		if o.Kind == kind {
			return o, true
		}
	}
	return isa.OperandValue{}, false
}
