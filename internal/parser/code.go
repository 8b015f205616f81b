package parser

import (
	"github.com/edumips64/sim/internal/isa"
	"github.com/edumips64/sim/internal/memory"
)

// parseCodeLine implements the code strategy of SPEC_FULL.md §4.1: optional
// label, mnemonic, comma-separated operands validated against the
// instruction's Syntax string. Operands are built in literal text order
// with one OperandValue per Syntax character, which is exactly the order
// Pack/Decode expect (see internal/isa's encode.go/decode.go).
func (p *Parser) parseCodeLine(lineNo int, l *cursor) {
	if name, ok := l.peekLabel(); ok {
		if err := p.symbols.Define(name, p.codeAddr, memory.KindCode); err != nil {
			p.fail(lineNo, "%v", err)
		}
		l.skipSpace()
	}
	if l.isEOL() {
		return
	}

	mnemonic := l.readIdent()
	if mnemonic == "" {
		p.fail(lineNo, "expected instruction mnemonic")
		return
	}
	def, ok := p.table.Lookup(mnemonic)
	if !ok {
		p.fail(lineNo, "unknown mnemonic %q", mnemonic)
		return
	}

	var operands []isa.OperandValue
	for i, kind := range []byte(def.Syntax) {
		if i > 0 && !l.expectComma() {
			p.fail(lineNo, "%s: expected comma before operand %d", mnemonic, i+1)
			return
		}
		op, ok := p.parseOperand(lineNo, l, isa.OperandKind(kind))
		if !ok {
			return
		}
		operands = append(operands, op)
	}
	l.skipSpace()
	if !l.isEOL() {
		p.fail(lineNo, "%s: unexpected trailing text", mnemonic)
	}

	in := &isa.Instruction{
		Def:      def,
		Address:  p.codeAddr,
		Operands: operands,
		Dest:     -1,
	}
	if def.DestGPR >= 0 && def.DestGPR < len(operands) {
		in.Dest = operands[def.DestGPR].Reg
	}
	if def.DestFPR >= 0 && def.DestFPR < len(operands) {
		in.Dest = operands[def.DestFPR].Reg
		in.DestFPR = true
	}

	p.pending = append(p.pending, pending{ins: in, lineNo: lineNo})
	p.codeAddr += 4
}
