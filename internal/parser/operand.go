package parser

import (
	"strconv"
	"strings"

	"github.com/edumips64/sim/internal/isa"
)

// parseRegister recognizes R0..R31 or $0..$31.
func parseRegister(tok string) (int, bool) {
	up := strings.ToUpper(tok)
	switch {
	case strings.HasPrefix(up, "R"):
		return regNumber(up[1:])
	case strings.HasPrefix(up, "$"):
		return regNumber(up[1:])
	default:
		return 0, false
	}
}

// parseFPR recognizes F0..F31.
func parseFPR(tok string) (int, bool) {
	up := strings.ToUpper(tok)
	if !strings.HasPrefix(up, "F") {
		return 0, false
	}
	return regNumber(up[1:])
}

func regNumber(digits string) (int, bool) {
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 || n > 31 {
		return 0, false
	}
	return n, true
}

// parseOperand reads one operand matching kind from l, per the `%R %F %I
// %L %U %B` syntax-string vocabulary of SPEC_FULL.md §4.1. Label operands
// are returned unresolved (Imm left zero, Label set) for the parser's
// second pass to fill in.
func (p *Parser) parseOperand(lineNo int, l *cursor, kind isa.OperandKind) (isa.OperandValue, bool) {
	l.skipSpace()
	switch kind {
	case isa.OperandGPR:
		tok := l.readIdent()
		n, ok := parseRegister(tok)
		if !ok {
			p.fail(lineNo, "expected GPR operand, got %q", tok)
			return isa.OperandValue{}, false
		}
		return isa.OperandValue{Kind: isa.OperandGPR, Reg: n}, true
	case isa.OperandFPR:
		tok := l.readIdent()
		n, ok := parseFPR(tok)
		if !ok {
			p.fail(lineNo, "expected FPR operand, got %q", tok)
			return isa.OperandValue{}, false
		}
		return isa.OperandValue{Kind: isa.OperandFPR, Reg: n}, true
	case isa.OperandImmediate, isa.OperandUnsigned, isa.OperandByteOff:
		v, ok := l.readNumber()
		if !ok {
			p.fail(lineNo, "expected numeric operand")
			return isa.OperandValue{}, false
		}
		return isa.OperandValue{Kind: kind, Imm: v}, true
	case isa.OperandLabel:
		tok := l.readIdent()
		if tok == "" {
			p.fail(lineNo, "expected label operand")
			return isa.OperandValue{}, false
		}
		return isa.OperandValue{Kind: isa.OperandLabel, Label: tok}, true
	default:
		p.fail(lineNo, "unknown operand kind %c", byte(kind))
		return isa.OperandValue{}, false
	}
}
