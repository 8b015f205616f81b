/*
 * edumips64 - Two-pass assembler.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package parser implements the line-oriented, two-pass assembler of
// SPEC_FULL.md §4.1. A Parser holds a dictionary of strategies keyed by
// directive name (.data, .code, .text) the way the source simulator's
// config/configparser dispatches on a line's leading model keyword; here
// the keyword is a `.directive` instead of a device model.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/edumips64/sim/internal/isa"
	"github.com/edumips64/sim/internal/memory"
)

// Error is one parse error, referenced to the offending source line.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Program is the result of a successful (or partially successful) parse:
// the populated data memory, symbol table, and the instructions decoded
// from the .code/.text section in address order.
type Program struct {
	Memory       *memory.Memory
	Symbols      *memory.SymbolTable
	Instructions []*isa.Instruction
	CodeWords    []uint32 // word-indexed code memory, CodeWords[addr/4]
	DataEnd      uint32
	CodeEnd      uint32
}

type directive int

const (
	dirNone directive = iota
	dirData
	dirCode
)

type pending struct {
	ins    *isa.Instruction
	lineNo int
}

// Parser assembles one source file into a Program. It is not safe for
// concurrent use and is discarded after one Parse call.
type Parser struct {
	table   *isa.Table
	mem     *memory.Memory
	symbols *memory.SymbolTable

	strategy directive
	dataAddr uint32
	codeAddr uint32

	pending []pending
	errs    []error
}

// New returns a Parser that assembles against table and lays data out in a
// memory of memSize bytes (0 selects memory.DefaultSize).
func New(table *isa.Table, memSize uint32) *Parser {
	return &Parser{
		table:   table,
		mem:     memory.New(memSize),
		symbols: memory.NewSymbolTable(),
	}
}

// Parse assembles source and returns the resulting Program. If any line
// produced an error, the errors are joined into one multi-error report and
// the returned Program reflects however much of the file could be
// assembled — callers should treat a non-nil error as parse failure
// regardless of the partial Program (SPEC_FULL.md §4.1/§7).
func (p *Parser) Parse(source string) (*Program, error) {
	lines := strings.Split(source, "\n")
	for i, raw := range lines {
		lineNo := i + 1
		p.parseLine(lineNo, stripComment(raw))
	}
	p.resolveAndPack()

	prog := &Program{
		Memory:       p.mem,
		Symbols:      p.symbols,
		Instructions: make([]*isa.Instruction, len(p.pending)),
		CodeWords:    make([]uint32, p.codeAddr/4),
		DataEnd:      p.dataAddr,
		CodeEnd:      p.codeAddr,
	}
	for i, pd := range p.pending {
		prog.Instructions[i] = pd.ins
		if int(pd.ins.Address/4) < len(prog.CodeWords) {
			prog.CodeWords[pd.ins.Address/4] = pd.ins.Encoding
		}
	}

	if len(p.errs) == 0 {
		return prog, nil
	}
	return prog, errors.Join(p.errs...)
}

func stripComment(raw string) string {
	if idx := strings.IndexByte(raw, ';'); idx >= 0 {
		return raw[:idx]
	}
	return raw
}

func (p *Parser) fail(lineNo int, format string, args ...any) {
	p.errs = append(p.errs, &Error{Line: lineNo, Message: fmt.Sprintf(format, args...)})
}

// parseLine recognizes a leading `.directive` that switches strategy,
// otherwise dispatches to whichever strategy is currently active.
func (p *Parser) parseLine(lineNo int, raw string) {
	l := &cursor{text: raw}
	l.skipSpace()
	if l.isEOL() {
		return
	}
	if l.peek() == '.' {
		start := l.pos
		word := l.readIdent()
		switch strings.ToUpper(word) {
		case ".DATA":
			p.strategy = dirData
			return
		case ".CODE", ".TEXT":
			p.strategy = dirCode
			return
		}
		if p.strategy == dirData {
			// An unlabeled data line: the directive is a data type.
			l.pos = start
			p.parseDataLine(lineNo, l)
			return
		}
		p.fail(lineNo, "unknown directive %s", word)
		return
	}

	switch p.strategy {
	case dirData:
		p.parseDataLine(lineNo, l)
	case dirCode:
		p.parseCodeLine(lineNo, l)
	default:
		p.fail(lineNo, "statement outside .data/.code: %q", strings.TrimSpace(raw))
	}
}

// resolveAndPack is the parser's second pass (SPEC_FULL.md §4.1): every
// label operand collected during pass one is now resolvable, so each
// pending instruction is packed into its final 32-bit encoding.
func (p *Parser) resolveAndPack() {
	for _, pd := range p.pending {
		in := pd.ins
		for i, op := range in.Operands {
			if op.Kind != isa.OperandLabel || op.Label == "" {
				continue
			}
			sym, ok := p.symbols.Lookup(op.Label)
			if !ok {
				p.fail(pd.lineNo, "undefined label %q", op.Label)
				continue
			}
			in.Operands[i].Imm = int64(sym.Address)
		}
		enc, err := isa.Pack(in)
		if err != nil {
			p.fail(pd.lineNo, "pack %s: %v", in.Name(), err)
			continue
		}
		in.Encoding = enc
	}
}
