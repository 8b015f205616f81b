package parser

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/edumips64/sim/internal/memory"
)

// parseDataLine implements the data strategy of SPEC_FULL.md §4.1/§6:
// optional label, a data-type sub-directive, then comma-separated
// literals. Each type advances the data cursor by its natural alignment
// before writing, the way .data segments in real assemblers pad for
// alignment.
func (p *Parser) parseDataLine(lineNo int, l *cursor) {
	label, _ := l.peekLabel()
	if label != "" {
		l.skipSpace()
	}
	// The label's address is assigned after alignment below, once the
	// directive (and therefore the alignment) is known.
	p.parseDataDirective(lineNo, l, label)
}

func (p *Parser) parseDataDirective(lineNo int, l *cursor, label string) {
	l.skipSpace()
	if l.isEOL() {
		if label != "" {
			p.fail(lineNo, "label %q not followed by a data directive", label)
		}
		return
	}
	if l.peek() != '.' {
		p.fail(lineNo, "expected data directive, got %q", strings.TrimSpace(l.text[l.pos:]))
		return
	}
	directive := strings.ToUpper(l.readIdent())

	define := func(align uint32) {
		p.dataAddr = alignUp(p.dataAddr, align)
		if label != "" {
			if err := p.symbols.Define(label, p.dataAddr, memory.KindData); err != nil {
				p.fail(lineNo, "%v", err)
			}
		}
	}

	switch directive {
	case ".BYTE":
		define(1)
		p.readIntList(lineNo, l, 1)
	case ".WORD16":
		define(2)
		p.readIntList(lineNo, l, 2)
	case ".WORD32":
		define(4)
		p.readIntList(lineNo, l, 4)
	case ".WORD64", ".WORD":
		define(8)
		p.readIntList(lineNo, l, 8)
	case ".FLOAT":
		define(4)
		p.readFloatList(lineNo, l, 4)
	case ".DOUBLE":
		define(8)
		p.readFloatList(lineNo, l, 8)
	case ".ASCII":
		define(1)
		p.readStringLiteral(lineNo, l, false)
	case ".ASCIIZ":
		define(1)
		p.readStringLiteral(lineNo, l, true)
	case ".SPACE":
		define(1)
		n, ok := l.readNumber()
		if !ok || n < 0 {
			p.fail(lineNo, ".space: expected non-negative byte count")
			return
		}
		p.dataAddr += uint32(n) // memory.New zero-fills, nothing to write
	default:
		p.fail(lineNo, "unknown data directive %s", directive)
	}
}

func alignUp(addr, align uint32) uint32 {
	if align <= 1 {
		return addr
	}
	if rem := addr % align; rem != 0 {
		addr += align - rem
	}
	return addr
}

func (p *Parser) readIntList(lineNo int, l *cursor, width int) {
	first := true
	for {
		if !first && !l.expectComma() {
			break
		}
		l.skipSpace()
		v, ok := l.readNumber()
		if !ok {
			if first {
				p.fail(lineNo, "expected integer literal")
			}
			return
		}
		buf := make([]byte, width)
		switch width {
		case 1:
			buf[0] = byte(v)
		case 2:
			binary.BigEndian.PutUint16(buf, uint16(v))
		case 4:
			binary.BigEndian.PutUint32(buf, uint32(v))
		case 8:
			binary.BigEndian.PutUint64(buf, uint64(v))
		}
		if err := p.mem.WriteBytes(p.dataAddr, buf); err != nil {
			p.fail(lineNo, "%v", err)
			return
		}
		p.dataAddr += uint32(width)
		first = false
	}
}

func (p *Parser) readFloatList(lineNo int, l *cursor, width int) {
	first := true
	for {
		if !first && !l.expectComma() {
			break
		}
		l.skipSpace()
		f, ok := l.readFloat()
		if !ok {
			if first {
				p.fail(lineNo, "expected floating-point literal")
			}
			return
		}
		buf := make([]byte, width)
		if width == 4 {
			binary.BigEndian.PutUint32(buf, math.Float32bits(float32(f)))
		} else {
			binary.BigEndian.PutUint64(buf, math.Float64bits(f))
		}
		if err := p.mem.WriteBytes(p.dataAddr, buf); err != nil {
			p.fail(lineNo, "%v", err)
			return
		}
		p.dataAddr += uint32(width)
		first = false
	}
}

func (p *Parser) readStringLiteral(lineNo int, l *cursor, zeroTerminate bool) {
	l.skipSpace()
	s, ok := l.readQuotedString()
	if !ok {
		p.fail(lineNo, "expected quoted string literal")
		return
	}
	data := []byte(s)
	if zeroTerminate {
		data = append(data, 0)
	}
	if err := p.mem.WriteBytes(p.dataAddr, data); err != nil {
		p.fail(lineNo, "%v", err)
		return
	}
	p.dataAddr += uint32(len(data))
}
