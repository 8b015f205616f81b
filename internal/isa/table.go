package isa

import "strings"

// Table is the instruction factory keyed by mnemonic (for the parser's
// code strategy) and by opcode/funct (for decode). It is the systems
// rewrite of the source simulator's per-mnemonic dispatch: a closed set of
// Defs built once per NewTable call and shared, never copied, by every
// decoded Instruction.
type Table struct {
	byMnemonic map[string]*Def
	byEncoding map[uint32]*Def // key: op<<6 | funct for R/FP-arith, op<<6 for everything else except control, which is not keyed here
}

func NewTable() *Table {
	t := &Table{
		byMnemonic: make(map[string]*Def),
		byEncoding: make(map[uint32]*Def),
	}
	for _, d := range defaultDefs() {
		t.register(d)
	}
	return t
}

func (t *Table) register(d *Def) {
	t.byMnemonic[strings.ToUpper(d.Mnemonic)] = d
	if d.Family == FamilyControl {
		// Decode recognizes the fixed control encodings before any table
		// lookup; keyed here they would all land on key 0 and replace ADD.
		return
	}
	key := d.Opcode << 6
	if d.Family == FamilyALURType || d.Family == FamilyFPArith {
		key |= d.Funct
	}
	t.byEncoding[key] = d
}

// Lookup finds a Def by mnemonic, used by the parser's code strategy.
func (t *Table) Lookup(mnemonic string) (*Def, bool) {
	return t.lookupMnemonic(mnemonic)
}

func (t *Table) lookupMnemonic(mnemonic string) (*Def, bool) {
	d, ok := t.byMnemonic[strings.ToUpper(mnemonic)]
	return d, ok
}

func (t *Table) lookup(op, funct uint32) (*Def, bool) {
	d, ok := t.byEncoding[op<<6|funct]
	if ok {
		return d, true
	}
	d, ok = t.byEncoding[op<<6]
	return d, ok
}
