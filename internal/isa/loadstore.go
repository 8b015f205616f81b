package isa

// Load/store family: operands are (rt, rs, imm16) for loads — rt is the
// destination — and (rt, rs, imm16) for stores where rt is instead a
// source (the value being stored). The effective address is computed in
// EX and the actual memory access happens in MEM; a misaligned or
// out-of-range address raises the matching synchronous exception rather
// than panicking (SPEC_FULL.md §7). Loads produce the one RAW hazard
// forwarding cannot cover (load-use), handled by Machine.LoadUseHazard in
// genericID, not here.

type loadWidth int

const (
	widthByte loadWidth = iota
	widthHalf
	widthWord
	widthDouble
)

func effectiveAddress(in *Instruction, base uint64) uint32 {
	imm, _ := operand(in.Operands, OperandImmediate, 0)
	off := int64(int16(imm.Imm))
	return uint32(int64(base) + off)
}

func loadEX(in *Instruction, m Machine) Outcome {
	in.TR[3] = uint64(effectiveAddress(in, in.TR[0]))
	return Ok()
}

func loadMEM(width loadWidth, unsigned, signExtendByte bool) Behavior {
	return func(in *Instruction, m Machine) Outcome {
		addr := uint32(in.TR[3])
		var value uint64
		var err error
		switch width {
		case widthByte:
			var b uint8
			b, err = m.ReadByte(addr)
			if unsigned {
				value = uint64(b)
			} else {
				value = uint64(int64(int8(b)))
			}
		case widthHalf:
			var h uint16
			h, err = m.ReadHalf(addr)
			if unsigned {
				value = uint64(h)
			} else {
				value = uint64(int64(int16(h)))
			}
		case widthWord:
			var w uint32
			w, err = m.ReadWord(addr)
			if unsigned {
				value = uint64(w)
			} else {
				value = uint64(int64(int32(w)))
			}
		case widthDouble:
			value, err = m.ReadDouble(addr)
		}
		if err != nil {
			return memoryException(err)
		}
		in.TR[0] = value
		return Ok()
	}
}

func storeMEM(width loadWidth) Behavior {
	return func(in *Instruction, m Machine) Outcome {
		addr := uint32(in.TR[3])
		var err error
		switch width {
		case widthByte:
			err = m.WriteByte(addr, uint8(in.TR[0]))
		case widthHalf:
			err = m.WriteHalf(addr, uint16(in.TR[0]))
		case widthWord:
			err = m.WriteWord(addr, uint32(in.TR[0]))
		case widthDouble:
			err = m.WriteDouble(addr, in.TR[0])
		}
		if err != nil {
			return memoryException(err)
		}
		return Ok()
	}
}

func memoryException(err error) Outcome {
	code := ExceptionAddressError
	if isNotAlignError(err) {
		code = ExceptionNotAlign
	}
	return Outcome{Kind: OutcomeSyncException, Code: code, Message: err.Error()}
}

// isNotAlignError avoids importing internal/memory (isa must stay leaf-most
// in the dependency order of SPEC_FULL.md §2); internal/memory's alignment
// errors wrap ErrNotAlign, whose text begins with this marker, and the cpu
// package's Machine adapter passes them through unchanged.
func isNotAlignError(err error) bool {
	return len(err.Error()) >= 9 && err.Error()[:9] == "not align"
}

func storeEX(in *Instruction, m Machine) Outcome {
	in.TR[3] = uint64(effectiveAddress(in, in.TR[1]))
	return Ok()
}

type lsSpec struct {
	mnemonic string
	width    loadWidth
	unsigned bool
	isStore  bool
}

var lsSpecs = []lsSpec{
	{"LB", widthByte, false, false},
	{"LBU", widthByte, true, false},
	{"LH", widthHalf, false, false},
	{"LHU", widthHalf, true, false},
	{"LW", widthWord, false, false},
	{"LWU", widthWord, true, false},
	{"LD", widthDouble, false, false},
	{"SB", widthByte, false, true},
	{"SH", widthHalf, false, true},
	{"SW", widthWord, false, true},
	{"SD", widthDouble, false, true},
}

func loadStoreDefs() []*Def {
	var defs []*Def
	opcode := uint32(0x20)
	for _, s := range lsSpecs {
		s := s
		opcode++
		if s.isStore {
			defs = append(defs, &Def{
				Mnemonic: s.mnemonic,
				Family:   FamilyLoadStore,
				Opcode:   opcode,
				Syntax:   "RRI",
				SrcGPR:   []int{0, 1}, // rt (value), rs (base)
				DestGPR:  -1,
				DestFPR:  -1,
				EX:       storeEX,
				MEM:      storeMEM(s.width),
			})
			continue
		}
		defs = append(defs, &Def{
			Mnemonic: s.mnemonic,
			Family:   FamilyLoadStore,
			Opcode:   opcode,
			Syntax:   "RRI",
			SrcGPR:   []int{1}, // rs (base)
			DestGPR:  0,        // rt
			DestFPR:  -1,
			EX:       loadEX,
			MEM:      loadMEM(s.width, s.unsigned, false),
			WB:       rrWB,
		})
	}
	return defs
}
