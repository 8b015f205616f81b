package isa

// bubbleDef is the shared Def behind every Bubble value: every stage hook is
// the default no-op, Syntax is empty, Family is unused.
var bubbleDef = &Def{Mnemonic: "bubble"}

// Bubble is the distinguished no-op pipeline occupant of SPEC_FULL.md §3:
// its stage methods do nothing, and its presence in a slot counts as
// "filled but harmless" rather than Empty. There is exactly one Bubble
// value; slots compare against it by pointer identity.
var Bubble = &Instruction{Def: bubbleDef, Dest: -1}

// IsBubble reports whether in is the distinguished Bubble value.
func IsBubble(in *Instruction) bool { return in == Bubble }

// IsEmpty reports whether a pipeline slot holds nothing at all (nil),
// distinct from holding a Bubble.
func IsEmpty(in *Instruction) bool { return in == nil }
