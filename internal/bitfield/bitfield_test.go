package bitfield

import "testing"

func TestNewMasksValue(t *testing.T) {
	b, err := New(0xffffffffff, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Uint64() != 0xff {
		t.Errorf("got %x, want 0xff", b.Uint64())
	}
}

func TestNewRejectsBadLength(t *testing.T) {
	if _, err := New(0, 0); err != ErrIrregular {
		t.Errorf("len 0: got %v, want ErrIrregular", err)
	}
	if _, err := New(0, 65); err != ErrIrregular {
		t.Errorf("len 65: got %v, want ErrIrregular", err)
	}
}

func TestInt64SignExtension(t *testing.T) {
	b := MustNew(0xff, 8) // -1 in 8 bits
	if got := b.Int64(); got != -1 {
		t.Errorf("got %d, want -1", got)
	}
	b64 := MustNew(^uint64(0), 64)
	if got := b64.Int64(); got != -1 {
		t.Errorf("got %d, want -1", got)
	}
}

func TestSignExtend(t *testing.T) {
	b := MustNew(0xff, 8)
	ext, err := b.SignExtend(16)
	if err != nil {
		t.Fatalf("SignExtend: %v", err)
	}
	if ext.Uint64() != 0xffff {
		t.Errorf("got %x, want 0xffff", ext.Uint64())
	}
	if _, err := b.SignExtend(4); err != ErrIrregular {
		t.Errorf("shrink: got %v, want ErrIrregular", err)
	}
}

func TestZeroExtend(t *testing.T) {
	b := MustNew(0xff, 8)
	ext, err := b.ZeroExtend(16)
	if err != nil {
		t.Fatalf("ZeroExtend: %v", err)
	}
	if ext.Uint64() != 0x00ff {
		t.Errorf("got %x, want 0x00ff", ext.Uint64())
	}
}

func TestTruncate(t *testing.T) {
	b := MustNew(0x1234, 16)
	tr, err := b.Truncate(8)
	if err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if tr.Uint64() != 0x34 {
		t.Errorf("got %x, want 0x34", tr.Uint64())
	}
	if _, err := b.Truncate(32); err != ErrIrregular {
		t.Errorf("grow: got %v, want ErrIrregular", err)
	}
}

func TestFitsSigned(t *testing.T) {
	cases := []struct {
		v    int64
		bits uint
		want bool
	}{
		{127, 8, true},
		{128, 8, false},
		{-128, 8, true},
		{-129, 8, false},
	}
	for _, c := range cases {
		if got := FitsSigned(c.v, c.bits); got != c.want {
			t.Errorf("FitsSigned(%d, %d) = %v, want %v", c.v, c.bits, got, c.want)
		}
	}
}

func TestString(t *testing.T) {
	b := MustNew(0b1010, 4)
	if got := b.String(); got != "1010" {
		t.Errorf("got %q, want %q", got, "1010")
	}
}
