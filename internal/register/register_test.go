package register

import "testing"

func TestR0Immune(t *testing.T) {
	f := New()
	r0 := f.GPRReg(0)
	if err := r0.SetWord(0xdeadbeef); err != nil {
		t.Fatalf("SetWord: %v", err)
	}
	if got := r0.Word(); got != 0 {
		t.Errorf("R0 = %x, want 0", got)
	}
	r0.Reserve()
	if got := r0.Writers(); got != 0 {
		t.Errorf("R0 writers = %d, want 0 (reserve is a no-op)", got)
	}
}

func TestWriteSemaphore(t *testing.T) {
	f := New()
	r1 := f.GPRReg(1)
	r1.Reserve()
	r1.Reserve()
	if got := r1.Writers(); got != 2 {
		t.Errorf("writers = %d, want 2", got)
	}
	r1.Retire()
	if got := r1.Writers(); got != 1 {
		t.Errorf("writers after one retire = %d, want 1", got)
	}
	r1.Retire()
	r1.Retire() // over-retire must not go negative
	if got := r1.Writers(); got != 0 {
		t.Errorf("writers after over-retire = %d, want 0", got)
	}
}

func TestWordRoundTrip(t *testing.T) {
	f := New()
	r2 := f.GPRReg(2)
	if err := r2.SetWord(0x0123456789abcdef); err != nil {
		t.Fatalf("SetWord: %v", err)
	}
	if got := r2.Word(); got != 0x0123456789abcdef {
		t.Errorf("Word = %x", got)
	}
}

func TestFPRWAWSemaphore(t *testing.T) {
	f := New()
	fp := f.FPRReg(3)
	fp.ReserveWAW()
	if fp.WAW() != 1 {
		t.Errorf("WAW = %d, want 1", fp.WAW())
	}
	fp.RetireWAW()
	if fp.WAW() != 0 {
		t.Errorf("WAW = %d, want 0", fp.WAW())
	}
}

func TestResetClearsZeroFlagOnlyForR0(t *testing.T) {
	f := New()
	f.GPRReg(5).SetWord(42)
	f.Reset()
	if f.GPRReg(5).Word() != 0 {
		t.Errorf("R5 after reset = %d, want 0", f.GPRReg(5).Word())
	}
	f.GPRReg(0).SetWord(99)
	if f.GPRReg(0).Word() != 0 {
		t.Errorf("R0 after reset still must read 0")
	}
}

func TestFCSRRaise(t *testing.T) {
	var fcsr FCSR
	fcsr.EnableDivByZero = true
	if !fcsr.RaiseDivByZero() {
		t.Errorf("RaiseDivByZero should report enabled")
	}
	if !fcsr.CauseDivByZero || !fcsr.FlagDivByZero {
		t.Errorf("cause/flag not set")
	}
	fcsr.SetCond(3, true)
	if !fcsr.Cond(3) {
		t.Errorf("condition code 3 not set")
	}
}
