package cycle

import "testing"

func TestStallCountsSum(t *testing.T) {
	s := StallCounts{RAW: 1, WAW: 2, StructuralDivider: 3, StructuralFPUnit: 4, StructuralEX: 5, StructuralMemory: 6}
	if got, want := s.Sum(), uint64(21); got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}
