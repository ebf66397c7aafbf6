package board

import "testing"

func TestGatherMatchesPortable(t *testing.T) {
	active := ActiveGatherer()
	t.Logf("active gatherer: %s", active.Name())

	r := NewPRNG(42)
	for i := 0; i < 2000; i++ {
		x := r.Uint64()
		mask := r.Uint64() & r.Uint64()
		if i%4 == 0 {
			mask &= uint64(FieldMask)
		}
		if got, want := active.Extract(x, mask), Portable.Extract(x, mask); got != want {
			t.Fatalf("Extract(%x, %x) = %x, want %x", x, mask, got, want)
		}
		if got, want := active.Deposit(x, mask), Portable.Deposit(x, mask); got != want {
			t.Fatalf("Deposit(%x, %x) = %x, want %x", x, mask, got, want)
		}
	}
}

func TestPortableGather(t *testing.T) {
	tests := []struct {
		x, mask, extracted, deposited uint64
	}{
		{0b1011, 0b1010, 0b11, 0b1010},
		{0b0100, 0b1110, 0b10, 0b1000},
		{0xFF, 0, 0, 0},
		{0b1, 1 << 40, 0, 1 << 40},
	}
	for _, tc := range tests {
		if got := Portable.Extract(tc.x, tc.mask); got != tc.extracted {
			t.Errorf("Extract(%b, %b) = %b, want %b", tc.x, tc.mask, got, tc.extracted)
		}
		if got := Portable.Deposit(tc.x, tc.mask); got != tc.deposited {
			t.Errorf("Deposit(%b, %b) = %b, want %b", tc.x, tc.mask, got, tc.deposited)
		}
	}
}

func TestRays(t *testing.T) {
	c3 := NewSquare(2, 2)
	if got := Ray(c3, East).PopCount(); got != 3 {
		t.Errorf("east ray from c3 has %d cells, want 3", got)
	}
	if got := rayEnd[c3][NorthWest]; got != NewSquare(4, 0) {
		t.Errorf("north-west end from c3 = %s, want a5", got)
	}
	a1 := NewSquare(0, 0)
	if got := Ray(a1, West); got != SquareBB(a1) {
		t.Errorf("west ray from a1 = %x, want only a1", uint64(got))
	}
	if got := Neighborhood(a1).PopCount(); got != 4 {
		t.Errorf("corner neighbourhood has %d cells, want 4", got)
	}
	if got := Neighborhood(c3).PopCount(); got != 9 {
		t.Errorf("centre neighbourhood has %d cells, want 9", got)
	}
	for sq := Square(0); sq <= MaxBit; sq++ {
		if !sq.IsValid() {
			continue
		}
		for d := Direction(0); d < NumDirections; d++ {
			if Ray(sq, d)&^FieldMask != 0 {
				t.Fatalf("ray %s %s leaves the field", sq, d)
			}
		}
	}
}
