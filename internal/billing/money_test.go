package billing

import (
	"math"
	"testing"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		// 1.005 and 2.675 sit just below the half cent in binary and
		// round down
		{1.005, 1.0},
		{2.675, 2.67},
		{5999, 5999},
		{1234.5678, 1234.57},
		{0.004, 0},
		{0.005, 0.01},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Fatalf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRound2Idempotent(t *testing.T) {
	values := []float64{0, 0.1, 1.005, 99.999, 5999, 1234.5678, -12.345}
	for _, v := range values {
		once := Round2(v)
		if twice := Round2(once); twice != once {
			t.Fatalf("Round2 not idempotent for %v: %v != %v", v, twice, once)
		}
	}
}

func TestToNumberNonFinite(t *testing.T) {
	if got := ToNumber(math.NaN()); got != 0 {
		t.Fatalf("ToNumber(NaN) = %v, want 0", got)
	}
	if got := ToNumber(math.Inf(1)); got != 0 {
		t.Fatalf("ToNumber(+Inf) = %v, want 0", got)
	}
	if got := Round2(math.Inf(-1)); got != 0 {
		t.Fatalf("Round2(-Inf) = %v, want 0", got)
	}
}
