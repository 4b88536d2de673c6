package numerics_test

import (
	"math"
	"testing"

	"github.com/farcloser/mdfdiff/internal/numerics"
)

func TestRoundUp4IsAMultipleOf4(t *testing.T) {
	for _, x := range []float64{0, 1, 3, 4, 4.1, 7.99, 100, 100.5, 4096.2} {
		got := numerics.RoundUp4(x)
		if got%4 != 0 {
			t.Errorf("RoundUp4(%v) = %d, not a multiple of 4", x, got)
		}

		if float64(got) < x {
			t.Errorf("RoundUp4(%v) = %d, expected >= %v", x, got, x)
		}
	}
}

func TestRoundDown4IsAMultipleOf4(t *testing.T) {
	for _, x := range []float64{0, 1, 3, 4, 4.1, 7.99, 100, 100.5, 4096.2} {
		got := numerics.RoundDown4(x)
		if got%4 != 0 {
			t.Errorf("RoundDown4(%v) = %d, not a multiple of 4", x, got)
		}

		if float64(got) > x {
			t.Errorf("RoundDown4(%v) = %d, expected <= %v", x, got, x)
		}
	}
}

func TestRoundUp4ExactMultipleUnchanged(t *testing.T) {
	if got := numerics.RoundUp4(16); got != 16 {
		t.Errorf("RoundUp4(16) = %d, want 16", got)
	}
}

func TestRoundDown4ExactMultipleUnchanged(t *testing.T) {
	if got := numerics.RoundDown4(16); got != 16 {
		t.Errorf("RoundDown4(16) = %d, want 16", got)
	}
}

func TestRoundFloat(t *testing.T) {
	cases := []struct {
		x    float64
		p    int
		want float64
	}{
		{0, 2, 0},
		{1.006, 2, 1.01},
		{-1.006, 2, -1.01},
		{3.14159, 4, 3.1416},
		{2.5, 0, 3},
		{-2.5, 0, -3},
	}

	for _, c := range cases {
		got := numerics.RoundFloat(c.x, c.p)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("RoundFloat(%v, %d) = %v, want %v", c.x, c.p, got, c.want)
		}
	}
}
