package sync

import "testing"

func TestWindowFramesIsPositiveAndDecreasesWithFactor(t *testing.T) {
	coarse := windowFrames(coarseFactor, 44100)
	fine := windowFrames(fineFactor, 44100)

	if coarse <= 0 || fine <= 0 {
		t.Fatalf("windowFrames must be positive, got coarse=%d fine=%d", coarse, fine)
	}

	if fine >= coarse {
		t.Errorf("a higher factor should narrow the window: fine=%d, coarse=%d", fine, coarse)
	}
}

func TestBackoffStepsBackTwoWindows(t *testing.T) {
	samplesPerSec := 44100
	w := windowFrames(coarseFactor, samplesPerSec)

	pos := 10 * w

	got := backoff(pos, coarseFactor, samplesPerSec)
	want := pos - 2*w

	if got != want {
		t.Errorf("backoff(%d) = %d, want %d", pos, got, want)
	}
}

func TestBackoffClampsAtZero(t *testing.T) {
	samplesPerSec := 44100

	got := backoff(0, coarseFactor, samplesPerSec)
	if got != 0 {
		t.Errorf("backoff(0) = %d, want 0 (clamped)", got)
	}
}

func TestDominantBinFindsStrongestFrequency(t *testing.T) {
	// Two bins: bin 2 weak, bin 5 strong; seconds chosen so bin/seconds is
	// a clean, checkable frequency.
	coeffs := make([]complex128, 9)
	coeffs[2] = complex(1, 0)
	coeffs[5] = complex(10, 0)

	seconds := 0.01 // bin 5 -> 500Hz

	hz, mag := dominantBin(coeffs, seconds)

	if hz != 500 {
		t.Errorf("dominantBin hertz = %v, want 500", hz)
	}

	if mag <= 0 {
		t.Errorf("dominantBin magnitude = %v, want > 0", mag)
	}
}
