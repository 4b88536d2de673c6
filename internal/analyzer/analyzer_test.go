package analyzer_test

import (
	"math"
	"testing"

	"github.com/farcloser/mdfdiff/internal/analyzer"
	"github.com/farcloser/mdfdiff/internal/types"
)

func TestIsCRTNoiseBoundary(t *testing.T) {
	cases := []struct {
		hz   float64
		want bool
	}{
		{15619.9, false},
		{15620.0, true},
		{15665.0, true},
		{15710.0, true},
		{15710.1, false},
	}

	for _, c := range cases {
		if got := analyzer.IsCRTNoise(c.hz); got != c.want {
			t.Errorf("IsCRTNoise(%v) = %v, want %v", c.hz, got, c.want)
		}
	}
}

func TestAnalyzePeaksSortedDescendingByMagnitude(t *testing.T) {
	const sampleRate = 44100
	const n = 1024

	samples := make([]float64, n)
	for i := range samples {
		// A mixture of two tones so more than one bin has real energy.
		sec := float64(i) / float64(sampleRate)
		samples[i] = math.Sin(2*math.Pi*1000*sec) + 0.3*math.Sin(2*math.Pi*3000*sec)
	}

	planner := analyzer.NewPlanner()

	result := analyzer.Analyze(samples, sampleRate, planner, analyzer.Params{
		StartHz: 20,
		EndHz:   20000,
		MaxFreq: 16,
	})

	for i := 1; i < len(result.Peaks); i++ {
		if result.Peaks[i].Magnitude > result.Peaks[i-1].Magnitude {
			t.Fatalf("peaks not sorted descending at index %d: %v > %v",
				i, result.Peaks[i].Magnitude, result.Peaks[i-1].Magnitude)
		}
	}

	if result.Peaks[0].Magnitude <= 0 {
		t.Fatalf("expected a nonzero strongest peak, got %v", result.Peaks[0].Magnitude)
	}
}

func TestAnalyzeStrongestPeakMatchesPureToneFrequency(t *testing.T) {
	const sampleRate = 44100
	const n = 4410 // exactly 100 cycles of 1kHz, so the tone lands on a bin

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / sampleRate)
	}

	planner := analyzer.NewPlanner()

	result := analyzer.Analyze(samples, sampleRate, planner, analyzer.Params{
		StartHz: 20,
		EndHz:   20000,
		MaxFreq: 8,
	})

	if math.Abs(result.Peaks[0].Hertz-1000) > 1 {
		t.Fatalf("expected strongest peak near 1000Hz, got %v", result.Peaks[0].Hertz)
	}
}

func TestCompressMergesNearbyPeaks(t *testing.T) {
	peaks := []types.Peak{
		{Hertz: 1000, Magnitude: 5},
		{Hertz: 1001, Magnitude: 2},
		{Hertz: 5000, Magnitude: 3},
	}

	merged := analyzer.Compress(peaks, 2.6)

	nonzero := 0

	var total float64

	for _, p := range merged {
		if p.Hertz != 0 {
			nonzero++
			total += p.Magnitude
		}
	}

	if nonzero != 2 {
		t.Fatalf("expected 2 surviving peaks after merge, got %d", nonzero)
	}

	if math.Abs(total-10) > 1e-9 {
		t.Fatalf("expected total magnitude conserved at 10, got %v", total)
	}
}
