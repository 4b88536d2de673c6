package normalize_test

import (
	"math"
	"testing"

	"github.com/farcloser/mdfdiff/internal/normalize"
	"github.com/farcloser/mdfdiff/internal/types"
)

func signalWithMagnitudes(mags ...float64) *types.Signal {
	peaks := make([]types.Peak, len(mags))
	for i, m := range mags {
		peaks[i] = types.Peak{Hertz: float64(1000 + i), Magnitude: m}
	}

	return &types.Signal{Blocks: []types.BlockResult{{Peaks: peaks}}}
}

func TestApplyGlobalLoudestPeakIsZeroDb(t *testing.T) {
	signal := signalWithMagnitudes(10, 5, 2)

	normalize.ApplyGlobal(signal, normalize.Params{SignificantVolume: -100})

	got := signal.Blocks[0].Peaks[0].AmplitudeDb
	if math.Abs(got) > 1e-9 {
		t.Errorf("loudest peak's AmplitudeDb = %v, want 0", got)
	}
}

func TestApplyGlobalQuieterPeakIsNegative(t *testing.T) {
	signal := signalWithMagnitudes(10, 5)

	normalize.ApplyGlobal(signal, normalize.Params{SignificantVolume: -100})

	if db := signal.Blocks[0].Peaks[1].AmplitudeDb; db >= 0 {
		t.Errorf("quieter peak's AmplitudeDb = %v, want < 0", db)
	}
}

func TestApplyGlobalSilentSignalClampsToFloor(t *testing.T) {
	signal := signalWithMagnitudes(0, 0)

	normalize.ApplyGlobal(signal, normalize.Params{SignificantVolume: -123})

	for i, p := range signal.Blocks[0].Peaks {
		if p.AmplitudeDb != -123 {
			t.Errorf("peak %d AmplitudeDb = %v, want -123", i, p.AmplitudeDb)
		}

		if p.Magnitude != 0 {
			t.Errorf("peak %d Magnitude = %v, want 0", i, p.Magnitude)
		}
	}
}

func TestRelativeNormalizationPreservesInterSignalLoudness(t *testing.T) {
	reference := signalWithMagnitudes(10)
	test := signalWithMagnitudes(5)

	m := normalize.RelativeFirst(reference, normalize.Params{SignificantVolume: -100})
	normalize.RelativeSecond(test, m, normalize.Params{SignificantVolume: -100})

	refDb := reference.Blocks[0].Peaks[0].AmplitudeDb
	testDb := test.Blocks[0].Peaks[0].AmplitudeDb

	if math.Abs(refDb) > 1e-9 {
		t.Errorf("reference AmplitudeDb = %v, want 0 (it set M)", refDb)
	}

	// test's peak is half the reference's magnitude, i.e. -6.02dB relative to M.
	want := 20 * math.Log10(0.5)
	if math.Abs(testDb-want) > 0.05 {
		t.Errorf("test AmplitudeDb = %v, want approx %v", testDb, want)
	}
}

func TestApplyLocalNormalizesEachBlockIndependently(t *testing.T) {
	signal := &types.Signal{
		Blocks: []types.BlockResult{
			{Peaks: []types.Peak{{Hertz: 1000, Magnitude: 10}}},
			{Peaks: []types.Peak{{Hertz: 2000, Magnitude: 1000}}},
		},
	}

	normalize.ApplyLocal(signal, normalize.Params{SignificantVolume: -100})

	for i, block := range signal.Blocks {
		if math.Abs(block.Peaks[0].AmplitudeDb) > 1e-9 {
			t.Errorf("block %d's sole peak AmplitudeDb = %v, want 0 (it is its own block maximum)",
				i, block.Peaks[0].AmplitudeDb)
		}
	}
}

func TestFindFloorSkipsCRTNoiseBins(t *testing.T) {
	signal := &types.Signal{
		Blocks: []types.BlockResult{
			{Peaks: []types.Peak{
				{Hertz: 15650, AmplitudeDb: -10}, // CRT noise band, must be skipped
				{Hertz: 1000, AmplitudeDb: -40},
				{Hertz: 0},
			}},
		},
	}

	normalize.FindFloor(signal, 0)

	if !signal.HasFloor {
		t.Fatal("expected HasFloor = true")
	}

	if signal.FloorHz != 1000 {
		t.Errorf("FloorHz = %v, want 1000 (first non-CRT peak)", signal.FloorHz)
	}
}

func TestFindFloorOutOfRangeIndexIsNoop(t *testing.T) {
	signal := &types.Signal{Blocks: []types.BlockResult{{}}}

	normalize.FindFloor(signal, -1)

	if signal.HasFloor {
		t.Error("expected HasFloor to remain false for an out-of-range silence index")
	}
}

func TestClearMatchedResetsEveryPeak(t *testing.T) {
	signal := &types.Signal{
		Blocks: []types.BlockResult{
			{Peaks: []types.Peak{{MatchedIndex: 7}, {MatchedIndex: -3}}},
		},
	}

	normalize.ClearMatched(signal)

	for _, p := range signal.Blocks[0].Peaks {
		if p.MatchedIndex != 0 {
			t.Errorf("MatchedIndex = %v, want 0", p.MatchedIndex)
		}
	}
}
