// Package match implements the Matcher (§4.7): for every block, it pairs
// peaks of a reference signal with peaks of a test signal and produces
// per-block amplitude and missing-frequency differences.
package match

import (
	"math"

	"github.com/farcloser/mdfdiff/internal/types"
)

// Params bounds the matching tolerance.
type Params struct {
	HzWidth   float64
	Tolerance float64 // dB; |diffDb| must exceed this to be reported
}

// Compare matches reference against test block by block. Both signals must
// already have MatchedIndex cleared (normalize.ClearMatched) and be
// normalized. Reference and test must have the same block count.
func Compare(reference, test *types.Signal, params Params) types.Differences {
	diffs := types.Differences{
		Blocks: make([]types.BlockDifferences, len(reference.Blocks)),
	}

	for b := range reference.Blocks {
		if b >= len(test.Blocks) {
			break
		}

		diffs.Blocks[b] = compareBlock(&reference.Blocks[b], &test.Blocks[b], params)
	}

	return diffs
}

func compareBlock(ref, test *types.BlockResult, params Params) types.BlockDifferences {
	var out types.BlockDifferences

	refEnd := ref.FirstZeroHertz()

	for i := 0; i < refEnd; i++ {
		r := &ref.Peaks[i]

		j := bestMatch(test.Peaks, r.Hertz, params.HzWidth)
		if j < 0 {
			out.MissingFreqs = append(out.MissingFreqs, types.MissingFrequency{
				Hertz: r.Hertz,
				Db:    r.AmplitudeDb,
			})

			continue
		}

		t := &test.Peaks[j]

		r.MatchedIndex = j + 1
		t.MatchedIndex = i + 1

		diffDb := r.AmplitudeDb - t.AmplitudeDb
		if math.Abs(diffDb) > params.Tolerance {
			out.AmplDiffs = append(out.AmplDiffs, types.AmplitudeDifference{
				Hertz:  r.Hertz,
				RefDb:  r.AmplitudeDb,
				DiffDb: diffDb,
			})
		}
	}

	return out
}

// bestMatch finds the unmatched test peak whose Hertz is closest to hz,
// within hzWidth, breaking ties in favour of the larger magnitude. Returns
// -1 if no candidate qualifies.
func bestMatch(testPeaks []types.Peak, hz, hzWidth float64) int {
	best := -1
	bestDelta := math.MaxFloat64

	for j := range testPeaks {
		t := &testPeaks[j]
		if t.Hertz == 0 {
			break
		}

		if t.MatchedIndex != 0 {
			continue
		}

		delta := math.Abs(hz - t.Hertz)
		if delta > hzWidth {
			continue
		}

		switch {
		case delta < bestDelta:
			best = j
			bestDelta = delta
		case delta == bestDelta && best >= 0 && t.Magnitude > testPeaks[best].Magnitude:
			best = j
		}
	}

	return best
}
