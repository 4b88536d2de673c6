// Package output serializes analysis and comparison results into the
// canonical map structure used for JSON and console rendering.
package output

import (
	"github.com/farcloser/mdfdiff/internal/types"
)

// SignalToMap converts one analyzed Signal into a map suitable for
// formatting, keyed by block index.
func SignalToMap(lay *types.Layout, signal *types.Signal) map[string]any {
	meta := map[string]any{
		"format": map[string]any{
			"sample_rate": signal.Format.SampleRate,
			"bit_depth":   int(signal.Format.BitDepth),
			"channels":    signal.Format.Channels,
		},
	}

	if signal.HasFloor {
		meta["floor"] = map[string]any{
			"hertz": signal.FloorHz,
			"db":    signal.FloorDb,
		}
	}

	if len(signal.Warnings) > 0 {
		meta["warnings"] = signal.Warnings
	}

	blocks := make([]any, 0, len(signal.Blocks))

	for i, block := range signal.Blocks {
		name := ""
		if lay != nil {
			name = lay.BlockName(i)
		}

		blocks = append(blocks, map[string]any{
			"index": i,
			"name":  name,
			"peaks": PeaksToSlice(block.Peaks),
		})
	}

	meta["blocks"] = blocks

	return meta
}

// PeaksToSlice converts a block's ranked peak list to plain maps, skipping
// the zero-filled tail (§3 invariant i).
func PeaksToSlice(peaks []types.Peak) []any {
	out := make([]any, 0, len(peaks))

	for _, p := range peaks {
		if p.Hertz == 0 {
			break
		}

		out = append(out, map[string]any{
			"hertz":        p.Hertz,
			"amplitude_db": p.AmplitudeDb,
			"phase_deg":    p.PhaseDeg,
		})
	}

	return out
}

// DifferencesToMap converts a Differences result into a map keyed by block,
// listing amplitude differences and missing frequencies per block.
func DifferencesToMap(lay *types.Layout, diffs types.Differences) map[string]any {
	blocks := make([]any, 0, len(diffs.Blocks))

	ampl, missing := 0, 0

	for i, bd := range diffs.Blocks {
		ampl += len(bd.AmplDiffs)
		missing += len(bd.MissingFreqs)

		name := ""
		if lay != nil {
			name = lay.BlockName(i)
		}

		blocks = append(blocks, map[string]any{
			"index":               i,
			"name":                name,
			"amplitude_diffs":     amplDiffsToSlice(bd.AmplDiffs),
			"missing_frequencies": missingFreqsToSlice(bd.MissingFreqs),
		})
	}

	return map[string]any{
		"summary": map[string]any{
			"amplitude_diff_count": ampl,
			"missing_freq_count":   missing,
		},
		"blocks": blocks,
	}
}

func amplDiffsToSlice(diffs []types.AmplitudeDifference) []any {
	out := make([]any, 0, len(diffs))

	for _, d := range diffs {
		out = append(out, map[string]any{
			"hertz":   d.Hertz,
			"ref_db":  d.RefDb,
			"diff_db": d.DiffDb,
		})
	}

	return out
}

func missingFreqsToSlice(freqs []types.MissingFrequency) []any {
	out := make([]any, 0, len(freqs))

	for _, f := range freqs {
		out = append(out, map[string]any{
			"hertz": f.Hertz,
			"db":    f.Db,
		})
	}

	return out
}
