// Package normalize implements the three amplitude-normalization policies
// of §4.6 (global, relative, local) and noise-floor detection from a
// layout's Silence block.
package normalize

import (
	"math"

	"github.com/farcloser/mdfdiff/internal/analyzer"
	"github.com/farcloser/mdfdiff/internal/types"
)

// Policy selects how magnitudes are rescaled before being converted to dB.
type Policy int

const (
	// PolicyGlobal finds the maximum magnitude across every block and peak
	// of a single signal and rescales against it.
	PolicyGlobal Policy = iota
	// PolicyRelative rescales the second of two signals against the maximum
	// established by the first, preserving inter-signal loudness.
	PolicyRelative
	// PolicyLocal rescales each block independently against its own maximum.
	PolicyLocal
)

// Params bounds the dB floor used when the reference magnitude is zero
// (Open Question a).
type Params struct {
	SignificantVolume float64 // negative dB, e.g. -120
}

// ApplyGlobal rescales every peak in signal against the maximum magnitude
// found across all of its blocks: magnitude *= 100/M, amplitudeDb =
// round(20*log10(magnitude/M), 2). When M == 0 every amplitudeDb is
// clamped to params.SignificantVolume (Open Question a) and magnitudes are
// left at zero.
func ApplyGlobal(signal *types.Signal, params Params) {
	m := maxMagnitude(signal.Blocks)
	applyScale(signal.Blocks, m, params)
}

// RelativeFirst establishes M from the first signal of a comparison and
// returns it for use by RelativeSecond.
func RelativeFirst(signal *types.Signal, params Params) float64 {
	m := maxMagnitude(signal.Blocks)
	applyScale(signal.Blocks, m, params)

	return m
}

// RelativeSecond rescales signal against the M established by
// RelativeFirst, so the two signals remain comparable in absolute loudness.
func RelativeSecond(signal *types.Signal, m float64, params Params) {
	applyScale(signal.Blocks, m, params)
}

// ApplyLocal rescales each block of signal independently.
func ApplyLocal(signal *types.Signal, params Params) {
	for i := range signal.Blocks {
		m := maxMagnitude(signal.Blocks[i : i+1])
		applyScale(signal.Blocks[i:i+1], m, params)
	}
}

// Apply runs the named policy against signal. For PolicyRelative, callers
// must call RelativeFirst/RelativeSecond directly since it needs state
// shared across both signals of a comparison; Apply only supports
// PolicyGlobal and PolicyLocal, which are self-contained per signal.
func Apply(policy Policy, signal *types.Signal, params Params) {
	switch policy {
	case PolicyGlobal:
		ApplyGlobal(signal, params)
	case PolicyLocal:
		ApplyLocal(signal, params)
	case PolicyRelative:
		// PolicyRelative requires the paired signal's M; use RelativeFirst/Second.
	}
}

func maxMagnitude(blocks []types.BlockResult) float64 {
	var m float64

	for _, b := range blocks {
		for _, p := range b.Peaks {
			if p.Magnitude > m {
				m = p.Magnitude
			}
		}
	}

	return m
}

func applyScale(blocks []types.BlockResult, m float64, params Params) {
	for bi := range blocks {
		for pi := range blocks[bi].Peaks {
			p := &blocks[bi].Peaks[pi]

			if m == 0 {
				p.AmplitudeDb = params.SignificantVolume

				continue
			}

			p.Magnitude = p.Magnitude * 100 / m
			p.AmplitudeDb = round2(20 * math.Log10(p.Magnitude/100))
		}
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// FindFloor scans the block at firstSilenceIndex and records the first
// non-CRT peak as the noise floor. HasFloor is left false if the block has
// only CRT-noise bins or is out of range.
func FindFloor(signal *types.Signal, firstSilenceIndex int) {
	if firstSilenceIndex < 0 || firstSilenceIndex >= len(signal.Blocks) {
		return
	}

	for _, p := range signal.Blocks[firstSilenceIndex].Peaks {
		if p.Hertz == 0 {
			break
		}

		if analyzer.IsCRTNoise(p.Hertz) {
			continue
		}

		signal.HasFloor = true
		signal.FloorHz = p.Hertz
		signal.FloorDb = p.AmplitudeDb

		return
	}

	signal.HasFloor = false
}

// ClearMatched resets MatchedIndex on every peak of signal, a mandatory
// precondition of the Matcher (§4.7).
func ClearMatched(signal *types.Signal) {
	for bi := range signal.Blocks {
		for pi := range signal.Blocks[bi].Peaks {
			signal.Blocks[bi].Peaks[pi].MatchedIndex = 0
		}
	}
}
