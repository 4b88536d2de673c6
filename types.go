// Package mdfdiff is the consumer-facing surface of the signal analysis
// pipeline: it loads a layout and a WAV recording, anchors the recording
// in time against a calibration pulse train, analyzes the frequency
// content of every block, and compares two analyzed signals. See
// SPEC_FULL.md §6 for the external-interface contract this package
// implements (analyze/compare/iterateBlocks).
package mdfdiff

import (
	"github.com/farcloser/mdfdiff/internal/blockfft"
	"github.com/farcloser/mdfdiff/internal/normalize"
)

// Params are the §6 parameters recognized by analyze/compare.
type Params struct {
	Channel   blockfft.Channel
	Window    blockfft.Kind
	Normalize normalize.Policy

	StartHz float64
	EndHz   float64
	MaxFreq int
	HzWidth float64

	Tolerance         float64 // dB
	SignificantVolume float64 // dB, negative

	OutputFilterFunction int // 0..6, §4.8

	// SyncGapTolerance is the sync state machine's discontinuity tolerance
	// (Open Question b); zero means the package default (2).
	SyncGapTolerance int

	// RetainSpectrum keeps each block's raw FFT coefficients on the Signal.
	RetainSpectrum bool

	// RunDiagnostics runs the advisory pre-flight checks of
	// internal/diagnostics and attaches their findings to Signal.Warnings.
	RunDiagnostics bool

	// Workers bounds the per-block analysis worker pool (§5). Zero or one
	// runs blocks sequentially on the calling goroutine; analysis is
	// embarrassingly parallel per block, so values above one fan the block
	// loop out over an errgroup.
	Workers int
}

// DefaultParams returns the parameter set used by the original tool's own
// defaults: stereo sum downmix, Hann window, global normalization, the
// full audible range, 2000 tracked peaks per block, a 2.6 Hz matching
// width, 3 dB tolerance, -100 dB significant volume floor, and the
// symmetric incomplete-beta(8,8) severity curve.
func DefaultParams() Params {
	return Params{
		Channel:              blockfft.ChannelSum,
		Window:               blockfft.Hann,
		Normalize:            normalize.PolicyGlobal,
		StartHz:              20,
		EndHz:                20000,
		MaxFreq:              2000,
		HzWidth:              2.6,
		Tolerance:            3,
		SignificantVolume:    -100,
		OutputFilterFunction: 2,
	}
}
