// Package herrors collects the sentinel errors returned by the analysis
// pipeline. Every fallible component wraps one of these with fmt.Errorf and
// callers compare with errors.Is, never string matching.
package herrors

import "errors"

var (
	// ErrMalformedLayout is returned when a block-layout file fails to scan.
	ErrMalformedLayout = errors.New("malformed layout")
	// ErrUnsupportedVersion is returned when a layout declares version > 1.0.
	ErrUnsupportedVersion = errors.New("unsupported layout version")
	// ErrEmptyLayout is returned when a layout has zero types or zero chunks.
	ErrEmptyLayout = errors.New("empty layout")
	// ErrMalformedWav is returned when a WAV header fails RIFF/WAVE validation.
	ErrMalformedWav = errors.New("malformed wav")
	// ErrNoSyncFound is returned when the pulse-train state machine never
	// reaches a full sequence of ten pulses.
	ErrNoSyncFound = errors.New("no sync pulse train found")
	// ErrNoSilenceBlock is non-fatal: it disables floor detection only.
	ErrNoSilenceBlock = errors.New("layout has no silence block")
	// ErrFftPlanFailure is returned when an FFT plan cannot be built or reused.
	ErrFftPlanFailure = errors.New("fft plan failure")
	// ErrWriteFailure is returned when writing an output WAV fails.
	ErrWriteFailure = errors.New("write failure")
)
