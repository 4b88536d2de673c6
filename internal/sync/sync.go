// Package sync locates the leading and trailing calibration pulse trains
// in a decoded WAV payload: ten alternating pulse/silence segments at a
// known tone frequency, used to anchor the block layout in time.
//
// The two-pass coarse/fine search and the pulse-train state machine are
// ported from the original tool's sync.c (DetectPulseInternal,
// ProcessChunkForSyncPulse) almost line for line; only the manual malloc
// bookkeeping and the FFTW calls are replaced.
package sync

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/farcloser/mdfdiff/internal/blockfft"
	"github.com/farcloser/mdfdiff/internal/herrors"
	"github.com/farcloser/mdfdiff/internal/numerics"
	"github.com/farcloser/mdfdiff/internal/wavfile"
)

// expectedHz is the calibration tone frequency for a given pass factor.
// Index 0 is unused (factors run 1..9, but only 4 and 9 are used by the
// two-pass search).
var expectedHz = [10]float64{0, 8018.18, 8018.18, 8820, 8018.18, 9800, 5512.5, 6300, 7350, 8820}

const (
	coarseFactor = 4
	fineFactor   = 9

	toneThresholdDb = -30
	volumeGapDb     = 30
	pulsesRequired  = 10

	minPulseFactor = 14
	maxPulseFactor = 17

	defaultGapTolerance = 2
)

// Params configures the sync search.
type Params struct {
	Channel blockfft.Channel
	// GapTolerance is the maximum allowed index discontinuity within a
	// pulse or silence run before the state machine resets (DESIGN NOTE b).
	// Zero means defaultGapTolerance.
	GapTolerance int
}

func (p Params) gapTolerance() int {
	if p.GapTolerance == 0 {
		return defaultGapTolerance
	}

	return p.GapTolerance
}

// window is one coarse- or fine-grained analysis window's result.
type window struct {
	frameOffset int64
	hertz       float64
	amplitudeDb float64
}

// DetectLeadingPulse locates the leading pulse train and returns its start
// as a frame offset into the payload.
func DetectLeadingPulse(file *wavfile.File, params Params) (int64, error) {
	pos, err := detectPulseInternal(file, coarseFactor, 0, params)
	if err != nil {
		return 0, err
	}

	offset := backoff(pos, coarseFactor, file.Format.SampleRate)

	return detectPulseInternal(file, fineFactor, offset, params)
}

// DetectTrailingPulse locates the trailing pulse train, searching from the
// end of the layout's last Silence block plus the leading anchor.
func DetectTrailingPulse(file *wavfile.File, leadingOffsetFrames, lastSilenceByteOffset int64, params Params) (int64, error) {
	startFrame := leadingOffsetFrames + lastSilenceByteOffset/4

	pos, err := detectPulseInternal(file, coarseFactor, startFrame, params)
	if err != nil {
		return 0, err
	}

	offset := backoff(pos, coarseFactor, file.Format.SampleRate)

	return detectPulseInternal(file, fineFactor, offset, params)
}

// backoff steps back by two coarse windows, matching the source's
// "return 2 segments at ratio 4 above" adjustment, clamped at zero.
func backoff(posFrames int64, factor, samplesPerSec int) int64 {
	w := windowFrames(factor, samplesPerSec)

	back := posFrames - 2*w
	if back < 0 {
		return 0
	}

	return back
}

// windowFrames is W in frames: round4((samplesPerSec*4)/(1000*factor)) bytes,
// converted to frames (divide by 4).
func windowFrames(factor, samplesPerSec int) int64 {
	bytes := numerics.RoundUp4(float64(samplesPerSec) * 4 / (1000 * float64(factor)))

	return bytes / 4
}

func detectPulseInternal(file *wavfile.File, factor int, startFrame int64, params Params) (int64, error) {
	w := windowFrames(factor, file.Format.SampleRate)
	if w <= 0 {
		return 0, fmt.Errorf("%w: zero-length sync window", herrors.ErrNoSyncFound)
	}

	totalFrames := int64(file.Frames())

	windows := make([]window, 0, (totalFrames-startFrame)/w+1)

	fft := fourier.NewFFT(int(w))
	maxMag := 0.0

	type raw struct {
		frameOffset int64
		hertz       float64
		magnitude   float64
	}

	var rawWindows []raw

	for pos := startFrame; pos+w <= totalFrames; pos += w {
		samples := blockfft.Frames(int(w), int(pos), int(totalFrames), params.Channel, file.Frame)

		coeffs := fft.Coefficients(nil, samples)

		hertz, mag := dominantBin(coeffs, float64(w)/float64(file.Format.SampleRate))
		if mag > maxMag {
			maxMag = mag
		}

		rawWindows = append(rawWindows, raw{frameOffset: pos, hertz: hertz, magnitude: mag})
	}

	for _, rw := range rawWindows {
		var db float64

		if maxMag > 0 && rw.hertz != 0 {
			db = 20 * math.Log10(rw.magnitude/maxMag)
		} else {
			db = -100
		}

		windows = append(windows, window{frameOffset: rw.frameOffset, hertz: rw.hertz, amplitudeDb: db})
	}

	return pulseStateMachine(windows, factor, params)
}

// dominantBin finds the bin of largest magnitude (skipping DC) and converts
// it to Hertz using the §4.5 bin-to-Hz formula, bin / seconds.
func dominantBin(coeffs []complex128, seconds float64) (hertz, magnitude float64) {
	n := float64(2 * (len(coeffs) - 1))
	if n <= 0 {
		n = 1
	}

	var maxMag, maxHz float64

	for i := 1; i < len(coeffs); i++ {
		re, im := real(coeffs[i]), imag(coeffs[i])
		mag := math.Sqrt(re*re+im*im) / math.Sqrt(n)

		if mag > maxMag {
			maxMag = mag
			maxHz = float64(i) / seconds
		}
	}

	return maxHz, maxMag
}

// pulseStateMachine runs the Idle/InPulse/InSilence/SequenceOpen state
// machine over one pass's windows and returns the frame offset of the
// sequence that reaches ten pulse/silence pairs.
func pulseStateMachine(windows []window, factor int, params Params) (int64, error) {
	gapTol := params.gapTolerance()
	expected := expectedHz[factor]

	var (
		insidePulse, insideSilence     int
		pulseStart, sequenceStart      int64
		lastPulseIdx, lastSilenceIdx   int
		lastPulseStart                 int64
		pulseDbSum, silenceDbSum       float64
		pulseCount                     int
		havePulseStart, haveLastPulse  bool
	)

	reset := func() {
		insidePulse, insideSilence = 0, 0
		pulseCount = 0
		sequenceStart = 0
		pulseDbSum, silenceDbSum = 0, 0
		havePulseStart, haveLastPulse = false, false
	}

	matchesTone := func(w window) bool {
		return w.amplitudeDb >= toneThresholdDb && math.Abs(w.hertz-expected) <= 2
	}

	for i, w := range windows {
		if matchesTone(w) {
			if insidePulse == 0 {
				pulseStart = w.frameOffset
				pulseDbSum, silenceDbSum = 0, 0
				insideSilence = 0
				haveLastPulse = false
			}

			if !havePulseStart {
				sequenceStart = pulseStart
				havePulseStart = true
			}

			if haveLastPulse && i > lastPulseIdx+gapTol {
				reset()

				continue
			}

			insidePulse++
			lastPulseIdx = i
			haveLastPulse = true
			pulseDbSum += w.amplitudeDb

			if insidePulse > maxPulseFactor*factor {
				reset()
			}

			continue
		}

		// non-match
		if insidePulse < minPulseFactor*factor {
			if insidePulse > maxPulseFactor*factor || insideSilence > maxPulseFactor*factor {
				reset()
			}

			continue
		}

		if insideSilence > 0 && i > lastSilenceIdx+gapTol {
			reset()

			continue
		}

		insideSilence++
		lastSilenceIdx = i
		silenceDbSum += w.amplitudeDb

		if pulseStart != lastPulseStart && insideSilence >= minPulseFactor*factor {
			pulseDb := pulseDbSum / float64(insidePulse)
			silenceDb := silenceDbSum / float64(insideSilence)

			if math.Abs(silenceDb)-math.Abs(pulseDb) >= volumeGapDb {
				pulseCount++
				lastPulseStart = pulseStart

				if pulseCount == pulsesRequired {
					return sequenceStart, nil
				}
			} else {
				pulseCount = 0
				sequenceStart = 0
			}

			insideSilence = 0
			insidePulse = 0
		}

		if insideSilence > maxPulseFactor*factor {
			reset()
		}
	}

	return -1, herrors.ErrNoSyncFound
}
