// Package diagnostics runs advisory, non-fatal sanity checks over a decoded
// WAV payload before/alongside the core pipeline: DC offset, sample
// clipping, stereo correlation, and silence-floor validation. None of
// these gate or change the pipeline's numeric output (§1, §12); they only
// produce human-readable warnings a caller may choose to surface.
//
// Adapted from the teacher's internal/audit/{dcoffset,clipping,stereo,
// silence} packages, rewritten to operate directly on an in-memory
// wavfile.File instead of streaming from an io.Reader, since §4.2 loads
// the whole payload into memory up front.
package diagnostics

import (
	"fmt"
	"math"

	"github.com/farcloser/mdfdiff/internal/wavfile"
)

const (
	max16 = 1<<15 - 1
	min16 = -1 << 15

	clipRunThreshold = 2

	dcOffsetWarnDb = -45.0

	correlationWarnThreshold = 0.0 // below this, channels are likely out of phase

	silenceFloorWarnDb = -40.0 // RMS above this inside a nominal Silence block is suspicious
)

// Run evaluates every check over the full payload and returns human-
// readable warning strings, one per finding. An empty slice means clean.
// silenceStart/silenceFrames describe the layout's first Silence block in
// frame coordinates; pass silenceFrames == 0 to skip that check (e.g. no
// Silence block, or sync detection failed).
func Run(file *wavfile.File, silenceStart, silenceFrames int) []string {
	var warnings []string

	if w := checkDCOffset(file); w != "" {
		warnings = append(warnings, w)
	}

	if w := checkClipping(file); w != "" {
		warnings = append(warnings, w)
	}

	if w := checkStereoCorrelation(file); w != "" {
		warnings = append(warnings, w)
	}

	if silenceFrames > 0 {
		if w := checkSilenceFloor(file, silenceStart, silenceFrames); w != "" {
			warnings = append(warnings, w)
		}
	}

	return warnings
}

// checkSilenceFloor measures the RMS level of the layout's first Silence
// block; a level louder than silenceFloorWarnDb suggests the sync anchor
// is misaligned or the recording has audible noise where the pattern
// expects quiet.
func checkSilenceFloor(file *wavfile.File, start, frames int) string {
	total := file.Frames()

	end := start + frames
	if end > total {
		end = total
	}

	if start < 0 || start >= end {
		return ""
	}

	var sumSq float64

	count := 0

	for i := start; i < end; i++ {
		l, r := file.Frame(i)
		mono := (float64(l) + float64(r)) / 2 / 32768.0
		sumSq += mono * mono
		count++
	}

	if count == 0 {
		return ""
	}

	rms := math.Sqrt(sumSq / float64(count))
	if rms == 0 {
		return ""
	}

	db := 20 * math.Log10(rms)
	if db > silenceFloorWarnDb {
		return fmt.Sprintf("silence block RMS is %.1f dB, louder than expected: check sync alignment", db)
	}

	return ""
}

func checkDCOffset(file *wavfile.File) string {
	n := file.Frames()
	if n == 0 {
		return ""
	}

	var sumL, sumR float64

	for i := 0; i < n; i++ {
		l, r := file.Frame(i)
		sumL += float64(l)
		sumR += float64(r)
	}

	meanL := sumL / float64(n) / 32768.0
	meanR := sumR / float64(n) / 32768.0

	offset := math.Max(math.Abs(meanL), math.Abs(meanR))
	if offset == 0 {
		return ""
	}

	db := 20 * math.Log10(offset)
	if db > dcOffsetWarnDb {
		return fmt.Sprintf("DC offset detected: %.1f dB, may bias bin-0 energy near calibration tones", db)
	}

	return ""
}

func checkClipping(file *wavfile.File) string {
	n := file.Frames()

	var events, longest int
	var runL, runR int

	flush := func(run int) {
		if run >= clipRunThreshold {
			events++
			if run > longest {
				longest = run
			}
		}
	}

	for i := 0; i < n; i++ {
		l, r := file.Frame(i)

		if l == max16 || l == min16 {
			runL++
		} else {
			flush(runL)
			runL = 0
		}

		if r == max16 || r == min16 {
			runR++
		} else {
			flush(runR)
			runR = 0
		}
	}

	flush(runL)
	flush(runR)

	if events == 0 {
		return ""
	}

	return fmt.Sprintf(
		"%d clipping run(s) detected (longest %d samples); clipped calibration pulses can confuse sync detection",
		events, longest,
	)
}

func checkStereoCorrelation(file *wavfile.File) string {
	n := file.Frames()
	if n == 0 {
		return ""
	}

	var sumL, sumR, sumLL, sumRR, sumLR float64

	for i := 0; i < n; i++ {
		l, r := file.Frame(i)
		fl, fr := float64(l), float64(r)

		sumL += fl
		sumR += fr
		sumLL += fl * fl
		sumRR += fr * fr
		sumLR += fl * fr
	}

	fn := float64(n)
	covar := sumLR/fn - (sumL/fn)*(sumR/fn)
	varL := sumLL/fn - (sumL/fn)*(sumL/fn)
	varR := sumRR/fn - (sumR/fn)*(sumR/fn)

	denom := math.Sqrt(varL * varR)
	if denom == 0 {
		return ""
	}

	correlation := covar / denom
	if correlation < correlationWarnThreshold {
		return fmt.Sprintf("left/right correlation %.3f is negative: channels may be out of phase", correlation)
	}

	return ""
}
