package diagnostics_test

import (
	"strings"
	"testing"

	"github.com/farcloser/mdfdiff/internal/diagnostics"
	"github.com/farcloser/mdfdiff/internal/wavfile"
)

func wavOf(frames [][2]int16) *wavfile.File {
	payload := make([]byte, len(frames)*4)

	for i, f := range frames {
		l := uint16(f[0])
		r := uint16(f[1])
		payload[i*4] = byte(l)
		payload[i*4+1] = byte(l >> 8)
		payload[i*4+2] = byte(r)
		payload[i*4+3] = byte(r >> 8)
	}

	return &wavfile.File{Payload: payload}
}

func TestRunCleanSignalProducesNoWarnings(t *testing.T) {
	frames := make([][2]int16, 100)
	for i := range frames {
		v := int16(1000)
		if i%2 == 1 {
			v = -1000
		}

		frames[i] = [2]int16{v, v}
	}

	warnings := diagnostics.Run(wavOf(frames), 0, 0)
	if len(warnings) != 0 {
		t.Errorf("expected no warnings for a zero-mean, symmetric, unclipped signal, got %v", warnings)
	}
}

func TestRunDetectsClipping(t *testing.T) {
	frames := make([][2]int16, 20)
	for i := range frames {
		frames[i] = [2]int16{100, 100}
	}

	// A run of clipped samples at max positive value.
	for i := 5; i < 10; i++ {
		frames[i] = [2]int16{32767, 32767}
	}

	warnings := diagnostics.Run(wavOf(frames), 0, 0)

	found := false

	for _, w := range warnings {
		if strings.Contains(w, "clipping") {
			found = true
		}
	}

	if !found {
		t.Errorf("expected a clipping warning, got %v", warnings)
	}
}

func TestRunDetectsClippingRunAtEndOfFile(t *testing.T) {
	frames := make([][2]int16, 20)
	for i := range frames {
		frames[i] = [2]int16{100, 100}
	}

	// A clip run that is still open when the sample loop ends.
	for i := 15; i < 20; i++ {
		frames[i] = [2]int16{32767, 32767}
	}

	warnings := diagnostics.Run(wavOf(frames), 0, 0)

	found := false

	for _, w := range warnings {
		if strings.Contains(w, "clipping") {
			found = true
		}
	}

	if !found {
		t.Errorf("expected a clipping warning for a run still active at EOF, got %v", warnings)
	}
}

func TestRunDetectsDCOffset(t *testing.T) {
	frames := make([][2]int16, 100)
	for i := range frames {
		frames[i] = [2]int16{20000, 20000} // heavily biased positive, no zero crossings
	}

	warnings := diagnostics.Run(wavOf(frames), 0, 0)

	found := false

	for _, w := range warnings {
		if strings.Contains(w, "DC offset") {
			found = true
		}
	}

	if !found {
		t.Errorf("expected a DC offset warning, got %v", warnings)
	}
}

func TestRunSkipsSilenceFloorCheckWhenFramesIsZero(t *testing.T) {
	frames := make([][2]int16, 10)

	warnings := diagnostics.Run(wavOf(frames), 0, 0)

	for _, w := range warnings {
		if strings.Contains(w, "silence block") {
			t.Errorf("expected silence-floor check to be skipped when silenceFrames == 0, got %v", w)
		}
	}
}

func TestRunFlagsLoudSilenceBlock(t *testing.T) {
	frames := make([][2]int16, 100)
	for i := range frames {
		frames[i] = [2]int16{15000, 15000} // well above the -40dB silence-floor threshold
	}

	warnings := diagnostics.Run(wavOf(frames), 0, 100)

	found := false

	for _, w := range warnings {
		if strings.Contains(w, "silence block") {
			found = true
		}
	}

	if !found {
		t.Errorf("expected a silence-floor warning, got %v", warnings)
	}
}
