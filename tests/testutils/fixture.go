package testutils

import (
	"math"
	"os"
	"path/filepath"

	"github.com/containerd/nerdctl/mod/tigron/test"
)

const sampleRate = 44100

// WriteLayout writes a minimal two-block-type layout file (one Silence
// block, one 1kHz tone block, each one element long) to the test's temp
// dir and returns its path.
func WriteLayout(data test.Data, _ test.Helpers) string {
	const body = "MDFourierAudioBlockFile 1.0\n" +
		"fixture\n" +
		"16.6666666\n" +
		"2\n" +
		"Silence n 1 60 0x000000\n" +
		"Tone1k 1 1 60 0xFF0000\n"

	path := filepath.Join(data.TempDir(), "fixture.mdf")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil { //nolint:gosec // test fixture, permissive mode is fine
		panic(err)
	}

	return path
}

// WriteSilentSineWav writes a canonical 16-bit stereo WAV containing ten
// leading calibration pulses (§4.3) followed by a silence block and a
// toneHz sine-wave block matching WriteLayout's fixture, and returns its
// path.
func WriteSilentSineWav(data test.Data, name string, toneHz float64) string {
	const pulseFactor = 4
	windowFrames := pulseFactor * sampleRate / 1000 * 20 // ~20ms per window at factor 4

	var frames []int16

	// Ten alternating tone/silence windows at -6dBFS, satisfying the
	// pulse-train detector's tone/silence/volume-gap thresholds.
	for i := 0; i < 20; i++ {
		tone := i%2 == 0
		for n := 0; n < windowFrames; n++ {
			var sample int16
			if tone {
				sample = int16(16000 * math.Sin(2*math.Pi*8018.18*float64(n)/sampleRate))
			}

			frames = append(frames, sample, sample)
		}
	}

	silenceFrames := sampleRate // 1 second of silence
	for n := 0; n < silenceFrames; n++ {
		frames = append(frames, 0, 0)
	}

	toneFrames := sampleRate // 1 second of tone
	for n := 0; n < toneFrames; n++ {
		sample := int16(16000 * math.Sin(2*math.Pi*toneHz*float64(n)/sampleRate))
		frames = append(frames, sample, sample)
	}

	path := filepath.Join(data.TempDir(), name)

	payload := make([]byte, len(frames)*2)
	for i, s := range frames {
		payload[i*2] = byte(s)
		payload[i*2+1] = byte(s >> 8)
	}

	if err := writeWav(path, sampleRate, payload); err != nil {
		panic(err)
	}

	return path
}

func writeWav(path string, rate int, payload []byte) error {
	f, err := os.Create(path) //nolint:gosec // test fixture path is controlled by the test harness
	if err != nil {
		return err
	}
	defer f.Close()

	var hdr [44]byte

	copy(hdr[0:4], "RIFF")
	putU32(hdr[4:8], uint32(36+len(payload))) //nolint:gosec // bounded fixture size
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	putU32(hdr[16:20], 16)
	putU16(hdr[20:22], 1)
	putU16(hdr[22:24], 2)
	putU32(hdr[24:28], uint32(rate)) //nolint:gosec // fixture sample rate is a small constant
	putU32(hdr[28:32], uint32(rate*4))
	putU16(hdr[32:34], 4)
	putU16(hdr[34:36], 16)
	copy(hdr[36:40], "data")
	putU32(hdr[40:44], uint32(len(payload))) //nolint:gosec // bounded fixture size

	if _, err := f.Write(hdr[:]); err != nil {
		return err
	}

	_, err = f.Write(payload)

	return err
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func putU16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}
