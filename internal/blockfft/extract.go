package blockfft

import "github.com/farcloser/mdfdiff/internal/numerics"

// Channel selects which stereo channel(s) feed the mono downmix used by
// every FFT pass (sync search, block analysis): left, right, or the
// averaged sum.
type Channel int

const (
	ChannelLeft Channel = iota
	ChannelRight
	ChannelSum
)

// Mono downmixes a stereo frame according to policy.
func Mono(left, right int16, ch Channel) float64 {
	switch ch {
	case ChannelLeft:
		return float64(left)
	case ChannelRight:
		return float64(right)
	case ChannelSum:
		return (float64(left) + float64(right)) / 2
	default:
		return (float64(left) + float64(right)) / 2
	}
}

// Frames reads frameCount mono-downmixed samples starting at frame offset
// startFrame, via the supplied frame accessor (wavfile.File.Frame). Frames
// beyond the available range are treated as silence (zero), matching the
// source tool's tolerance for a pattern that runs slightly past EOF.
func Frames(frameCount int, startFrame, totalFrames int, ch Channel, frame func(int) (int16, int16)) []float64 {
	out := make([]float64, frameCount)

	for i := 0; i < frameCount; i++ {
		idx := startFrame + i
		if idx < 0 || idx >= totalFrames {
			continue
		}

		l, r := frame(idx)
		out[i] = Mono(l, r, ch)
	}

	return out
}

// BlockStartFrame returns the starting sample-frame index of block k,
// anchored at leadingOffsetFrames, per §4.4: start(k) = leadingOffset +
// round4(elementTimeOffset(k) * samplesPerSec * 4) / bytesPerFrame.
func BlockStartFrame(leadingOffsetFrames int64, elementTimeOffsetSeconds float64, samplesPerSec int) int64 {
	byteOffset := numerics.RoundUp4(elementTimeOffsetSeconds * float64(samplesPerSec) * 4)

	return leadingOffsetFrames + byteOffset/4
}

// Apply multiplies samples in place by the window of matching length from
// the cache (a no-op when the cache is a None cache).
func Apply(samples []float64, cache *Cache) []float64 {
	w := cache.Get(len(samples))
	if w == nil {
		return samples
	}

	for i := range samples {
		samples[i] *= w[i]
	}

	return samples
}
