package blockfft_test

import (
	"math"
	"testing"

	"github.com/farcloser/mdfdiff/internal/blockfft"
)

func TestMonoDownmix(t *testing.T) {
	cases := []struct {
		left, right int16
		ch          blockfft.Channel
		want        float64
	}{
		{100, -50, blockfft.ChannelLeft, 100},
		{100, -50, blockfft.ChannelRight, -50},
		{100, -50, blockfft.ChannelSum, 25},
	}

	for _, c := range cases {
		if got := blockfft.Mono(c.left, c.right, c.ch); got != c.want {
			t.Errorf("Mono(%d, %d, %v) = %v, want %v", c.left, c.right, c.ch, got, c.want)
		}
	}
}

func TestFramesTreatsOutOfRangeAsSilence(t *testing.T) {
	frame := func(i int) (int16, int16) { return 10, 10 }

	samples := blockfft.Frames(5, 3, 5, blockfft.ChannelSum, frame)

	// indices 3,4 are in range (value 10); indices 5,6,7 are out of range (zero).
	want := []float64{10, 10, 0, 0, 0}
	for i, w := range want {
		if samples[i] != w {
			t.Errorf("samples[%d] = %v, want %v", i, samples[i], w)
		}
	}
}

func TestBlockStartFrameIsByteAligned(t *testing.T) {
	got := blockfft.BlockStartFrame(1000, 0.5, 44100)

	// 0.5s * 44100 * 4 bytes = 88200 bytes, already a multiple of 4.
	want := int64(1000) + 88200/4
	if got != want {
		t.Errorf("BlockStartFrame = %d, want %d", got, want)
	}
}

func TestApplyWithNoneWindowIsIdentity(t *testing.T) {
	cache := blockfft.NewCache(blockfft.None)
	samples := []float64{1, 2, 3}

	got := blockfft.Apply(samples, cache)

	for i, v := range []float64{1, 2, 3} {
		if got[i] != v {
			t.Errorf("Apply(None) changed samples[%d] to %v, want %v", i, got[i], v)
		}
	}
}

func TestApplyWithHannTapersEdgesToZero(t *testing.T) {
	cache := blockfft.NewCache(blockfft.Hann)
	samples := make([]float64, 8)

	for i := range samples {
		samples[i] = 1
	}

	got := blockfft.Apply(samples, cache)

	if math.Abs(got[0]) > 1e-9 {
		t.Errorf("Hann-windowed first sample = %v, want ~0", got[0])
	}
}

func TestWindowCacheReusesCoefficientsByLength(t *testing.T) {
	cache := blockfft.NewCache(blockfft.Hamming)

	a := cache.Get(16)
	b := cache.Get(16)

	if len(a) != 16 || len(b) != 16 {
		t.Fatalf("expected length-16 windows, got %d and %d", len(a), len(b))
	}

	for i := range a {
		if a[i] != b[i] {
			t.Errorf("cached window coefficients differ at %d: %v != %v", i, a[i], b[i])
		}
	}
}
