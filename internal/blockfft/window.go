// Package blockfft extracts a single block's sample window from a decoded
// WAV payload and applies one of the layout's window functions, caching the
// window coefficients by length so blocks sharing a duration reuse them.
package blockfft

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/dsp/window"
)

// Kind selects the window function applied before the FFT.
type Kind int

const (
	None Kind = iota
	Hann
	Hamming
	FlatTop
	Tukey
)

// tukeyAlpha is the fraction of the window tapered by a cosine lobe on each
// end, matching the common default used by MDFourier's tukeyWindow.
const tukeyAlpha = 0.5

// Cache holds precomputed window coefficients keyed by sample length, so
// every block of a given duration (the common case: all elements of one
// BlockType) reuses the same slice instead of recomputing cosines per
// block. Safe for concurrent use by the optional per-block worker pool.
type Cache struct {
	mu      sync.Mutex
	kind    Kind
	windows map[int][]float64
}

// NewCache returns a window cache for the given window Kind.
func NewCache(kind Kind) *Cache {
	return &Cache{kind: kind, windows: make(map[int][]float64)}
}

// Get returns the coefficients for length n, computing and storing them on
// first use. A None cache always returns nil (caller treats nil as "no-op
// multiply by 1").
func (c *Cache) Get(n int) []float64 {
	if c.kind == None || n <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if w, ok := c.windows[n]; ok {
		return w
	}

	w := makeWindow(c.kind, n)
	c.windows[n] = w

	return w
}

func makeWindow(kind Kind, n int) []float64 {
	seq := make([]float64, n)
	for i := range seq {
		seq[i] = 1
	}

	switch kind {
	case Hann:
		return window.Hann(seq)
	case Hamming:
		return window.Hamming(seq)
	case FlatTop:
		return window.FlatTop(seq)
	case Tukey:
		return tukeyWindow(n, tukeyAlpha)
	case None:
		return nil
	default:
		return nil
	}
}

// tukeyWindow is not offered by gonum.org/v1/gonum/dsp/window, so it is
// ported directly from the flat-middle, cosine-tapered-ends shape declared
// (but not bodied) by the original tool's windows.h.
func tukeyWindow(n int, alpha float64) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1

		return w
	}

	taper := alpha * float64(n-1) / 2

	for i := range w {
		x := float64(i)

		switch {
		case x < taper:
			w[i] = 0.5 * (1 + math.Cos(math.Pi*(x/taper-1)))
		case x > float64(n-1)-taper:
			w[i] = 0.5 * (1 + math.Cos(math.Pi*((x-float64(n-1))/taper+1)))
		default:
			w[i] = 1
		}
	}

	return w
}
