// Package analyzer implements the per-block Frequency Analyzer (§4.5): a
// real-to-complex DFT over one block's windowed samples, conversion of
// bins in the operator's scan range to (hertz, magnitude, phase), CRT-noise
// rejection, and top-K peak-picking by magnitude.
package analyzer

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/farcloser/mdfdiff/internal/numerics"
	"github.com/farcloser/mdfdiff/internal/types"
)

// crtNoiseLow and crtNoiseHigh bound the CRT horizontal-line noise band,
// ported verbatim from the original tool's freq.c IsCRTNoise.
const (
	crtNoiseLow  = 15620.0
	crtNoiseHigh = 15710.0
)

// IsCRTNoise reports whether hz falls in the CRT horizontal-line noise band.
func IsCRTNoise(hz float64) bool {
	return hz >= crtNoiseLow && hz <= crtNoiseHigh
}

// Params configures a single block's analysis.
type Params struct {
	StartHz float64
	EndHz   float64
	MaxFreq int // K, the top-peak list length
	// RetainSpectrum keeps the raw complex coefficients on the result,
	// otherwise they are dropped once peaks are extracted.
	RetainSpectrum bool
}

// Planner caches gonum FFT plans by length N, since planning cost amortizes
// poorly if rebuilt per block (§5).
type Planner struct {
	mu    sync.Mutex
	plans map[int]*fourier.FFT
}

// NewPlanner returns an empty FFT plan cache.
func NewPlanner() *Planner {
	return &Planner{plans: make(map[int]*fourier.FFT)}
}

func (p *Planner) plan(n int) *fourier.FFT {
	p.mu.Lock()
	defer p.mu.Unlock()

	if f, ok := p.plans[n]; ok {
		return f
	}

	f := fourier.NewFFT(n)
	p.plans[n] = f

	return f
}

// Analyze runs the DFT over windowed (already multiplied by a window
// function) samples and returns a BlockResult with up to params.MaxFreq
// peaks, sorted by magnitude descending.
func Analyze(windowed []float64, samplesPerSec int, planner *Planner, params Params) types.BlockResult {
	n := len(windowed)
	seconds := float64(n) / float64(samplesPerSec)

	fft := planner.plan(n)
	coeffs := fft.Coefficients(nil, windowed)

	peaks := make([]types.Peak, params.MaxFreq)

	inserted := 0

	for i := 1; i < len(coeffs); i++ {
		hz := float64(i) / seconds
		if hz < params.StartHz || hz >= params.EndHz {
			continue
		}

		if IsCRTNoise(hz) {
			continue
		}

		re, im := real(coeffs[i]), imag(coeffs[i])
		magnitude := math.Sqrt(re*re+im*im) / math.Sqrt(float64(n))
		phase := math.Atan2(im, re) * 180 / math.Pi

		insertPeak(peaks, types.Peak{
			Hertz:     numerics.RoundFloat(hz, 2),
			Magnitude: magnitude,
			PhaseDeg:  phase,
		})
		inserted++
	}

	result := types.BlockResult{
		Peaks:       peaks,
		FFTSeconds:  seconds,
		FFTBinCount: len(coeffs),
	}

	if params.RetainSpectrum {
		result.Spectrum = coeffs
	}

	return result
}

// insertPeak inserts p into the magnitude-descending peaks array at its
// sorted position, dropping the smallest entry. peaks is fixed-length and
// pre-sorted; this performs the shift described in §4.5.5.
func insertPeak(peaks []types.Peak, p types.Peak) {
	if len(peaks) == 0 || p.Magnitude <= peaks[len(peaks)-1].Magnitude {
		return
	}

	j := len(peaks) - 1
	for j > 0 && peaks[j-1].Magnitude < p.Magnitude {
		peaks[j] = peaks[j-1]
		j--
	}

	peaks[j] = p
}

// Compress merges peaks whose Hertz are within hzWidth of each other (the
// lesser magnitude folded into the greater, the merged entry zeroed), then
// re-sorts by magnitude descending. Disabled by default; callers opt in.
func Compress(peaks []types.Peak, hzWidth float64) []types.Peak {
	for i := 0; i < len(peaks); i++ {
		if peaks[i].Hertz == 0 {
			continue
		}

		for j := i + 1; j < len(peaks); j++ {
			if peaks[j].Hertz == 0 {
				continue
			}

			if math.Abs(peaks[i].Hertz-peaks[j].Hertz) > hzWidth {
				continue
			}

			if peaks[i].Magnitude >= peaks[j].Magnitude {
				peaks[i].Magnitude += peaks[j].Magnitude
				peaks[j] = types.Peak{}
			} else {
				peaks[j].Magnitude += peaks[i].Magnitude
				peaks[i] = types.Peak{}
			}
		}
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Magnitude > peaks[j].Magnitude
	})

	return peaks
}
