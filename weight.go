package mdfdiff

import "github.com/farcloser/mdfdiff/internal/weighting"

// Severity maps a peak's dB level against a signal's noise floor to a
// [0,1] score via the configured weighting curve (§4.8). It is advisory
// colour-intensity metadata for the plot layer; it never changes the
// underlying difference.
func Severity(floorDb, peakDb float64, option int) float64 {
	return weighting.Weight(weighting.PError(floorDb, peakDb), option)
}
