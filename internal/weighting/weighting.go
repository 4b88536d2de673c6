// Package weighting maps a signed closeness-to-floor value to a severity
// score in [0,1] via one of seven monotone curves (§4.8). Options 2-6 use
// the regularized incomplete beta function I_x(a,b), which is exactly what
// gonum's distuv.Beta.CDF computes — this avoids hand-rolling the
// continued-fraction incomplete beta the original tool implements itself.
package weighting

import "gonum.org/v1/gonum/stat/distuv"

// curveParams holds the (alpha, beta) shape for each incomplete-beta
// option, indexed by the option number from §4.8's table.
var curveParams = map[int][2]float64{
	2: {8, 8},
	3: {3, 1},
	4: {5, 0.5},
	5: {1, 3},
	6: {0.5, 6},
}

// Weight maps pError (clipped to [0,1]) to a severity score per option:
//
//	0: constant 1
//	1: identity
//	2-6: incomplete-beta(a,b), per curveParams
func Weight(pError float64, option int) float64 {
	if pError < 0 {
		pError = 0
	}

	if pError > 1 {
		pError = 1
	}

	switch option {
	case 0:
		return 1
	case 1:
		return pError
	default:
		ab, ok := curveParams[option]
		if !ok {
			return pError
		}

		dist := distuv.Beta{Alpha: ab[0], Beta: ab[1]}

		return dist.CDF(pError)
	}
}

// PError computes the "closeness to the significant-volume floor" used as
// Weight's input: (|floor| - |peakDb|) / |floor|, clipped to [0,1].
func PError(floorDb, peakDb float64) float64 {
	if floorDb == 0 {
		return 0
	}

	absFloor := floorDb
	if absFloor < 0 {
		absFloor = -absFloor
	}

	absPeak := peakDb
	if absPeak < 0 {
		absPeak = -absPeak
	}

	p := (absFloor - absPeak) / absFloor

	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
