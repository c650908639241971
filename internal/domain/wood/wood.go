// Package wood models lumber quality measurements used as k-NN features.
package wood

import "math"

// Properties holds the measured defects of a wood sample.
type Properties struct {
	CrackLength  float64
	KnotDiameter float64
}

// New creates a measurement.
func New(crackLength, knotDiameter float64) Properties {
	return Properties{CrackLength: crackLength, KnotDiameter: knotDiameter}
}

// Distance returns the Euclidean distance between two measurements.
func Distance(a, b Properties) float64 {
	dc := b.CrackLength - a.CrackLength
	dk := b.KnotDiameter - a.KnotDiameter
	return math.Sqrt(dc*dc + dk*dk)
}

// Features returns the measurement as a feature slice (crack, knot).
func (p Properties) Features() []float64 {
	return []float64{p.CrackLength, p.KnotDiameter}
}
