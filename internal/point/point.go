// Package point defines the laser sample exchanged between a point
// generator callback and the Ether Dream streaming driver.
package point

// LaserPoint is one DAC sample: position plus colour/intensity channels.
//
// X and Y are advisory in [-1,1]; the channels are advisory in [0,1].
// Out-of-range values are never rejected here — they are clamped only at
// wire-encode time (see protocol.EncodeCoordinate/EncodeChannel).
type LaserPoint struct {
	X, Y           float64
	R, G, B        float64
	I              float64
	U1, U2         float64
}
