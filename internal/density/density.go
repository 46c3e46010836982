// Package density holds the closed-form curves fitted to observed lane
// traffic. They are evaluated over a grid to build the samplers in
// package distribution.
package density

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"maritime-simulator/internal/lane"
)

// Func is a density evaluated at a single point.
type Func func(x float64) float64

// Time is the inter-arrival density a·b^x.
func Time(x float64, p lane.Params) float64 {
	return p.A * math.Pow(p.B, x)
}

// Speed is a Gaussian scaled by C, zero for non-positive speeds.
func Speed(x float64, p lane.Params) float64 {
	if x <= 0 {
		return 0
	}
	n := distuv.Normal{Mu: p.Mu, Sigma: p.Sigma}
	return p.C * n.Prob(x)
}

// TimeFor binds Time to a lane's constants.
func TimeFor(p lane.Params) Func {
	return func(x float64) float64 { return Time(x, p) }
}

// SpeedFor binds Speed to a lane's constants.
func SpeedFor(p lane.Params) Func {
	return func(x float64) float64 { return Speed(x, p) }
}
