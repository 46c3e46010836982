// Package distribution implements inverse-transform sampling over a table
// of weighted points, and the builder that loads a lane density into such
// a table.
package distribution

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrInvalidDistribution = errors.New("invalid distribution")

// Source yields uniform draws in [0,1). *rngstream.RngStream satisfies it.
type Source interface {
	RandU01() float64
}

// Point is one step of the table: Value is returned once a uniform draw
// falls below Weight.
type Point struct {
	Value  float64
	Weight float64
}

// Empirical is a step function over cumulative weights. Weights are used
// as given; they are not normalised to end at 1.
type Empirical struct {
	points []Point
}

func NewEmpirical() *Empirical {
	return &Empirical{points: make([]Point, 0)}
}

// Add appends a step. Steps must be added in non-decreasing weight order.
func (e *Empirical) Add(value, cumulativeWeight float64) {
	e.points = append(e.points, Point{Value: value, Weight: cumulativeWeight})
}

func (e *Empirical) Len() int {
	return len(e.points)
}

func (e *Empirical) Points() []Point {
	result := make([]Point, len(e.points))
	copy(result, e.points)
	return result
}

func (e *Empirical) Validate() error {
	if len(e.points) < 2 {
		return fmt.Errorf("%w: %d points, need at least 2", ErrInvalidDistribution, len(e.points))
	}
	prev := 0.0
	for i, p := range e.points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return fmt.Errorf("%w: point %d has value %v", ErrInvalidDistribution, i, p.Value)
		}
		if math.IsNaN(p.Weight) || p.Weight < 0 {
			return fmt.Errorf("%w: point %d has weight %v", ErrInvalidDistribution, i, p.Weight)
		}
		if p.Weight < prev {
			return fmt.Errorf("%w: weight %v at point %d below previous %v",
				ErrInvalidDistribution, p.Weight, i, prev)
		}
		prev = p.Weight
	}
	return nil
}

// Sample draws u from src and returns the first value whose cumulative
// weight exceeds u. Draws at or above the last weight return the last
// value. An empty table yields NaN.
func (e *Empirical) Sample(src Source) float64 {
	if len(e.points) == 0 {
		return math.NaN()
	}
	u := src.RandU01()
	idx := sort.Search(len(e.points), func(i int) bool {
		return e.points[i].Weight > u
	})
	if idx == len(e.points) {
		return e.points[len(e.points)-1].Value
	}
	return e.points[idx].Value
}

// Probabilities returns, per point, the chance Sample picks it.
func (e *Empirical) Probabilities() []float64 {
	probs := make([]float64, len(e.points))
	prev := 0.0
	for i, p := range e.points {
		w := math.Min(p.Weight, 1)
		probs[i] = w - prev
		prev = w
	}
	if len(probs) > 0 {
		probs[len(probs)-1] += 1 - prev
	}
	return probs
}
