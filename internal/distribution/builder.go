package distribution

import (
	"cmp"
	"fmt"
	"math"

	"golang.org/x/exp/slices"

	"maritime-simulator/internal/density"
	"maritime-simulator/internal/lane"
)

// Grid is the set of points a density is evaluated on, Stop inclusive.
type Grid struct {
	Start float64 `mapstructure:"start" yaml:"start"`
	Stop  float64 `mapstructure:"stop" yaml:"stop"`
	Step  float64 `mapstructure:"step" yaml:"step"`
}

func (g Grid) Points() []float64 {
	if !(g.Step > 0) || g.Stop < g.Start || math.IsInf(g.Stop-g.Start, 0) {
		return nil
	}
	n := int(math.Floor((g.Stop-g.Start)/g.Step+1e-9)) + 1
	xs := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = g.Start + float64(i)*g.Step
	}
	return xs
}

// Build evaluates f over the grid, orders the (x, f(x)) pairs by f(x)
// and loads the raw densities as cumulative weights.
func Build(f density.Func, g Grid) (*Empirical, error) {
	if !(g.Step > 0) {
		return nil, fmt.Errorf("%w: grid step %v must be positive", ErrInvalidDistribution, g.Step)
	}
	xs := g.Points()
	if len(xs) < 2 {
		return nil, fmt.Errorf("%w: grid [%v, %v] step %v yields %d points",
			ErrInvalidDistribution, g.Start, g.Stop, g.Step, len(xs))
	}

	pairs := make([]Point, len(xs))
	for i, x := range xs {
		pairs[i] = Point{Value: x, Weight: f(x)}
	}
	slices.SortStableFunc(pairs, func(a, b Point) int {
		return cmp.Compare(a.Weight, b.Weight)
	})

	e := NewEmpirical()
	for _, p := range pairs {
		e.Add(p.Value, p.Weight)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// LaneSamplers are the two tables a lane's spawner draws from.
type LaneSamplers struct {
	Lane  lane.Lane
	Time  *Empirical
	Speed *Empirical
}

// BuildLaneSamplers builds both tables of lane l. Both grids must start
// above zero: a draw of 0 or less is not a usable inter-arrival time or
// speed.
func BuildLaneSamplers(l lane.Lane, p lane.Params, timeGrid, speedGrid Grid) (LaneSamplers, error) {
	if !(timeGrid.Start > 0) {
		return LaneSamplers{}, fmt.Errorf("%s inter-arrival: %w: grid starts at %v, must be positive",
			l, ErrInvalidDistribution, timeGrid.Start)
	}
	if !(speedGrid.Start > 0) {
		return LaneSamplers{}, fmt.Errorf("%s speed: %w: grid starts at %v, must be positive",
			l, ErrInvalidDistribution, speedGrid.Start)
	}
	t, err := Build(density.TimeFor(p), timeGrid)
	if err != nil {
		return LaneSamplers{}, fmt.Errorf("%s inter-arrival: %w", l, err)
	}
	s, err := Build(density.SpeedFor(p), speedGrid)
	if err != nil {
		return LaneSamplers{}, fmt.Errorf("%s speed: %w", l, err)
	}
	return LaneSamplers{Lane: l, Time: t, Speed: s}, nil
}
