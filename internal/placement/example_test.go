package placement_test

import (
	"fmt"

	"maritime-simulator/internal/lane"
	"maritime-simulator/internal/placement"
)

type draws []float64

func (d *draws) RandU01() float64 {
	u := (*d)[0]
	*d = (*d)[1:]
	return u
}

func ExamplePlacer_CalculateNewShipY() {
	g := lane.Geometry{StationDistance: 10, LaneLength: 60, LaneWidth: 20, MinSeparation: 5, RouteLength: 100}
	lo, hi := g.DrawRange(lane.East)

	var src draws
	for _, y := range []float64{15, 17, 28, 27} {
		src = append(src, (y-lo)/(hi-lo))
	}
	p := placement.NewPlacer(g, &src, nil)
	for i := 0; i < 4; i++ {
		fmt.Printf("%.1f\n", p.CalculateNewShipY(lane.East))
	}
	// Output:
	// 15.0
	// 20.0
	// 28.0
	// 23.0
}
