// Package placement decides the lateral offset of each new ship.
//
// The spacing rule only nudges a draw that lands too close to the previous
// ship of the same lane. It does not guarantee the separation: near the
// outer boundary the nudge goes inward and may land close to the previous
// ship again, and a separation larger than the lane width can push a ship
// past the opposite edge.
package placement

import (
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"maritime-simulator/internal/distribution"
	"maritime-simulator/internal/lane"
)

type Placer struct {
	geometry lane.Geometry
	src      distribution.Source
	log      logrus.FieldLogger

	mu    sync.Mutex
	state map[lane.Lane]lane.State
}

func NewPlacer(g lane.Geometry, src distribution.Source, log logrus.FieldLogger) *Placer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	p := &Placer{
		geometry: g,
		src:      src,
		log:      log.WithField("component", "placement"),
	}
	p.Reset()
	return p
}

// CalculateNewShipY draws a y for the next ship of l, spaces it from the
// lane's previous ship and records it.
func (p *Placer) CalculateNewShipY(l lane.Lane) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	lo, hi := p.geometry.DrawRange(l)
	y := lo + p.src.RandU01()*(hi-lo)

	st := p.state[l]
	if st.Empty() {
		p.state[l] = lane.State{LastY: y}
		return y
	}

	gap := math.Abs(st.LastY - y)
	if gap < p.geometry.MinSeparation {
		deficit := p.geometry.MinSeparation - gap
		if y+deficit > p.geometry.OuterBoundary(l) {
			y -= deficit
		} else {
			y += deficit
		}
		p.log.WithFields(logrus.Fields{
			"lane":    l,
			"lastY":   st.LastY,
			"gap":     gap,
			"shifted": deficit,
		}).Debug("ship too close to previous, shifted")
	}

	p.state[l] = lane.State{LastY: y}
	return y
}

// LastY returns the recorded y of the lane's latest ship, lane.NoShip if none.
func (p *Placer) LastY(l lane.Lane) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state[l].LastY
}

func (p *Placer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = make(map[lane.Lane]lane.State, len(lane.All))
	for _, l := range lane.All {
		p.state[l] = lane.NewState()
	}
}
