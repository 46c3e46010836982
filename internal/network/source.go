package network

import (
	"github.com/wiless/vlib"

	"maritime-simulator/internal/engine"
	"maritime-simulator/internal/flow"
)

// Path resolves the route of a source's next packet at time t. ok=false
// retires the source, e.g. when a ship has sailed out of the area.
type Path func(t float64) (route Route, ok bool)

// Locator reports where a mobile node is at time t.
type Locator func(t float64) (loc vlib.Location3D, ok bool)

// DirectPath sends single-hop from a mobile node to a fixed location.
func DirectPath(locate Locator, to vlib.Location3D) Path {
	return func(t float64) (Route, bool) {
		loc, ok := locate(t)
		if !ok {
			return Route{}, false
		}
		return Route{Hops: 1, HopDistance: loc.DistanceFrom(to)}, true
	}
}

// StaticPath always uses the same route.
func StaticPath(r Route) Path {
	return func(float64) (Route, bool) { return r, true }
}

// Source sends fixed-size packets at a fixed interval, like a UDP echo
// client. It is an engine task.
type Source struct {
	Name       string
	Flow       flow.ID
	Interval   float64
	Size       int
	MaxPackets int // 0 means unbounded
	Sent       int

	path   Path
	router *Router
	dest   Destination
}

func NewSource(name string, f flow.ID, interval float64, size int, path Path, router *Router, dest Destination) *Source {
	return &Source{
		Name:     name,
		Flow:     f,
		Interval: interval,
		Size:     size,
		path:     path,
		router:   router,
		dest:     dest,
	}
}

func (s *Source) Fire(sim *engine.Simulation) (float64, bool) {
	route, ok := s.path(sim.Now())
	if !ok {
		return 0, false
	}
	pkt := s.router.NewPacket(s.Flow, s.Name, s.Size, sim.Now())
	s.router.Forward(sim, pkt, route, s.dest)
	s.Sent++
	if s.MaxPackets > 0 && s.Sent >= s.MaxPackets {
		return 0, false
	}
	return s.Interval, true
}
