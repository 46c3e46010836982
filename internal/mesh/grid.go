// Package mesh lays out the square-grid mesh scenario.
//
// Nodes are numbered row first from the origin, the ping sink is the
// opposite corner:
//
//	6 - 7 - 8
//	|   |   |
//	3 - 4 - 5
//	|   |   |
//	0 - 1 - 2
package mesh

import (
	"math"

	"github.com/wiless/vlib"
	"golang.org/x/exp/slices"
)

type Grid struct {
	XSize int
	YSize int
	Step  float64 // m
}

func (g Grid) Nodes() int {
	return g.XSize * g.YSize
}

// Sink is the node every client pings.
func (g Grid) Sink() int {
	return g.Nodes() - 1
}

func (g Grid) Position(node int) vlib.Location3D {
	col, row := node%g.XSize, node/g.XSize
	return vlib.Location3D{X: float64(col) * g.Step, Y: float64(row) * g.Step, Z: 0}
}

func (g Grid) Positions() []vlib.Location3D {
	out := make([]vlib.Location3D, g.Nodes())
	for i := range out {
		out[i] = g.Position(i)
	}
	return out
}

// HopCount estimates the hops between two nodes for a radio range.
// Within range they talk directly; otherwise diagonals are used when
// they are within range, then axis-aligned neighbours. 0 means the
// nodes cannot reach each other.
func (g Grid) HopCount(a, b int, radioRange float64) int {
	if a == b {
		return 0
	}
	pa, pb := g.Position(a), g.Position(b)
	dx := math.Abs(pa.X-pb.X) / g.Step
	dy := math.Abs(pa.Y-pb.Y) / g.Step
	if pa.DistanceFrom(pb) <= radioRange {
		return 1
	}
	switch {
	case g.Step*math.Sqrt2 <= radioRange:
		return int(math.Round(math.Max(dx, dy)))
	case g.Step <= radioRange:
		return int(math.Round(dx + dy))
	}
	return 0
}

// IntSource draws integers in [i, j]. *rngstream.RngStream satisfies it.
type IntSource interface {
	RandInt(i, j int) int
}

// SelectClients picks n distinct ping sources: node 0 first, the rest
// drawn from the nodes strictly between the origin and the sink.
func SelectClients(g Grid, n int, src IntSource) []int {
	sink := g.Sink()
	if n > sink {
		n = sink
	}
	if n <= 0 {
		return nil
	}
	clients := []int{0}
	for len(clients) < n {
		node := src.RandInt(1, sink-1)
		if !slices.Contains(clients, node) {
			clients = append(clients, node)
		}
	}
	return clients
}
