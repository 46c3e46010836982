package lane

import "fmt"

// Geometry of the traffic area, in km. y grows away from the station, x
// runs along the route.
type Geometry struct {
	StationDistance float64 `mapstructure:"station-distance" yaml:"station-distance"`
	LaneLength      float64 `mapstructure:"lane-length" yaml:"lane-length"`
	LaneWidth       float64 `mapstructure:"lane-width" yaml:"lane-width"`
	MinSeparation   float64 `mapstructure:"min-separation" yaml:"min-separation"`
	RouteLength     float64 `mapstructure:"route-length" yaml:"route-length"`
}

func DefaultGeometry() Geometry {
	return Geometry{
		StationDistance: 10,
		LaneLength:      60,
		LaneWidth:       20,
		MinSeparation:   5,
		RouteLength:     100,
	}
}

func (g Geometry) Validate() error {
	switch {
	case g.StationDistance < 0:
		return fmt.Errorf("station distance must not be negative, got %v", g.StationDistance)
	case g.LaneLength <= 2:
		return fmt.Errorf("lane length must exceed 2, got %v", g.LaneLength)
	case g.LaneWidth <= 0:
		return fmt.Errorf("lane width must be positive, got %v", g.LaneWidth)
	case g.MinSeparation < 0:
		return fmt.Errorf("min separation must not be negative, got %v", g.MinSeparation)
	case g.RouteLength <= 0:
		return fmt.Errorf("route length must be positive, got %v", g.RouteLength)
	}
	return nil
}

// DrawRange is the interval a new ship's y is drawn from. The far lane's
// baseline is shifted out by one lane length.
func (g Geometry) DrawRange(l Lane) (lo, hi float64) {
	lo, hi = g.StationDistance+1, g.StationDistance+g.LaneLength-1
	if l == West {
		lo += g.LaneLength
		hi += g.LaneLength
	}
	return lo, hi
}

// OuterBoundary is the y a spacing adjustment may not push a ship past.
func (g Geometry) OuterBoundary(l Lane) float64 {
	if l == West {
		return g.StationDistance + 2*g.LaneWidth
	}
	return g.StationDistance + g.LaneWidth
}

// EntryX is where ships of the lane enter the route.
func (g Geometry) EntryX(l Lane) float64 {
	if l == West {
		return g.RouteLength
	}
	return 0
}

// Heading is +1 for eastbound and -1 for westbound traffic.
func (g Geometry) Heading(l Lane) float64 {
	if l == West {
		return -1
	}
	return 1
}
