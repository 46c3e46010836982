// Package lane describes the two opposing shipping lanes off the land
// station: their direction, their fitted traffic constants and the
// geometry ships are placed in.
package lane

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownLane = errors.New("unknown lane")

type Lane int

const (
	// East is the near lane, ships enter at x=0 and head east.
	East Lane = iota
	// West is the far lane, ships enter at the end of the route and head west.
	West
)

// All lists the lanes in spawn order.
var All = []Lane{East, West}

func (l Lane) String() string {
	switch l {
	case East:
		return "East"
	case West:
		return "West"
	default:
		return "UNKNOWN"
	}
}

func ParseLane(s string) (Lane, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "east", "e":
		return East, nil
	case "west", "w":
		return West, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLane, s)
}

// Params are the constants fitted offline for one lane. A and B shape the
// inter-arrival density, C, Mu and Sigma the speed density.
type Params struct {
	A     float64 `mapstructure:"a" yaml:"a"`
	B     float64 `mapstructure:"b" yaml:"b"`
	C     float64 `mapstructure:"c" yaml:"c"`
	Mu    float64 `mapstructure:"mu" yaml:"mu"`
	Sigma float64 `mapstructure:"sigma" yaml:"sigma"`
}

// DefaultParams returns the fitted constants for a lane. Inter-arrival x is
// in minutes, speed x in km per simulated second.
func DefaultParams(l Lane) Params {
	if l == West {
		return Params{A: 0.25, B: 0.92, C: 0.0030, Mu: 0.0055, Sigma: 0.0013}
	}
	return Params{A: 0.30, B: 0.90, C: 0.0034, Mu: 0.0060, Sigma: 0.0015}
}

// NoShip is the LastY sentinel of a lane nothing has been placed on yet.
const NoShip = -1.0

// State is the mutable placement state of one lane.
type State struct {
	LastY float64
}

func NewState() State {
	return State{LastY: NoShip}
}

func (s State) Empty() bool {
	return s.LastY < 0
}
