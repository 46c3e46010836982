// Package routing names the routing protocols a run can be configured
// with and the latency profile each one contributes to the links.
package routing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownProtocol = errors.New("unknown routing protocol")

type Protocol int

// Numeric values match the command line selector: 1=AODV;2=OLSR.
const (
	AODV Protocol = iota + 1
	OLSR
)

var All = []Protocol{AODV, OLSR}

func (p Protocol) String() string {
	switch p {
	case AODV:
		return "AODV"
	case OLSR:
		return "OLSR"
	default:
		return "UNKNOWN"
	}
}

// ParseProtocol accepts a name ("aodv") or the numeric selector ("2").
func ParseProtocol(s string) (Protocol, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return FromNumber(n)
	}
	switch strings.ToUpper(s) {
	case "AODV":
		return AODV, nil
	case "OLSR":
		return OLSR, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProtocol, s)
}

func FromNumber(n int) (Protocol, error) {
	p := Protocol(n)
	if p != AODV && p != OLSR {
		return 0, fmt.Errorf("%w: %d", ErrUnknownProtocol, n)
	}
	return p, nil
}

func (p Protocol) MarshalText() ([]byte, error) {
	if p != AODV && p != OLSR {
		return nil, fmt.Errorf("%w: %d", ErrUnknownProtocol, int(p))
	}
	return []byte(p.String()), nil
}

func (p *Protocol) UnmarshalText(b []byte) error {
	v, err := ParseProtocol(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Profile is the latency a protocol adds on top of the link delay.
// AODV discovers a route on a flow's first packet; OLSR keeps routes
// ready and instead spends control traffic on every link.
type Profile struct {
	DiscoveryDelay  float64
	ControlOverhead float64 // bytes per simulated second per link
}

func (p Protocol) Profile() Profile {
	switch p {
	case AODV:
		return Profile{DiscoveryDelay: 0.04}
	case OLSR:
		return Profile{ControlOverhead: 64}
	}
	return Profile{}
}
