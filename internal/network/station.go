package network

import (
	"github.com/sirupsen/logrus"
	"github.com/wiless/vlib"

	"maritime-simulator/internal/engine"
)

// Station is a fixed sink, the land station or a mesh sink node.
type Station struct {
	Name     string
	Location vlib.Location3D
	Received int
	log      logrus.FieldLogger
}

func NewStation(name string, loc vlib.Location3D, log logrus.FieldLogger) *Station {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Station{
		Name:     name,
		Location: loc,
		log:      log.WithField("station", name),
	}
}

func (s *Station) Receive(sim *engine.Simulation, pkt Packet, link string) {
	s.Received++
	s.log.WithFields(logrus.Fields{
		"t":       sim.Now(),
		"pkt":     pkt.ID,
		"from":    pkt.Src,
		"link":    link,
		"latency": sim.Now() - pkt.CreationTime,
	}).Trace("packet received")
}

