package network

import (
	"math"

	"github.com/sirupsen/logrus"

	"maritime-simulator/internal/distribution"
	"maritime-simulator/internal/engine"
	"maritime-simulator/internal/flow"
	"maritime-simulator/internal/routing"
)

// Destination receives delivered packets.
type Destination interface {
	Receive(sim *engine.Simulation, pkt Packet, link string)
}

// Link is one radio technology with its range and per-hop delay.
type Link struct {
	Name      string
	Range     float64 // same unit as node positions
	Bandwidth float64 // bits per second
	LossProb  float64
	Delay     *DelayModel
}

// Route is the path a packet takes: Hops links of HopDistance km each.
type Route struct {
	Hops        int
	HopDistance float64
}

// TransmissionInfo contains details about a packet's journey
type TransmissionInfo struct {
	PacketID     int64
	Flow         flow.ID
	Source       string
	SentTime     float64
	ReceivedTime float64
	Hops         int
	ActualDelay  float64
	Discovery    bool
	Lost         bool
}

// TransmissionCallback is called when a packet is delivered or lost
type TransmissionCallback func(info TransmissionInfo)

// Router forwards packets over a link, charging the routing protocol's
// latency profile and recording every packet in the flow monitor.
type Router struct {
	Link           Link
	Protocol       routing.Protocol
	Flows          *flow.Monitor
	OnTransmission TransmissionCallback

	profile    routing.Profile
	discovered map[flow.ID]bool
	src        distribution.Source
	nextID     int64
	log        logrus.FieldLogger
}

func NewRouter(link Link, p routing.Protocol, flows *flow.Monitor, src distribution.Source, log logrus.FieldLogger) *Router {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Router{
		Link:       link,
		Protocol:   p,
		Flows:      flows,
		profile:    p.Profile(),
		discovered: make(map[flow.ID]bool),
		src:        src,
		log:        log.WithFields(logrus.Fields{"component": "router", "protocol": p}),
	}
}

// NewPacket stamps a packet with a run-unique ID.
func (r *Router) NewPacket(f flow.ID, src string, size int, now float64) Packet {
	r.nextID++
	return NewPacket(r.nextID, f, src, size, now)
}

// Reachable reports whether every hop of the route is within link range.
func (r *Router) Reachable(route Route) bool {
	return route.Hops > 0 && route.HopDistance <= r.Link.Range
}

// transmissionTime is the serialisation delay of one hop. OLSR control
// traffic eats into the link bandwidth.
func (r *Router) transmissionTime(size int) float64 {
	if r.Link.Bandwidth <= 0 {
		return 0
	}
	bw := r.Link.Bandwidth - r.profile.ControlOverhead*8
	if bw <= 0 {
		return math.Inf(1)
	}
	return float64(size) * 8 / bw
}

func (r *Router) Forward(sim *engine.Simulation, pkt Packet, route Route, dest Destination) {
	sentTime := sim.Now()
	r.Flows.RecordTx(pkt.Flow, pkt.ID, pkt.Size, sentTime)

	lost := !r.Reachable(route)
	for h := 0; h < route.Hops && !lost; h++ {
		if r.Link.LossProb > 0 && r.src.RandU01() < r.Link.LossProb {
			lost = true
		}
	}
	if lost {
		r.Flows.RecordLoss(pkt.Flow, pkt.ID)
		r.log.WithFields(logrus.Fields{
			"t":    sentTime,
			"pkt":  pkt.ID,
			"src":  pkt.Src,
			"hops": route.Hops,
			"dist": route.HopDistance,
		}).Debug("packet lost")
		r.notify(TransmissionInfo{
			PacketID: pkt.ID, Flow: pkt.Flow, Source: pkt.Src,
			SentTime: sentTime, Hops: route.Hops, Lost: true,
		})
		return
	}

	totalDelay := 0.0
	tx := r.transmissionTime(pkt.Size)
	for i := 0; i < route.Hops; i++ {
		totalDelay += r.Link.Delay.ComputeTotalDelay(sentTime).TotalDelay + tx
	}

	discovery := false
	if r.profile.DiscoveryDelay > 0 && !r.discovered[pkt.Flow] {
		r.discovered[pkt.Flow] = true
		discovery = true
		totalDelay += r.profile.DiscoveryDelay * float64(route.Hops)
	}

	sim.Schedule(totalDelay, func() {
		r.Flows.RecordRx(pkt.Flow, pkt.ID, pkt.Size, sim.Now())
		r.notify(TransmissionInfo{
			PacketID:     pkt.ID,
			Flow:         pkt.Flow,
			Source:       pkt.Src,
			SentTime:     sentTime,
			ReceivedTime: sim.Now(),
			Hops:         route.Hops,
			ActualDelay:  totalDelay,
			Discovery:    discovery,
		})
		dest.Receive(sim, pkt, r.Link.Name)
	})
}

func (r *Router) notify(info TransmissionInfo) {
	if r.OnTransmission != nil {
		r.OnTransmission(info)
	}
}
