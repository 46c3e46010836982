// Package metrics samples the flow accounting once per simulated second
// and appends throughput and delay to the result log.
package metrics

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"maritime-simulator/internal/engine"
	"maritime-simulator/internal/flow"
	"maritime-simulator/internal/routing"
)

// Sample is one row of the result log.
type Sample struct {
	Second        float64
	Nodes         int
	Throughput    float64 // bytes/s
	EndToEndDelay float64 // s
	Protocol      routing.Protocol
}

func (s Sample) String() string {
	return fmt.Sprintf("t=%.0f nodes=%d throughput=%.2fB/s delay=%.4fs %s",
		s.Second, s.Nodes, s.Throughput, s.EndToEndDelay, s.Protocol)
}

// Sink receives samples as they are taken.
type Sink interface {
	Append(Sample) error
}

// NodeCounter reports how many ships have been placed so far.
type NodeCounter interface {
	Value() int
}

// Compute averages over the flows that delivered anything: the mean
// delay and the mean received bytes per second. elapsed is simulated
// time; timeScale converts it to seconds. An empty view yields zeros.
func Compute(snapshot map[flow.ID]flow.Stats, elapsed, timeScale float64) (throughput, delay float64) {
	delays := make([]float64, 0, len(snapshot))
	rates := make([]float64, 0, len(snapshot))
	seconds := elapsed * timeScale
	for _, s := range snapshot {
		if s.RxPackets == 0 {
			continue
		}
		delays = append(delays, s.MeanDelay()*timeScale)
		if seconds > 0 {
			rates = append(rates, float64(s.RxBytes)/seconds)
		}
	}
	if len(delays) > 0 {
		delay = stat.Mean(delays, nil)
	}
	if len(rates) > 0 {
		throughput = stat.Mean(rates, nil)
	}
	return throughput, delay
}

// Collector is a recurring engine task.
type Collector struct {
	Interval  float64
	TimeScale float64
	Protocol  routing.Protocol
	// FixedNodes are counted on top of the ships, e.g. the land station.
	FixedNodes int

	flows   flow.Snapshotter
	ships   NodeCounter
	sink    Sink
	log     logrus.FieldLogger
	samples []Sample
}

func NewCollector(flows flow.Snapshotter, ships NodeCounter, sink Sink, p routing.Protocol, log logrus.FieldLogger) *Collector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Collector{
		Interval:   1,
		TimeScale:  1,
		Protocol:   p,
		FixedNodes: 1,
		flows:      flows,
		ships:      ships,
		sink:       sink,
		log:        log.WithField("component", "metrics"),
		samples:    make([]Sample, 0),
	}
}

// Collect takes a sample at time now.
func (c *Collector) Collect(now float64) Sample {
	throughput, delay := Compute(c.flows.Snapshot(), now, c.TimeScale)
	s := Sample{
		Second:        now * c.TimeScale,
		Nodes:         c.ships.Value() + c.FixedNodes,
		Throughput:    throughput,
		EndToEndDelay: delay,
		Protocol:      c.Protocol,
	}
	c.samples = append(c.samples, s)
	if c.sink != nil {
		if err := c.sink.Append(s); err != nil {
			c.log.WithError(err).WithField("t", now).Error("could not append sample")
		}
	}
	return s
}

func (c *Collector) Fire(sim *engine.Simulation) (float64, bool) {
	s := c.Collect(sim.Now())
	c.log.WithFields(logrus.Fields{
		"t":          s.Second,
		"nodes":      s.Nodes,
		"throughput": s.Throughput,
		"delay":      s.EndToEndDelay,
	}).Debug("metrics sampled")
	return c.Interval, true
}

func (c *Collector) Samples() []Sample {
	result := make([]Sample, len(c.samples))
	copy(result, c.samples)
	return result
}
