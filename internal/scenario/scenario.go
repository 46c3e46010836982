// Package scenario wires the simulation building blocks into complete
// runs: the maritime lanes with their land station, and the mesh grid.
package scenario

import (
	"fmt"

	"github.com/iti/rngstream"
	"github.com/sirupsen/logrus"

	"maritime-simulator/internal/config"
	"maritime-simulator/internal/flow"
	"maritime-simulator/internal/lane"
	"maritime-simulator/internal/mesh"
	"maritime-simulator/internal/metrics"
	"maritime-simulator/internal/routing"
)

// Summary is what a run leaves behind.
type Summary struct {
	Scenario    string
	Protocol    routing.Protocol
	Duration    float64
	Ships       int
	ShipsByLane map[lane.Lane]int
	Totals      flow.Stats
	Samples     []metrics.Sample
	// Mesh is set for mesh runs only.
	Mesh *mesh.Results
}

// DeliveryRatio is the share of sent packets that arrived.
func (s Summary) DeliveryRatio() float64 {
	if s.Totals.TxPackets == 0 {
		return 0
	}
	return float64(s.Totals.RxPackets) / float64(s.Totals.TxPackets)
}

func (s Summary) MeanDelay() float64 {
	return s.Totals.MeanDelay()
}

// Scenario is a configured run.
type Scenario interface {
	Run() (Summary, error)
}

// New builds the scenario cfg selects.
func New(cfg config.Config, log logrus.FieldLogger) (Scenario, error) {
	switch cfg.Scenario {
	case config.ScenarioMaritime:
		m := &Maritime{Log: log}
		if err := m.Build(cfg); err != nil {
			return nil, err
		}
		return m, nil
	case config.ScenarioMesh:
		m := &Mesh{Log: log}
		if err := m.Build(cfg); err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: unknown scenario %q", config.ErrInvalidConfig, cfg.Scenario)
}

// stream opens a random stream labelled with the seed name and its use.
func stream(cfg config.Config, purpose string) *rngstream.RngStream {
	return rngstream.New(fmt.Sprintf("%s-%s", cfg.SeedName, purpose))
}
