package scenario

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wiless/vlib"

	"maritime-simulator/internal/config"
	"maritime-simulator/internal/distribution"
	"maritime-simulator/internal/engine"
	"maritime-simulator/internal/flow"
	"maritime-simulator/internal/lane"
	"maritime-simulator/internal/metrics"
	"maritime-simulator/internal/network"
	"maritime-simulator/internal/placement"
	"maritime-simulator/internal/ship"
)

// Maritime is the two-lane run: ships spawn on both lanes and each one
// streams packets to the land station for as long as it is in the area.
type Maritime struct {
	Log logrus.FieldLogger
	// Sink receives the collector's samples. When nil, Build opens the
	// CSV at Config.ResultsPath and Run closes it.
	Sink metrics.Sink

	Config    config.Config
	Sim       *engine.Simulation
	Samplers  map[lane.Lane]distribution.LaneSamplers
	Placer    *placement.Placer
	Ships     *ship.Context
	Spawners  []*ship.Spawner
	Fleet     *ship.Fleet
	Flows     *flow.Monitor
	Router    *network.Router
	Station   *network.Station
	Collector *metrics.Collector

	resultLog *metrics.ResultLog
}

// Build wires the run. It fails before anything is simulated when a lane
// table cannot be built or the result log cannot be opened.
func (m *Maritime) Build(cfg config.Config) error {
	if m.Log == nil {
		m.Log = logrus.StandardLogger()
	}
	log := m.Log.WithFields(logrus.Fields{"scenario": config.ScenarioMaritime, "protocol": cfg.Protocol})
	m.Config = cfg

	m.Samplers = make(map[lane.Lane]distribution.LaneSamplers, len(lane.All))
	for _, l := range lane.All {
		s, err := distribution.BuildLaneSamplers(l, cfg.LaneParams(l), cfg.TimeGrid, cfg.SpeedGrid)
		if err != nil {
			return err
		}
		m.Samplers[l] = s
	}

	if m.Sink == nil {
		rl, err := metrics.OpenResultLog(cfg.ResultsPath())
		if err != nil {
			return err
		}
		m.resultLog = rl
		m.Sink = rl
	}

	m.Sim = engine.NewSimulation().WithLogger(log)
	m.Ships = ship.NewContext(m.Sim, log)
	m.Fleet = ship.NewFleet()
	m.Flows = flow.NewMonitor()
	m.Placer = placement.NewPlacer(cfg.Geometry, stream(cfg, "placement"), log)

	delay := network.NewDelayModel(cfg.Traffic.Delay, stream(cfg, "link-delay"))
	delay.Initialise(cfg.Duration)
	link := network.Link{
		Name:      "wimax",
		Range:     cfg.Traffic.Range,
		Bandwidth: cfg.Traffic.Bandwidth,
		LossProb:  cfg.Traffic.LossProb,
		Delay:     delay,
	}
	m.Router = network.NewRouter(link, cfg.Protocol, m.Flows, stream(cfg, "link-loss"), log)
	m.Station = network.NewStation("land-station",
		vlib.Location3D{X: cfg.Geometry.RouteLength / 2, Y: 0, Z: 0}, log)

	m.Spawners = make([]*ship.Spawner, 0, len(lane.All))
	for _, l := range lane.All {
		sp := ship.NewSpawner(m.Ships, m.Samplers[l], m.Placer, cfg.Geometry, cfg.TimeScale,
			stream(cfg, fmt.Sprintf("%s-samplers", l)))
		sp.OnSpawn(m.recordShip)
		sp.OnSpawn(m.installTraffic)
		m.Spawners = append(m.Spawners, sp)
	}

	m.Collector = metrics.NewCollector(m.Flows, m.Ships.Ships, m.Sink, cfg.Protocol, log)
	m.Collector.TimeScale = cfg.ReportScale
	return nil
}

func (m *Maritime) recordShip(_ *engine.Simulation, ev ship.SpawnEvent) {
	m.Fleet.Add(ev)
}

// installTraffic starts a packet source on the new ship. The source
// retires once the ship leaves the route.
func (m *Maritime) installTraffic(sim *engine.Simulation, ev ship.SpawnEvent) {
	name := fmt.Sprintf("ship%d", ev.ID)
	id := m.Flows.Flow(name, m.Station.Name)
	routeLength := m.Config.Geometry.RouteLength
	locate := func(t float64) (vlib.Location3D, bool) {
		loc := ev.Position(t)
		return loc, loc.X >= 0 && loc.X <= routeLength
	}
	src := network.NewSource(name, id, m.Config.Traffic.Interval, m.Config.Traffic.PacketSize,
		network.DirectPath(locate, m.Station.Location), m.Router, m.Station)
	sim.ScheduleTask(0, src)
}

// Run simulates until the configured duration.
func (m *Maritime) Run() (Summary, error) {
	if m.Sim == nil {
		return Summary{}, fmt.Errorf("%w: maritime scenario run before Build", config.ErrInvalidConfig)
	}
	ship.Start(m.Sim, m.Spawners...)
	m.Sim.ScheduleTask(m.Collector.Interval, m.Collector)
	m.Sim.Run(m.Config.Duration)

	sum := Summary{
		Scenario:    config.ScenarioMaritime,
		Protocol:    m.Config.Protocol,
		Duration:    m.Config.Duration,
		Ships:       m.Ships.Ships.Value(),
		ShipsByLane: m.Fleet.CountByLane(),
		Totals:      m.Flows.Totals(),
		Samples:     m.Collector.Samples(),
	}
	m.Log.WithFields(logrus.Fields{
		"protocol": sum.Protocol,
		"ships":    sum.Ships,
		"tx":       sum.Totals.TxPackets,
		"rx":       sum.Totals.RxPackets,
	}).Info("maritime run finished")

	if m.resultLog != nil {
		if err := m.resultLog.Close(); err != nil {
			return sum, err
		}
		m.resultLog = nil
	}
	return sum, nil
}
