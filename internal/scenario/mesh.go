package scenario

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"maritime-simulator/internal/config"
	"maritime-simulator/internal/engine"
	"maritime-simulator/internal/flow"
	"maritime-simulator/internal/mesh"
	"maritime-simulator/internal/network"
)

// clientStart is when the ping clients begin sending.
const clientStart = 1.0

// Mesh pings the far corner of a grid from a set of client nodes.
type Mesh struct {
	Log logrus.FieldLogger
	// Stdout takes the report when the results file cannot be opened.
	Stdout io.Writer

	Config  config.Config
	Grid    mesh.Grid
	Sim     *engine.Simulation
	Flows   *flow.Monitor
	Router  *network.Router
	Sink    *network.Station
	Clients []int
	Sources []*network.Source
}

func (m *Mesh) Build(cfg config.Config) error {
	if m.Log == nil {
		m.Log = logrus.StandardLogger()
	}
	if m.Stdout == nil {
		m.Stdout = os.Stdout
	}
	log := m.Log.WithFields(logrus.Fields{"scenario": config.ScenarioMesh, "protocol": cfg.Protocol})
	m.Config = cfg
	m.Grid = mesh.Grid{XSize: cfg.Mesh.XSize, YSize: cfg.Mesh.YSize, Step: cfg.Mesh.Step}

	m.Sim = engine.NewSimulation().WithLogger(log)
	m.Flows = flow.NewMonitor()

	delay := network.NewDelayModel(cfg.Traffic.Delay, stream(cfg, "mesh-delay"))
	delay.Initialise(cfg.Duration + 2)
	link := network.Link{
		Name:      "mesh",
		Range:     cfg.Mesh.Range,
		Bandwidth: cfg.Traffic.Bandwidth,
		LossProb:  cfg.Traffic.LossProb,
		Delay:     delay,
	}
	m.Router = network.NewRouter(link, cfg.Protocol, m.Flows, stream(cfg, "mesh-loss"), log)

	sink := m.Grid.Sink()
	m.Sink = network.NewStation(fmt.Sprintf("node%d", sink), m.Grid.Position(sink), log)
	m.Clients = mesh.SelectClients(m.Grid, cfg.Mesh.Clients, stream(cfg, "mesh-clients"))

	intervals := stream(cfg, "mesh-intervals")
	m.Sources = make([]*network.Source, 0, len(m.Clients))
	for _, c := range m.Clients {
		name := fmt.Sprintf("node%d", c)
		hops := m.Grid.HopCount(c, sink, cfg.Mesh.Range)
		route := network.Route{Hops: hops}
		if hops > 0 {
			pos := m.Grid.Position(c)
			route.HopDistance = pos.DistanceFrom(m.Sink.Location) / float64(hops)
		}
		interval := cfg.Mesh.MinInterval + intervals.RandU01()*(cfg.Mesh.MaxInterval-cfg.Mesh.MinInterval)

		src := network.NewSource(name, m.Flows.Flow(name, m.Sink.Name), interval, cfg.Traffic.PacketSize,
			network.StaticPath(route), m.Router, m.Sink)
		src.MaxPackets = max(1, int(cfg.Duration/interval))
		m.Sources = append(m.Sources, src)

		log.WithFields(logrus.Fields{
			"client":   c,
			"hops":     hops,
			"interval": interval,
			"packets":  src.MaxPackets,
		}).Debug("client installed")
	}
	return nil
}

// Run pings for the configured duration and reports the results.
func (m *Mesh) Run() (Summary, error) {
	if m.Sim == nil {
		return Summary{}, fmt.Errorf("%w: mesh scenario run before Build", config.ErrInvalidConfig)
	}
	for _, src := range m.Sources {
		m.Sim.ScheduleTask(clientStart, src)
	}
	m.Sim.Run(m.Config.Duration + 2)

	totals := m.Flows.Totals()
	res := mesh.CalculateResults(totals, m.Config.Duration)
	res.ExecutedAt = time.Now()
	res.Nodes = m.Grid.Nodes()
	res.Clients = len(m.Clients)
	res.Step = m.Grid.Step
	res.Protocol = m.Config.Protocol
	res.PacketSize = m.Config.Traffic.PacketSize
	res.TotalTime = m.Config.Duration

	sum := Summary{
		Scenario: config.ScenarioMesh,
		Protocol: m.Config.Protocol,
		Duration: m.Config.Duration,
		Totals:   totals,
		Mesh:     &res,
	}
	if m.Config.OutputDir == "-" {
		return sum, mesh.WriteResults(m.Stdout, res)
	}
	if err := os.MkdirAll(m.Config.OutputDir, 0o755); err != nil {
		m.Log.WithError(err).Warn("could not create output directory")
	}
	path := mesh.FileName(m.Config.OutputDir, res.Protocol, res.Nodes)
	if _, err := mesh.Report(path, m.Stdout, res, m.Log); err != nil {
		return sum, err
	}
	return sum, nil
}
