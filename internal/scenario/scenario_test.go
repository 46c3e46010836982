package scenario

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"maritime-simulator/internal/config"
	"maritime-simulator/internal/distribution"
	"maritime-simulator/internal/lane"
	"maritime-simulator/internal/metrics"
	"maritime-simulator/internal/routing"
)

type memorySink struct {
	samples []metrics.Sample
}

func (m *memorySink) Append(s metrics.Sample) error {
	m.samples = append(m.samples, s)
	return nil
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	return log
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Duration = 300
	cfg.OutputDir = t.TempDir()
	cfg.SeedName = t.Name()
	return cfg
}

func TestMaritimeRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.Protocol = routing.OLSR
	sink := &memorySink{}
	m := &Maritime{Log: quietLogger(), Sink: sink}
	if err := m.Build(cfg); err != nil {
		t.Fatal(err)
	}
	sum, err := m.Run()
	if err != nil {
		t.Fatal(err)
	}

	for _, l := range lane.All {
		if sum.ShipsByLane[l] == 0 {
			t.Errorf("no ships spawned on %s", l)
		}
	}
	if sum.Ships != sum.ShipsByLane[lane.East]+sum.ShipsByLane[lane.West] {
		t.Errorf("Ships = %d, by lane %v", sum.Ships, sum.ShipsByLane)
	}
	if sum.Totals.TxPackets == 0 || sum.Totals.RxPackets == 0 {
		t.Fatalf("no traffic: %+v", sum.Totals)
	}
	if r := sum.DeliveryRatio(); r <= 0.9 || r > 1 {
		t.Errorf("delivery ratio %.3f with 1%% loss", r)
	}

	if len(sink.samples) != int(cfg.Duration) || len(sum.Samples) != len(sink.samples) {
		t.Fatalf("%d samples, want one per second", len(sink.samples))
	}
	prev := 0
	for i, s := range sink.samples {
		if s.Second != float64(i+1) {
			t.Errorf("sample %d at second %v", i, s.Second)
		}
		if s.Protocol != routing.OLSR {
			t.Errorf("sample %d protocol %v", i, s.Protocol)
		}
		if s.Nodes < prev || s.Nodes < 3 {
			t.Errorf("sample %d nodes %d after %d", i, s.Nodes, prev)
		}
		prev = s.Nodes
	}
	if last := sink.samples[len(sink.samples)-1]; last.Nodes != sum.Ships+1 {
		t.Errorf("last sample counts %d nodes, want ships+station %d", last.Nodes, sum.Ships+1)
	}
}

func TestMaritimeShipsEnterTheirLane(t *testing.T) {
	cfg := testConfig(t)
	m := &Maritime{Log: quietLogger(), Sink: &memorySink{}}
	if err := m.Build(cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Run(); err != nil {
		t.Fatal(err)
	}

	g := cfg.Geometry
	for _, s := range m.Fleet.Ships() {
		lo, hi := g.DrawRange(s.Lane)
		if s.Y < lo-g.MinSeparation || s.Y > hi+g.MinSeparation {
			t.Errorf("%v placed outside its draw range", s)
		}
		if s.X != g.EntryX(s.Lane) {
			t.Errorf("%v did not enter at the lane start", s)
		}
	}
}

func TestMaritimeWritesResultsCSV(t *testing.T) {
	cfg := testConfig(t)
	cfg.Duration = 5
	s, err := New(cfg, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Run(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(cfg.OutputDir, "results_AODV.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 6 {
		t.Fatalf("%d rows, want header plus 5", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(metrics.Header, ",") {
		t.Errorf("header = %v", rows[0])
	}
	if rows[5][0] != "5" || rows[5][4] != "AODV" {
		t.Errorf("last row = %v", rows[5])
	}
}

func TestMaritimeFailsFastOnBadTable(t *testing.T) {
	cfg := testConfig(t)
	cfg.TimeGrid = distribution.Grid{Start: 1, Stop: 1, Step: 1}
	m := &Maritime{Log: quietLogger()}
	if err := m.Build(cfg); !errors.Is(err, distribution.ErrInvalidDistribution) {
		t.Fatalf("Build = %v, want ErrInvalidDistribution", err)
	}
	if _, err := os.Stat(cfg.ResultsPath()); !os.IsNotExist(err) {
		t.Errorf("result log created before the tables were checked: %v", err)
	}
}

func TestMaritimeRejectsNonPositiveInterArrival(t *testing.T) {
	cfg := testConfig(t)
	cfg.Duration = 36000
	cfg.TimeGrid = distribution.Grid{Start: -5, Stop: 60, Step: 1}
	m := &Maritime{Log: quietLogger(), Sink: &memorySink{}}
	if err := m.Build(cfg); !errors.Is(err, distribution.ErrInvalidDistribution) {
		t.Fatalf("Build = %v, want ErrInvalidDistribution", err)
	}
}

func TestMaritimeResultLogUnwritable(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(cfg.OutputDir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.OutputDir = filepath.Join(blocker, "results")
	if _, err := New(cfg, quietLogger()); !errors.Is(err, metrics.ErrResultLog) {
		t.Fatalf("New = %v, want ErrResultLog", err)
	}
}

func TestRunBeforeBuild(t *testing.T) {
	if _, err := (&Maritime{}).Run(); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Maritime.Run = %v", err)
	}
	if _, err := (&Mesh{}).Run(); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Mesh.Run = %v", err)
	}
}

func TestNewUnknownScenario(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scenario = "river"
	if _, err := New(cfg, quietLogger()); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("New = %v, want ErrInvalidConfig", err)
	}
}

func meshConfig(t *testing.T) config.Config {
	cfg := testConfig(t)
	cfg.Scenario = config.ScenarioMesh
	cfg.Duration = 20
	cfg.Traffic.LossProb = 0
	cfg.Mesh.Clients = 3
	return cfg
}

func TestMeshRun(t *testing.T) {
	cfg := meshConfig(t)
	var stdout bytes.Buffer
	m := &Mesh{Log: quietLogger(), Stdout: &stdout}
	if err := m.Build(cfg); err != nil {
		t.Fatal(err)
	}
	if len(m.Clients) != 3 || m.Clients[0] != 0 {
		t.Fatalf("clients = %v", m.Clients)
	}
	sum, err := m.Run()
	if err != nil {
		t.Fatal(err)
	}

	res := sum.Mesh
	if res == nil {
		t.Fatal("mesh results missing")
	}
	if res.Sent == 0 || res.Received != res.Sent {
		t.Errorf("sent %d received %d on a lossless grid", res.Sent, res.Received)
	}
	if res.Nodes != 9 || res.Clients != 3 || res.EndToEndDelayMs <= 0 {
		t.Errorf("results = %+v", res)
	}
	for _, src := range m.Sources {
		if src.Sent != src.MaxPackets {
			t.Errorf("%s sent %d of %d packets", src.Name, src.Sent, src.MaxPackets)
		}
	}

	b, err := os.ReadFile(filepath.Join(cfg.OutputDir, "SimulationResults_RoutingProtocol_AODV_NodeNumber_9.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "Clients (ping sources): 3") || stdout.Len() != 0 {
		t.Errorf("report:\n%s", b)
	}
}

func TestMeshOutOfRangeLosesEverything(t *testing.T) {
	cfg := meshConfig(t)
	cfg.Mesh.Range = cfg.Mesh.Step / 2
	s, err := New(cfg, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	sum, err := s.Run()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Totals.TxPackets == 0 || sum.Totals.RxPackets != 0 {
		t.Errorf("totals = %+v, want every packet lost", sum.Totals)
	}
}

func TestMeshReportToStdout(t *testing.T) {
	cfg := meshConfig(t)
	cfg.OutputDir = "-"
	cfg.Protocol = routing.OLSR
	var stdout bytes.Buffer
	m := &Mesh{Log: quietLogger(), Stdout: &stdout}
	if err := m.Build(cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout.String(), "Routing protocol: OLSR") {
		t.Errorf("stdout:\n%s", stdout.String())
	}
}
