package ship

import (
	"math"
	"sync"
	"testing"

	"maritime-simulator/internal/distribution"
	"maritime-simulator/internal/engine"
	"maritime-simulator/internal/lane"
	"maritime-simulator/internal/placement"
)

type scripted struct {
	draws []float64
	next  int
}

func (s *scripted) RandU01() float64 {
	u := s.draws[s.next%len(s.draws)]
	s.next++
	return u
}

func table(points ...distribution.Point) *distribution.Empirical {
	e := distribution.NewEmpirical()
	for _, p := range points {
		e.Add(p.Value, p.Weight)
	}
	return e
}

func testSamplers(l lane.Lane) distribution.LaneSamplers {
	return distribution.LaneSamplers{
		Lane:  l,
		Time:  table(distribution.Point{Value: 2, Weight: 0.5}, distribution.Point{Value: 4, Weight: 1}),
		Speed: table(distribution.Point{Value: 0.005, Weight: 0.5}, distribution.Point{Value: 0.008, Weight: 1}),
	}
}

func TestSpawnerReschedulesWithScaledDelay(t *testing.T) {
	sim := engine.NewSimulation()
	ctx := NewContext(sim, nil)
	g := lane.DefaultGeometry()
	placer := placement.NewPlacer(g, &scripted{draws: []float64{0.5}}, nil)

	// speed draw then inter-arrival draw on each firing
	sp := NewSpawner(ctx, testSamplers(lane.East), placer, g, 60, &scripted{draws: []float64{0.1, 0.3}})
	fleet := NewFleet()
	sp.OnSpawn(func(_ *engine.Simulation, ev SpawnEvent) { fleet.Add(ev) })

	Start(sim, sp)
	sim.Run(300)

	ships := fleet.Ships()
	if len(ships) != 3 {
		t.Fatalf("spawned %d ships, want 3", len(ships))
	}
	for i, s := range ships {
		if want := float64(i) * 120; s.CreatedAt != want {
			t.Errorf("ship %d created at %v, want %v", i, s.CreatedAt, want)
		}
		if s.ID != i+1 || s.Speed != 0.005 || s.Lane != lane.East || s.X != 0 || s.Heading != 1 {
			t.Errorf("unexpected ship %v", s)
		}
	}
	if ctx.Ships.Value() != 3 {
		t.Errorf("counter = %d, want 3", ctx.Ships.Value())
	}
	if sim.PendingEvents() != 1 {
		t.Errorf("spawner not re-armed: %d pending", sim.PendingEvents())
	}
}

func TestTwoLanesShareCounter(t *testing.T) {
	sim := engine.NewSimulation()
	ctx := NewContext(sim, nil)
	g := lane.DefaultGeometry()
	placer := placement.NewPlacer(g, &scripted{draws: []float64{0.2, 0.9}}, nil)
	fleet := NewFleet()

	east := NewSpawner(ctx, testSamplers(lane.East), placer, g, 1, &scripted{draws: []float64{0.9, 0.9}})
	west := NewSpawner(ctx, testSamplers(lane.West), placer, g, 1, &scripted{draws: []float64{0.1, 0.1}})
	for _, sp := range []*Spawner{east, west} {
		sp.OnSpawn(func(_ *engine.Simulation, ev SpawnEvent) { fleet.Add(ev) })
	}
	Start(sim, east, west)
	sim.Run(8)

	// east every 4, west every 2
	counts := fleet.CountByLane()
	if counts[lane.East] != 3 || counts[lane.West] != 5 {
		t.Errorf("counts = %v, want East 3 West 5", counts)
	}
	if ctx.Ships.Value() != 8 {
		t.Errorf("counter = %d, want 8", ctx.Ships.Value())
	}
	for _, s := range fleet.Ships() {
		if s.Lane == lane.West && (s.X != g.RouteLength || s.Heading != -1) {
			t.Errorf("west ship entered at x=%v heading %v", s.X, s.Heading)
		}
	}
}

func TestPosition(t *testing.T) {
	ev := SpawnEvent{Lane: lane.West, Speed: 0.01, X: 100, Y: 80, Heading: -1, CreatedAt: 50}
	p := ev.Position(150)
	if math.Abs(p.X-99) > 1e-12 || p.Y != 80 {
		t.Errorf("Position(150) = %+v, want x=99 y=80", p)
	}
	if p := ev.Position(0); p.X != 100 {
		t.Errorf("Position before creation = %+v, want entry point", p)
	}
}

func TestCounterConcurrentInc(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()
	if c.Value() != 8000 {
		t.Errorf("Value() = %d, want 8000", c.Value())
	}
}
