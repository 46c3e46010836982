package ship

import (
	"github.com/sirupsen/logrus"

	"maritime-simulator/internal/distribution"
	"maritime-simulator/internal/engine"
	"maritime-simulator/internal/lane"
	"maritime-simulator/internal/placement"
)

// SpawnHook is told about every ship as it is placed.
type SpawnHook func(sim *engine.Simulation, ev SpawnEvent)

// Spawner places one ship per firing and asks to be woken again after a
// sampled inter-arrival time. It never retires on its own; the run limit
// of the simulation ends it.
type Spawner struct {
	Lane      lane.Lane
	Samplers  distribution.LaneSamplers
	Placer    *placement.Placer
	Geometry  lane.Geometry
	TimeScale float64
	Src       distribution.Source

	ctx   *Context
	hooks []SpawnHook
}

func NewSpawner(ctx *Context, samplers distribution.LaneSamplers, placer *placement.Placer,
	g lane.Geometry, timeScale float64, src distribution.Source) *Spawner {
	return &Spawner{
		Lane:      samplers.Lane,
		Samplers:  samplers,
		Placer:    placer,
		Geometry:  g,
		TimeScale: timeScale,
		Src:       src,
		ctx:       ctx,
	}
}

// OnSpawn registers a hook, e.g. traffic installation for the new ship.
func (s *Spawner) OnSpawn(h SpawnHook) {
	s.hooks = append(s.hooks, h)
}

func (s *Spawner) Fire(sim *engine.Simulation) (float64, bool) {
	speed := s.Samplers.Speed.Sample(s.Src)
	y := s.Placer.CalculateNewShipY(s.Lane)
	id := s.ctx.Ships.Inc()

	ev := SpawnEvent{
		ID:        id,
		Lane:      s.Lane,
		Speed:     speed,
		X:         s.Geometry.EntryX(s.Lane),
		Y:         y,
		Heading:   s.Geometry.Heading(s.Lane),
		CreatedAt: sim.Now(),
	}
	for _, h := range s.hooks {
		h(sim, ev)
	}

	next := s.Samplers.Time.Sample(s.Src) * s.TimeScale

	s.ctx.Log.WithFields(logrus.Fields{
		"t":     sim.Now(),
		"ship":  id,
		"lane":  s.Lane,
		"y":     y,
		"speed": speed,
		"next":  next,
	}).Debug("ship spawned")

	return next, true
}

// Start arms every spawner at the current time.
func Start(sim *engine.Simulation, spawners ...*Spawner) []*engine.Handle {
	handles := make([]*engine.Handle, 0, len(spawners))
	for _, s := range spawners {
		handles = append(handles, sim.ScheduleTask(0, s))
	}
	return handles
}
