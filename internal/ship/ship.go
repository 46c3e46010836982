// Package ship spawns ships onto the lanes. Each lane runs its own
// Spawner as a recurring engine task.
package ship

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/wiless/vlib"

	"maritime-simulator/internal/engine"
	"maritime-simulator/internal/lane"
)

// SpawnEvent is a ship entering a lane.
type SpawnEvent struct {
	ID        int
	Lane      lane.Lane
	Speed     float64 // km per simulated second
	X         float64
	Y         float64
	Heading   float64
	CreatedAt float64
}

func (e SpawnEvent) String() string {
	return fmt.Sprintf("Ship%d(%s): x=%.2f y=%.2f speed=%.5f t=%.2f",
		e.ID, e.Lane, e.X, e.Y, e.Speed, e.CreatedAt)
}

// Position is where the ship is at time t. Ships keep their lateral
// offset and sail along x at constant speed.
func (e SpawnEvent) Position(t float64) vlib.Location3D {
	dt := t - e.CreatedAt
	if dt < 0 {
		dt = 0
	}
	return vlib.Location3D{X: e.X + e.Heading*e.Speed*dt, Y: e.Y, Z: 0}
}

// Counter is the shared ships-placed cell. Spawners increment it and the
// metrics collector reads it.
type Counter struct {
	mu sync.Mutex
	n  int
}

// Inc adds a ship and returns the new total.
func (c *Counter) Inc() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.n
}

func (c *Counter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Context is the state shared by the spawners of one run.
type Context struct {
	Sim   *engine.Simulation
	Ships *Counter
	Log   logrus.FieldLogger
}

func NewContext(sim *engine.Simulation, log logrus.FieldLogger) *Context {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Context{Sim: sim, Ships: &Counter{}, Log: log}
}

// Fleet records every ship spawned during a run.
type Fleet struct {
	mu    sync.Mutex
	ships []SpawnEvent
}

func NewFleet() *Fleet {
	return &Fleet{ships: make([]SpawnEvent, 0)}
}

func (f *Fleet) Add(ev SpawnEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ships = append(f.ships, ev)
}

func (f *Fleet) Ships() []SpawnEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]SpawnEvent, len(f.ships))
	copy(result, f.ships)
	return result
}

func (f *Fleet) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ships)
}

func (f *Fleet) CountByLane() map[lane.Lane]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[lane.Lane]int, len(lane.All))
	for _, s := range f.ships {
		counts[s.Lane]++
	}
	return counts
}
