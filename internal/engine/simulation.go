package engine

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

type Event struct {
	Time   float64
	Action func()
	seq    uint64
}

// Task is recurring work driven by the event loop. Fire performs one
// round and returns the delay until the next round; ok=false retires it.
type Task interface {
	Fire(sim *Simulation) (next float64, ok bool)
}

// TaskFunc adapts a plain function to Task.
type TaskFunc func(sim *Simulation) (float64, bool)

func (f TaskFunc) Fire(sim *Simulation) (float64, bool) {
	return f(sim)
}

// Handle controls a scheduled task.
type Handle struct {
	stopped bool
	fired   int
}

// Stop prevents any further firing of the task.
func (h *Handle) Stop() {
	h.stopped = true
}

func (h *Handle) Stopped() bool {
	return h.stopped
}

// Fired reports how many rounds the task has run.
func (h *Handle) Fired() int {
	return h.fired
}

// Manages the virtual clock and the event schedule
type Simulation struct {
	now    float64
	seq    uint64
	events []Event
	log    logrus.FieldLogger
}

// Initialises a simulation environment
func NewSimulation() *Simulation {
	return &Simulation{
		now:    0.0,
		events: []Event{},
		log:    logrus.StandardLogger().WithField("component", "engine"),
	}
}

// WithLogger replaces the simulation's logger.
func (s *Simulation) WithLogger(log logrus.FieldLogger) *Simulation {
	s.log = log
	return s
}

// Now returns the simulated clock.
func (s *Simulation) Now() float64 {
	return s.now
}

func (s *Simulation) Schedule(delay float64, action func()) {
	s.insert(s.now+delay, action)
}

func (s *Simulation) ScheduleAt(absoluteTime float64, action func()) {
	if absoluteTime < s.now {
		s.log.WithFields(logrus.Fields{"at": absoluteTime, "now": s.now}).
			Debug("dropping event scheduled in the past")
		return
	}
	s.insert(absoluteTime, action)
}

// insert keeps events ordered by time; equal times keep scheduling order.
func (s *Simulation) insert(t float64, action func()) {
	s.seq++
	ev := Event{Time: t, Action: action, seq: s.seq}

	idx := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].Time > t
	})
	s.events = append(s.events, Event{})
	copy(s.events[idx+1:], s.events[idx:])
	s.events[idx] = ev
}

// ScheduleTask runs task after delay and re-arms it with the delay it
// returns, until it declines or the handle is stopped.
func (s *Simulation) ScheduleTask(delay float64, task Task) *Handle {
	h := &Handle{}
	var fire func()
	fire = func() {
		if h.stopped {
			return
		}
		next, ok := task.Fire(s)
		h.fired++
		if !ok || h.stopped {
			return
		}
		if next < 0 || math.IsNaN(next) || math.IsInf(next, 0) {
			s.log.WithField("next", next).Warn("task returned an invalid delay, retiring it")
			h.stopped = true
			return
		}
		s.Schedule(next, fire)
	}
	s.Schedule(delay, fire)
	return h
}

func (s *Simulation) Run(until float64) {
	for len(s.events) > 0 {
		event := s.events[0]

		if event.Time > until {
			break
		}

		s.events = s.events[1:]
		s.now = event.Time
		event.Action()
	}
}

func (s *Simulation) RunSteps(steps int) {
	for i := 0; i < steps && len(s.events) > 0; i++ {
		event := s.events[0]
		s.events = s.events[1:]
		s.now = event.Time
		event.Action()
	}
}

func (s *Simulation) PendingEvents() int {
	return len(s.events)
}

func (s *Simulation) NextEventTime() float64 {
	if len(s.events) == 0 {
		return -1
	}
	return s.events[0].Time
}

func (s *Simulation) Reset() {
	s.now = 0.0
	s.seq = 0
	s.events = []Event{}
}
