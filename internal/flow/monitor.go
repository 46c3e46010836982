// Package flow keeps per-flow traffic accounting: packets and bytes sent
// and received, and the summed end-to-end delay of received packets.
package flow

import (
	"fmt"
	"sync"
)

type ID int

// Key names the endpoints of a flow.
type Key struct {
	Src string
	Dst string
}

func (k Key) String() string {
	return fmt.Sprintf("%s->%s", k.Src, k.Dst)
}

type Stats struct {
	TxPackets int
	RxPackets int
	Lost      int
	TxBytes   uint64
	RxBytes   uint64
	DelaySum  float64
}

// MeanDelay is the average delay of the received packets, 0 if none.
func (s Stats) MeanDelay() float64 {
	if s.RxPackets == 0 {
		return 0
	}
	return s.DelaySum / float64(s.RxPackets)
}

// Snapshotter exposes a read-only view of the accounted flows.
type Snapshotter interface {
	Snapshot() map[ID]Stats
}

type Monitor struct {
	mu       sync.Mutex
	ids      map[Key]ID
	keys     []Key
	stats    map[ID]*Stats
	sentTime map[int64]float64
}

func NewMonitor() *Monitor {
	return &Monitor{
		ids:      make(map[Key]ID),
		keys:     make([]Key, 0),
		stats:    make(map[ID]*Stats),
		sentTime: make(map[int64]float64),
	}
}

// Flow returns the ID for the src->dst flow, registering it on first use.
func (m *Monitor) Flow(src, dst string) ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := Key{Src: src, Dst: dst}
	if id, ok := m.ids[k]; ok {
		return id
	}
	id := ID(len(m.keys) + 1)
	m.ids[k] = id
	m.keys = append(m.keys, k)
	m.stats[id] = &Stats{}
	return id
}

// Key returns the endpoints of a registered flow.
func (m *Monitor) Key(id ID) (Key, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 1 || int(id) > len(m.keys) {
		return Key{}, false
	}
	return m.keys[id-1], true
}

func (m *Monitor) RecordTx(id ID, pktID int64, size int, now float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(id)
	s.TxPackets++
	s.TxBytes += uint64(size)
	m.sentTime[pktID] = now
}

// RecordRx accounts a delivered packet. Packets never sent through
// RecordTx are ignored.
func (m *Monitor) RecordRx(id ID, pktID int64, size int, now float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sent, ok := m.sentTime[pktID]
	if !ok {
		return
	}
	delete(m.sentTime, pktID)
	s := m.get(id)
	s.RxPackets++
	s.RxBytes += uint64(size)
	s.DelaySum += now - sent
}

func (m *Monitor) RecordLoss(id ID, pktID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sentTime[pktID]; !ok {
		return
	}
	delete(m.sentTime, pktID)
	m.get(id).Lost++
}

func (m *Monitor) get(id ID) *Stats {
	s, ok := m.stats[id]
	if !ok {
		s = &Stats{}
		m.stats[id] = s
	}
	return s
}

// Snapshot copies the current per-flow statistics.
func (m *Monitor) Snapshot() map[ID]Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[ID]Stats, len(m.stats))
	for id, s := range m.stats {
		out[id] = *s
	}
	return out
}

// Totals sums every flow.
func (m *Monitor) Totals() Stats {
	var t Stats
	for _, s := range m.Snapshot() {
		t.TxPackets += s.TxPackets
		t.RxPackets += s.RxPackets
		t.Lost += s.Lost
		t.TxBytes += s.TxBytes
		t.RxBytes += s.RxBytes
		t.DelaySum += s.DelaySum
	}
	return t
}
