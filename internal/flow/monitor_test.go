package flow

import (
	"math"
	"sync"
	"testing"
)

func TestFlowIDsStable(t *testing.T) {
	m := NewMonitor()
	a := m.Flow("ship-1", "station")
	b := m.Flow("ship-2", "station")
	if a == b {
		t.Fatal("distinct flows share an ID")
	}
	if again := m.Flow("ship-1", "station"); again != a {
		t.Errorf("Flow() = %v on second call, want %v", again, a)
	}
	k, ok := m.Key(b)
	if !ok || k.String() != "ship-2->station" {
		t.Errorf("Key(%v) = %v, %v", b, k, ok)
	}
	if _, ok := m.Key(99); ok {
		t.Error("unknown flow resolved")
	}
}

func TestTxRxAccounting(t *testing.T) {
	m := NewMonitor()
	id := m.Flow("a", "b")

	m.RecordTx(id, 1, 100, 1.0)
	m.RecordTx(id, 2, 100, 2.0)
	m.RecordTx(id, 3, 50, 3.0)
	m.RecordRx(id, 1, 100, 1.5)
	m.RecordRx(id, 2, 100, 3.0)
	m.RecordLoss(id, 3)
	m.RecordRx(id, 42, 100, 9.0) // never sent

	s := m.Snapshot()[id]
	if s.TxPackets != 3 || s.RxPackets != 2 || s.Lost != 1 {
		t.Errorf("packets tx=%d rx=%d lost=%d, want 3 2 1", s.TxPackets, s.RxPackets, s.Lost)
	}
	if s.TxBytes != 250 || s.RxBytes != 200 {
		t.Errorf("bytes tx=%d rx=%d, want 250 200", s.TxBytes, s.RxBytes)
	}
	if math.Abs(s.DelaySum-1.5) > 1e-12 || math.Abs(s.MeanDelay()-0.75) > 1e-12 {
		t.Errorf("delay sum=%v mean=%v, want 1.5 0.75", s.DelaySum, s.MeanDelay())
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	m := NewMonitor()
	id := m.Flow("a", "b")
	m.RecordTx(id, 1, 10, 0)
	snap := m.Snapshot()
	m.RecordTx(id, 2, 10, 0)
	if snap[id].TxPackets != 1 {
		t.Errorf("snapshot changed after later Tx: %d", snap[id].TxPackets)
	}
}

func TestConcurrentRecording(t *testing.T) {
	m := NewMonitor()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := m.Flow("src", "dst")
			for i := 0; i < 500; i++ {
				pkt := int64(w*1000 + i)
				m.RecordTx(id, pkt, 1, 0)
				m.RecordRx(id, pkt, 1, 1)
			}
		}()
	}
	wg.Wait()
	tot := m.Totals()
	if tot.TxPackets != 2000 || tot.RxPackets != 2000 || tot.DelaySum != 2000 {
		t.Errorf("totals = %+v", tot)
	}
}

func TestEmptyMeanDelay(t *testing.T) {
	if (Stats{}).MeanDelay() != 0 {
		t.Error("empty stats mean delay not zero")
	}
}
