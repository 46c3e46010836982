package mesh

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"maritime-simulator/internal/flow"
	"maritime-simulator/internal/routing"
)

type Results struct {
	ExecutedAt time.Time
	Nodes      int
	Clients    int
	Step       float64
	Protocol   routing.Protocol
	PacketSize int
	TotalTime  float64

	EndToEndDelayMs   float64
	ThroughputPackets float64
	ThroughputBytes   float64
	Sent              int
	Received          int
}

// CalculateResults averages the flow totals over the run time.
func CalculateResults(totals flow.Stats, totalTime float64) Results {
	r := Results{
		Sent:     totals.TxPackets,
		Received: totals.RxPackets,
	}
	if totals.RxPackets > 0 {
		r.EndToEndDelayMs = totals.DelaySum / float64(totals.RxPackets) * 1000
	}
	if totalTime > 0 {
		r.ThroughputBytes = float64(totals.RxBytes) / totalTime
		r.ThroughputPackets = float64(totals.RxPackets) / totalTime
	}
	return r
}

// FileName follows SimulationResults_RoutingProtocol_<P>_NodeNumber_<N>.txt.
func FileName(dir string, p routing.Protocol, nodes int) string {
	return filepath.Join(dir, fmt.Sprintf("SimulationResults_RoutingProtocol_%s_NodeNumber_%d.txt", p, nodes))
}

func WriteResults(w io.Writer, r Results) error {
	_, err := fmt.Fprintf(w, `
---Simulation Results Begin---
Execution time: %s
Nodes: %d
Clients (ping sources): %d
Space between nodes (m): %g
Routing protocol: %s
Packet size (bytes): %d
Simulation Total Time (s): %g
Average End-To-End delay (ms): %.3f
Throughput (packets/s): %.3f
Throughput (bytes/s): %.3f
Packets sent: %d
Packets received: %d
---Simulation Results End---
`, r.ExecutedAt.Format(time.ANSIC), r.Nodes, r.Clients, r.Step, r.Protocol, r.PacketSize,
		r.TotalTime, r.EndToEndDelayMs, r.ThroughputPackets, r.ThroughputBytes, r.Sent, r.Received)
	return err
}

// Report appends the results to path. When the file cannot be opened the
// results go to fallback instead and the run carries on.
func Report(path string, fallback io.Writer, r Results, log logrus.FieldLogger) (usedFallback bool, err error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("could not open results file, writing to stdout")
		return true, WriteResults(fallback, r)
	}
	defer f.Close()
	log.WithField("path", path).Info("writing simulation results")
	return false, WriteResults(f, r)
}
