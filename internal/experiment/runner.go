package experiment

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"maritime-simulator/internal/config"
	"maritime-simulator/internal/routing"
	"maritime-simulator/internal/scenario"
)

// =============================================================================
// EXPERIMENT RESULT
// =============================================================================

type ExperimentResult struct {
	Name     string
	Protocol routing.Protocol
	Summary  scenario.Summary
	Duration time.Duration

	DeliveryRatio float64
	DeliveryLow   float64
	DeliveryHigh  float64
	MeanDelay     float64
	// per-second collector mean for maritime runs, report figure for mesh
	MeanThroughput float64
}

func (er ExperimentResult) String() string {
	return fmt.Sprintf(`
================================================================================
                        EXPERIMENT RESULT: %s
================================================================================
Configuration:
  Scenario:         %s
  Protocol:         %s
  Simulated time:   %.0fs
  Ships:            %d

Results:
  Packets sent:     %d
  Packets received: %d
  Delivery ratio:   %.2f%% (95%% CI %.2f%% - %.2f%%)
  Mean delay:       %.4fs
  Mean throughput:  %.2f B/s
  Wall time:        %s
================================================================================
`, er.Name, er.Summary.Scenario, er.Protocol, er.Summary.Duration, er.Summary.Ships,
		er.Summary.Totals.TxPackets, er.Summary.Totals.RxPackets,
		er.DeliveryRatio*100, er.DeliveryLow*100, er.DeliveryHigh*100,
		er.MeanDelay, er.MeanThroughput, er.Duration.Round(time.Millisecond))
}

// =============================================================================
// RUNNER
// =============================================================================

// Factory builds the scenario for one configuration.
type Factory func(cfg config.Config, log logrus.FieldLogger) (scenario.Scenario, error)

type Runner struct {
	Results []ExperimentResult
	Log     logrus.FieldLogger
	New     Factory

	// Manifest, when set, receives the run configuration as YAML once the
	// first scenario has been built.
	Manifest string

	manifestDone bool
}

func NewRunner(log logrus.FieldLogger) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Runner{
		Results: make([]ExperimentResult, 0),
		Log:     log,
		New:     scenario.New,
	}
}

func (r *Runner) RunExperiment(cfg config.Config) (ExperimentResult, error) {
	return r.run(cfg, cfg)
}

// run executes cfg; base is what the manifest records.
func (r *Runner) run(cfg, base config.Config) (ExperimentResult, error) {
	name := fmt.Sprintf("%s_%s", cfg.Scenario, cfg.Protocol)
	r.Log.WithFields(logrus.Fields{"experiment": name, "duration": cfg.Duration}).Info("running experiment")

	startTime := time.Now()
	sc, err := r.New(cfg, r.Log)
	if err != nil {
		return ExperimentResult{}, fmt.Errorf("%s: %w", name, err)
	}
	if err := r.writeManifest(base); err != nil {
		return ExperimentResult{}, fmt.Errorf("%s: run manifest: %w", name, err)
	}
	sum, err := sc.Run()
	if err != nil {
		return ExperimentResult{}, fmt.Errorf("%s: %w", name, err)
	}

	result := ExperimentResult{
		Name:          name,
		Protocol:      cfg.Protocol,
		Summary:       sum,
		Duration:      time.Since(startTime),
		DeliveryRatio: sum.DeliveryRatio(),
		MeanDelay:     sum.MeanDelay(),
	}
	result.DeliveryLow, result.DeliveryHigh = ConfidenceInterval(result.DeliveryRatio, sum.Totals.TxPackets)
	if len(sum.Samples) > 0 {
		rates := make([]float64, len(sum.Samples))
		for i, s := range sum.Samples {
			rates[i] = s.Throughput
		}
		result.MeanThroughput = stat.Mean(rates, nil)
	} else if sum.Mesh != nil {
		result.MeanThroughput = sum.Mesh.ThroughputBytes
	}

	r.Results = append(r.Results, result)
	return result, nil
}

func (r *Runner) writeManifest(cfg config.Config) error {
	if r.Manifest == "" || r.manifestDone {
		return nil
	}
	if err := cfg.WriteManifest(r.Manifest); err != nil {
		return err
	}
	r.manifestDone = true
	r.Log.WithField("path", r.Manifest).Info("run manifest written")
	return nil
}

// =============================================================================
// SWEEP FUNCTIONS
// =============================================================================

// RunProtocolSweep runs the configured scenario once per routing protocol.
func (r *Runner) RunProtocolSweep(base config.Config) ([]ExperimentResult, error) {
	results := make([]ExperimentResult, 0, len(routing.All))

	for _, p := range routing.All {
		cfg := base
		cfg.Protocol = p

		result, err := r.run(cfg, base)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	return results, nil
}

// =============================================================================
// SUMMARY
// =============================================================================

func (r *Runner) PrintSummary(w io.Writer) {
	fmt.Fprintln(w, "\n================================================================================")
	fmt.Fprintln(w, "                        EXPERIMENT SUMMARY")
	fmt.Fprintln(w, "================================================================================")

	for _, result := range r.Results {
		fmt.Fprintf(w, "\n%s:\n", result.Name)
		fmt.Fprintf(w, "  Protocol: %s, Ships: %d\n", result.Protocol, result.Summary.Ships)
		fmt.Fprintf(w, "  PDR: %.1f%%, Mean Delay: %.4fs, Mean Throughput: %.1f B/s\n",
			result.DeliveryRatio*100,
			result.MeanDelay,
			result.MeanThroughput)
	}

	if best, ok := r.Fastest(); ok {
		fmt.Fprintf(w, "\nLowest mean delay: %s (%.4fs)\n", best.Protocol, best.MeanDelay)
	}
	fmt.Fprintln(w, "\n================================================================================")
}

// Fastest is the result with the lowest mean delay among runs that
// delivered anything.
func (r *Runner) Fastest() (ExperimentResult, bool) {
	var best ExperimentResult
	found := false
	for _, result := range r.Results {
		if result.Summary.Totals.RxPackets == 0 {
			continue
		}
		if !found || result.MeanDelay < best.MeanDelay {
			best = result
			found = true
		}
	}
	return best, found
}

func (r *Runner) GenerateCSV() string {
	var b strings.Builder
	b.WriteString("experiment,scenario,protocol,ships,tx_packets,rx_packets,pdr,pdr_low,pdr_high,mean_delay,mean_throughput\n")

	for _, result := range r.Results {
		fmt.Fprintf(&b, "%s,%s,%s,%d,%d,%d,%.3f,%.3f,%.3f,%.6f,%.3f\n",
			result.Name,
			result.Summary.Scenario,
			result.Protocol,
			result.Summary.Ships,
			result.Summary.Totals.TxPackets,
			result.Summary.Totals.RxPackets,
			result.DeliveryRatio,
			result.DeliveryLow,
			result.DeliveryHigh,
			result.MeanDelay,
			result.MeanThroughput,
		)
	}

	return b.String()
}

func ConfidenceInterval(rate float64, n int) (float64, float64) {
	if n == 0 {
		return 0, 1
	}

	z := 1.96
	p := rate

	se := math.Sqrt(p * (1 - p) / float64(n))
	lower := math.Max(0, p-z*se)
	upper := math.Min(1, p+z*se)

	return lower, upper
}
