package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"maritime-simulator/internal/config"
	"maritime-simulator/internal/experiment"
	"maritime-simulator/internal/lane"
)

func main() {
	fs := pflag.NewFlagSet("maritime", pflag.ContinueOnError)
	cfg, err := config.Load(fs, os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		newLogger("info").WithError(err).Fatal("invalid configuration")
	}
	log := newLogger(cfg.LogLevel)

	banner := color.New(color.FgCyan, color.Bold)
	banner.Fprintln(os.Stderr, "==============================================")
	banner.Fprintf(os.Stderr, "   %s COMMUNICATION SIMULATION\n", scenarioTitle(cfg.Scenario))
	banner.Fprintln(os.Stderr, "==============================================")

	runner := experiment.NewRunner(log)
	if cfg.OutputDir != "-" {
		runner.Manifest = filepath.Join(cfg.OutputDir, "run.yaml")
	}
	if cfg.Compare {
		if _, err := runner.RunProtocolSweep(cfg); err != nil {
			log.WithError(err).Fatal("protocol sweep failed")
		}
		writeComparison(runner, cfg, log)
	} else {
		result, err := runner.RunExperiment(cfg)
		if err != nil {
			log.WithError(err).Fatal("simulation failed")
		}
		fmt.Fprintln(os.Stderr, result)
		printLanes(result.Summary.ShipsByLane)
	}
	runner.PrintSummary(os.Stderr)
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

func scenarioTitle(s string) string {
	if s == config.ScenarioMesh {
		return "MESH GRID"
	}
	return "MARITIME"
}

func printLanes(counts map[lane.Lane]int) {
	if len(counts) == 0 {
		return
	}
	for _, l := range lane.All {
		fmt.Fprintf(os.Stderr, "  %-5s lane: %d ships\n", l, counts[l])
	}
}

func writeComparison(runner *experiment.Runner, cfg config.Config, log logrus.FieldLogger) {
	csv := runner.GenerateCSV()
	path := filepath.Join(cfg.OutputDir, fmt.Sprintf("comparison_%s.csv", cfg.Scenario))
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		log.WithError(err).Error("could not write comparison")
		fmt.Print(csv)
		return
	}
	color.New(color.FgGreen).Fprintf(os.Stderr, ">>> Comparison written to %s\n", path)
}
