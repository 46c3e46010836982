package main

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/iti/rngstream"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/exp/slices"

	"maritime-simulator/internal/config"
	"maritime-simulator/internal/distribution"
	"maritime-simulator/internal/lane"
)

const barWidth = 40

func main() {
	fs := pflag.NewFlagSet("lanestats", pflag.ContinueOnError)
	draws := fs.Int("draws", 10000, "Samples drawn per table for the histogram")
	top := fs.Int("top", 10, "Rows printed per table")
	cfg, err := config.Load(fs, os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	fmt.Println("==============================================")
	fmt.Println("   LANE DISTRIBUTIONS")
	fmt.Println("==============================================")

	for _, l := range lane.All {
		s, err := distribution.BuildLaneSamplers(l, cfg.LaneParams(l), cfg.TimeGrid, cfg.SpeedGrid)
		if err != nil {
			logrus.WithError(err).WithField("lane", l).Fatal("could not build lane tables")
		}
		p := cfg.LaneParams(l)
		color.New(color.Bold).Printf("\n# %s lane: a=%g b=%g c=%g mu=%g sigma=%g\n", l, p.A, p.B, p.C, p.Mu, p.Sigma)

		src := rngstream.New(fmt.Sprintf("%s-%s-lanestats", cfg.SeedName, l))
		printTable("inter-arrival (min)", s.Time, src, *draws, *top)
		printTable("speed (km/s)", s.Speed, src, *draws, *top)
	}
}

// printTable lists the most likely steps of e next to the frequency they
// were drawn with.
func printTable(name string, e *distribution.Empirical, src distribution.Source, draws, top int) {
	points := e.Points()
	probs := e.Probabilities()

	counts := make(map[float64]int, len(points))
	for i := 0; i < draws; i++ {
		counts[e.Sample(src)]++
	}

	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(probs[b], probs[a])
	})
	if top > len(idx) {
		top = len(idx)
	}

	fmt.Printf("\n%s, %d steps, %d draws\n", name, len(points), draws)
	fmt.Printf("  %10s %9s %9s\n", "value", "table", "drawn")
	for _, i := range idx[:top] {
		v := points[i].Value
		observed := float64(counts[v]) / float64(draws)
		bar := strings.Repeat("#", int(observed*barWidth+0.5))
		fmt.Printf("  %10.5g %9.4f %9.4f %s\n", v, probs[i], observed, bar)
	}
}
