package network

import (
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"maritime-simulator/internal/distribution"
)

// DelayModel draws the per-hop delay of a radio link: a base delay that
// changes at Poisson-distributed instants plus lognormal jitter.
type DelayModel struct {
	BaseDelayMin   float64
	BaseDelayMax   float64
	TransitionRate float64
	JitterMu       float64
	JitterSigma    float64
	transitions    []PathTransition
	initialised    bool
	src            distribution.Source
}

type PathTransition struct {
	Time      float64
	BaseDelay float64
}

type DelayComponents struct {
	BaseDelay   float64
	Jitter      float64
	TotalDelay  float64
	MinPossible float64
}

type DelayModelConfig struct {
	BaseDelayMin   float64 `mapstructure:"base-delay-min" yaml:"base-delay-min"`
	BaseDelayMax   float64 `mapstructure:"base-delay-max" yaml:"base-delay-max"`
	TransitionRate float64 `mapstructure:"transition-rate" yaml:"transition-rate"`
	JitterMu       float64 `mapstructure:"jitter-mu" yaml:"jitter-mu"`
	JitterSigma    float64 `mapstructure:"jitter-sigma" yaml:"jitter-sigma"`
}

func DefaultDelayModelConfig() DelayModelConfig {
	return DelayModelConfig{
		BaseDelayMin:   0.005,
		BaseDelayMax:   0.020,
		TransitionRate: 0.05,
		// median ~2.5ms, occasional spikes past 10ms
		JitterMu:    -6.0,
		JitterSigma: 0.8,
	}
}

func NewDelayModel(cfg DelayModelConfig, src distribution.Source) *DelayModel {
	return &DelayModel{
		BaseDelayMin:   cfg.BaseDelayMin,
		BaseDelayMax:   cfg.BaseDelayMax,
		TransitionRate: cfg.TransitionRate,
		JitterMu:       cfg.JitterMu,
		JitterSigma:    cfg.JitterSigma,
		transitions:    make([]PathTransition, 0),
		src:            src,
	}
}

func (dm *DelayModel) Initialise(duration float64) {
	dm.transitions = make([]PathTransition, 0)

	currentTime := 0.0
	dm.transitions = append(dm.transitions, PathTransition{
		Time:      0,
		BaseDelay: dm.sampleBaseDelay(),
	})

	if dm.TransitionRate > 0 {
		inter := distuv.Exponential{Rate: dm.TransitionRate}
		for currentTime < duration {
			currentTime += inter.Quantile(dm.src.RandU01())
			if currentTime < duration {
				dm.transitions = append(dm.transitions, PathTransition{
					Time:      currentTime,
					BaseDelay: dm.sampleBaseDelay(),
				})
			}
		}
	}

	dm.initialised = true
}

func (dm *DelayModel) sampleBaseDelay() float64 {
	if dm.BaseDelayMax <= dm.BaseDelayMin {
		return dm.BaseDelayMin
	}
	u := distuv.Uniform{Min: dm.BaseDelayMin, Max: dm.BaseDelayMax}
	return u.Quantile(dm.src.RandU01())
}

func (dm *DelayModel) GetBaseDelay(t float64) float64 {
	if !dm.initialised || len(dm.transitions) == 0 {
		return dm.sampleBaseDelay()
	}

	// first transition after t; the active one precedes it
	idx := sort.Search(len(dm.transitions), func(i int) bool {
		return dm.transitions[i].Time > t
	})
	if idx == 0 {
		return dm.transitions[0].BaseDelay
	}
	return dm.transitions[idx-1].BaseDelay
}

func (dm *DelayModel) GetJitter() float64 {
	if dm.JitterSigma <= 0 {
		return 0
	}
	ln := distuv.LogNormal{Mu: dm.JitterMu, Sigma: dm.JitterSigma}
	return ln.Quantile(dm.src.RandU01())
}

func (dm *DelayModel) ComputeTotalDelay(sendTime float64) DelayComponents {
	base := dm.GetBaseDelay(sendTime)
	jitter := dm.GetJitter()
	return DelayComponents{
		BaseDelay:   base,
		Jitter:      jitter,
		TotalDelay:  base + jitter,
		MinPossible: base,
	}
}

func (dm *DelayModel) GetTransitionCount() int {
	return len(dm.transitions)
}

func (dm *DelayModel) GetTransitions() []PathTransition {
	result := make([]PathTransition, len(dm.transitions))
	copy(result, dm.transitions)
	return result
}

func (dm *DelayModel) Reset() {
	dm.transitions = make([]PathTransition, 0)
	dm.initialised = false
}

func (dm *DelayModel) IsInitialised() bool {
	return dm.initialised
}
