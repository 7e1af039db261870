package yinfft

import "github.com/ppquadrat/tonyweb-core/dsp/grid"

// FrameSize is the analysis window length in samples.
const FrameSize = grid.FrameSize

// Hop is the number of samples advanced between frames.
const Hop = grid.Hop

const (
	minFreqHz = 60.0
	maxFreqHz = 1200.0

	defaultThreshold    = 0.75
	defaultRMSThreshold = 0.01

	transitionCostWeight  = 1.0
	voicingTransitionCost = 1.5
	minVoicedRun          = 8

	deepSearchCandidateCap = 20
	deepSearchUnvoicedProb = 1e-15
	deepSearchEffectiveThr = 10.0

	// PadSamples is the amount of extra context loaded on either side of a
	// partial re-analysis region.
	PadSamples = 4096
)

// AnalyzeOptions configures one PyinEngine.Analyze call.
type AnalyzeOptions struct {
	Threshold    float64
	RMSThreshold float64
	DeepSearch   bool
	Progress     func(float64)
}

// Option mutates AnalyzeOptions, following the functional-options shape
// used throughout the core library (core.ProcessorOption).
type Option func(*AnalyzeOptions)

// DefaultAnalyzeOptions returns the default analysis parameters.
func DefaultAnalyzeOptions() AnalyzeOptions {
	return AnalyzeOptions{
		Threshold:    defaultThreshold,
		RMSThreshold: defaultRMSThreshold,
	}
}

// WithThreshold sets the YIN dip acceptance threshold.
func WithThreshold(threshold float64) Option {
	return func(o *AnalyzeOptions) {
		if threshold > 0 {
			o.Threshold = threshold
		}
	}
}

// WithRMSThreshold sets the per-frame RMS voicing gate.
func WithRMSThreshold(rms float64) Option {
	return func(o *AnalyzeOptions) {
		if rms >= 0 {
			o.RMSThreshold = rms
		}
	}
}

// WithDeepSearch explicitly enables deep-search mode: effective threshold
// becomes unbounded (every local minimum is a candidate), the candidate set
// is capped to the 20 smallest-dip entries, the unvoiced-candidate
// probability collapses to 1e-15, and despeckling is skipped. This
// replaces the overloaded threshold>0.8 numeric switch the original
// implementation used (Design Notes, §9) with an explicit flag.
func WithDeepSearch() Option {
	return func(o *AnalyzeOptions) {
		o.DeepSearch = true
	}
}

// WithProgress registers a progress callback invoked with values in [0,1].
func WithProgress(fn func(float64)) Option {
	return func(o *AnalyzeOptions) {
		o.Progress = fn
	}
}

// ApplyOptions builds an AnalyzeOptions from defaults plus opts, in the
// same style as core.ApplyProcessorOptions.
func ApplyOptions(opts ...Option) AnalyzeOptions {
	cfg := DefaultAnalyzeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (o AnalyzeOptions) effectiveThreshold() float64 {
	if o.DeepSearch {
		return deepSearchEffectiveThr
	}
	return o.Threshold
}

func (o AnalyzeOptions) unvoicedProbFloor(bestDip float64) float64 {
	if o.DeepSearch {
		return deepSearchUnvoicedProb
	}
	p := bestDip * 0.5
	if p < 0.05 {
		p = 0.05
	}
	if p > 0.9 {
		p = 0.9
	}
	return p
}
