// Package yinfft implements the probabilistic YIN (pYIN) pitch estimator:
// per-frame candidate extraction over the YIN cumulative-mean-normalized
// difference function, Viterbi path decoding across frames, and a
// voiced-run despeckling pass. It also hosts the radix-2 FFT used by the
// sibling spectrogram engine, since both share the same frame grid.
package yinfft

import (
	"fmt"
	"math"
	"sort"

	"github.com/ppquadrat/tonyweb-core/dsp/grid"
	"github.com/ppquadrat/tonyweb-core/dsp/window"
	timestats "github.com/ppquadrat/tonyweb-core/stats/time"
)

// Engine runs pYIN analysis over mono sample buffers.
type Engine struct {
	hannWindow []float64
}

// NewEngine constructs a pYIN engine. The Hann window is precomputed once
// and reused across frames and calls.
func NewEngine() *Engine {
	return &Engine{
		hannWindow: window.Generate(window.TypeHann, FrameSize, window.WithPeriodic()),
	}
}

// Analyze runs pYIN over mono samples in [-1,1] at sampleRate and returns a
// PitchTrack of length grid.FrameCount(len(samples)). opts configures the
// threshold, RMS gate, and deep-search mode; omitting opts uses the
// default parameters.
func (e *Engine) Analyze(samples []float64, sampleRate float64, opts ...Option) (PitchTrack, error) {
	return e.analyze(samples, sampleRate, ApplyOptions(opts...))
}

func (e *Engine) analyze(samples []float64, sampleRate float64, cfg AnalyzeOptions) (PitchTrack, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("yinfft: sample rate must be positive, got %f", sampleRate)
	}

	count := grid.FrameCount(len(samples))
	if count <= 0 {
		return PitchTrack{}, nil
	}

	reportProgress(cfg.Progress, 0)

	minTau := int(math.Ceil(sampleRate / maxFreqHz))
	maxTau := int(math.Floor(sampleRate / minFreqHz))
	if maxTau > FrameSize/2-2 {
		maxTau = FrameSize/2 - 2
	}

	lattice := make([][]PitchCandidate, count)
	frame := make([]float64, FrameSize)
	diff := make([]float64, FrameSize/2)

	for i := 0; i < count; i++ {
		start := i * Hop
		copy(frame, samples[start:start+FrameSize])
		for j := range frame {
			frame[j] *= e.hannWindow[j]
		}

		lattice[i] = extractCandidates(frame, diff, sampleRate, minTau, maxTau, cfg)

		reportProgress(cfg.Progress, 0.5*float64(i+1)/float64(count))
	}

	chosen := viterbiDecode(lattice)

	reportProgress(cfg.Progress, 0.9)

	track := make(PitchTrack, count)
	for i := 0; i < count; i++ {
		c := lattice[i][chosen[i]]
		track[i] = PitchFrame{
			Timestamp:   float64(i) * Hop / sampleRate,
			Frequency:   c.Frequency,
			Probability: c.Probability,
			HasPitch:    c.Frequency > 0,
			Candidates:  lattice[i],
		}
	}

	reportProgress(cfg.Progress, 0.95)

	if !cfg.DeepSearch {
		despeckle(track)
	}

	reportProgress(cfg.Progress, 1)

	return track, nil
}

func reportProgress(fn func(float64), p float64) {
	if fn != nil {
		fn(p)
	}
}

// extractCandidates implements §4.4 steps 1-5 for a single windowed frame.
func extractCandidates(frame, diff []float64, sampleRate float64, minTau, maxTau int, cfg AnalyzeOptions) []PitchCandidate {
	rms := timestats.Calculate(frame).RMS

	if rms < cfg.RMSThreshold {
		return []PitchCandidate{{Frequency: 0, Probability: 0.99, YinDip: 0.01}}
	}

	difference(frame, diff)
	cumulativeMeanNormalize(diff)

	threshold := cfg.effectiveThreshold()

	lo := minTau
	if lo < 1 {
		lo = 1
	}
	hi := maxTau
	if hi > len(diff)-2 {
		hi = len(diff) - 2
	}

	var candidates []PitchCandidate
	bestDip := 1.0

	for tau := lo; tau <= hi; tau++ {
		if diff[tau] < bestDip {
			bestDip = diff[tau]
		}
		if diff[tau] >= threshold {
			continue
		}
		if !(diff[tau] < diff[tau-1] && diff[tau] < diff[tau+1]) {
			continue
		}

		refinedTau := parabolicInterpolate(diff, tau)
		if refinedTau <= 0 {
			continue
		}

		prob := 1 - diff[tau]
		if prob < 1e-4 {
			prob = 1e-4
		}

		candidates = append(candidates, PitchCandidate{
			Frequency:   sampleRate / refinedTau,
			Probability: prob,
			YinDip:      diff[tau],
		})
	}

	if cfg.DeepSearch && len(candidates) > deepSearchCandidateCap {
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].YinDip < candidates[j].YinDip })
		candidates = candidates[:deepSearchCandidateCap]
	}

	candidates = append(candidates, PitchCandidate{
		Frequency:   0,
		Probability: cfg.unvoicedProbFloor(bestDip),
		YinDip:      bestDip,
	})

	return candidates
}
