// Package analysis owns the background pitch and spectrogram workers:
// one job per kind at a time, a generation counter per kind so a result
// from a superseded job is dropped on arrival instead of overwriting
// newer state.
package analysis

import (
	"context"
	"sync"

	"github.com/ppquadrat/tonyweb-core/dsp/spectrogram"
	"github.com/ppquadrat/tonyweb-core/dsp/yinfft"
)

// Config configures the supervisor's default pYIN analysis options,
// applied to every StartPitchAnalysis call ahead of its own opts.
type Config struct {
	analyzeOptions []yinfft.Option
}

// Option mutates a Config, the same functional-options shape as
// dsp/core.ProcessorOption and dsp/history.Option.
type Option func(*Config)

// WithDefaultAnalyzeOptions sets the pYIN options every analysis job
// starts from.
func WithDefaultAnalyzeOptions(opts ...yinfft.Option) Option {
	return func(c *Config) {
		c.analyzeOptions = opts
	}
}

// ApplyOptions applies zero or more options to a zero-value Config.
func ApplyOptions(opts ...Option) Config {
	var cfg Config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Supervisor runs at most one pitch-analysis job and one
// spectrogram-computation job concurrently, discarding results whose
// generation has been superseded by a newer StartX call.
type Supervisor struct {
	cfg Config

	pitchEngine *yinfft.Engine
	specEngine  *spectrogram.Engine

	mu          sync.Mutex
	pitchGen    uint64
	pitchCancel context.CancelFunc
	specGen     uint64
	specCancel  context.CancelFunc
}

// NewSupervisor builds a Supervisor over fresh pYIN and spectrogram
// engines.
func NewSupervisor(opts ...Option) (*Supervisor, error) {
	specEngine, err := spectrogram.NewEngine()
	if err != nil {
		return nil, err
	}
	return &Supervisor{
		cfg:         ApplyOptions(opts...),
		pitchEngine: yinfft.NewEngine(),
		specEngine:  specEngine,
	}, nil
}

// StartPitchAnalysis cancels any in-flight pitch analysis and starts a
// new one. onProgress and onResult are invoked only while this call
// remains the newest one; a superseded job's callbacks are silently
// skipped once its result arrives.
func (s *Supervisor) StartPitchAnalysis(ctx context.Context, samples []float64, sampleRate float64, onProgress func(float64), onResult func(yinfft.PitchTrack, error), opts ...yinfft.Option) {
	s.mu.Lock()
	if s.pitchCancel != nil {
		s.pitchCancel()
	}
	jobCtx, cancel := context.WithCancel(ctx)
	s.pitchGen++
	generation := s.pitchGen
	s.pitchCancel = cancel
	allOpts := append(append([]yinfft.Option{}, s.cfg.analyzeOptions...), opts...)
	s.mu.Unlock()

	progressCh, resultCh, errCh := s.pitchEngine.AnalyzeAsync(jobCtx, samples, sampleRate, allOpts...)

	go func() {
		for progressCh != nil || resultCh != nil || errCh != nil {
			select {
			case p, ok := <-progressCh:
				if !ok {
					progressCh = nil
					continue
				}
				if onProgress != nil && s.isCurrentPitchJob(generation) {
					onProgress(p)
				}
			case track, ok := <-resultCh:
				if !ok {
					resultCh = nil
					continue
				}
				if onResult != nil && s.isCurrentPitchJob(generation) {
					onResult(track, nil)
				}
			case err, ok := <-errCh:
				if !ok {
					errCh = nil
					continue
				}
				if onResult != nil && s.isCurrentPitchJob(generation) {
					onResult(nil, err)
				}
			}
		}
	}()
}

func (s *Supervisor) isCurrentPitchJob(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return generation == s.pitchGen
}

// StartSpectrogram cancels any in-flight spectrogram computation and
// starts a new one on a background goroutine, invoking onResult with
// the finished Data (tagged with its own generation) once complete,
// unless superseded first.
func (s *Supervisor) StartSpectrogram(ctx context.Context, samples []float64, onResult func(spectrogram.Data, error)) {
	s.mu.Lock()
	if s.specCancel != nil {
		s.specCancel()
	}
	jobCtx, cancel := context.WithCancel(ctx)
	s.specGen++
	generation := s.specGen
	s.specCancel = cancel
	s.mu.Unlock()

	go func() {
		data, err := s.specEngine.Compute(jobCtx, samples, generation)
		if onResult == nil {
			return
		}
		s.mu.Lock()
		current := generation == s.specGen
		s.mu.Unlock()
		if current {
			onResult(data, err)
		}
	}()
}

// CancelAll cancels any in-flight pitch and spectrogram jobs without
// starting replacements.
func (s *Supervisor) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pitchCancel != nil {
		s.pitchCancel()
	}
	if s.specCancel != nil {
		s.specCancel()
	}
}

// PitchGeneration reports the current pitch-job generation counter, for
// tests asserting staleness behavior.
func (s *Supervisor) PitchGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pitchGen
}
