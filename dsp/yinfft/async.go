package yinfft

import (
	"context"
	"sort"

	"github.com/ppquadrat/tonyweb-core/dsp/grid"
)

// AnalyzeAsync runs Analyze on a background goroutine. Progress values in
// [0,1] are delivered on the returned channel, which is closed when the
// goroutine finishes; the result channel receives exactly one PitchTrack
// (or is closed without a value on error or cancellation). Cancelling ctx
// stops progress delivery and the analysis continues to completion in the
// background but its result is discarded.
func (e *Engine) AnalyzeAsync(ctx context.Context, samples []float64, sampleRate float64, opts ...Option) (<-chan float64, <-chan PitchTrack, <-chan error) {
	progressCh := make(chan float64, 16)
	resultCh := make(chan PitchTrack, 1)
	errCh := make(chan error, 1)

	cfg := ApplyOptions(opts...)
	userProgress := cfg.Progress
	cfg.Progress = func(p float64) {
		if userProgress != nil {
			userProgress(p)
		}
		if ctx.Err() != nil {
			return
		}
		select {
		case progressCh <- p:
		default:
		}
	}

	go func() {
		defer close(progressCh)
		defer close(resultCh)
		defer close(errCh)

		track, err := e.analyze(samples, sampleRate, cfg)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			select {
			case errCh <- err:
			case <-ctx.Done():
			}
			return
		}
		select {
		case resultCh <- track:
		case <-ctx.Done():
		}
	}()

	return progressCh, resultCh, errCh
}

// PartialReanalyze re-estimates pitch over the region [t0,t1] (seconds)
// using deep-search parameters and merges the result into existing,
// replacing every frame of existing whose timestamp falls within
// [t0,t1). samples and sampleRate describe the FULL original buffer: the
// region is expanded by PadSamples on each side for analysis context, then
// frames produced from the padding are discarded and the remainder's
// timestamps are shifted back into the full-buffer timeline.
func (e *Engine) PartialReanalyze(existing PitchTrack, samples []float64, sampleRate float64, t0, t1 float64, opts ...Option) (PitchTrack, error) {
	startSample := grid.FrameIndex(t0, sampleRate) * Hop
	endSample := grid.FrameIndex(t1, sampleRate)*Hop + FrameSize

	padStart := startSample - PadSamples
	if padStart < 0 {
		padStart = 0
	}
	padEnd := endSample + PadSamples
	if padEnd > len(samples) {
		padEnd = len(samples)
	}
	if padEnd <= padStart {
		return existing, nil
	}

	region := samples[padStart:padEnd]

	merged := append([]Option{WithDeepSearch()}, opts...)
	regionTrack, err := e.Analyze(region, sampleRate, merged...)
	if err != nil {
		return nil, err
	}

	offset := float64(padStart) / sampleRate

	var fresh []PitchFrame
	for _, f := range regionTrack {
		ts := f.Timestamp + offset
		if ts < t0 || ts >= t1 {
			continue
		}
		f.Timestamp = ts
		fresh = append(fresh, f)
	}

	out := make(PitchTrack, 0, len(existing)+len(fresh))
	for _, f := range existing {
		if f.Timestamp >= t0 && f.Timestamp < t1 {
			continue
		}
		out = append(out, f)
	}
	out = append(out, fresh...)

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })

	return out, nil
}
