// Package grid implements the frame-grid time discretization shared by
// every component of the pitch-analysis core: pitch frames, note
// boundaries, selection bounds, and seek targets all snap to multiples of
// Hop/sampleRate so that analysis passes taken at different times align
// exactly, with no sub-frame drift.
package grid

import "math"

// Hop is the number of input samples between consecutive analysis frames.
const Hop = 512

// FrameSize is the analysis window length in samples (YIN and the
// spectrogram STFT both use this).
const FrameSize = 2048

// Duration returns the frame duration in seconds for the given sample rate.
func Duration(sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return Hop / sampleRate
}

// Snap rounds t to the nearest multiple of Hop/sampleRate.
//
// Snap is idempotent: Snap(Snap(t, sr), sr) == Snap(t, sr).
func Snap(t, sampleRate float64) float64 {
	d := Duration(sampleRate)
	if d == 0 {
		return t
	}
	return math.Round(t/d) * d
}

// FrameTime returns the grid-aligned timestamp of frameIndex.
func FrameTime(frameIndex int, sampleRate float64) float64 {
	return float64(frameIndex) * Duration(sampleRate)
}

// FrameIndex returns the frame index whose grid timestamp is closest to t.
func FrameIndex(t, sampleRate float64) int {
	d := Duration(sampleRate)
	if d == 0 {
		return 0
	}
	return int(math.Round(t / d))
}

// FrameCount returns the number of analysis frames a buffer of the given
// sample count yields, per the hop/frame-size convention used throughout
// the core: floor((samples-FrameSize)/Hop).
func FrameCount(samples int) int {
	if samples < FrameSize {
		return 0
	}
	return (samples - FrameSize) / Hop
}
