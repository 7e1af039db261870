// Package spectrogram computes a Hann-windowed STFT magnitude matrix over
// the same 2048/512 frame grid used by the pYIN engine, so that pitch
// frames and spectrogram columns line up sample-exactly.
package spectrogram

import (
	"context"
	"fmt"

	"github.com/ppquadrat/tonyweb-core/dsp/grid"
	"github.com/ppquadrat/tonyweb-core/dsp/spectrum"
	"github.com/ppquadrat/tonyweb-core/dsp/window"
	"github.com/ppquadrat/tonyweb-core/dsp/yinfft"
)

// Bins is the number of retained magnitude bins per frame: half the FFT
// size, covering [0, Nyquist).
const Bins = grid.FrameSize / 2

// Data is an immutable column-major magnitude matrix: Magnitude[col][bin].
// It is rebuilt wholesale on every audio load and never mutated in place.
type Data struct {
	Width        int
	Height       int
	Magnitude    [][]float64
	MaxMagnitude float64
	Generation   uint64
}

// Engine runs the STFT pipeline, reusing one FFT plan and Hann window
// across calls.
type Engine struct {
	fft        *yinfft.FFT
	hannWindow []float64
}

// NewEngine constructs a spectrogram engine.
func NewEngine() (*Engine, error) {
	fft, err := yinfft.New(grid.FrameSize)
	if err != nil {
		return nil, fmt.Errorf("spectrogram: %w", err)
	}
	return &Engine{
		fft:        fft,
		hannWindow: window.Generate(window.TypeHann, grid.FrameSize, window.WithPeriodic()),
	}, nil
}

// Compute runs the STFT over samples and returns a Data tagged with
// generation. ctx may be used to cancel the pass early (e.g. a new audio
// buffer was loaded); a cancelled context returns ctx.Err() and no partial
// Data.
func (e *Engine) Compute(ctx context.Context, samples []float64, generation uint64) (Data, error) {
	width := grid.FrameCount(len(samples))
	if width <= 0 {
		return Data{Height: Bins, Generation: generation}, nil
	}

	mag := make([][]float64, width)
	re := make([]float64, grid.FrameSize)
	im := make([]float64, grid.FrameSize)

	var maxMag float64

	for col := 0; col < width; col++ {
		select {
		case <-ctx.Done():
			return Data{}, ctx.Err()
		default:
		}

		start := col * grid.Hop
		for j := 0; j < grid.FrameSize; j++ {
			re[j] = samples[start+j] * e.hannWindow[j]
			im[j] = 0
		}

		if err := e.fft.Forward(re, im); err != nil {
			return Data{}, fmt.Errorf("spectrogram: %w", err)
		}

		colMag := make([]float64, Bins)
		spectrum.MagnitudeFromParts(colMag, re[:Bins], im[:Bins])
		for _, m := range colMag {
			if m > maxMag {
				maxMag = m
			}
		}
		mag[col] = colMag
	}

	return Data{
		Width:        width,
		Height:       Bins,
		Magnitude:    mag,
		MaxMagnitude: maxMag,
		Generation:   generation,
	}, nil
}
