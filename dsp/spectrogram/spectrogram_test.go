package spectrogram

import (
	"context"
	"math"
	"testing"

	"github.com/ppquadrat/tonyweb-core/dsp/grid"
)

func sineWave(freq, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return out
}

func TestComputeEmptyBufferYieldsWidthZero(t *testing.T) {
	e, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	data, err := e.Compute(context.Background(), nil, 1)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if data.Width != 0 {
		t.Fatalf("Width = %d, want 0 for empty audio", data.Width)
	}
	if data.Height != Bins {
		t.Fatalf("Height = %d, want %d", data.Height, Bins)
	}
}

func TestComputeDimensionsMatchFrameGrid(t *testing.T) {
	sampleRate := 44100.0
	samples := sineWave(440, sampleRate, int(sampleRate))

	e, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	data, err := e.Compute(context.Background(), samples, 7)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	wantWidth := grid.FrameCount(len(samples))
	if data.Width != wantWidth {
		t.Fatalf("Width = %d, want %d", data.Width, wantWidth)
	}
	if data.Height != Bins {
		t.Fatalf("Height = %d, want %d", data.Height, Bins)
	}
	if len(data.Magnitude) != wantWidth {
		t.Fatalf("len(Magnitude) = %d, want %d", len(data.Magnitude), wantWidth)
	}
	for _, col := range data.Magnitude {
		if len(col) != Bins {
			t.Fatalf("column length = %d, want %d", len(col), Bins)
		}
	}
	if data.Generation != 7 {
		t.Fatalf("Generation = %d, want 7", data.Generation)
	}
}

func TestComputeTracksRunningMaximum(t *testing.T) {
	sampleRate := 44100.0
	samples := sineWave(440, sampleRate, int(sampleRate))

	e, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	data, err := e.Compute(context.Background(), samples, 1)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	var want float64
	for _, col := range data.Magnitude {
		for _, m := range col {
			if m > want {
				want = m
			}
		}
	}
	if data.MaxMagnitude != want {
		t.Fatalf("MaxMagnitude = %v, want %v", data.MaxMagnitude, want)
	}
	if data.MaxMagnitude <= 0 {
		t.Fatal("expected a positive running maximum for a non-silent signal")
	}
}

func TestComputeBinsConcentratedNearToneFrequency(t *testing.T) {
	sampleRate := 44100.0
	samples := sineWave(1000, sampleRate, int(sampleRate))

	e, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	data, err := e.Compute(context.Background(), samples, 1)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	binHz := sampleRate / grid.FrameSize
	expectedBin := int(1000 / binHz)

	col := data.Magnitude[len(data.Magnitude)/2]
	var peakBin int
	var peakMag float64
	for i, m := range col {
		if m > peakMag {
			peakMag = m
			peakBin = i
		}
	}
	if math.Abs(float64(peakBin-expectedBin)) > 2 {
		t.Fatalf("peak bin = %d, want close to %d", peakBin, expectedBin)
	}
}

func TestComputeCancellation(t *testing.T) {
	sampleRate := 44100.0
	samples := sineWave(440, sampleRate, int(sampleRate*2))

	e, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Compute(ctx, samples, 1)
	if err == nil {
		t.Fatal("expected an error from a pre-cancelled context")
	}
}
