package playback

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/ppquadrat/tonyweb-core/dsp/buffer"
	"github.com/ppquadrat/tonyweb-core/dsp/corekind"
	"github.com/ppquadrat/tonyweb-core/dsp/resample"
)

// resamplingSource wraps a SampleSource running at nativeRate, converting
// its output to deviceRate on the fly so OpenDevice never has to reject a
// project whose sample rate doesn't match the shared audio context.
type resamplingSource struct {
	source SampleSource

	left, right *resample.Resampler
	pool        *buffer.Pool

	pullBuf    []float32
	outL, outR []float64
}

func newResamplingSource(source SampleSource, nativeRate, deviceRate float64) (*resamplingSource, error) {
	left, err := resample.NewForRates(nativeRate, deviceRate)
	if err != nil {
		return nil, err
	}
	right, err := resample.NewForRates(nativeRate, deviceRate)
	if err != nil {
		return nil, err
	}
	return &resamplingSource{source: source, left: left, right: right, pool: buffer.NewPool()}, nil
}

// Process implements SampleSource, pulling and resampling native-rate
// frames from the wrapped source until dst is full.
func (r *resamplingSource) Process(dst []float32) {
	frames := len(dst) / 2
	for len(r.outL) < frames {
		r.fill(frames - len(r.outL))
	}
	for i := 0; i < frames; i++ {
		dst[2*i] = float32(r.outL[i])
		dst[2*i+1] = float32(r.outR[i])
	}
	r.outL = append(r.outL[:0], r.outL[frames:]...)
	r.outR = append(r.outR[:0], r.outR[frames:]...)
}

func (r *resamplingSource) fill(minFrames int) {
	pull := maxInt(minFrames, 256)
	need := pull * 2
	if cap(r.pullBuf) < need {
		r.pullBuf = make([]float32, need)
	}
	r.pullBuf = r.pullBuf[:need]
	r.source.Process(r.pullBuf)

	pendingL := r.pool.Get(pull)
	pendingR := r.pool.Get(pull)
	defer r.pool.Put(pendingL)
	defer r.pool.Put(pendingR)

	left := pendingL.Samples()
	right := pendingR.Samples()
	for i := 0; i < pull; i++ {
		left[i] = float64(r.pullBuf[2*i])
		right[i] = float64(r.pullBuf[2*i+1])
	}

	r.outL = append(r.outL, r.left.Process(left)...)
	r.outR = append(r.outR, r.right.Process(right)...)
}

// SampleSource produces interleaved stereo float32 audio on demand, the
// same pull contract the ebiten audio player drives its reader with.
// Scheduler satisfies it directly.
type SampleSource interface {
	Process(dst []float32)
}

// streamReader adapts a SampleSource to io.Reader by packing its float32
// output as little-endian IEEE 754 bytes, the wire format
// ebitaudio.Context.NewPlayerF32 expects.
type streamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

func newStreamReader(source SampleSource) *streamReader {
	return &streamReader{source: source}
}

func (r *streamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i := 0; i < need; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.buf[i]))
	}
	return frames * 8, nil
}

func (r *streamReader) Close() error { return nil }

var (
	deviceContextOnce  sync.Once
	deviceContext      *ebitaudio.Context
	deviceSampleRate   int
	deviceContextMutex sync.Mutex
)

// sharedDeviceContext lazily creates the process-wide ebiten audio
// context, the same one-context-per-process constraint the ebiten audio
// package imposes. A second call at a different sample rate fails rather
// than silently resampling underneath the caller.
func sharedDeviceContext(sampleRate int) (*ebitaudio.Context, error) {
	deviceContextMutex.Lock()
	defer deviceContextMutex.Unlock()

	deviceContextOnce.Do(func() {
		deviceSampleRate = sampleRate
		deviceContext = ebitaudio.NewContext(sampleRate)
	})
	if deviceSampleRate != sampleRate {
		return nil, fmt.Errorf("%w: audio device already opened at %d Hz (requested %d Hz)", corekind.ErrPlaybackFailed, deviceSampleRate, sampleRate)
	}
	return deviceContext, nil
}

// Device is the real-time audio output endpoint wired to a Scheduler.
// It owns the ebiten audio player and its underlying stream.
type Device struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

// OpenDevice opens (or reuses) the shared audio context at deviceSampleRate
// and attaches source as its pull-mode sample producer. If source was
// built at a different nativeSampleRate (a project recorded at 48 kHz
// played through a 44.1 kHz context, say), its output is resampled on the
// fly. Returns corekind.ErrPlaybackFailed if the device cannot be opened,
// e.g. a mismatched sample rate against an already-open context or a
// suspended platform audio backend.
func OpenDevice(nativeSampleRate, deviceSampleRate int, source SampleSource) (*Device, error) {
	ctx, err := sharedDeviceContext(deviceSampleRate)
	if err != nil {
		return nil, err
	}
	if nativeSampleRate != deviceSampleRate {
		resampled, err := newResamplingSource(source, float64(nativeSampleRate), float64(deviceSampleRate))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", corekind.ErrPlaybackFailed, err)
		}
		source = resampled
	}
	reader := newStreamReader(source)
	player, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", corekind.ErrPlaybackFailed, err)
	}
	return &Device{player: player, reader: reader}, nil
}

// Resume starts (or resumes) audio output.
func (d *Device) Resume() { d.player.Play() }

// Suspend pauses audio output without releasing the device.
func (d *Device) Suspend() { d.player.Pause() }

// IsRunning reports whether the device is currently pulling samples.
func (d *Device) IsRunning() bool { return d.player.IsPlaying() }

// Position returns how much audio the device has actually emitted,
// which lags the Scheduler's own BufferTime by the platform's output
// latency.
func (d *Device) Position() time.Duration { return d.player.Position() }

// Close stops playback and releases the device and its stream.
func (d *Device) Close() error {
	d.player.Pause()
	if err := d.player.Close(); err != nil {
		return fmt.Errorf("%w: %v", corekind.ErrPlaybackFailed, err)
	}
	return d.reader.Close()
}
