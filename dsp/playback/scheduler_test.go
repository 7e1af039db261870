package playback

import (
	"math"
	"testing"

	"github.com/ppquadrat/tonyweb-core/dsp/notemodel"
	"github.com/ppquadrat/tonyweb-core/dsp/yinfft"
)

func toneBuffer(freq, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return out
}

func TestNewSchedulerRejectsNonPositiveSampleRate(t *testing.T) {
	if _, err := NewScheduler(toneBuffer(440, 44100, 100), 0); err == nil {
		t.Fatal("expected an error for sampleRate <= 0")
	}
}

func TestPlayStartsPlaybackAndProcessProducesAudio(t *testing.T) {
	sampleRate := 44100.0
	buf := toneBuffer(220, sampleRate, int(sampleRate))
	s, err := NewScheduler(buf, sampleRate)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	track := yinfft.PitchTrack{
		{Timestamp: 0, Frequency: 220, HasPitch: true},
		{Timestamp: 0.5, Frequency: 220, HasPitch: true},
	}
	notes := notemodel.List{{ID: "n1", Start: 0, End: 0.5, Pitch: 220}}

	if err := s.Play(0, 1, 0, track, notes); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !s.IsPlaying() {
		t.Fatal("expected IsPlaying() to be true after Play")
	}

	s.UpdateMixer(MixerState{
		Original: VoiceMix{Enabled: true, Volume: 1},
		Pitch:    VoiceMix{Enabled: true, Volume: 1},
		Notes:    VoiceMix{Enabled: true, Volume: 1},
	})

	dst := make([]float32, 2*1024)
	s.Process(dst)

	var sawNonZero bool
	for _, v := range dst {
		if v != 0 {
			sawNonZero = true
		}
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("non-finite sample in output: %v", v)
		}
	}
	if !sawNonZero {
		t.Fatal("expected some non-zero output once mixer gains have ramped up")
	}
}

func TestStopHaltsOutput(t *testing.T) {
	sampleRate := 44100.0
	buf := toneBuffer(220, sampleRate, int(sampleRate))
	s, err := NewScheduler(buf, sampleRate)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	if err := s.Play(0, 1, 0, nil, nil); err != nil {
		t.Fatalf("Play: %v", err)
	}
	s.Stop()
	if s.IsPlaying() {
		t.Fatal("expected IsPlaying() false after Stop")
	}

	dst := make([]float32, 2*64)
	for i := range dst {
		dst[i] = 1
	}
	s.Process(dst)
	for i, v := range dst {
		if v != 0 {
			t.Fatalf("dst[%d] = %v, want 0 once stopped", i, v)
		}
	}
}

func TestBufferTimeAdvancesWithRate(t *testing.T) {
	sampleRate := 44100.0
	buf := toneBuffer(220, sampleRate, 2*int(sampleRate))
	s, err := NewScheduler(buf, sampleRate)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	if err := s.Play(0, 2, 0, nil, nil); err != nil {
		t.Fatalf("Play: %v", err)
	}

	// 0.25s of wall-clock (stretched-audio-domain) time at rate 2 should
	// advance the original-buffer playhead by about 0.5s.
	dst := make([]float32, 2*int(sampleRate*0.25))
	s.Process(dst)

	want := 0.5
	if math.Abs(s.BufferTime()-want) > 0.01 {
		t.Fatalf("BufferTime() = %v, want close to %v after 0.25s of stretched audio at rate 2", s.BufferTime(), want)
	}
}

func TestLoopRearmsAtLoopStart(t *testing.T) {
	sampleRate := 44100.0
	buf := toneBuffer(220, sampleRate, int(sampleRate))
	s, err := NewScheduler(buf, sampleRate)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	if err := s.Play(0, 1, 0, nil, nil); err != nil {
		t.Fatalf("Play: %v", err)
	}
	s.SetLoop(true, 0, 0.1)

	dst := make([]float32, 2*int(sampleRate*0.3))
	s.Process(dst)

	if !s.IsPlaying() {
		t.Fatal("expected the scheduler to still be playing after looping")
	}
	if s.BufferTime() >= 0.1 {
		t.Fatalf("BufferTime() = %v, expected it to have wrapped back under loopEnd", s.BufferTime())
	}
}

func TestOriginalVoiceRuntimeReportsExhaustion(t *testing.T) {
	o := &originalVoiceRuntime{samples: []float64{1, 2, 3}}
	if o.exhausted() {
		t.Fatal("expected not exhausted before consuming all samples")
	}
	for i := 0; i < 3; i++ {
		o.ProcessSample()
	}
	if !o.exhausted() {
		t.Fatal("expected exhausted after consuming all samples")
	}
	if v := o.ProcessSample(); v != 0 {
		t.Fatalf("ProcessSample() past the end = %v, want 0", v)
	}
}

func TestNoteVoiceRuntimeSoundsAndReleases(t *testing.T) {
	v := newNoteVoiceRuntime()
	if err := v.Configure(Context{SampleRate: 1000}, nil); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if v.active() {
		t.Fatal("expected inactive before any noteOn")
	}
	v.noteOn(440)
	if !v.active() {
		t.Fatal("expected active after noteOn")
	}
	for i := 0; i < 5; i++ {
		v.ProcessSample()
	}
	v.noteOff()
	for i := 0; i < 100; i++ {
		v.ProcessSample()
	}
	if v.active() {
		t.Fatal("expected inactive once the envelope has fully released")
	}
}

func TestPitchVoiceRuntimeGlidesTowardTarget(t *testing.T) {
	v := newPitchVoiceRuntime()
	if err := v.Configure(Context{SampleRate: 44100}, nil); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	v.setTarget(440, 0.7)
	for i := 0; i < 44100; i++ {
		v.ProcessSample()
	}
	if math.Abs(v.freqRamp.value-440) > 1 {
		t.Fatalf("freqRamp.value = %v, want close to 440 after 1s", v.freqRamp.value)
	}
	if math.Abs(v.gainRamp.value-0.7) > 0.01 {
		t.Fatalf("gainRamp.value = %v, want close to 0.7 after 1s", v.gainRamp.value)
	}
}
