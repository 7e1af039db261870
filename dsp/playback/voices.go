package playback

import (
	"math"

	"github.com/ppquadrat/tonyweb-core/dsp/filter/moog"
)

// Phase accumulators below all share the teacher's dsp/signal.Generator
// shape (step = 2*pi*freq/sampleRate per sample, phase wrapped with
// math.Mod) but run sample-by-sample instead of generating a whole block
// up front, since voices live in audio-callback time and their frequency
// changes continuously under ramped parameters.

// triangleOsc is a phase-accumulator triangle-wave oscillator.
type triangleOsc struct {
	sampleRate float64
	phase      float64
	freq       float64
}

func newTriangleOsc(sampleRate float64) *triangleOsc {
	return &triangleOsc{sampleRate: sampleRate}
}

func (o *triangleOsc) setFrequency(freq float64) { o.freq = freq }

func (o *triangleOsc) next() float64 {
	v := 2*math.Abs(2*(o.phase-math.Floor(o.phase+0.5))) - 1
	o.phase += o.freq / o.sampleRate
	if o.phase >= 1 {
		o.phase = math.Mod(o.phase, 1)
	}
	return v
}

// pulseOsc is a phase-accumulator pulse-wave oscillator with a duty-cycle
// comparator, the same phase shape as triangleOsc generalized to a
// rectangular waveform.
type pulseOsc struct {
	sampleRate float64
	phase      float64
	freq       float64
	duty       float64
}

func newPulseOsc(sampleRate float64) *pulseOsc {
	return &pulseOsc{sampleRate: sampleRate, duty: 0.5}
}

func (o *pulseOsc) setFrequency(freq float64) { o.freq = freq }

func (o *pulseOsc) next() float64 {
	v := -1.0
	if o.phase < o.duty {
		v = 1.0
	}
	o.phase += o.freq / o.sampleRate
	if o.phase >= 1 {
		o.phase = math.Mod(o.phase, 1)
	}
	return v
}

// vibratoLFO is a sine low-frequency oscillator used to detune the pitch
// voice, the same rate/depth phase-accumulator state machine as the
// teacher's tremolo modulator, retuned to modulate pitch instead of gain.
type vibratoLFO struct {
	sampleRate float64
	phase      float64
	rateHz     float64
	depthCents float64
}

func newVibratoLFO(sampleRate, rateHz, depthCents float64) *vibratoLFO {
	return &vibratoLFO{sampleRate: sampleRate, rateHz: rateHz, depthCents: depthCents}
}

// next returns a multiplicative frequency ratio to apply this sample.
func (l *vibratoLFO) next() float64 {
	v := math.Sin(2 * math.Pi * l.phase)
	l.phase += l.rateHz / l.sampleRate
	if l.phase >= 1 {
		l.phase = math.Mod(l.phase, 1)
	}
	cents := v * l.depthCents
	return math.Pow(2, cents/1200)
}

// adsrStage identifies the current envelope stage.
type adsrStage int

const (
	adsrIdle adsrStage = iota
	adsrAttack
	adsrSustain
	adsrRelease
)

// adsr is a short linear-ramp attack/decay/sustain/release envelope,
// grounded on the teacher's EnvelopeFollower's attack/release coefficient
// math, extended with a sustain plateau and a release stage.
type adsr struct {
	sampleRate float64

	attackSec  float64
	releaseSec float64
	sustain    float64

	stage adsrStage
	level float64
}

func newADSR(sampleRate, attackSec, releaseSec, sustain float64) *adsr {
	return &adsr{
		sampleRate: sampleRate,
		attackSec:  attackSec,
		releaseSec: releaseSec,
		sustain:    sustain,
	}
}

func (e *adsr) noteOn() {
	e.stage = adsrAttack
}

func (e *adsr) noteOff() {
	if e.stage != adsrIdle {
		e.stage = adsrRelease
	}
}

func (e *adsr) done() bool {
	return e.stage == adsrIdle
}

func (e *adsr) next() float64 {
	switch e.stage {
	case adsrAttack:
		step := 1.0 / (e.attackSec * e.sampleRate)
		e.level += step
		if e.level >= 1 {
			e.level = 1
			e.stage = adsrSustain
		}
	case adsrSustain:
		e.level = e.sustain
	case adsrRelease:
		step := 1.0 / (e.releaseSec * e.sampleRate)
		e.level -= step
		if e.level <= 0 {
			e.level = 0
			e.stage = adsrIdle
		}
	case adsrIdle:
		e.level = 0
	}
	return e.level
}

// pitchLowpass wraps the teacher's Moog ladder filter with the spec's
// ~400-600 Hz cutoff-only knob.
type pitchLowpass struct {
	filter *moog.Filter
}

func newPitchLowpass(sampleRate, cutoffHz float64) (*pitchLowpass, error) {
	f, err := moog.New(sampleRate, moog.WithCutoffHz(cutoffHz))
	if err != nil {
		return nil, err
	}
	return &pitchLowpass{filter: f}, nil
}

func (p *pitchLowpass) process(in float64) float64 {
	return p.filter.ProcessSample(in)
}

func (p *pitchLowpass) setCutoffHz(hz float64) {
	_ = p.filter.SetCutoffHz(hz)
}
