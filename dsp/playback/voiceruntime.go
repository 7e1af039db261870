package playback

import "math"

// originalVoiceRuntime streams the already time-stretched recording
// sample-by-sample. Configure is a no-op: its samples are fixed at
// construction since the stretch is computed once per Play() call.
type originalVoiceRuntime struct {
	samples []float64
	pos     int
}

func (o *originalVoiceRuntime) Configure(Context, Params) error { return nil }

func (o *originalVoiceRuntime) ProcessSample() float64 {
	if o.pos >= len(o.samples) {
		return 0
	}
	v := o.samples[o.pos]
	o.pos++
	return v
}

func (o *originalVoiceRuntime) exhausted() bool {
	return o.pos >= len(o.samples)
}

// paramRamp is a one-pole exponential approach to a target, the same
// shape as gainRamp generalized to a configurable settling time so it
// can drive both the pitch voice's frequency glide and its own gain.
type paramRamp struct {
	coeff  float64
	value  float64
	target float64
}

func newParamRamp(sampleRate, rampSeconds float64) *paramRamp {
	coeff := 1 - math.Exp(-1/(rampSeconds*sampleRate))
	return &paramRamp{coeff: coeff}
}

func (r *paramRamp) setTarget(target float64) { r.target = target }

func (r *paramRamp) next() float64 {
	r.value += r.coeff * (r.target - r.value)
	return r.value
}

// pitchVoiceRuntime is the pitch-curve-following voice: a triangle
// oscillator glided to each analyzed frame's frequency, detuned by a
// fixed-rate vibrato LFO, and passed through a low cutoff to round off
// the triangle's edge harmonics.
type pitchVoiceRuntime struct {
	osc      *triangleOsc
	vibrato  *vibratoLFO
	lowpass  *pitchLowpass
	freqRamp *paramRamp
	gainRamp *paramRamp
}

func newPitchVoiceRuntime() *pitchVoiceRuntime {
	return &pitchVoiceRuntime{}
}

func (v *pitchVoiceRuntime) Configure(ctx Context, _ Params) error {
	lp, err := newPitchLowpass(ctx.SampleRate, pitchVoiceCutoffHz)
	if err != nil {
		return err
	}
	v.osc = newTriangleOsc(ctx.SampleRate)
	v.vibrato = newVibratoLFO(ctx.SampleRate, pitchVibratoRateHz, pitchVibratoDepth)
	v.lowpass = lp
	v.freqRamp = newParamRamp(ctx.SampleRate, 0.03)
	v.gainRamp = newParamRamp(ctx.SampleRate, 0.1)
	return nil
}

// setTarget stages a glide to freq (Hz, 0 keeps the oscillator running
// silently) and a ramp of the voice's own output gain to gain.
func (v *pitchVoiceRuntime) setTarget(freq, gain float64) {
	if freq > 0 {
		v.freqRamp.setTarget(freq)
	}
	v.gainRamp.setTarget(gain)
}

func (v *pitchVoiceRuntime) ProcessSample() float64 {
	freq := v.freqRamp.next() * v.vibrato.next()
	v.osc.setFrequency(freq)
	out := v.lowpass.process(v.osc.next())
	return out * v.gainRamp.next()
}

// noteVoiceInstance is one active pulse+ADSR pairing driving a single
// note's sounding span.
type noteVoiceInstance struct {
	osc *pulseOsc
	env *adsr
}

// noteVoiceRuntime sounds the discrete note events: a pulse oscillator
// per active note shaped by a short ADSR envelope. More than one
// instance can be alive briefly during a release tail overlapping the
// next note-on.
type noteVoiceRuntime struct {
	sampleRate float64
	instances  []*noteVoiceInstance
}

func newNoteVoiceRuntime() *noteVoiceRuntime {
	return &noteVoiceRuntime{}
}

func (v *noteVoiceRuntime) Configure(ctx Context, _ Params) error {
	v.sampleRate = ctx.SampleRate
	v.instances = nil
	return nil
}

// noteOn starts a new pulse+ADSR instance at freq, leaving any
// releasing instance from a prior note to finish its tail.
func (v *noteVoiceRuntime) noteOn(freq float64) {
	osc := newPulseOsc(v.sampleRate)
	osc.setFrequency(freq)
	env := newADSR(v.sampleRate, noteAttackSeconds, noteReleaseSeconds, noteSustain)
	env.noteOn()
	v.instances = append(v.instances, &noteVoiceInstance{osc: osc, env: env})
}

// noteOff releases the most recently started still-sounding instance.
func (v *noteVoiceRuntime) noteOff() {
	for i := len(v.instances) - 1; i >= 0; i-- {
		if !v.instances[i].env.done() {
			v.instances[i].env.noteOff()
			return
		}
	}
}

func (v *noteVoiceRuntime) active() bool {
	return len(v.instances) > 0
}

func (v *noteVoiceRuntime) ProcessSample() float64 {
	var out float64
	live := v.instances[:0]
	for _, inst := range v.instances {
		level := inst.env.next()
		out += inst.osc.next() * level
		if !inst.env.done() {
			live = append(live, inst)
		}
	}
	v.instances = live
	return out
}
