// Package playback implements the three-voice synchronous playback
// scheduler: the original recording (pitch-preserving time stretch), a
// pitch-curve-following oscillator voice, and a discrete note-event
// voice, mixed against a wall clock tied to a time-stretched audio clock.
package playback

import (
	"fmt"
	"sort"

	"github.com/ppquadrat/tonyweb-core/dsp/corekind"
	"github.com/ppquadrat/tonyweb-core/dsp/notemodel"
	"github.com/ppquadrat/tonyweb-core/dsp/yinfft"
)

const (
	pitchVoiceCutoffHz = 500
	pitchVoiceGain     = 0.7
	pitchVibratoRateHz = 5
	pitchVibratoDepth  = 20

	noteAttackSeconds  = 0.01
	noteReleaseSeconds = 0.03
	noteSustain        = 0.8
)

// MixerState holds the (enabled, volume) pair for each of the three
// voices.
type MixerState struct {
	Original VoiceMix
	Pitch    VoiceMix
	Notes    VoiceMix
}

// VoiceMix is one voice's mixer settings.
type VoiceMix struct {
	Enabled bool
	Volume  float64
}

// event is one scheduled occurrence on the wall-clock timeline.
type event struct {
	wallTime float64
	apply    func()
}

// Scheduler drives the three voices against a wall clock advancing at
// playbackRate x audio-clock, reading the (PitchTrack, NoteList) snapshot
// only at Play() time per the jitter-free scheduling contract (§5).
type Scheduler struct {
	sampleRate float64

	buffer    []float64
	stretcher *TimeStretcher

	graph         *Graph
	originalVoice *originalVoiceRuntime
	pitchVoice    *pitchVoiceRuntime
	noteVoice     *noteVoiceRuntime

	events    []event
	nextEvent int

	playing       bool
	startOffset   float64
	rate          float64
	clockSamples  int64

	loopStart, loopEnd float64
	looping            bool

	lastTrack yinfft.PitchTrack
	lastNotes notemodel.List
}

// NewScheduler builds a scheduler over the decoded mono buffer at
// sampleRate.
func NewScheduler(buffer []float64, sampleRate float64) (*Scheduler, error) {
	stretcher, err := NewTimeStretcher(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("playback: %w", err)
	}
	return &Scheduler{
		sampleRate: sampleRate,
		buffer:     buffer,
		stretcher:  stretcher,
		rate:       1,
	}, nil
}

// Play starts (or restarts) playback at startOffset (seconds, buffer
// time) and rate (playback speed multiplier), reading track and notes
// once. durationLimit <= 0 means play to the end of the buffer.
func (s *Scheduler) Play(startOffset, rate, durationLimit float64, track yinfft.PitchTrack, notes notemodel.List) error {
	if rate <= 0 {
		rate = 1
	}

	startSample := clampInt(int(startOffset*s.sampleRate), 0, len(s.buffer))
	endSample := len(s.buffer)
	if durationLimit > 0 {
		limit := startSample + int(durationLimit*s.sampleRate)
		if limit < endSample {
			endSample = limit
		}
	}
	if startSample > endSample {
		startSample = endSample
	}
	stretched := s.stretcher.Stretch(s.buffer[startSample:endSample], rate)

	ctx := Context{SampleRate: s.sampleRate}

	originalVoice := &originalVoiceRuntime{samples: stretched}

	pitchVoice := newPitchVoiceRuntime()
	if err := pitchVoice.Configure(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", corekind.ErrPlaybackFailed, err)
	}

	noteVoice := newNoteVoiceRuntime()
	if err := noteVoice.Configure(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", corekind.ErrPlaybackFailed, err)
	}

	reg := NewRegistry()
	_ = reg.Register("original", func(Context) (Runtime, error) { return originalVoice, nil })
	_ = reg.Register("pitch", func(Context) (Runtime, error) { return pitchVoice, nil })
	_ = reg.Register("notes", func(Context) (Runtime, error) { return noteVoice, nil })

	graph, err := NewGraph(ctx, reg, "original", "pitch", "notes")
	if err != nil {
		return fmt.Errorf("%w: %v", corekind.ErrPlaybackFailed, err)
	}

	s.graph = graph
	s.originalVoice = originalVoice
	s.pitchVoice = pitchVoice
	s.noteVoice = noteVoice

	s.events = buildEvents(pitchVoice, noteVoice, track, notes, startOffset, endSample, s.sampleRate, rate)
	s.nextEvent = 0
	s.startOffset = startOffset
	s.rate = rate
	s.clockSamples = 0
	s.playing = true
	s.lastTrack = track
	s.lastNotes = notes

	return nil
}

// Stop halts playback immediately. Idempotent.
func (s *Scheduler) Stop() {
	s.playing = false
}

// IsPlaying reports whether the scheduler is currently producing audio.
func (s *Scheduler) IsPlaying() bool { return s.playing }

// SetLoop configures re-arming at loopEnd back to loopStart.
func (s *Scheduler) SetLoop(enabled bool, loopStart, loopEnd float64) {
	s.looping = enabled
	s.loopStart = loopStart
	s.loopEnd = loopEnd
}

// UpdateMixer stages ~100ms gain ramps on the three voices. Volume 0 is
// equivalent to disabled.
func (s *Scheduler) UpdateMixer(m MixerState) {
	if s.graph == nil {
		return
	}
	s.graph.SetGain("original", m.Original.Enabled, m.Original.Volume)
	s.graph.SetGain("pitch", m.Pitch.Enabled, m.Pitch.Volume)
	s.graph.SetGain("notes", m.Notes.Enabled, m.Notes.Volume)
}

// BufferTime returns the current playhead position in original-buffer
// time: startOffset + (now-anchor) * rate, continuous within one arm.
func (s *Scheduler) BufferTime() float64 {
	elapsed := float64(s.clockSamples) / s.sampleRate
	return s.startOffset + elapsed*s.rate
}

// Process fills dst (interleaved stereo float32) with the mixed output of
// all three voices, advancing the wall clock and firing any due events.
func (s *Scheduler) Process(dst []float32) {
	frames := len(dst) / 2
	for i := 0; i < frames; i++ {
		if !s.playing {
			dst[2*i], dst[2*i+1] = 0, 0
			continue
		}

		wallTime := float64(s.clockSamples) / s.sampleRate
		for s.nextEvent < len(s.events) && s.events[s.nextEvent].wallTime <= wallTime {
			s.events[s.nextEvent].apply()
			s.nextEvent++
		}

		sample := float32(s.graph.Next())
		dst[2*i], dst[2*i+1] = sample, sample

		s.clockSamples++

		if s.looping && s.BufferTime() >= s.loopEnd {
			s.rearm()
			continue
		}
		if s.originalVoice.exhausted() && s.nextEvent >= len(s.events) && !s.noteVoice.active() {
			s.playing = false
		}
	}
}

// rearm stops all voices and restarts the scheduler at loopStart,
// resetting the wall-clock anchor so BufferTime stays continuous within
// the new arm.
func (s *Scheduler) rearm() {
	track, notes := s.lastTrack, s.lastNotes
	_ = s.Play(s.loopStart, s.rate, 0, track, notes)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// buildEvents produces the (wallTime, apply) schedule: a ramp event per
// pitch frame, and a note-on/note-off pair per overlapping note.
func buildEvents(pitchVoice *pitchVoiceRuntime, noteVoice *noteVoiceRuntime, track yinfft.PitchTrack, notes notemodel.List, startOffset float64, endSample int, sampleRate, rate float64) []event {
	var events []event
	endTime := float64(endSample) / sampleRate

	for _, f := range track {
		if f.Timestamp < startOffset || f.Timestamp > endTime {
			continue
		}
		wallTime := (f.Timestamp - startOffset) / rate
		frame := f
		events = append(events, event{wallTime: wallTime, apply: func() {
			if frame.HasPitch {
				pitchVoice.setTarget(frame.Frequency, pitchVoiceGain)
			} else {
				pitchVoice.setTarget(0, 0)
			}
		}})
	}

	for _, n := range notes {
		if n.End < startOffset || n.Start > endTime {
			continue
		}
		note := n
		onTime := (note.Start - startOffset) / rate
		offTime := (note.End - startOffset) / rate
		events = append(events, event{wallTime: onTime, apply: func() { noteVoice.noteOn(note.Pitch) }})
		events = append(events, event{wallTime: offTime, apply: func() { noteVoice.noteOff() }})
	}

	sort.Slice(events, func(i, j int) bool { return events[i].wallTime < events[j].wallTime })
	return events
}
