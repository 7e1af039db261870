// Package notemodel implements the pure note-editing algebra: deriving a
// note's pitch from the underlying track, creating/splitting/resizing
// notes, and snapping a time value to the nearest meaningful boundary.
// Every operation here is a pure function over its arguments; none of them
// hold state or touch the audio buffer.
package notemodel

import "github.com/ppquadrat/tonyweb-core/dsp/yinfft"

// Note is a single editable pitch-correction segment.
type Note struct {
	ID    string  `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Pitch float64 `json:"pitch"`
	State string  `json:"state,omitempty"`
}

// Duration returns End-Start.
func (n Note) Duration() float64 { return n.End - n.Start }

// List is a time-ordered, pairwise non-overlapping collection of notes.
type List []Note

// MinDuration is the minimum allowed note duration (10ms), below which a
// note produced by resizeWithPush is dropped instead of kept degenerate.
const MinDuration = 0.01

// IDSource mints fresh, stable note identifiers. Production callers back
// it with a counter or UUID generator; tests can supply a deterministic
// sequence.
type IDSource func() string

// frameInSpan reports whether a PitchFrame's timestamp falls in [s, e].
func frameInSpan(f yinfft.PitchFrame, s, e float64) bool {
	return f.Timestamp >= s && f.Timestamp <= e
}
