package notemodel

import (
	"math"
	"sort"

	"github.com/ppquadrat/tonyweb-core/dsp/yinfft"
)

// MedianPitch collects the voiced (hasPitch, frequency > 0) frames in
// track and returns their statistical median frequency, or 0 if none are
// voiced.
func MedianPitch(track yinfft.PitchTrack) float64 {
	var freqs []float64
	for _, f := range track {
		if f.HasPitch && f.Frequency > 0 {
			freqs = append(freqs, f.Frequency)
		}
	}
	if len(freqs) == 0 {
		return 0
	}
	sort.Float64s(freqs)
	mid := len(freqs) / 2
	if len(freqs)%2 == 1 {
		return freqs[mid]
	}
	return (freqs[mid-1] + freqs[mid]) / 2
}

func medianPitchInSpan(track yinfft.PitchTrack, s, e float64) float64 {
	var freqs []float64
	for _, f := range track {
		if f.HasPitch && f.Frequency > 0 && frameInSpan(f, s, e) {
			freqs = append(freqs, f.Frequency)
		}
	}
	if len(freqs) == 0 {
		return 0
	}
	sort.Float64s(freqs)
	mid := len(freqs) / 2
	if len(freqs)%2 == 1 {
		return freqs[mid]
	}
	return (freqs[mid-1] + freqs[mid]) / 2
}

// CreateOrReplace removes every note whose midpoint lies in [s,e], then
// inserts a fresh note spanning [s,e] if the region contains voiced pitch.
// If the region is entirely unvoiced, only the removals are applied.
func CreateOrReplace(selStart, selEnd float64, notes List, track yinfft.PitchTrack, newID IDSource) List {
	out := make(List, 0, len(notes)+1)
	for _, n := range notes {
		mid := (n.Start + n.End) / 2
		if mid >= selStart && mid <= selEnd {
			continue
		}
		out = append(out, n)
	}

	p := medianPitchInSpan(track, selStart, selEnd)
	if p > 0 {
		out = append(out, Note{ID: newID(), Start: selStart, End: selEnd, Pitch: p})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// SplitNote splits note at time t, valid only for t strictly inside
// (note.Start+0.01, note.End-0.01). It returns (left, right, ok); ok is
// false if t is not splittable. Each half inherits the median pitch of its
// own span, falling back to the original note's pitch if that span is
// unvoiced.
func SplitNote(note Note, t float64, track yinfft.PitchTrack, newID IDSource) (left, right Note, ok bool) {
	if !(t > note.Start+0.01 && t < note.End-0.01) {
		return Note{}, Note{}, false
	}

	leftPitch := medianPitchInSpan(track, note.Start, t)
	if leftPitch == 0 {
		leftPitch = note.Pitch
	}
	rightPitch := medianPitchInSpan(track, t, note.End)
	if rightPitch == 0 {
		rightPitch = note.Pitch
	}

	left = Note{ID: newID(), Start: note.Start, End: t, Pitch: leftPitch, State: note.State}
	right = Note{ID: newID(), Start: t, End: note.End, Pitch: rightPitch, State: note.State}
	return left, right, true
}

// ResizeWithPush moves the note identified by id to [newStart, newEnd],
// pushing any overlapping neighbor's boundary out of the way. Neighbors
// whose resulting duration drops below MinDuration are deleted. The
// target and every modified neighbor have their pitch recomputed from the
// track over their new span, falling back to their previous pitch if that
// span is unvoiced. The result is sorted by start.
func ResizeWithPush(notes List, id string, newStart, newEnd float64, track yinfft.PitchTrack) List {
	var target Note
	var targetIdx = -1
	for i, n := range notes {
		if n.ID == id {
			target = n
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		return notes
	}

	prevStart, prevEnd := target.Start, target.End

	out := make(List, 0, len(notes))
	for i, n := range notes {
		if i == targetIdx {
			continue
		}

		overlaps := newStart < n.End && newEnd > n.Start
		if !overlaps {
			out = append(out, n)
			continue
		}

		wasEnclosed := n.Start >= prevStart && n.End <= prevEnd
		nowExtendsPastEnd := n.End > newEnd
		wasEnclosedSymmetricLeft := wasEnclosed && n.Start < newStart

		switch {
		case wasEnclosed && nowExtendsPastEnd:
			n.Start = newEnd
		case wasEnclosedSymmetricLeft:
			n.End = newStart
		default:
			if n.Start < target.Start {
				n.End = newStart
			} else {
				n.Start = newEnd
			}
		}

		if n.End-n.Start < MinDuration {
			continue
		}

		p := medianPitchInSpan(track, n.Start, n.End)
		if p == 0 {
			p = n.Pitch
		}
		n.Pitch = p
		out = append(out, n)
	}

	target.Start = newStart
	target.End = newEnd
	p := medianPitchInSpan(track, newStart, newEnd)
	if p == 0 {
		p = target.Pitch
	}
	target.Pitch = p
	out = append(out, target)

	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// SnapPixels is the pixel tolerance (in screen pixels) within which a
// dragged time value snaps to a nearby boundary.
const SnapPixels = 10

// SnapTime returns t snapped to the nearest of: any other note's start or
// end (excluding ignoreID), the frame grid (round(t/frameDuration) *
// frameDuration), 0, or duration — whichever is closest and within
// SnapPixels/zoom seconds. Ties resolve in that listed order. shiftHeld
// disables snapping entirely.
func SnapTime(t float64, notes List, zoom, frameDuration, duration float64, ignoreID string, shiftHeld bool) float64 {
	if shiftHeld {
		return t
	}

	tolerance := SnapPixels / zoom

	type candidate struct{ value float64 }
	var candidates []candidate

	for _, n := range notes {
		if n.ID == ignoreID {
			continue
		}
		candidates = append(candidates, candidate{n.Start}, candidate{n.End})
	}
	gridPos := t
	if frameDuration != 0 {
		gridPos = math.Round(t/frameDuration) * frameDuration
	}
	candidates = append(candidates,
		candidate{gridPos},
		candidate{0},
		candidate{duration},
	)

	best := t
	bestDist := math.Inf(1)
	for _, c := range candidates {
		d := math.Abs(c.value - t)
		if d <= tolerance && d < bestDist {
			bestDist = d
			best = c.value
		}
	}
	return best
}
