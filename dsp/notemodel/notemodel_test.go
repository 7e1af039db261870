package notemodel

import (
	"strconv"
	"testing"

	"github.com/ppquadrat/tonyweb-core/dsp/yinfft"
)

func idSeq() IDSource {
	n := 0
	return func() string {
		n++
		return "n" + strconv.Itoa(n)
	}
}

func frame(ts, freq float64, voiced bool) yinfft.PitchFrame {
	return yinfft.PitchFrame{Timestamp: ts, Frequency: freq, HasPitch: voiced, Probability: 0.9}
}

func TestMedianPitchOddCount(t *testing.T) {
	track := yinfft.PitchTrack{
		frame(0, 100, true),
		frame(0.01, 300, true),
		frame(0.02, 200, true),
	}
	if got := MedianPitch(track); got != 200 {
		t.Fatalf("MedianPitch = %v, want 200", got)
	}
}

func TestMedianPitchEvenCountAverages(t *testing.T) {
	track := yinfft.PitchTrack{
		frame(0, 100, true),
		frame(0.01, 300, true),
	}
	if got := MedianPitch(track); got != 200 {
		t.Fatalf("MedianPitch = %v, want 200", got)
	}
}

func TestMedianPitchAllUnvoicedIsZero(t *testing.T) {
	track := yinfft.PitchTrack{frame(0, 0, false), frame(0.01, 0, false)}
	if got := MedianPitch(track); got != 0 {
		t.Fatalf("MedianPitch = %v, want 0", got)
	}
}

func TestCreateOrReplaceInsertsNoteWhenVoiced(t *testing.T) {
	track := yinfft.PitchTrack{frame(0.1, 440, true), frame(0.2, 440, true)}
	notes := CreateOrReplace(0.0, 0.3, nil, track, idSeq())
	if len(notes) != 1 {
		t.Fatalf("len(notes) = %d, want 1", len(notes))
	}
	if notes[0].Pitch != 440 {
		t.Fatalf("Pitch = %v, want 440", notes[0].Pitch)
	}
}

func TestCreateOrReplaceRemovesOverlappingMidpointOnly(t *testing.T) {
	existing := List{
		{ID: "keep", Start: 5, End: 6, Pitch: 300},
		{ID: "remove", Start: 0.1, End: 0.2, Pitch: 250},
	}
	track := yinfft.PitchTrack{frame(0.1, 440, true)}
	notes := CreateOrReplace(0.0, 0.3, existing, track, idSeq())

	var sawKeep, sawRemove bool
	for _, n := range notes {
		if n.ID == "keep" {
			sawKeep = true
		}
		if n.ID == "remove" {
			sawRemove = true
		}
	}
	if !sawKeep {
		t.Fatal("note outside selection should survive")
	}
	if sawRemove {
		t.Fatal("note with midpoint inside selection should be removed")
	}
}

func TestCreateOrReplaceUnvoicedOnlyRemoves(t *testing.T) {
	existing := List{{ID: "a", Start: 0.1, End: 0.2, Pitch: 250}}
	notes := CreateOrReplace(0.0, 0.3, existing, nil, idSeq())
	if len(notes) != 0 {
		t.Fatalf("len(notes) = %d, want 0 for an unvoiced region", len(notes))
	}
}

func TestSplitNoteRejectsOutOfRangeTime(t *testing.T) {
	note := Note{ID: "a", Start: 0, End: 1, Pitch: 300}
	if _, _, ok := SplitNote(note, 0.005, nil, idSeq()); ok {
		t.Fatal("split too close to start should be rejected")
	}
	if _, _, ok := SplitNote(note, 0.996, nil, idSeq()); ok {
		t.Fatal("split too close to end should be rejected")
	}
}

func TestSplitNoteInheritsMedianOrFallsBack(t *testing.T) {
	note := Note{ID: "a", Start: 0, End: 1, Pitch: 300}
	track := yinfft.PitchTrack{frame(0.1, 200, true)}
	left, right, ok := SplitNote(note, 0.5, track, idSeq())
	if !ok {
		t.Fatal("expected a valid split")
	}
	if left.Pitch != 200 {
		t.Fatalf("left.Pitch = %v, want 200 (voiced span)", left.Pitch)
	}
	if right.Pitch != 300 {
		t.Fatalf("right.Pitch = %v, want 300 (fallback to original)", right.Pitch)
	}
	if left.Start != 0 || left.End != 0.5 || right.Start != 0.5 || right.End != 1 {
		t.Fatal("split boundaries incorrect")
	}
}

func TestResizeWithPushDeletesTooShortNeighbor(t *testing.T) {
	notes := List{
		{ID: "target", Start: 1.0, End: 1.2, Pitch: 300},
		{ID: "neighbor", Start: 1.2, End: 1.205, Pitch: 250},
	}
	out := ResizeWithPush(notes, "target", 1.0, 1.204, nil)
	for _, n := range out {
		if n.ID == "neighbor" {
			t.Fatal("neighbor squeezed below MinDuration should be deleted")
		}
	}
}

func TestResizeWithPushMovesUnenclosedNeighborBoundary(t *testing.T) {
	notes := List{
		{ID: "target", Start: 1.0, End: 1.2, Pitch: 300},
		{ID: "later", Start: 1.2, End: 1.5, Pitch: 250},
	}
	out := ResizeWithPush(notes, "target", 1.0, 1.3, nil)
	var later Note
	for _, n := range out {
		if n.ID == "later" {
			later = n
		}
	}
	if later.Start != 1.3 {
		t.Fatalf("later.Start = %v, want 1.3", later.Start)
	}
}

func TestResizeWithPushResultSortedByStart(t *testing.T) {
	notes := List{
		{ID: "a", Start: 0, End: 1, Pitch: 100},
		{ID: "b", Start: 1, End: 2, Pitch: 200},
	}
	out := ResizeWithPush(notes, "b", 0.5, 1.5, nil)
	for i := 1; i < len(out); i++ {
		if out[i].Start < out[i-1].Start {
			t.Fatalf("result not sorted by start: %+v", out)
		}
	}
}

func TestSnapTimeShiftHeldDisablesSnap(t *testing.T) {
	notes := List{{ID: "a", Start: 1.0, End: 2.0}}
	if got := SnapTime(1.001, notes, 100, 0.01, 10, "", true); got != 1.001 {
		t.Fatalf("SnapTime with shiftHeld = %v, want unchanged 1.001", got)
	}
}

func TestSnapTimeSnapsToNoteBoundary(t *testing.T) {
	notes := List{{ID: "a", Start: 1.0, End: 2.0}}
	got := SnapTime(1.002, notes, 100, 0.0116, 10, "", false)
	if got != 1.0 {
		t.Fatalf("SnapTime = %v, want 1.0 (note start)", got)
	}
}

func TestSnapTimeIgnoresOwnNote(t *testing.T) {
	notes := List{{ID: "self", Start: 1.0, End: 2.0}}
	got := SnapTime(1.002, notes, 100, 0.0116, 10, "self", false)
	if got == 1.0 {
		t.Fatal("SnapTime should not snap to the note being edited")
	}
}

func TestSnapTimeOutsideToleranceUnchanged(t *testing.T) {
	notes := List{{ID: "a", Start: 1.0, End: 2.0}}
	got := SnapTime(1.5, notes, 10000, 0.0116, 10, "", false)
	if got != 1.5 {
		t.Fatalf("SnapTime = %v, want unchanged 1.5 (nothing within tolerance)", got)
	}
}
