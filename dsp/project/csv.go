package project

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ppquadrat/tonyweb-core/dsp/corekind"
	"github.com/ppquadrat/tonyweb-core/dsp/notemodel"
	"github.com/ppquadrat/tonyweb-core/dsp/yinfft"
)

const (
	pitchCSVHeader = "Time(s),Frequency(Hz),Probability"
	notesCSVHeader = "Onset(s),Duration(s),Pitch(Hz)"
)

// WritePitchCSV writes one row per frame: %.6f,%.3f,%.3f of
// (timestamp, frequency, probability). Unvoiced frames are written with
// Frequency(Hz)=0, matching PitchFrame's own unvoiced representation.
func WritePitchCSV(w io.Writer, track yinfft.PitchTrack) error {
	if _, err := fmt.Fprintln(w, pitchCSVHeader); err != nil {
		return fmt.Errorf("%w: %v", corekind.ErrInvalidCSV, err)
	}
	for _, f := range track {
		if _, err := fmt.Fprintf(w, "%.6f,%.3f,%.3f\n", f.Timestamp, f.Frequency, f.Probability); err != nil {
			return fmt.Errorf("%w: %v", corekind.ErrInvalidCSV, err)
		}
	}
	return nil
}

// WriteNotesCSV writes one row per note: %.6f,%.6f,%.3f of (onset,
// duration, pitch).
func WriteNotesCSV(w io.Writer, notes notemodel.List) error {
	if _, err := fmt.Fprintln(w, notesCSVHeader); err != nil {
		return fmt.Errorf("%w: %v", corekind.ErrInvalidCSV, err)
	}
	for _, n := range notes {
		if _, err := fmt.Fprintf(w, "%.6f,%.6f,%.3f\n", n.Start, n.Duration(), n.Pitch); err != nil {
			return fmt.Errorf("%w: %v", corekind.ErrInvalidCSV, err)
		}
	}
	return nil
}

// ReadPitchCSV parses a pitch CSV document written by WritePitchCSV.
// Frames with Frequency(Hz)==0 are marked unvoiced.
func ReadPitchCSV(r io.Reader) (yinfft.PitchTrack, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: empty pitch csv", corekind.ErrInvalidCSV)
	}
	if strings.TrimSpace(scanner.Text()) != pitchCSVHeader {
		return nil, fmt.Errorf("%w: unexpected pitch csv header %q", corekind.ErrInvalidCSV, scanner.Text())
	}

	var track yinfft.PitchTrack
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: pitch csv row %q has %d fields, want 3", corekind.ErrInvalidCSV, line, len(fields))
		}
		ts, err1 := strconv.ParseFloat(fields[0], 64)
		freq, err2 := strconv.ParseFloat(fields[1], 64)
		prob, err3 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fmt.Errorf("%w: pitch csv row %q is not numeric", corekind.ErrInvalidCSV, line)
		}
		track = append(track, yinfft.PitchFrame{
			Timestamp:   ts,
			Frequency:   freq,
			Probability: prob,
			HasPitch:    freq > 0,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", corekind.ErrInvalidCSV, err)
	}
	return track, nil
}

// ReadNotesCSV parses a notes CSV document written by WriteNotesCSV.
func ReadNotesCSV(r io.Reader, newID notemodel.IDSource) (notemodel.List, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: empty notes csv", corekind.ErrInvalidCSV)
	}
	if strings.TrimSpace(scanner.Text()) != notesCSVHeader {
		return nil, fmt.Errorf("%w: unexpected notes csv header %q", corekind.ErrInvalidCSV, scanner.Text())
	}

	var notes notemodel.List
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: notes csv row %q has %d fields, want 3", corekind.ErrInvalidCSV, line, len(fields))
		}
		onset, err1 := strconv.ParseFloat(fields[0], 64)
		duration, err2 := strconv.ParseFloat(fields[1], 64)
		pitch, err3 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fmt.Errorf("%w: notes csv row %q is not numeric", corekind.ErrInvalidCSV, line)
		}
		notes = append(notes, notemodel.Note{
			ID:    newID(),
			Start: onset,
			End:   onset + duration,
			Pitch: pitch,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", corekind.ErrInvalidCSV, err)
	}
	return notes, nil
}
