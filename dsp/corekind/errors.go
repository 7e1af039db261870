// Package corekind defines the recoverable error kinds shared across the
// pitch-analysis core. Every kind is a sentinel error; call sites wrap it
// with fmt.Errorf("...: %w", ErrX) and callers match it with errors.Is.
package corekind

import "errors"

var (
	// ErrDecodeFailed means the audio-decoder collaborator could not produce samples.
	ErrDecodeFailed = errors.New("corekind: audio decode failed")
	// ErrAnalysisFailed means a pYIN analysis worker raised an exception; no
	// partial PitchTrack is committed when this occurs.
	ErrAnalysisFailed = errors.New("corekind: pitch analysis failed")
	// ErrSpectrogramFailed means the spectrogram worker failed; tolerated,
	// visualization degrades but nothing else is affected.
	ErrSpectrogramFailed = errors.New("corekind: spectrogram computation failed")
	// ErrPlaybackFailed means starting playback failed after a resume attempt.
	ErrPlaybackFailed = errors.New("corekind: playback failed")
	// ErrInvalidProjectFile means a project JSON document failed to parse or validate.
	ErrInvalidProjectFile = errors.New("corekind: invalid project file")
	// ErrInvalidCSV means a CSV interchange document failed to parse or validate.
	ErrInvalidCSV = errors.New("corekind: invalid csv")
)
