// Package project persists and interchanges the pitch-analysis core's
// state: a versioned JSON project file plus CSV and Sonic Visualiser
// layer (SVL) interchange formats.
package project

import (
	"github.com/ppquadrat/tonyweb-core/dsp/notemodel"
	"github.com/ppquadrat/tonyweb-core/dsp/yinfft"
)

// FileVersion is the project file format version this package reads
// and writes. Older/newer version strings are accepted on decode (the
// format has not broken compatibility since 1.0) but every File this
// package writes carries this value.
const FileVersion = "1.2"

// ViewState is the editor's viewport, persisted so reopening a project
// restores where the user left off.
type ViewState struct {
	ViewStart   float64 `json:"viewStart"`
	Zoom        float64 `json:"zoom"`
	CurrentTime float64 `json:"currentTime"`
}

// Settings mirrors the analysis knobs a project was last analyzed with.
type Settings struct {
	Threshold    float64 `json:"threshold"`
	RMSThreshold float64 `json:"rmsThreshold"`
	DeepSearch   bool    `json:"deepSearch"`
}

// File is the root JSON structure of a project file.
type File struct {
	Version    string            `json:"version"`
	FileName   string            `json:"fileName"`
	SampleRate float64           `json:"sampleRate"`
	PitchData  yinfft.PitchTrack `json:"pitchData"`
	Notes      notemodel.List    `json:"notes"`
	ViewState  ViewState         `json:"viewState"`
	Settings   Settings          `json:"settings"`
}
