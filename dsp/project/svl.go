package project

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"

	"github.com/ppquadrat/tonyweb-core/dsp/corekind"
	"github.com/ppquadrat/tonyweb-core/dsp/notemodel"
	"github.com/ppquadrat/tonyweb-core/dsp/yinfft"
)

// svlPoint is one Sonic Visualiser point-layer point, used for voiced
// pitch frames: frame is the sample index round(timestamp*sampleRate),
// value is the frequency in Hz, label is the fixed literal "p".
type svlPoint struct {
	XMLName xml.Name `xml:"point"`
	Frame   int64    `xml:"frame,attr"`
	Value   float64  `xml:"value,attr"`
	Label   string   `xml:"label,attr"`
}

// svlSegment is one Sonic Visualiser segment-layer segment, used for
// notes: frame/duration are sample counts, value is the note's pitch.
type svlSegment struct {
	XMLName  xml.Name `xml:"segment"`
	Frame    int64    `xml:"frame,attr"`
	Duration int64    `xml:"duration,attr"`
	Value    float64  `xml:"value,attr"`
}

type svlDataset struct {
	XMLName  xml.Name     `xml:"dataset"`
	ID       int          `xml:"id,attr"`
	Points   []svlPoint   `xml:"point,omitempty"`
	Segments []svlSegment `xml:"segment,omitempty"`
}

type svlModel struct {
	XMLName    xml.Name `xml:"model"`
	ID         int      `xml:"id,attr"`
	Name       string   `xml:"name,attr"`
	SampleRate float64  `xml:"sampleRate,attr"`
	Dataset    int      `xml:"dataset,attr"`
}

type svlData struct {
	XMLName xml.Name   `xml:"data"`
	Model   svlModel   `xml:"model"`
	Dataset svlDataset `xml:"dataset"`
}

type svlDocument struct {
	XMLName xml.Name `xml:"sv"`
	Data    svlData  `xml:"data"`
}

// WritePitchSVL writes a Sonic Visualiser point layer with one <point>
// per voiced frame.
func WritePitchSVL(w io.Writer, track yinfft.PitchTrack, sampleRate float64) error {
	ds := svlDataset{ID: 0}
	for _, f := range track {
		if !f.HasPitch {
			continue
		}
		ds.Points = append(ds.Points, svlPoint{
			Frame: int64(math.Round(f.Timestamp * sampleRate)),
			Value: f.Frequency,
			Label: "p",
		})
	}
	doc := svlDocument{Data: svlData{
		Model:   svlModel{ID: 0, Name: "pitch", SampleRate: sampleRate, Dataset: 0},
		Dataset: ds,
	}}
	return writeSVL(w, doc)
}

// WriteNotesSVL writes a Sonic Visualiser segment layer with one
// <segment> per note, duration expressed in samples.
func WriteNotesSVL(w io.Writer, notes notemodel.List, sampleRate float64) error {
	ds := svlDataset{ID: 0}
	for _, n := range notes {
		ds.Segments = append(ds.Segments, svlSegment{
			Frame:    int64(math.Round(n.Start * sampleRate)),
			Duration: int64(math.Round(n.Duration() * sampleRate)),
			Value:    n.Pitch,
		})
	}
	doc := svlDocument{Data: svlData{
		Model:   svlModel{ID: 0, Name: "notes", SampleRate: sampleRate, Dataset: 0},
		Dataset: ds,
	}}
	return writeSVL(w, doc)
}

func writeSVL(w io.Writer, doc svlDocument) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("%w: %v", corekind.ErrInvalidProjectFile, err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("%w: %v", corekind.ErrInvalidProjectFile, err)
	}
	return nil
}
