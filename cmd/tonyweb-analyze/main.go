// Command tonyweb-analyze runs the pitch-analysis core offline against
// a WAV file and writes its pYIN pitch track to CSV, SVL, and/or a
// project JSON file.
//
// Usage:
//
//	tonyweb-analyze [flags] input.wav
//
// Examples:
//
//	tonyweb-analyze take3.wav
//	tonyweb-analyze -csv take3.csv -svl take3.svl take3.wav
//	tonyweb-analyze -deep -threshold 0.15 -json take3.json take3.wav
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ppquadrat/tonyweb-core/dsp/project"
	"github.com/ppquadrat/tonyweb-core/dsp/yinfft"
)

func main() {
	threshold := flag.Float64("threshold", 0.1, "pYIN difference-function voicing threshold")
	rmsThreshold := flag.Float64("rms-threshold", 0.01, "RMS floor below which a frame is unvoiced")
	deep := flag.Bool("deep", false, "enable deep-search candidate retention (skips despeckling)")
	csvPath := flag.String("csv", "", "write the pitch track as CSV to this path")
	notesCSVPath := flag.String("notes-csv", "", "write an empty notes CSV to this path (no automatic note detection)")
	svlPath := flag.String("svl", "", "write the pitch track as a Sonic Visualiser point layer to this path")
	jsonPath := flag.String("json", "", "write a project JSON file to this path")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tonyweb-analyze [flags] input.wav\n\n")
		fmt.Fprintf(os.Stderr, "Runs pYIN pitch analysis against a WAV file and writes the results.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(args[0], *threshold, *rmsThreshold, *deep, *csvPath, *notesCSVPath, *svlPath, *jsonPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(inputPath string, threshold, rmsThreshold float64, deep bool, csvPath, notesCSVPath, svlPath, jsonPath string) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inputPath, err)
	}
	defer f.Close()

	var decoder wavDecoder
	samples, sampleRate, err := decoder.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", inputPath, err)
	}

	opts := []yinfft.Option{
		yinfft.WithThreshold(threshold),
		yinfft.WithRMSThreshold(rmsThreshold),
	}
	if deep {
		opts = append(opts, yinfft.WithDeepSearch())
	}

	engine := yinfft.NewEngine()
	track, err := engine.Analyze(samples, float64(sampleRate), opts...)
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", inputPath, err)
	}

	voiced := 0
	for _, frame := range track {
		if frame.HasPitch {
			voiced++
		}
	}
	fmt.Fprintf(os.Stdout, "%s: %d frames, %d voiced, %.2fs @ %dHz\n", inputPath, len(track), voiced, float64(len(samples))/float64(sampleRate), sampleRate)

	if csvPath != "" {
		if err := writeFile(csvPath, func(w *os.File) error { return project.WritePitchCSV(w, track) }); err != nil {
			return err
		}
	}
	if notesCSVPath != "" {
		if err := writeFile(notesCSVPath, func(w *os.File) error { return project.WriteNotesCSV(w, nil) }); err != nil {
			return err
		}
	}
	if svlPath != "" {
		if err := writeFile(svlPath, func(w *os.File) error { return project.WritePitchSVL(w, track, float64(sampleRate)) }); err != nil {
			return err
		}
	}
	if jsonPath != "" {
		proj := project.File{
			FileName:   inputPath,
			SampleRate: float64(sampleRate),
			PitchData:  track,
			Settings: project.Settings{
				Threshold:    threshold,
				RMSThreshold: rmsThreshold,
				DeepSearch:   deep,
			},
		}
		data, err := project.EncodeJSON(proj)
		if err != nil {
			return err
		}
		if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", jsonPath, err)
		}
	}

	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
