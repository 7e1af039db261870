package project

import (
	"encoding/json"
	"fmt"

	"github.com/ppquadrat/tonyweb-core/dsp/corekind"
)

// EncodeJSON renders f as the canonical project JSON document:
// version is forced to FileVersion regardless of what f.Version holds,
// so every write round-trips through a document this package can later
// decode without a version check failing.
func EncodeJSON(f File) ([]byte, error) {
	f.Version = FileVersion
	out, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", corekind.ErrInvalidProjectFile, err)
	}
	return out, nil
}

// DecodeJSON parses a project JSON document. A document missing
// optional fields (notes, candidates, viewState, settings) decodes with
// their zero values rather than failing.
func DecodeJSON(data []byte) (File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("%w: %v", corekind.ErrInvalidProjectFile, err)
	}
	if f.SampleRate <= 0 {
		return File{}, fmt.Errorf("%w: sampleRate must be positive", corekind.ErrInvalidProjectFile)
	}
	return f, nil
}
