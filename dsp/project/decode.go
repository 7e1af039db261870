package project

import "io"

// Decoder turns an encoded audio file into mono float64 samples. The
// core depends on this interface but implements no decoder itself —
// decoding is an external collaborator's responsibility (§1); a WAV/PCM
// implementation lives in cmd/tonyweb-analyze since the reference CLI
// needs one and no codec dependency is warranted in this package.
type Decoder interface {
	Decode(r io.Reader) (samples []float64, sampleRate int, err error)
}
