package fingerprint

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// Extractor turns raw 16-bit PCM samples into a sequence of Fingerprints.
// It owns a fixed-length real FFT plan (gonum.org/v1/gonum/dsp/fourier), a
// precomputed Hann window, and the chroma projection matrix (A), so callers
// build one Extractor per configuration and reuse it across clips.
type Extractor struct {
	cfg    ExtractorConfig
	chroma *mat.Dense
	fft    *fourier.FFT
	window []float64
}

// NewExtractor validates cfg and builds the chroma filterbank and FFT plan
// once; both are reused across every call to Features.
func NewExtractor(cfg ExtractorConfig) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{
		cfg:    cfg,
		chroma: buildChromaFilterbank(cfg),
		fft:    fourier.NewFFT(cfg.WindowSize),
		window: hannWindow(cfg.WindowSize),
	}, nil
}

// Config returns the configuration the extractor was built with.
func (e *Extractor) Config() ExtractorConfig {
	return e.cfg
}

// Features runs the full A+B+C pipeline over samples: windowing, FFT,
// chroma projection, and quantization. Deterministic and pure: calling it
// twice with the same samples yields bitwise-identical results. An input
// shorter than one window yields an empty, non-nil-error sequence
// (EmptyInput is not an error — spec.md §7).
func (e *Extractor) Features(samples []int16) []Fingerprint {
	w := e.cfg.WindowSize
	n := frameCount(len(samples), w, e.cfg.WindowStride)
	if n == 0 {
		return nil
	}

	rows := w/2 + 1
	windowed := make([]float64, w)
	var coeffs []complex128
	magnitudes := make([]float64, rows)
	normFactor := 1 / math.Sqrt(float64(w))

	features := make([]Fingerprint, 0, n)
	for frame := 0; frame < n; frame++ {
		start := frame * e.cfg.WindowStride
		for i := 0; i < w; i++ {
			windowed[i] = (float64(samples[start+i]) / 32768.0) * e.window[i]
		}

		coeffs = e.fft.Coefficients(coeffs, windowed)
		for i, c := range coeffs {
			magnitudes[i] = cmplx.Abs(c) * normFactor
		}

		frameVec := mat.NewDense(1, rows, magnitudes)
		var chromaVec mat.Dense
		chromaVec.Mul(frameVec, e.chroma)

		features = append(features, quantize(mat.Row(nil, 0, &chromaVec), e.cfg.QuantizerTopK, e.cfg.QuantizerBitsPerBin))
	}
	return features
}
