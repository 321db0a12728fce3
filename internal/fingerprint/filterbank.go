package fingerprint

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// buildChromaFilterbank builds the (window_size/2+1) x chroma_bins_per_octave
// projection matrix: row f holds, for every chroma bin b, the sum across
// chroma_n_octaves of Gaussian tone bumps centered at that bin's pitch class
// in every octave, scaled by an A-weighting curve on the row's frequency.
// Grounded on original_source/src/fingerprint.rs's chroma_matrix/a_curve.
func buildChromaFilterbank(cfg ExtractorConfig) *mat.Dense {
	rows := cfg.WindowSize/2 + 1
	cols := cfg.ChromaBinsPerOctave
	m := mat.NewDense(rows, cols, nil)

	binFrac := 1.0 / float64(cols)
	for f := 0; f < rows; f++ {
		rowFreq := float64(cfg.SampleRate) * float64(f) / float64(cfg.WindowSize)
		weight := aWeighting(rowFreq)
		for b := 0; b < cols; b++ {
			var acc float64
			for o := 0; o < cfg.ChromaNOctaves; o++ {
				toneFreq := cfg.ChromaFRef * math.Exp2(float64(o)+float64(b)*binFrac)
				if toneFreq <= 0 {
					continue
				}
				z := (toneFreq - rowFreq) * cfg.ChromaQFactor / toneFreq
				acc += math.Exp(-0.5 * z * z)
			}
			m.Set(f, b, acc*weight)
		}
	}
	return m
}

// aWeighting evaluates the standard A-weighting curve at f Hz, used to bias
// the chroma projection toward frequencies the ear is most sensitive to.
func aWeighting(f float64) float64 {
	if f <= 0 {
		return 0
	}
	const (
		c1 = 12194.0
		c2 = 20.6
		c3 = 107.7
		c4 = 737.9
	)
	fsq := f * f
	num := c1 * c1 * fsq * fsq
	denom := (fsq + c2*c2) *
		math.Sqrt((fsq+c3*c3)*(fsq+c4*c4)) *
		(fsq + c1*c1)
	return num / denom
}
