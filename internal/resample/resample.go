// Package resample linearly interpolates PCM sample sequences between
// sample rates. It is an external collaborator only: internal/fingerprint
// and internal/search never import it, since the extractor contract
// (spec.md §6) is defined in terms of samples already at its configured
// sample rate. cmd/ tools and test fixtures call this to bring WAV files at
// arbitrary rates up to the canonical rate before handing PCM to the
// extractor.
//
// Grounded on original_source/src/search.rs's test-only resample helper,
// which also uses plain linear interpolation rather than a bandlimited
// resampler.
package resample

// Linear resamples samples from fromRate to toRate via linear
// interpolation. Returns nil for an empty or zero-rate input.
func Linear(samples []int16, fromRate, toRate int) []int16 {
	if len(samples) == 0 || fromRate <= 0 || toRate <= 0 {
		return nil
	}
	if fromRate == toRate {
		out := make([]int16, len(samples))
		copy(out, samples)
		return out
	}

	ratio := float64(fromRate) / float64(toRate)
	n := int(float64(len(samples)) / ratio)
	out := make([]int16, n)
	for i := range out {
		srcPos := float64(i) * ratio
		lo := int(srcPos)
		frac := srcPos - float64(lo)
		hi := lo + 1
		if hi >= len(samples) {
			hi = len(samples) - 1
		}
		a := float64(samples[lo])
		b := float64(samples[hi])
		out[i] = int16(a + (b-a)*frac)
	}
	return out
}
