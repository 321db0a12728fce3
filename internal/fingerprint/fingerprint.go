// Package fingerprint implements components A-D of the engine: a chroma
// filterbank, a windowed spectrogram, a percentile quantizer, and the
// Extractor that composes them into PCM -> fingerprint-sequence.
package fingerprint

import "math/bits"

// Fingerprint is an opaque 64-bit acoustic fingerprint. Similarity between
// two fingerprints is their Hamming distance: the count of differing bits.
type Fingerprint uint64

// Distance returns the Hamming distance between f and other.
func (f Fingerprint) Distance(other Fingerprint) uint32 {
	return uint32(bits.OnesCount64(uint64(f ^ other)))
}
