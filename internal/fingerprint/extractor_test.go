package fingerprint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineWave(sampleRate int, freq float64, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = int16(16000 * math.Sin(2*math.Pi*freq*t))
	}
	return out
}

func TestExtractorConfigValidate(t *testing.T) {
	cfg := DefaultExtractorConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.WindowStride = cfg.WindowSize + 1
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.QuantizerTopK = cfg.ChromaBinsPerOctave + 1
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.ChromaBinsPerOctave = 13
	bad.QuantizerBitsPerBin = 5
	assert.Error(t, bad.Validate())
}

func TestFeaturesEmptyInputIsNotAnError(t *testing.T) {
	cfg := DefaultExtractorConfig()
	ex, err := NewExtractor(cfg)
	require.NoError(t, err)

	got := ex.Features(make([]int16, cfg.WindowSize-1))
	assert.Nil(t, got)
}

func TestFeaturesDeterministic(t *testing.T) {
	cfg := DefaultExtractorConfig()
	ex, err := NewExtractor(cfg)
	require.NoError(t, err)

	samples := sineWave(cfg.SampleRate, 440, cfg.WindowSize*4)
	a := ex.Features(samples)
	b := ex.Features(samples)
	require.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestFeaturesFrameCountMatchesWindowing(t *testing.T) {
	cfg := DefaultExtractorConfig()
	ex, err := NewExtractor(cfg)
	require.NoError(t, err)

	samples := sineWave(cfg.SampleRate, 220, cfg.WindowSize+cfg.WindowStride*3)
	got := ex.Features(samples)
	want := frameCount(len(samples), cfg.WindowSize, cfg.WindowStride)
	assert.Len(t, got, want)
}

func TestFingerprintDistanceIsSymmetricAndZeroForSelf(t *testing.T) {
	a := Fingerprint(0xDEADBEEF)
	b := Fingerprint(0x0BADF00D)
	assert.Equal(t, uint32(0), a.Distance(a))
	assert.Equal(t, a.Distance(b), b.Distance(a))
}

func TestFingerprintDistanceMaximal(t *testing.T) {
	a := Fingerprint(0)
	b := Fingerprint(0xFFFFFFFFFFFFFFFF)
	assert.Equal(t, uint32(64), a.Distance(b))
}

func TestQuantizeZeroTopKYieldsZero(t *testing.T) {
	chroma := []float64{0.1, 0.9, 0.4, 0.2}
	got := quantize(chroma, 0, 5)
	assert.Equal(t, Fingerprint(0), got)
}

func TestQuantizeHighestBinGetsFullRun(t *testing.T) {
	chroma := []float64{0.1, 0.9, 0.4, 0.2}
	got := quantize(chroma, 4, 5)
	// rank 3 (last, highest value) gets run length (5+1)*3/4 = 4
	top := (uint64(got) >> (1 * 5)) & 0x1F
	assert.Equal(t, uint64(0b1111), top)
}
