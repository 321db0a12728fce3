package session

import (
	"math"
	"testing"

	"github.com/google/uuid"
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

func TestSessionRegisterAndQueryRoundTrip(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)

	cfg := DefaultConfig()
	clip := sineWave(cfg.Extractor.SampleRate, 440, cfg.Extractor.WindowSize*10)
	id := uuid.New()
	seq := s.Register(id, clip)
	require.NotEmpty(t, seq)

	q := s.NewQuery()
	for _, f := range seq {
		q.Update(f)
	}
	results := q.Finalize()
	require.NotEmpty(t, results)
	assert.Equal(t, id, results[0].ID)
}

func TestParseKeyIDRejectsGarbage(t *testing.T) {
	_, err := ParseKeyID("not-a-uuid")
	assert.Error(t, err)

	id, err := ParseKeyID(uuid.New().String())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
}
