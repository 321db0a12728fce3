package resample

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinearSameRateIsIdentity(t *testing.T) {
	in := []int16{1, 2, 3, 4}
	out := Linear(in, 8000, 8000)
	assert.Equal(t, in, out)
}

func TestLinearDownsampleHalvesLength(t *testing.T) {
	in := make([]int16, 100)
	out := Linear(in, 8000, 4000)
	assert.InDelta(t, 50, len(out), 1)
}

func TestLinearEmptyInput(t *testing.T) {
	assert.Nil(t, Linear(nil, 8000, 4000))
}
