// Package wavio decodes WAV files into mono 16-bit PCM at a target sample
// rate, for the cmd/cli tools that operate on audio files offline. File I/O
// and format decoding stay a CLI/test-only concern (spec.md non-goals).
package wavio

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/chromabeam/engine/internal/resample"
)

// Load decodes r as a WAV file, downmixes to mono, and resamples to
// targetRate if its native rate differs. Returns the PCM samples and the
// file's native sample rate (before resampling).
func Load(r io.Reader, targetRate int) (samples []int16, nativeRate int, err error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("wavio: not a valid WAV file")
	}

	var buf *audio.IntBuffer
	buf, err = decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wavio: decode PCM: %w", err)
	}

	nativeRate = buf.Format.SampleRate
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	mono := make([]int16, len(buf.Data)/channels)
	for i := range mono {
		var sum int
		for ch := 0; ch < channels; ch++ {
			sum += buf.Data[i*channels+ch]
		}
		mono[i] = int16(sum / channels)
	}

	if targetRate > 0 && targetRate != nativeRate {
		mono = resample.Linear(mono, nativeRate, targetRate)
	}

	return mono, nativeRate, nil
}
