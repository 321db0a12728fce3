package fingerprint

import "sort"

// quantize converts a chroma vector into a 64-bit thermometer-coded
// fingerprint: the topK highest-energy bins are ranked lowest-to-highest,
// and each rank r writes a run of (bitsPerBin+1)*r/topK set bits into its
// bin's bitsPerBin-wide slot, OR-ed together. Ties are broken by
// sort.SliceStable, which keeps equal-value bins in their original
// bin-index order (spec.md §9).
func quantize(chroma []float64, topK, bitsPerBin int) Fingerprint {
	type scored struct {
		value float64
		bin   int
	}
	pairs := make([]scored, len(chroma))
	for i, v := range chroma {
		pairs[i] = scored{value: v, bin: i}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	if topK > len(pairs) {
		topK = len(pairs)
	}
	if topK <= 0 {
		return 0
	}

	n := len(pairs)
	var fp uint64
	for rank := 0; rank < topK; rank++ {
		p := pairs[n-topK+rank]
		runLen := (bitsPerBin + 1) * rank / topK
		var run uint64
		if runLen > 0 {
			run = (uint64(1) << uint(runLen)) - 1
		}
		fp |= run << uint(p.bin*bitsPerBin)
	}
	return Fingerprint(fp)
}
