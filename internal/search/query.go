package search

import (
	"sort"

	"github.com/google/uuid"

	"github.com/chromabeam/engine/internal/fingerprint"
)

// Query is a streaming match against every key registered in a Database at
// the moment NewQuery was called. Update is called once per incoming query
// fingerprint; Finalize drains every live beam into a ranked result set and
// releases the database's read lock.
//
// Grounded line-for-line on original_source/src/search.rs's Query::update
// and Query::finalize.
type Query struct {
	db        *Database
	head      int
	keys      map[uuid.UUID][]fingerprint.Fingerprint
	beams     map[uuid.UUID][]scoredBeam
	finalized bool
}

// candidate is a recombination-table entry: either an extended existing
// beam or a freshly seeded one, keyed by the key position it now ends at.
type candidate struct {
	score   Fraction
	beam    Beam
	isSeed  bool
	seedPos int
}

// Update folds one incoming query fingerprint into every key's beam set.
// For each key, existing beams are first extended within the lookahead
// window (choosing the lowest-distance offset, earliest index on ties),
// then every key position is considered as a fresh seed; both compete into
// a recombination table keyed by key-end position (at most one surviving
// beam per position), which is then trimmed to search_beam_count beams.
func (q *Query) Update(feature fingerprint.Fingerprint) {
	cfg := q.db.cfg
	for id, seq := range q.keys {
		L := len(seq)
		if L == 0 {
			continue
		}
		distances := make([]uint32, L)
		for j, kf := range seq {
			distances[j] = feature.Distance(kf)
		}

		recomb := make(map[int]candidate, L)

		for _, sb := range q.beams[id] {
			end := sb.Beam.KeyEnd()
			lo := end + 1
			hi := lo + cfg.SearchWindowSize
			if hi > L {
				hi = L
			}
			if lo >= hi {
				continue
			}
			bestOffset := lo
			bestDist := distances[lo]
			for j := lo + 1; j < hi; j++ {
				if distances[j] < bestDist {
					bestDist = distances[j]
					bestOffset = j
				}
			}

			newPath := make([]int, len(sb.Beam.Path)+1)
			copy(newPath, sb.Beam.Path)
			newPath[len(newPath)-1] = bestOffset
			extended := Beam{QueryStart: sb.Beam.QueryStart, Path: newPath}
			score := Fraction{N: sb.Score.N + bestDist, D: sb.Score.D + 1}

			if existing, ok := recomb[bestOffset]; !ok || score.Less(existing.score) {
				recomb[bestOffset] = candidate{score: score, beam: extended}
			}
		}

		for j := 0; j < L; j++ {
			score := Fraction{N: cfg.SearchScorePenalty + distances[j], D: cfg.SearchLengthPenalty + 1}
			if existing, ok := recomb[j]; !ok || score.Less(existing.score) {
				recomb[j] = candidate{score: score, isSeed: true, seedPos: j}
			}
		}

		entries := make([]rankEntry, 0, len(recomb))
		for _, c := range recomb {
			b := c.beam
			if c.isSeed {
				b = Beam{QueryStart: q.head, Path: []int{c.seedPos}}
			}
			entries = append(entries, rankEntry{id: id, score: c.score, beam: b})
		}
		// Reuse rank's full tie-break (score, then id/query_start/key_start)
		// so the beam kept at the search_beam_count boundary on an exact
		// score tie never depends on map iteration order.
		rank(entries)
		if len(entries) > cfg.SearchBeamCount {
			entries = entries[:cfg.SearchBeamCount]
		}

		next := make([]scoredBeam, len(entries))
		for i, e := range entries {
			next[i] = scoredBeam{Score: e.score, Beam: e.beam}
		}
		q.beams[id] = next
	}
	q.head++
}

// rank sorts entries by score (best first), tie-broken deterministically so
// result order never depends on map iteration. Shared by Peek and Finalize.
func rank(all []rankEntry) {
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.score.Less(b.score) {
			return true
		}
		if b.score.Less(a.score) {
			return false
		}
		if a.id != b.id {
			return a.id.String() < b.id.String()
		}
		if a.beam.QueryStart != b.beam.QueryStart {
			return a.beam.QueryStart < b.beam.QueryStart
		}
		return a.beam.KeyStart() < b.beam.KeyStart()
	})
}

type rankEntry struct {
	id    uuid.UUID
	score Fraction
	beam  Beam
}

func (q *Query) snapshot() []rankEntry {
	var all []rankEntry
	for id, beams := range q.beams {
		for _, sb := range beams {
			all = append(all, rankEntry{id: id, score: sb.Score, beam: sb.Beam})
		}
	}
	rank(all)
	return all
}

func (e rankEntry) toResult(cfg DatabaseConfig) Result {
	dt := float32(cfg.WindowStride) / float32(cfg.SampleRate)
	return Result{
		ID:         e.id,
		Score:      e.score.Float32(),
		KeyStart:   float32(e.beam.KeyStart()) * dt,
		KeyEnd:     float32(e.beam.KeyEnd()) * dt,
		QueryStart: float32(e.beam.QueryStart) * dt,
	}
}

// Peek returns the current best results without finalizing the query —
// the websocket server calls this after each batch of Updates to stream an
// incremental leaderboard. It does not release the database read lock and
// may be called any number of times before Finalize.
func (q *Query) Peek(topN int) []Result {
	all := q.snapshot()
	if topN > 0 && len(all) > topN {
		all = all[:topN]
	}
	cfg := q.db.cfg
	results := make([]Result, len(all))
	for i, e := range all {
		results[i] = e.toResult(cfg)
	}
	return results
}

// Result is one ranked match between the query and a registered key.
type Result struct {
	ID         uuid.UUID
	Score      float32
	KeyStart   float32
	KeyEnd     float32
	QueryStart float32
}

// Finalize drains every live beam across every key into a sorted result
// set (best score first) and releases the database's read lock. It must be
// called exactly once per Query.
func (q *Query) Finalize() []Result {
	if q.finalized {
		panic("search: Finalize called twice on the same Query")
	}
	q.finalized = true
	defer q.db.mu.RUnlock()

	all := q.snapshot()
	cfg := q.db.cfg
	results := make([]Result, len(all))
	for i, e := range all {
		results[i] = e.toResult(cfg)
	}
	return results
}
