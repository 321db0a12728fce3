package search

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chromabeam/engine/internal/fingerprint"
)

func TestDatabaseConfigValidate(t *testing.T) {
	cfg := DefaultDatabaseConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.SearchBeamCount = 0
	assert.Error(t, bad.Validate())
}

func TestFractionLessCrossMultiplies(t *testing.T) {
	a := Fraction{N: 1, D: 2}
	b := Fraction{N: 2, D: 3}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))

	tie := Fraction{N: 2, D: 4}
	assert.False(t, a.Less(tie))
	assert.False(t, tie.Less(a))
}

func TestQueryFindsExactMatch(t *testing.T) {
	cfg := DefaultDatabaseConfig()
	db, err := NewDatabase(cfg)
	require.NoError(t, err)

	key := []fingerprint.Fingerprint{1, 2, 3, 4, 5}
	id := uuid.New()
	db.Insert(id, key)

	q := db.NewQuery()
	for _, f := range key {
		q.Update(f)
	}
	results := q.Finalize()

	require.NotEmpty(t, results)
	best := results[0]
	assert.Equal(t, id, best.ID)
	// n = SearchScorePenalty + dist(0) = 100, d = length_penalty(3) + length(5) = 8
	assert.Equal(t, float32(12.5), best.Score)
}

func TestQueryEmptyDatabaseYieldsNoResults(t *testing.T) {
	cfg := DefaultDatabaseConfig()
	db, err := NewDatabase(cfg)
	require.NoError(t, err)

	q := db.NewQuery()
	q.Update(fingerprint.Fingerprint(42))
	results := q.Finalize()
	assert.Empty(t, results)
}

func TestQueryBeamCountIsTrimmed(t *testing.T) {
	cfg := DefaultDatabaseConfig()
	cfg.SearchBeamCount = 2
	db, err := NewDatabase(cfg)
	require.NoError(t, err)

	key := make([]fingerprint.Fingerprint, 50)
	for i := range key {
		key[i] = fingerprint.Fingerprint(i)
	}
	id := uuid.New()
	db.Insert(id, key)

	q := db.NewQuery()
	q.Update(fingerprint.Fingerprint(0))
	assert.LessOrEqual(t, len(q.beams[id]), cfg.SearchBeamCount)
	q.Finalize()
}

func TestDatabaseMutationBlocksWhileQueryLive(t *testing.T) {
	cfg := DefaultDatabaseConfig()
	db, err := NewDatabase(cfg)
	require.NoError(t, err)
	db.Insert(uuid.New(), []fingerprint.Fingerprint{1, 2, 3})

	q := db.NewQuery()
	done := make(chan struct{})
	go func() {
		db.Insert(uuid.New(), []fingerprint.Fingerprint{4, 5, 6})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Insert returned while a query held the read lock")
	case <-time.After(20 * time.Millisecond):
	}
	q.Finalize()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Insert never unblocked after Finalize released the read lock")
	}
}
