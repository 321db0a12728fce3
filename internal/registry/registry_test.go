package registry

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestRegistryUpsertAndGet(t *testing.T) {
	reg, err := New(openTestDB(t))
	require.NoError(t, err)

	id := uuid.New()
	rec := KeyRecord{
		ID:               id,
		Name:             "test clip",
		Artist:           "nobody",
		FingerprintCount: 12,
		CreatedAt:        time.Now(),
	}
	require.NoError(t, reg.Upsert(rec))

	got, err := reg.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "test clip", got.Name)
	assert.Equal(t, 12, got.FingerprintCount)
}

func TestRegistryListOrdersByCreatedAtDesc(t *testing.T) {
	reg, err := New(openTestDB(t))
	require.NoError(t, err)

	older := KeyRecord{ID: uuid.New(), Name: "older", CreatedAt: time.Now().Add(-time.Hour)}
	newer := KeyRecord{ID: uuid.New(), Name: "newer", CreatedAt: time.Now()}
	require.NoError(t, reg.Upsert(older))
	require.NoError(t, reg.Upsert(newer))

	got, err := reg.List()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "newer", got[0].Name)
}

func TestRegistryDelete(t *testing.T) {
	reg, err := New(openTestDB(t))
	require.NoError(t, err)

	id := uuid.New()
	require.NoError(t, reg.Upsert(KeyRecord{ID: id, Name: "x", CreatedAt: time.Now()}))
	require.NoError(t, reg.Delete(id))

	_, err = reg.Get(id)
	assert.Error(t, err)
}
