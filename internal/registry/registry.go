// Package registry persists key metadata across process restarts — display
// name, source filename, artist tag, duration, fingerprint count, and when
// it was added. It never persists the fingerprint sequence itself: that
// stays exclusively in the in-memory search.Database, matching spec.md's
// non-goal of cross-process persistence of the key fingerprint database.
package registry

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KeyRecord is the gorm model backing one registered key's metadata.
type KeyRecord struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name             string    `gorm:"not null"`
	Artist           string
	SourceFilename   string
	DurationSeconds  float64
	FingerprintCount int
	CreatedAt        time.Time
}

// Registry wraps a gorm.DB scoped to KeyRecord.
type Registry struct {
	db *gorm.DB
}

// New wraps db and ensures the KeyRecord table exists.
func New(db *gorm.DB) (*Registry, error) {
	if err := db.AutoMigrate(&KeyRecord{}); err != nil {
		return nil, err
	}
	return &Registry{db: db}, nil
}

// Upsert inserts or replaces the metadata row for rec.ID.
func (r *Registry) Upsert(rec KeyRecord) error {
	return r.db.Save(&rec).Error
}

// List returns every registered key's metadata, most recently added first.
func (r *Registry) List() ([]KeyRecord, error) {
	var recs []KeyRecord
	err := r.db.Order("created_at desc").Find(&recs).Error
	return recs, err
}

// Get looks up one key's metadata by id.
func (r *Registry) Get(id uuid.UUID) (KeyRecord, error) {
	var rec KeyRecord
	err := r.db.First(&rec, "id = ?", id).Error
	return rec, err
}

// Delete removes a key's metadata row. It does not touch the in-memory
// fingerprint database; callers are responsible for keeping the two in
// sync (e.g. by also re-inserting an empty sequence).
func (r *Registry) Delete(id uuid.UUID) error {
	return r.db.Delete(&KeyRecord{}, "id = ?", id).Error
}
