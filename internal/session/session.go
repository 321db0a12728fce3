// Package session is the thin public facade spec.md §1 calls out as
// peripheral: it glues one fingerprint.Extractor to one search.Database so
// callers (the HTTP server, the CLI) don't wire the two core packages by
// hand. It carries no algorithmic weight of its own.
package session

import (
	"github.com/google/uuid"

	"github.com/chromabeam/engine/internal/coreerr"
	"github.com/chromabeam/engine/internal/fingerprint"
	"github.com/chromabeam/engine/internal/search"
)

// Config bundles the extractor and database configuration a Session is
// built from. Both halves carry sample_rate and window_stride: DefaultConfig
// gives them the same values and config.Load copies the extractor's values
// into the database half. New does not check that the two agree.
type Config struct {
	Extractor fingerprint.ExtractorConfig
	Database  search.DatabaseConfig
}

// DefaultConfig returns the original implementation's default
// SessionConfiguration, split into its extractor and database halves.
func DefaultConfig() Config {
	return Config{
		Extractor: fingerprint.DefaultExtractorConfig(),
		Database:  search.DefaultDatabaseConfig(),
	}
}

// Session composes an Extractor and a Database into the engine's single
// entry point.
type Session struct {
	extractor *fingerprint.Extractor
	database  *search.Database
}

// New validates cfg and constructs a Session.
func New(cfg Config) (*Session, error) {
	ex, err := fingerprint.NewExtractor(cfg.Extractor)
	if err != nil {
		return nil, err
	}
	db, err := search.NewDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	return &Session{extractor: ex, database: db}, nil
}

// Extract runs the feature extractor over samples without registering
// anything, useful for callers that want to inspect or cache a fingerprint
// sequence before deciding whether to register it.
func (s *Session) Extract(samples []int16) []fingerprint.Fingerprint {
	return s.extractor.Features(samples)
}

// Register extracts samples and inserts the resulting sequence into the
// database under id, replacing any previous sequence registered there.
func (s *Session) Register(id uuid.UUID, samples []int16) []fingerprint.Fingerprint {
	seq := s.extractor.Features(samples)
	s.database.Insert(id, seq)
	return seq
}

// RegisterSequence inserts a previously-extracted fingerprint sequence
// directly, skipping extraction — for callers that cached it via Extract.
func (s *Session) RegisterSequence(id uuid.UUID, seq []fingerprint.Fingerprint) {
	s.database.Insert(id, seq)
}

// NewQuery opens a streaming query over the database's current contents.
func (s *Session) NewQuery() *search.Query {
	return s.database.NewQuery()
}

// ParseKeyID parses a caller-supplied key identifier string, returning
// coreerr.InvalidIdentifier on failure — the one boundary-only error kind
// the core surfaces (spec.md §7).
func ParseKeyID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, &coreerr.InvalidIdentifier{Value: s}
	}
	return id, nil
}
