package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chromabeam/engine/internal/session"
)

func TestLoadDefaultsMatchSessionDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, session.DefaultConfig(), cfg)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CHROMABEAM_SEARCH_BEAM_COUNT", "42")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Database.SearchBeamCount)
}
