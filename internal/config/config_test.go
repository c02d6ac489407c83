package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Game.InitialStars)
	assert.Equal(t, 4, cfg.Game.InitialCardsEachType)
	assert.Equal(t, 24, cfg.Game.MaxTurns)
	assert.Equal(t, 10, cfg.Game.MinutesPerTurn)
	assert.Equal(t, 5, cfg.Game.TotalPlayers)
	assert.Equal(t, "fixed", cfg.Game.TurnOrder)
	assert.Equal(t, "bot", cfg.Oracle.Kind)
	assert.Equal(t, 30*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, 0.5, cfg.Oracle.Bot.Aggression)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.False(t, cfg.Spectator.Enabled)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.Game.MaxTurns)
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
game:
  max_turns: 12
  turn_order: shuffled
  shuffle_seed: 99
  status_labels:
    out_success: SURVIVED
oracle:
  kind: remote
  url: ws://localhost:9000/agent
  timeout: 5s
archive:
  transcript_dir: /tmp/transcripts
spectator:
  enabled: true
  address: ":9090"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Game.MaxTurns)
	assert.Equal(t, "shuffled", cfg.Game.TurnOrder)
	assert.Equal(t, int64(99), cfg.Game.ShuffleSeed)
	assert.Equal(t, "SURVIVED", cfg.Game.StatusLabels["out_success"])
	assert.Equal(t, "remote", cfg.Oracle.Kind)
	assert.Equal(t, "ws://localhost:9000/agent", cfg.Oracle.URL)
	assert.Equal(t, 5*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, "/tmp/transcripts", cfg.Archive.TranscriptDir)
	assert.True(t, cfg.Spectator.Enabled)
	assert.Equal(t, ":9090", cfg.Spectator.Address)
	// Untouched keys keep their defaults.
	assert.Equal(t, 3, cfg.Game.InitialStars)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LRPS_GAME_MAX_TURNS", "6")
	t.Setenv("LRPS_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Game.MaxTurns)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"zero stars", "game:\n  initial_stars: 0\n", "initial_stars"},
		{"zero cards", "game:\n  initial_cards_each_type: 0\n", "initial_cards_each_type"},
		{"zero turns", "game:\n  max_turns: 0\n", "max_turns"},
		{"bad turn order", "game:\n  turn_order: random\n", "turn_order"},
		{"bad oracle kind", "oracle:\n  kind: psychic\n", "oracle.kind"},
		{"remote without url", "oracle:\n  kind: remote\n", "oracle.url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
