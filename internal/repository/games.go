package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/espoir/limitedjanken/internal/game"
)

// GameRepository persists finished games.
type GameRepository struct {
	db *DB
}

// NewGameRepository creates a repository over the given database.
func NewGameRepository(db *DB) *GameRepository {
	return &GameRepository{db: db}
}

// GameResult is the archived view of a finished game.
type GameResult struct {
	GameID     string
	Turns      int
	MaxTurns   int
	Standings  []game.FinalStanding
	Transcript []game.TranscriptRecord
}

// SaveResult writes the game row, the final standings and the transcript in
// one transaction.
func (r *GameRepository) SaveResult(ctx context.Context, result GameResult) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO games (id, turns, max_turns) VALUES ($1, $2, $3)`,
		result.GameID, result.Turns, result.MaxTurns); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}

	for _, s := range result.Standings {
		if _, err := tx.Exec(ctx,
			`INSERT INTO game_players (game_id, name, status, stars, cards, money)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			result.GameID, s.Name, s.Status, s.Stars, s.Cards, s.Money); err != nil {
			return fmt.Errorf("insert standing for %s: %w", s.Name, err)
		}
	}

	for i, rec := range result.Transcript {
		if _, err := tx.Exec(ctx,
			`INSERT INTO game_transcripts (game_id, seq, turn, player, message)
			 VALUES ($1, $2, $3, $4, $5)`,
			result.GameID, i, rec.Turn, rec.Player, rec.Message); err != nil {
			return fmt.Errorf("insert transcript record %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	r.db.logger.Info("game archived",
		zap.String("game_id", result.GameID),
		zap.Int("turns", result.Turns),
		zap.Int("transcript_records", len(result.Transcript)))
	return nil
}
