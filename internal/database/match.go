// internal/database/match.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MatchResultRow is one player's line in a finished match.
type MatchResultRow struct {
	PlayerID string
	HandSize int
	DidWin   bool
}

// RecordMatchResult persists the outcome of a finished game: the match row
// plus one result row per player still seated at the end. Live sessions are
// memory-only; this table exists for history, not recovery.
func RecordMatchResult(ctx context.Context, gameID uuid.UUID, roomID, winnerID string, turns int, rows []MatchResultRow) error {
	if DB == nil {
		return nil
	}
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertMatch := `
			INSERT INTO matches (id, room_id, winner_id, turns)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET winner_id = $3, turns = $4
		`
		if _, e := tx.Exec(ctx, upsertMatch, gameID, roomID, winnerID, turns); e != nil {
			return e
		}
		for _, row := range rows {
			q := `
				INSERT INTO match_results (match_id, player_id, hand_size, did_win)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (match_id, player_id)
				DO UPDATE SET hand_size = $3, did_win = $4
			`
			if _, e := tx.Exec(ctx, q, gameID, row.PlayerID, row.HandSize, row.DidWin); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert match or results: %w", err)
	}
	return nil
}
