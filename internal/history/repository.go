package history

import (
	"context"
	"fmt"
	"time"

	"github.com/txwerewolves/wwserver/internal/card"
	"github.com/txwerewolves/wwserver/internal/game"
)

// Record is one archived game-results row.
type Record struct {
	ID          int64
	SessionID   string
	FinishedAt  time.Time
	Winner      string
	Eliminated  []string
}

// Repository archives finished-game results and lists past ones. When
// history is disabled (config.History.DSN empty) no Repository is created,
// and the termapp/webapp archival hooks stay nil.
type Repository interface {
	RecordResult(ctx context.Context, sessionID string, results *game.Results) error
	RecentResults(ctx context.Context, limit int) ([]Record, error)
}

// PostgresRepository implements Repository against the game_results
// table.
type PostgresRepository struct {
	db *DB
}

// NewPostgresRepository builds a Repository backed by db.
func NewPostgresRepository(db *DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// RecordResult archives one finished game's post-game report.
func (r *PostgresRepository) RecordResult(ctx context.Context, sessionID string, results *game.Results) error {
	_, err := r.db.pool.Exec(ctx,
		`INSERT INTO game_results
		 (session_id, winner, eliminated, player_cards_original, player_cards_current, table_cards_original, table_cards_current)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sessionID,
		results.Winner.String(),
		results.Eliminated,
		cardMapJSON(results.PlayerCardsOriginal),
		cardMapJSON(results.PlayerCardsCurrent),
		cardSliceNames(results.TableCardsOriginal[:]),
		cardSliceNames(results.TableCardsCurrent[:]),
	)
	if err != nil {
		return fmt.Errorf("archiving results for session %q: %w", sessionID, err)
	}
	return nil
}

// RecentResults returns the most recently finished games, newest first.
func (r *PostgresRepository) RecentResults(ctx context.Context, limit int) ([]Record, error) {
	rows, err := r.db.pool.Query(ctx,
		`SELECT id, session_id, finished_at, winner, eliminated
		 FROM game_results ORDER BY finished_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent results: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.FinishedAt, &rec.Winner, &rec.Eliminated); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating result rows: %w", err)
	}
	return records, nil
}

func cardMapJSON(m map[string]card.Card) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v.String()
	}
	return out
}

func cardSliceNames(cards []card.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// NoopRepository discards every write and reports no history. Nothing in
// the module installs it.
type NoopRepository struct{}

func (NoopRepository) RecordResult(context.Context, string, *game.Results) error { return nil }
func (NoopRepository) RecentResults(context.Context, int) ([]Record, error)      { return nil, nil }
