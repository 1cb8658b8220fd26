package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/puckdata/goal-export/internal/domain/gamerun"
)

// GameRunRepository is the optional run ledger. One row per game,
// re-runs overwrite the previous outcome.
type GameRunRepository struct {
	db *sqlx.DB
}

func NewGameRunRepository(db *sqlx.DB) *GameRunRepository {
	return &GameRunRepository{db: db}
}

const upsertGameRunQuery = `
INSERT INTO game_runs (game_id, game_date, source, status, goals, tracking_saved, cause, finished_at)
VALUES (:game_id, :game_date, :source, :status, :goals, :tracking_saved, :cause, :finished_at)
ON CONFLICT (game_id)
DO UPDATE SET
    game_date = EXCLUDED.game_date,
    source = EXCLUDED.source,
    status = EXCLUDED.status,
    goals = EXCLUDED.goals,
    tracking_saved = EXCLUDED.tracking_saved,
    cause = EXCLUDED.cause,
    finished_at = EXCLUDED.finished_at,
    updated_at = NOW()`

func (r *GameRunRepository) Upsert(ctx context.Context, run gamerun.Run) error {
	if _, err := r.db.NamedExecContext(ctx, upsertGameRunQuery, gameRunRowFromDomain(run)); err != nil {
		return fmt.Errorf("upsert game run game_id=%d: %w", run.GameID, err)
	}
	return nil
}

const findGameRunQuery = `
SELECT game_id, game_date, source, status, goals, tracking_saved, cause, finished_at
FROM game_runs
WHERE game_id = $1`

func (r *GameRunRepository) FindByGameID(ctx context.Context, gameID int64) (*gamerun.Run, error) {
	var row gameRunRow
	err := r.db.GetContext(ctx, &row, findGameRunQuery, gameID)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game run game_id=%d: %w", gameID, err)
	}
	return row.toDomain(), nil
}
