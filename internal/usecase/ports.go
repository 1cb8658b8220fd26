package usecase

import (
	"context"
	"time"

	"github.com/puckdata/goal-export/internal/domain/goal"
	"github.com/puckdata/goal-export/internal/domain/schedule"
)

// ScheduleSource lists the games played inside a period.
type ScheduleSource interface {
	GamesInPeriod(ctx context.Context, p schedule.Period) ([]schedule.Game, error)
}

// GameSource produces a fully extracted game from either upstream
// document shape. SummaryExport is the primary path; PlayByPlayExport
// is consulted only when the primary fails.
type GameSource interface {
	SummaryExport(ctx context.Context, id schedule.GameID) (goal.GameRecord, error)
	PlayByPlayExport(ctx context.Context, id schedule.GameID) (goal.GameRecord, error)
}

// TrackingSource fetches the raw positional payload for one goal.
type TrackingSource interface {
	TrackingPayload(ctx context.Context, ref goal.TrackingRef) ([]byte, error)
}

// ArtifactStore persists per-game artifacts under a date keyed layout.
type ArtifactStore interface {
	EnsureGameDir(date time.Time, id schedule.GameID) (string, error)
	SaveTracking(dir string, id goal.EventID, payload []byte) error
	SaveExport(dir string, export goal.GameExport) error
}
