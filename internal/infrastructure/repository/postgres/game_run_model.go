package postgres

import (
	"time"

	"github.com/puckdata/goal-export/internal/domain/gamerun"
	"github.com/puckdata/goal-export/internal/domain/schedule"
)

type gameRunRow struct {
	GameID        int64      `db:"game_id"`
	GameDate      *time.Time `db:"game_date"`
	Source        string     `db:"source"`
	Status        string     `db:"status"`
	Goals         int        `db:"goals"`
	TrackingSaved int        `db:"tracking_saved"`
	Cause         string     `db:"cause"`
	FinishedAt    time.Time  `db:"finished_at"`
}

func gameRunRowFromDomain(run gamerun.Run) gameRunRow {
	return gameRunRow{
		GameID:        int64(run.GameID),
		GameDate:      run.GameDate,
		Source:        string(run.Source),
		Status:        string(run.Status),
		Goals:         run.Goals,
		TrackingSaved: run.TrackingSaved,
		Cause:         run.Cause,
		FinishedAt:    run.FinishedAt,
	}
}

func (r gameRunRow) toDomain() *gamerun.Run {
	return &gamerun.Run{
		GameID:        schedule.GameID(r.GameID),
		GameDate:      r.GameDate,
		Source:        gamerun.Source(r.Source),
		Status:        gamerun.Status(r.Status),
		Goals:         r.Goals,
		TrackingSaved: r.TrackingSaved,
		Cause:         r.Cause,
		FinishedAt:    r.FinishedAt,
	}
}
