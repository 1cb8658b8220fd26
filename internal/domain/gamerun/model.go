package gamerun

import (
	"time"

	"github.com/puckdata/goal-export/internal/domain/schedule"
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Source names which upstream document produced the export.
type Source string

const (
	SourceSummary    Source = "summary"
	SourcePlayByPlay Source = "play_by_play"
)

// Run is the ledger record for one processed game. GameDate is nil
// when the game failed before a date could be derived.
type Run struct {
	GameID        schedule.GameID
	GameDate      *time.Time
	Source        Source
	Status        Status
	Goals         int
	TrackingSaved int
	Cause         string
	FinishedAt    time.Time
}
