package goal

import (
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/puckdata/goal-export/internal/domain/schedule"
)

// ErrInvalidDefendingSide marks defending side values outside the
// left/right vocabulary.
var ErrInvalidDefendingSide = crerr.New("invalid defending side")

// EventID identifies one play event within a game.
type EventID int64

// TeamID identifies a team upstream.
type TeamID int64

// RinkSide is the end of the rink the home team defends during a goal.
// It serializes in title case.
type RinkSide string

const (
	SideLeft  RinkSide = "Left"
	SideRight RinkSide = "Right"
)

// ParseRinkSide maps the wire values to a RinkSide. Only the exact
// lower case strings the feed emits are accepted.
func ParseRinkSide(s string) (RinkSide, error) {
	switch s {
	case "left":
		return SideLeft, nil
	case "right":
		return SideRight, nil
	default:
		return "", crerr.Mark(crerr.Newf("defending side %q is neither left nor right", s), ErrInvalidDefendingSide)
	}
}

// Goal is one regulation or overtime goal in the export artifact.
// Shootout attempts never become Goals.
type Goal struct {
	EventID           EventID  `json:"event_id"`
	PPTReplayURL      *string  `json:"ppt_replay_url"`
	ScoringTeamID     TeamID   `json:"scoring_team_id"`
	HomeDefendingSide RinkSide `json:"home_team_defending_side"`
}

// GameExport is the canonical per-game artifact body.
type GameExport struct {
	Goals      []Goal `json:"goals"`
	HomeTeamID TeamID `json:"home_team_id"`
}

// GameRecord is a fully extracted game: the export body plus the
// identifiers needed to persist it and to fetch tracking payloads.
// GameDate is zero when the source carried no usable date.
type GameRecord struct {
	GameID   schedule.GameID
	Season   int64
	GameDate time.Time
	Export   GameExport
}

// TrackingRef addresses the positional tracking payload of one goal.
// When ReplayURL is nil the payload lives at the conventional
// season/game/event path.
type TrackingRef struct {
	Season    int64
	GameID    schedule.GameID
	EventID   EventID
	ReplayURL *string
}
