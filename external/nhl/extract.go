package nhl

import (
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/puckdata/goal-export/internal/domain/goal"
	"github.com/puckdata/goal-export/internal/domain/schedule"
	"github.com/puckdata/goal-export/internal/platform/logging"
)

const (
	// Shootout periods carry this descriptor; their attempts are not
	// goals and never enter the export.
	shootoutPeriodType = "SO"

	goalTypeKey = "goal"
)

const gameDateLayout = "2006-01-02"

func unmarshalJSON(raw []byte, target any) error {
	return sonic.Unmarshal(raw, target)
}

// extractFromLanding builds the export from the summary scoring
// section. This is the strict path: one bad defending side fails the
// whole document.
func extractFromLanding(resp *landingResponse) (goal.GameRecord, error) {
	goals := make([]goal.Goal, 0, 16)
	for _, period := range resp.Summary.Scoring {
		if period.PeriodDescriptor.PeriodType == shootoutPeriodType {
			continue
		}
		for _, item := range period.Goals {
			side, err := goal.ParseRinkSide(item.HomeTeamDefendingSide)
			if err != nil {
				return goal.GameRecord{}, crerr.Wrapf(err, "goal event %d in game %d", item.EventID, resp.ID)
			}

			scoringTeam := resp.AwayTeam.ID
			if item.IsHome {
				scoringTeam = resp.HomeTeam.ID
			}

			goals = append(goals, goal.Goal{
				EventID:           goal.EventID(item.EventID),
				PPTReplayURL:      item.PPTReplayURL,
				ScoringTeamID:     goal.TeamID(scoringTeam),
				HomeDefendingSide: side,
			})
		}
	}

	return goal.GameRecord{
		GameID:   schedule.GameID(resp.ID),
		Season:   resp.Season,
		GameDate: parseGameDate(resp.GameDate),
		Export: goal.GameExport{
			Goals:      goals,
			HomeTeamID: goal.TeamID(resp.HomeTeam.ID),
		},
	}, nil
}

// extractFromPlayByPlay builds the export from the event stream. This
// is the lenient path: events missing the fields we need are logged
// and dropped, never failing the document.
func extractFromPlayByPlay(resp *playByPlayResponse, logger *logging.Logger) goal.GameRecord {
	goals := make([]goal.Goal, 0, 16)
	for _, play := range resp.Plays {
		if play.TypeDescKey != goalTypeKey {
			continue
		}
		if play.PeriodDescriptor.PeriodType == shootoutPeriodType {
			continue
		}
		if play.Details == nil || play.Details.EventOwnerTeamID == nil {
			logger.Warn("goal event has no owning team, skipping",
				"game_id", resp.ID,
				"event_id", play.EventID,
			)
			continue
		}
		side, err := goal.ParseRinkSide(play.HomeTeamDefendingSide)
		if err != nil {
			logger.Warn("goal event has unusable defending side, skipping",
				"game_id", resp.ID,
				"event_id", play.EventID,
				"error", err,
			)
			continue
		}

		goals = append(goals, goal.Goal{
			EventID:           goal.EventID(play.EventID),
			PPTReplayURL:      play.PPTReplayURL,
			ScoringTeamID:     goal.TeamID(*play.Details.EventOwnerTeamID),
			HomeDefendingSide: side,
		})
	}

	return goal.GameRecord{
		GameID:   schedule.GameID(resp.ID),
		Season:   resp.Season,
		GameDate: parseGameDate(resp.GameDate),
		Export: goal.GameExport{
			Goals:      goals,
			HomeTeamID: goal.TeamID(resp.HomeTeam.ID),
		},
	}
}

func parseGameDate(raw string) time.Time {
	parsed, err := time.Parse(gameDateLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}
