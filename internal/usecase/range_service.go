package usecase

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/puckdata/goal-export/internal/domain/schedule"
	"github.com/puckdata/goal-export/internal/platform/logging"
)

// RangeService walks an arbitrary date range in fixed week strides,
// resolving the games of each window and feeding them one by one to
// the game pipeline. A window that cannot be constructed or resolved
// is skipped; a failed game skips that game. The walk itself only
// stops on caller cancellation or invalid input.
type RangeService struct {
	schedule ScheduleSource
	games    *GameService
	logger   *logging.Logger

	newPeriod func(start, end time.Time) (schedule.Period, error)
}

func NewRangeService(source ScheduleSource, games *GameService, logger *logging.Logger) *RangeService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RangeService{
		schedule:  source,
		games:     games,
		logger:    logger,
		newPeriod: schedule.NewPeriod,
	}
}

type RangeSummary struct {
	Periods        int
	PeriodsSkipped int
	Games          int
	GamesSucceeded int
	GamesFailed    int
}

// Run processes every game scheduled between start and end inclusive.
func (s *RangeService) Run(ctx context.Context, start, end time.Time) (RangeSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "RangeService.Run")
	defer span.End()

	var summary RangeSummary

	start = truncateToDate(start)
	end = truncateToDate(end)
	if end.Before(start) {
		return summary, crerr.Mark(
			crerr.Newf("range start %s is after end %s", start.Format("2006-01-02"), end.Format("2006-01-02")),
			ErrInvalidInput,
		)
	}

	for cur := start; !cur.After(end); {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		winEnd := cur.AddDate(0, 0, schedule.MaxPeriodDays-1)
		if winEnd.After(end) {
			winEnd = end
		}

		summary.Periods++
		period, err := s.newPeriod(cur, winEnd)
		if err != nil {
			summary.PeriodsSkipped++
			s.logger.WarnContext(ctx, "period construction failed, skipping window",
				"window_start", cur.Format("2006-01-02"),
				"error", err,
			)
		} else {
			s.runPeriod(ctx, period, &summary)
		}

		next := cur.AddDate(0, 0, schedule.MaxPeriodDays)
		if !next.After(cur) {
			return summary, crerr.Newf("period walk stalled at %s", cur.Format("2006-01-02"))
		}
		cur = next
	}

	s.logger.InfoContext(ctx, "range processed",
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"),
		"periods", summary.Periods,
		"periods_skipped", summary.PeriodsSkipped,
		"games", summary.Games,
		"games_failed", summary.GamesFailed,
	)
	return summary, nil
}

func (s *RangeService) runPeriod(ctx context.Context, period schedule.Period, summary *RangeSummary) {
	games, err := s.schedule.GamesInPeriod(ctx, period)
	if err != nil {
		summary.PeriodsSkipped++
		s.logger.WarnContext(ctx, "schedule lookup failed, skipping period",
			"period_start", period.StartKey(),
			"error", err,
		)
		return
	}

	s.logger.DebugContext(ctx, "period resolved",
		"period_start", period.StartKey(),
		"games", len(games),
	)

	for _, game := range games {
		if ctx.Err() != nil {
			return
		}
		summary.Games++
		if _, err := s.games.Run(ctx, game); err != nil {
			summary.GamesFailed++
			s.logger.ErrorContext(ctx, "game failed, continuing",
				"game_id", game.ID,
				"error", err,
			)
			continue
		}
		summary.GamesSucceeded++
	}
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
