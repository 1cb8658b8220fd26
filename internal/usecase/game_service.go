package usecase

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/puckdata/goal-export/internal/domain/gamerun"
	"github.com/puckdata/goal-export/internal/domain/goal"
	"github.com/puckdata/goal-export/internal/domain/schedule"
	"github.com/puckdata/goal-export/internal/platform/logging"
)

// GameService drives the per-game pipeline: extract goals from the
// summary document, fall back to play-by-play when the summary path
// fails for any reason, then persist tracking payloads and the export
// artifact. Tracking failures are logged and skipped; losing either
// extraction path entirely or the artifact write fails the game.
type GameService struct {
	games    GameSource
	tracking TrackingSource
	store    ArtifactStore
	runs     gamerun.Repository
	logger   *logging.Logger
}

// NewGameService wires the pipeline. runs may be nil when no ledger is
// configured.
func NewGameService(games GameSource, tracking TrackingSource, store ArtifactStore, runs gamerun.Repository, logger *logging.Logger) *GameService {
	if logger == nil {
		logger = logging.Default()
	}
	return &GameService{
		games:    games,
		tracking: tracking,
		store:    store,
		runs:     runs,
		logger:   logger,
	}
}

type GameResult struct {
	GameID        schedule.GameID
	GameDate      time.Time
	Source        gamerun.Source
	Goals         int
	TrackingSaved int
}

// Run processes a single game end to end. The schedule entry may carry
// only the ID; start time and venue offset are optional hints used when
// the extracted record has no usable date.
func (s *GameService) Run(ctx context.Context, game schedule.Game) (GameResult, error) {
	ctx, span := startUsecaseSpan(ctx, "GameService.Run")
	defer span.End()

	result := GameResult{GameID: game.ID}

	rec, source, err := s.extract(ctx, game.ID)
	if err != nil {
		s.recordRun(ctx, gamerun.Run{
			GameID:     game.ID,
			Status:     gamerun.StatusFailed,
			Cause:      err.Error(),
			FinishedAt: time.Now().UTC(),
		})
		return result, err
	}
	result.Source = source
	result.Goals = len(rec.Export.Goals)

	date, err := s.resolveDate(rec, game)
	if err != nil {
		err = crerr.Mark(err, ErrPersistence)
		s.recordRun(ctx, gamerun.Run{
			GameID:     game.ID,
			Source:     source,
			Status:     gamerun.StatusFailed,
			Cause:      err.Error(),
			FinishedAt: time.Now().UTC(),
		})
		return result, err
	}
	result.GameDate = date

	dir, err := s.store.EnsureGameDir(date, game.ID)
	if err != nil {
		err = crerr.Mark(crerr.Wrapf(err, "prepare output for game %d", game.ID), ErrPersistence)
		s.recordRun(ctx, s.failedRun(result, err))
		return result, err
	}

	result.TrackingSaved = s.saveTracking(ctx, dir, rec)

	if err := s.store.SaveExport(dir, rec.Export); err != nil {
		err = crerr.Mark(crerr.Wrapf(err, "write export for game %d", game.ID), ErrPersistence)
		s.recordRun(ctx, s.failedRun(result, err))
		return result, err
	}

	s.recordRun(ctx, gamerun.Run{
		GameID:        game.ID,
		GameDate:      &date,
		Source:        source,
		Status:        gamerun.StatusSucceeded,
		Goals:         result.Goals,
		TrackingSaved: result.TrackingSaved,
		FinishedAt:    time.Now().UTC(),
	})
	s.logger.InfoContext(ctx, "game exported",
		"game_id", game.ID,
		"date", date.Format("2006-01-02"),
		"source", source,
		"goals", result.Goals,
		"tracking_saved", result.TrackingSaved,
	)
	return result, nil
}

// extract tries the summary shape first and falls back to
// play-by-play. Both failures compose into one error so the caller
// sees each cause.
func (s *GameService) extract(ctx context.Context, id schedule.GameID) (goal.GameRecord, gamerun.Source, error) {
	rec, primaryErr := s.games.SummaryExport(ctx, id)
	if primaryErr == nil {
		return rec, gamerun.SourceSummary, nil
	}

	s.logger.WarnContext(ctx, "summary extraction failed, trying play-by-play",
		"game_id", id,
		"error", primaryErr,
	)

	rec, fallbackErr := s.games.PlayByPlayExport(ctx, id)
	if fallbackErr == nil {
		return rec, gamerun.SourcePlayByPlay, nil
	}

	err := crerr.Mark(
		crerr.Wrapf(crerr.CombineErrors(primaryErr, fallbackErr), "extract game %d", id),
		ErrExtraction,
	)
	return goal.GameRecord{}, "", err
}

func (s *GameService) resolveDate(rec goal.GameRecord, game schedule.Game) (time.Time, error) {
	if !rec.GameDate.IsZero() {
		return rec.GameDate, nil
	}
	if game.StartTimeUTC.IsZero() {
		return time.Time{}, crerr.Newf("derive date for game %d: no usable date", game.ID)
	}
	local, err := game.LocalDate()
	if err != nil {
		utc := truncateToDate(game.StartTimeUTC)
		s.logger.Warn("venue local date unavailable, using utc date",
			"game_id", game.ID,
			"date", utc.Format("2006-01-02"),
			"error", err,
		)
		return utc, nil
	}
	s.logger.Warn("game record carried no date, using schedule local date",
		"game_id", game.ID,
		"date", local.Format("2006-01-02"),
	)
	return local, nil
}

// saveTracking fetches and writes per-goal payloads. Each failure is
// logged and the loop moves on; the export artifact is written either
// way.
func (s *GameService) saveTracking(ctx context.Context, dir string, rec goal.GameRecord) int {
	saved := 0
	for _, g := range rec.Export.Goals {
		ref := goal.TrackingRef{
			Season:    rec.Season,
			GameID:    rec.GameID,
			EventID:   g.EventID,
			ReplayURL: g.PPTReplayURL,
		}

		payload, err := s.tracking.TrackingPayload(ctx, ref)
		if err != nil {
			s.logger.WarnContext(ctx, "tracking fetch failed, skipping goal",
				"game_id", rec.GameID,
				"event_id", g.EventID,
				"error", crerr.Mark(err, ErrTrackingFetch),
			)
			continue
		}
		if err := s.store.SaveTracking(dir, g.EventID, payload); err != nil {
			s.logger.WarnContext(ctx, "tracking write failed, skipping goal",
				"game_id", rec.GameID,
				"event_id", g.EventID,
				"error", err,
			)
			continue
		}
		saved++
	}
	return saved
}

func (s *GameService) failedRun(result GameResult, err error) gamerun.Run {
	run := gamerun.Run{
		GameID:     result.GameID,
		Source:     result.Source,
		Status:     gamerun.StatusFailed,
		Goals:      result.Goals,
		Cause:      err.Error(),
		FinishedAt: time.Now().UTC(),
	}
	if !result.GameDate.IsZero() {
		date := result.GameDate
		run.GameDate = &date
	}
	return run
}

func (s *GameService) recordRun(ctx context.Context, run gamerun.Run) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Upsert(ctx, run); err != nil {
		s.logger.WarnContext(ctx, "record game run failed",
			"game_id", run.GameID,
			"error", err,
		)
	}
}
