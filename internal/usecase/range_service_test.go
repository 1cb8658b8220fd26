package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/puckdata/goal-export/internal/domain/goal"
	"github.com/puckdata/goal-export/internal/domain/schedule"
	"github.com/puckdata/goal-export/internal/platform/logging"
)

type stubScheduleSource struct {
	periods []schedule.Period
	games   map[string][]schedule.Game
	errs    map[string]error
}

func (s *stubScheduleSource) GamesInPeriod(_ context.Context, p schedule.Period) ([]schedule.Game, error) {
	s.periods = append(s.periods, p)
	if err := s.errs[p.StartKey()]; err != nil {
		return nil, err
	}
	return s.games[p.StartKey()], nil
}

func newRangeFixture(source *stubScheduleSource, games GameSource) (*RangeService, *memStore) {
	store := &memStore{}
	gameSvc := NewGameService(games, &stubTracking{}, store, nil, logging.NewNop())
	return NewRangeService(source, gameSvc, logging.NewNop()), store
}

func TestRangeServiceWalksInWeekStrides(t *testing.T) {
	t.Parallel()

	source := &stubScheduleSource{}
	svc, _ := newRangeFixture(source, &stubGameSource{summary: testRecord()})

	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 17, 0, 0, 0, 0, time.UTC)
	summary, err := svc.Run(context.Background(), start, end)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantStarts := []string{"2024-03-01", "2024-03-08", "2024-03-15"}
	if summary.Periods != len(wantStarts) || len(source.periods) != len(wantStarts) {
		t.Fatalf("periods = %d, want %d", len(source.periods), len(wantStarts))
	}
	for i, want := range wantStarts {
		if got := source.periods[i].StartKey(); got != want {
			t.Fatalf("period[%d] start = %s, want %s", i, got, want)
		}
	}

	// Tail window is clamped to the range end, not a full week.
	last := source.periods[len(source.periods)-1]
	if got := last.End().Format("2006-01-02"); got != "2024-03-17" {
		t.Fatalf("tail window end = %s, want 2024-03-17", got)
	}
	if last.Days() != 3 {
		t.Fatalf("tail window spans %d days, want 3", last.Days())
	}
}

func TestRangeServiceSingleDayRange(t *testing.T) {
	t.Parallel()

	source := &stubScheduleSource{}
	svc, _ := newRangeFixture(source, &stubGameSource{summary: testRecord()})

	day := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	summary, err := svc.Run(context.Background(), day, day)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Periods != 1 {
		t.Fatalf("periods = %d, want 1", summary.Periods)
	}
	if source.periods[0].Days() != 1 {
		t.Fatalf("window spans %d days, want 1", source.periods[0].Days())
	}
}

func TestRangeServiceWindowsCoverRangeWithoutOverlap(t *testing.T) {
	t.Parallel()

	source := &stubScheduleSource{}
	svc, _ := newRangeFixture(source, &stubGameSource{summary: testRecord()})

	start := time.Date(2024, time.February, 25, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Run(context.Background(), start, end); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		covered := 0
		for _, p := range source.periods {
			if p.Contains(day) {
				covered++
			}
		}
		if covered != 1 {
			t.Fatalf("day %s covered by %d windows, want exactly 1", day.Format("2006-01-02"), covered)
		}
	}
}

func TestRangeServiceRejectsReversedRange(t *testing.T) {
	t.Parallel()

	source := &stubScheduleSource{}
	svc, _ := newRangeFixture(source, &stubGameSource{summary: testRecord()})

	start := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Run(context.Background(), start, end)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Run() error = %v, want ErrInvalidInput", err)
	}
	if len(source.periods) != 0 {
		t.Fatal("schedule consulted for a reversed range")
	}
}

func TestRangeServiceSkipsFailedPeriod(t *testing.T) {
	t.Parallel()

	game := func(id schedule.GameID) schedule.Game { return schedule.Game{ID: id} }
	source := &stubScheduleSource{
		errs: map[string]error{"2024-03-01": errors.New("schedule endpoint down")},
		games: map[string][]schedule.Game{
			"2024-03-08": {game(2023020401), game(2023020402)},
		},
	}
	svc, store := newRangeFixture(source, &stubGameSource{summary: testRecord()})

	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	summary, err := svc.Run(context.Background(), start, end)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.PeriodsSkipped != 1 {
		t.Fatalf("periods skipped = %d, want 1", summary.PeriodsSkipped)
	}
	if summary.Games != 2 || summary.GamesSucceeded != 2 {
		t.Fatalf("summary = %+v, want 2 processed games after the skipped window", summary)
	}
	if len(store.exports) != 2 {
		t.Fatalf("exports = %d, want 2", len(store.exports))
	}
}

func TestRangeServiceSkipsFailedWindowConstruction(t *testing.T) {
	t.Parallel()

	game := func(id schedule.GameID) schedule.Game { return schedule.Game{ID: id} }
	source := &stubScheduleSource{
		games: map[string][]schedule.Game{
			"2024-03-08": {game(2023020401)},
		},
	}
	svc, store := newRangeFixture(source, &stubGameSource{summary: testRecord()})
	svc.newPeriod = func(start, end time.Time) (schedule.Period, error) {
		if start.Format("2006-01-02") == "2024-03-01" {
			return schedule.Period{}, errors.New("window rejected")
		}
		return schedule.NewPeriod(start, end)
	}

	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	summary, err := svc.Run(context.Background(), start, end)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Periods != 2 || summary.PeriodsSkipped != 1 {
		t.Fatalf("summary = %+v, want 2 windows with 1 skipped", summary)
	}
	if len(source.periods) != 1 || source.periods[0].StartKey() != "2024-03-08" {
		t.Fatalf("schedule consulted for %+v, want only the second window", source.periods)
	}
	if summary.Games != 1 || len(store.exports) != 1 {
		t.Fatalf("summary = %+v, want the second window's game processed", summary)
	}
}

func TestRangeServiceContinuesPastFailedGame(t *testing.T) {
	t.Parallel()

	source := &stubScheduleSource{
		games: map[string][]schedule.Game{
			"2024-03-01": {{ID: 2023020401}, {ID: 2023020402}, {ID: 2023020403}},
		},
	}
	games := &failOnceGameSource{failID: 2023020402}
	svc, store := newRangeFixture(source, games)

	day := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	summary, err := svc.Run(context.Background(), day, day)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Games != 3 || summary.GamesSucceeded != 2 || summary.GamesFailed != 1 {
		t.Fatalf("summary = %+v, want 3 games with 1 failure", summary)
	}
	if len(store.exports) != 2 {
		t.Fatalf("exports = %d, want 2", len(store.exports))
	}
}

func TestRangeServiceStopsOnCancel(t *testing.T) {
	t.Parallel()

	source := &stubScheduleSource{}
	svc, _ := newRangeFixture(source, &stubGameSource{summary: testRecord()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	_, err := svc.Run(ctx, start, end)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(source.periods) != 0 {
		t.Fatal("schedule consulted after cancellation")
	}
}

// failOnceGameSource fails extraction for one specific game on both
// paths and succeeds for everything else.
type failOnceGameSource struct {
	failID schedule.GameID
}

func (s *failOnceGameSource) SummaryExport(_ context.Context, id schedule.GameID) (goal.GameRecord, error) {
	if id == s.failID {
		return goal.GameRecord{}, errors.New("summary unavailable")
	}
	rec := testRecord()
	rec.GameID = id
	return rec, nil
}

func (s *failOnceGameSource) PlayByPlayExport(_ context.Context, id schedule.GameID) (goal.GameRecord, error) {
	return goal.GameRecord{}, errors.New("play-by-play unavailable")
}
