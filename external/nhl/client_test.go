package nhl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/puckdata/goal-export/internal/domain/goal"
	"github.com/puckdata/goal-export/internal/domain/schedule"
	"github.com/puckdata/goal-export/internal/platform/logging"
	"github.com/puckdata/goal-export/internal/platform/resilience"
	"github.com/puckdata/goal-export/internal/usecase"
)

func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	return NewClient(ClientConfig{
		HTTPClient:      server.Client(),
		APIBaseURL:      server.URL,
		TrackingBaseURL: server.URL + "/sprites",
		Logger:          logging.NewNop(),
	})
}

func mustPeriod(t *testing.T, start, end string) schedule.Period {
	t.Helper()
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		t.Fatalf("parse end: %v", err)
	}
	p, err := schedule.NewPeriod(s, e)
	if err != nil {
		t.Fatalf("NewPeriod() error = %v", err)
	}
	return p
}

func TestGamesInPeriodFiltersToWindow(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schedule/2024-03-01" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		// The endpoint answers with the full week regardless of how
		// short the requested window is.
		_, _ = w.Write([]byte(`{
			"gameWeek": [
				{"date": "2024-03-01", "games": [
					{"id": 2023020401, "season": 20232024, "startTimeUTC": "2024-03-02T00:00:00Z", "venueUTCOffset": "-05:00"}
				]},
				{"date": "2024-03-02", "games": [
					{"id": 2023020402, "season": 20232024, "startTimeUTC": "2024-03-03T02:30:00Z", "venueUTCOffset": "-08:00"},
					{"id": 2023020403, "season": 20232024, "startTimeUTC": "2024-03-03T00:00:00Z", "venueUTCOffset": "-06:00"}
				]},
				{"date": "2024-03-05", "games": [
					{"id": 2023020404, "season": 20232024, "startTimeUTC": "2024-03-06T00:00:00Z", "venueUTCOffset": "-05:00"}
				]}
			]
		}`))
	}))
	defer server.Close()

	client := testClient(t, server)
	games, err := client.GamesInPeriod(context.Background(), mustPeriod(t, "2024-03-01", "2024-03-02"))
	if err != nil {
		t.Fatalf("GamesInPeriod() error = %v", err)
	}

	if len(games) != 3 {
		t.Fatalf("games = %d, want 3", len(games))
	}
	wantIDs := []schedule.GameID{2023020401, 2023020402, 2023020403}
	for i, want := range wantIDs {
		if games[i].ID != want {
			t.Fatalf("games[%d].ID = %d, want %d", i, games[i].ID, want)
		}
	}
	if games[0].VenueUTCOffset != "-05:00" {
		t.Fatalf("venue offset = %q, want -05:00", games[0].VenueUTCOffset)
	}
	if games[0].StartTimeUTC.IsZero() {
		t.Fatal("start time not parsed")
	}
}

func TestGamesInPeriodLookupFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(t, server)
	_, err := client.GamesInPeriod(context.Background(), mustPeriod(t, "2024-03-01", "2024-03-02"))
	if !errors.Is(err, usecase.ErrScheduleLookup) {
		t.Fatalf("GamesInPeriod() error = %v, want ErrScheduleLookup", err)
	}
}

func TestClientRetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"gameWeek": []}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		APIBaseURL: server.URL,
		MaxRetries: 1,
		Logger:     logging.NewNop(),
	})

	games, err := client.GamesInPeriod(context.Background(), mustPeriod(t, "2024-03-01", "2024-03-02"))
	if err != nil {
		t.Fatalf("GamesInPeriod() error = %v", err)
	}
	if len(games) != 0 {
		t.Fatalf("games = %d, want 0", len(games))
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("upstream calls = %d, want 2", got)
	}
}

func TestSummaryExport(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gamecenter/2023020345/landing" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"id": 2023020345,
			"season": 20232024,
			"gameDate": "2024-03-02",
			"homeTeam": {"id": 10},
			"awayTeam": {"id": 22},
			"summary": {"scoring": [
				{"periodDescriptor": {"periodType": "REG"}, "goals": [
					{"eventId": 102, "pptReplayUrl": "https://replays.test/102", "homeTeamDefendingSide": "left", "isHome": false}
				]}
			]}
		}`))
	}))
	defer server.Close()

	client := testClient(t, server)
	rec, err := client.SummaryExport(context.Background(), 2023020345)
	if err != nil {
		t.Fatalf("SummaryExport() error = %v", err)
	}
	if rec.Export.HomeTeamID != 10 || len(rec.Export.Goals) != 1 {
		t.Fatalf("record = %+v", rec.Export)
	}
	if rec.Export.Goals[0].ScoringTeamID != 22 {
		t.Fatalf("scoring team = %d, want 22", rec.Export.Goals[0].ScoringTeamID)
	}
}

func TestPlayByPlayExportPrefersBoxscoreHomeTeam(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gamecenter/2023020345/play-by-play":
			_, _ = w.Write([]byte(`{
				"id": 2023020345,
				"season": 20232024,
				"gameDate": "2024-03-02",
				"homeTeam": {"id": 99},
				"plays": [
					{"eventId": 2, "typeDescKey": "goal", "homeTeamDefendingSide": "left",
					 "periodDescriptor": {"periodType": "REG"}, "details": {"eventOwnerTeamId": 22}}
				]
			}`))
		case "/gamecenter/2023020345/boxscore":
			_, _ = w.Write([]byte(`{"homeTeam": {"id": 10}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := testClient(t, server)
	rec, err := client.PlayByPlayExport(context.Background(), 2023020345)
	if err != nil {
		t.Fatalf("PlayByPlayExport() error = %v", err)
	}
	if rec.Export.HomeTeamID != 10 {
		t.Fatalf("home team = %d, want boxscore value 10", rec.Export.HomeTeamID)
	}
}

func TestPlayByPlayExportSurvivesBoxscoreFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gamecenter/2023020345/play-by-play":
			_, _ = w.Write([]byte(`{
				"id": 2023020345, "season": 20232024, "gameDate": "2024-03-02",
				"homeTeam": {"id": 10}, "plays": []
			}`))
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := testClient(t, server)
	rec, err := client.PlayByPlayExport(context.Background(), 2023020345)
	if err != nil {
		t.Fatalf("PlayByPlayExport() error = %v", err)
	}
	if rec.Export.HomeTeamID != 10 {
		t.Fatalf("home team = %d, want play-by-play value 10", rec.Export.HomeTeamID)
	}
}

func TestTrackingPayloadTemplatedPath(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotOrigin string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotOrigin = r.Header.Get("Origin")
		_, _ = w.Write([]byte(`{"frames": [1, 2, 3]}`))
	}))
	defer server.Close()

	client := testClient(t, server)
	ref := goal.TrackingRef{Season: 20232024, GameID: 2023020345, EventID: 102}
	payload, err := client.TrackingPayload(context.Background(), ref)
	if err != nil {
		t.Fatalf("TrackingPayload() error = %v", err)
	}

	if gotPath != "/sprites/20232024/2023020345/ev102.json" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotOrigin != "https://www.nhl.com" {
		t.Fatalf("origin header = %q", gotOrigin)
	}
	if string(payload) != `{"frames": [1, 2, 3]}` {
		t.Fatalf("payload = %s", payload)
	}
}

func TestTrackingPayloadPrefersReplayURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/direct/replay.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"frames": []}`))
	}))
	defer server.Close()

	client := testClient(t, server)
	url := server.URL + "/direct/replay.json"
	ref := goal.TrackingRef{Season: 20232024, GameID: 2023020345, EventID: 102, ReplayURL: &url}
	if _, err := client.TrackingPayload(context.Background(), ref); err != nil {
		t.Fatalf("TrackingPayload() error = %v", err)
	}
}

func TestTrackingPayloadReturnsShortBodies(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := testClient(t, server)
	ref := goal.TrackingRef{Season: 20232024, GameID: 2023020345, EventID: 102}
	payload, err := client.TrackingPayload(context.Background(), ref)
	if err != nil {
		t.Fatalf("TrackingPayload() error = %v", err)
	}
	if string(payload) != `{}` {
		t.Fatalf("payload = %s", payload)
	}
}

func TestClientBreakerRejectsAfterTrip(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		APIBaseURL: server.URL,
		Logger:     logging.NewNop(),
		Breaker: resilience.BreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			Cooldown:         time.Minute,
		},
	})

	period := mustPeriod(t, "2024-03-01", "2024-03-02")
	if _, err := client.GamesInPeriod(context.Background(), period); err == nil {
		t.Fatal("first lookup succeeded against a failing upstream")
	}
	_, err := client.GamesInPeriod(context.Background(), period)
	if !errors.Is(err, resilience.ErrBreakerOpen) {
		t.Fatalf("GamesInPeriod() error = %v, want ErrBreakerOpen", err)
	}
}
