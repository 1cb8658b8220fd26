package nhl

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/puckdata/goal-export/internal/domain/goal"
	"github.com/puckdata/goal-export/internal/domain/schedule"
	"github.com/puckdata/goal-export/internal/platform/logging"
	"github.com/puckdata/goal-export/internal/platform/resilience"
	"github.com/puckdata/goal-export/internal/usecase"
)

const (
	defaultAPIBaseURL      = "https://api-web.nhle.com/v1"
	defaultTrackingBaseURL = "https://wsr.nhle.com/sprites"

	// Payloads below this size are almost certainly an error page or
	// an empty body rather than tracking frames.
	minTrackingBytes = 10

	maxResponseBytes = 6 << 20
)

var errNHLTransient = crerr.New("nhl transient failure")

type ClientConfig struct {
	HTTPClient      *http.Client
	APIBaseURL      string
	TrackingBaseURL string
	Timeout         time.Duration
	MaxRetries      int
	Logger          *logging.Logger
	Breaker         resilience.BreakerConfig
}

// Client talks to the public NHL endpoints: weekly schedule, the two
// per-game goal documents, boxscore and the sprite host serving raw
// tracking payloads. All calls share one retry policy and breaker.
type Client struct {
	httpClient     *http.Client
	apiBaseURL     string
	trackingBase   string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.Breaker
	breakerEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	apiBaseURL := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}
	trackingBase := strings.TrimRight(strings.TrimSpace(cfg.TrackingBaseURL), "/")
	if trackingBase == "" {
		trackingBase = defaultTrackingBaseURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient:     httpClient,
		apiBaseURL:     apiBaseURL,
		trackingBase:   trackingBase,
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewBreaker(cfg.Breaker),
		breakerEnabled: cfg.Breaker.Enabled,
	}
}

// GamesInPeriod fetches the schedule week anchored at the period start
// and keeps only the games whose schedule day falls inside the period.
// The endpoint always answers with a full week, so a shorter window
// must be filtered here.
func (c *Client) GamesInPeriod(ctx context.Context, p schedule.Period) ([]schedule.Game, error) {
	var resp scheduleResponse
	url := fmt.Sprintf("%s/schedule/%s", c.apiBaseURL, p.StartKey())
	if err := c.doJSON(ctx, url, nil, &resp); err != nil {
		return nil, crerr.Mark(crerr.Wrapf(err, "fetch schedule week %s", p.StartKey()), usecase.ErrScheduleLookup)
	}

	games := make([]schedule.Game, 0, 32)
	for _, day := range resp.GameWeek {
		if !p.ContainsKey(day.Date) {
			continue
		}
		for _, item := range day.Games {
			games = append(games, schedule.Game{
				ID:             schedule.GameID(item.ID),
				Season:         item.Season,
				StartTimeUTC:   parseStartTime(item.StartTimeUTC),
				VenueUTCOffset: item.VenueUTCOffset,
			})
		}
	}
	return games, nil
}

// SummaryExport extracts goals from the gamecenter landing document.
// Any malformed goal fails the whole document so the caller can fall
// back to play-by-play.
func (c *Client) SummaryExport(ctx context.Context, id schedule.GameID) (goal.GameRecord, error) {
	var resp landingResponse
	url := fmt.Sprintf("%s/gamecenter/%d/landing", c.apiBaseURL, id)
	if err := c.doJSON(ctx, url, nil, &resp); err != nil {
		return goal.GameRecord{}, crerr.Wrapf(err, "fetch landing for game %d", id)
	}
	return extractFromLanding(&resp)
}

// PlayByPlayExport extracts goals from the play-by-play event stream,
// skipping events it cannot use, then cross-checks the home team id
// against the boxscore document.
func (c *Client) PlayByPlayExport(ctx context.Context, id schedule.GameID) (goal.GameRecord, error) {
	var resp playByPlayResponse
	url := fmt.Sprintf("%s/gamecenter/%d/play-by-play", c.apiBaseURL, id)
	if err := c.doJSON(ctx, url, nil, &resp); err != nil {
		return goal.GameRecord{}, crerr.Wrapf(err, "fetch play-by-play for game %d", id)
	}

	rec := extractFromPlayByPlay(&resp, c.logger)

	boxHomeID, err := c.boxscoreHomeTeam(ctx, id)
	if err != nil {
		c.logger.WarnContext(ctx, "boxscore lookup failed, keeping play-by-play home team",
			"game_id", id,
			"error", err,
		)
		return rec, nil
	}
	if boxHomeID != rec.Export.HomeTeamID {
		c.logger.WarnContext(ctx, "home team mismatch between play-by-play and boxscore",
			"game_id", id,
			"play_by_play", rec.Export.HomeTeamID,
			"boxscore", boxHomeID,
		)
		rec.Export.HomeTeamID = boxHomeID
	}
	return rec, nil
}

func (c *Client) boxscoreHomeTeam(ctx context.Context, id schedule.GameID) (goal.TeamID, error) {
	var resp boxscoreResponse
	url := fmt.Sprintf("%s/gamecenter/%d/boxscore", c.apiBaseURL, id)
	if err := c.doJSON(ctx, url, nil, &resp); err != nil {
		return 0, crerr.Wrapf(err, "fetch boxscore for game %d", id)
	}
	if resp.HomeTeam.ID == 0 {
		return 0, crerr.Newf("boxscore for game %d has no home team id", id)
	}
	return goal.TeamID(resp.HomeTeam.ID), nil
}

// TrackingPayload fetches the raw positional payload for one goal. The
// sprite host rejects plain requests, so the browser headers it checks
// for are set explicitly. The body is returned as-is; suspiciously
// small bodies are logged but still returned.
func (c *Client) TrackingPayload(ctx context.Context, ref goal.TrackingRef) ([]byte, error) {
	url := c.trackingURL(ref)
	raw, err := c.do(ctx, url, trackingHeaders())
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch tracking for game %d event %d", ref.GameID, ref.EventID)
	}
	if len(raw) < minTrackingBytes {
		c.logger.WarnContext(ctx, "tracking payload suspiciously small",
			"game_id", ref.GameID,
			"event_id", ref.EventID,
			"bytes", len(raw),
		)
	}
	return raw, nil
}

func (c *Client) trackingURL(ref goal.TrackingRef) string {
	if ref.ReplayURL != nil && strings.TrimSpace(*ref.ReplayURL) != "" {
		return strings.TrimSpace(*ref.ReplayURL)
	}
	return fmt.Sprintf("%s/%d/%d/ev%d.json", c.trackingBase, ref.Season, ref.GameID, ref.EventID)
}

func trackingHeaders() map[string]string {
	return map[string]string{
		"Origin":         "https://www.nhl.com",
		"Referer":        "https://www.nhl.com",
		"sec-fetch-mode": "cors",
		"Sec-Fetch-Site": "cross-site",
		"User-Agent":     "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0",
	}
}

func (c *Client) doJSON(ctx context.Context, url string, headers map[string]string, target any) error {
	raw, err := c.do(ctx, url, headers)
	if err != nil {
		return err
	}
	if err := unmarshalJSON(raw, target); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if c.breakerEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "circuit breaker rejected request", "url", url)
			return nil, fmt.Errorf("%w: nhl api is temporarily unavailable", err)
		}
	}

	raw, err := c.executeRequest(ctx, url, headers)
	if c.breakerEnabled {
		if err != nil && isNHLCircuitFailure(err) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return raw, err
}

func (c *Client) executeRequest(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errNHLTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errNHLTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: status=%d body=%s", errNHLTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("request failed")
	}
	c.logger.WarnContext(ctx, "nhl request failed", "url", url, "error", lastErr)
	return nil, lastErr
}

func isNHLCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errNHLTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func parseStartTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}
