package app

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"

	"github.com/puckdata/goal-export/external/nhl"
	"github.com/puckdata/goal-export/internal/config"
	"github.com/puckdata/goal-export/internal/domain/gamerun"
	"github.com/puckdata/goal-export/internal/domain/schedule"
	"github.com/puckdata/goal-export/internal/infrastructure/exportstore"
	"github.com/puckdata/goal-export/internal/infrastructure/repository/postgres"
	"github.com/puckdata/goal-export/internal/platform/logging"
	"github.com/puckdata/goal-export/internal/platform/resilience"
	"github.com/puckdata/goal-export/internal/usecase"
)

// App wires the exporter: the NHL client, the artifact store, the
// optional run ledger and the two services the run modes dispatch to.
type App struct {
	opts   config.RunOptions
	logger *logging.Logger
	db     *sqlx.DB
	games  *usecase.GameService
	ranges *usecase.RangeService
}

func New(ctx context.Context, cfg config.Config, opts config.RunOptions, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	client := nhl.NewClient(nhl.ClientConfig{
		APIBaseURL:      cfg.NHLAPIBaseURL,
		TrackingBaseURL: cfg.NHLTrackingBaseURL,
		Timeout:         cfg.NHLTimeout,
		MaxRetries:      cfg.NHLMaxRetries,
		Logger:          logger,
		Breaker: resilience.BreakerConfig{
			Enabled:          cfg.NHLCircuitEnabled,
			FailureThreshold: cfg.NHLCircuitFailures,
			Cooldown:         cfg.NHLCircuitCooldown,
		},
	})

	store, err := exportstore.New(opts.OutputRoot, logger)
	if err != nil {
		return nil, crerr.Wrap(err, "open artifact store")
	}

	var (
		db   *sqlx.DB
		runs gamerun.Repository
	)
	if cfg.LedgerEnabled {
		db, err = openLedgerDB(ctx, cfg.DBURL)
		if err != nil {
			return nil, crerr.Wrap(err, "open run ledger")
		}
		runs = postgres.NewGameRunRepository(db)
		logger.Info("run ledger enabled", "db_name", dbNameFromURL(cfg.DBURL))
	}

	games := usecase.NewGameService(client, client, store, runs, logger)
	ranges := usecase.NewRangeService(client, games, logger)

	return &App{
		opts:   opts,
		logger: logger,
		db:     db,
		games:  games,
		ranges: ranges,
	}, nil
}

var appTracer = otel.Tracer("goal-export/internal/app")

// Run dispatches on the validated run mode. The run carries the root
// span the usecase spans hang off. Per-game failures are logged and
// absorbed; only invalid input or a cancelled context comes back as an
// error.
func (a *App) Run(ctx context.Context) error {
	ctx, span := appTracer.Start(ctx, "App.Run")
	defer span.End()

	if a.opts.SingleGame() {
		id := schedule.GameID(a.opts.GameID)
		result, err := a.games.Run(ctx, schedule.Game{ID: id})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.ErrorContext(ctx, "game export failed",
				"game_id", id,
				"error", err,
			)
			return nil
		}
		a.logger.InfoContext(ctx, "run finished",
			"game_id", id,
			"goals", result.Goals,
			"tracking_saved", result.TrackingSaved,
		)
		return nil
	}

	summary, err := a.ranges.Run(ctx, a.opts.Start, a.opts.End)
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "run finished",
		"periods", summary.Periods,
		"periods_skipped", summary.PeriodsSkipped,
		"games", summary.Games,
		"games_succeeded", summary.GamesSucceeded,
		"games_failed", summary.GamesFailed,
	)
	return nil
}

// Close releases the ledger connection when one was opened.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
