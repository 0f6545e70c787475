package app

import (
	"context"
	"net/http"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/box-league/external/anubis"
	"github.com/riskibarqy/box-league/external/ratingsync"
	"github.com/riskibarqy/box-league/internal/config"
	"github.com/riskibarqy/box-league/internal/domain/txn"
	"github.com/riskibarqy/box-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/box-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/box-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/box-league/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/box-league/internal/platform/id"
	"github.com/riskibarqy/box-league/internal/platform/logging"
	"github.com/riskibarqy/box-league/internal/usecase"
)

const (
	principalCacheEntries = 10000
	readCacheEntries      = 1000
)

// App is the assembled API process: an HTTP server over the league services
// plus whatever storage handles must be released on shutdown.
type App struct {
	Server *http.Server

	db *sqlx.DB
}

// New wires storage, external clients and use cases from cfg.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, crerr.New("http server addr cannot be empty")
	}

	a := &App{}
	store, err := a.openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	handler := httpapi.NewHandler(newServices(cfg, store, logger), logger)
	router := httpapi.NewRouter(handler, newVerifier(cfg, logger), logger, httpapi.RouterConfig{
		SwaggerEnabled:        cfg.SwaggerEnabled,
		CORSAllowedOrigins:    cfg.CORSAllowedOrigins,
		InternalJobToken:      cfg.InternalJobToken,
		RequestBodyTraceBytes: requestBodyTraceBytes(cfg),
	})

	a.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return a, nil
}

// Close releases the database pool, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) openStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (txn.Store, error) {
	var store txn.Store
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.db = db

		if cfg.DBBootstrapSeed {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				_ = db.Close()
				return nil, crerr.Wrap(err, "bootstrap seed")
			}
			logger.Info("postgres bootstrap seed applied")
		}
		store = postgres.NewStore(db, postgres.WithMaxRetries(cfg.DBTxMaxRetries), postgres.WithLogger(logger.Named("postgres")))
	default:
		store = memory.NewStore(memory.DemoSeed())
	}

	logger.Info("storage ready", "driver", cfg.StorageDriver, "cache_enabled", cfg.CacheEnabled)
	if !cfg.CacheEnabled {
		return store, nil
	}
	return cache.NewStore(store, cfg.CacheTTL, readCacheEntries), nil
}

func newServices(cfg config.Config, store txn.Store, logger *logging.Logger) httpapi.Services {
	ids := idgen.NewTimeOrderedGenerator()
	weeks := usecase.NewWeekService(store, ids, logger)

	return httpapi.Services{
		Leagues:     usecase.NewLeagueService(store, logger),
		Seasons:     usecase.NewSeasonService(store, ids, logger),
		Schedule:    usecase.NewScheduleService(store, ids, logger),
		Weeks:       weeks,
		Attendance:  usecase.NewAttendanceService(store, logger),
		Eligibility: usecase.NewEligibilityService(store),
		Submissions: usecase.NewSubmissionService(store, newRatingPublisher(cfg, logger), logger),
		Maintenance: usecase.NewMaintenanceService(store, weeks, cfg.JobMaxWorkers, logger),
	}
}

func newVerifier(cfg config.Config, logger *logging.Logger) *anubis.Client {
	return anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout},
		cfg.AnubisBaseURL,
		cfg.AnubisIntrospectURL,
		cfg.AnubisAdminKey,
		cfg.AnubisCircuit,
		logger.Named("anubis"),
		anubis.WithPrincipalCache(cfg.AnubisCacheTTL, principalCacheEntries),
	)
}

// newRatingPublisher returns a nil interface when sync is off so submissions
// report the dependency as unavailable.
func newRatingPublisher(cfg config.Config, logger *logging.Logger) usecase.RatingPublisher {
	if !cfg.RatingSyncEnabled {
		return nil
	}
	return ratingsync.NewPublisher(ratingsync.Config{
		BaseURL:        cfg.RatingSyncBaseURL,
		MatchesPath:    cfg.RatingSyncMatchesPath,
		Token:          cfg.RatingSyncToken,
		Timeout:        cfg.RatingSyncTimeout,
		CircuitBreaker: cfg.RatingSyncCircuit,
	}, logger.Named("ratingsync"))
}

func requestBodyTraceBytes(cfg config.Config) int {
	if !cfg.UptraceEnabled || !cfg.UptraceCaptureRequestBody {
		return 0
	}
	return cfg.UptraceRequestBodyMaxBytes
}
