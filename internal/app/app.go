package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	_ "github.com/lib/pq"

	"github.com/riskibarqy/match-center/external/apifootball"
	"github.com/riskibarqy/match-center/external/extractor"
	"github.com/riskibarqy/match-center/external/newsapi"
	"github.com/riskibarqy/match-center/internal/config"
	"github.com/riskibarqy/match-center/internal/domain/news"
	"github.com/riskibarqy/match-center/internal/domain/rawdata"
	"github.com/riskibarqy/match-center/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/match-center/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/match-center/internal/interfaces/httpapi"
	"github.com/riskibarqy/match-center/internal/platform/cache"
	idgen "github.com/riskibarqy/match-center/internal/platform/id"
	"github.com/riskibarqy/match-center/internal/platform/logging"
	"github.com/riskibarqy/match-center/internal/platform/resilience"
	"github.com/riskibarqy/match-center/internal/usecase"
)

// App owns the wired service graph: repositories, provider clients, the feed
// refresh loop, and the HTTP server.
type App struct {
	cfg     config.Config
	logger  *logging.Logger
	slogger *slog.Logger
	db      *sqlx.DB
	server  *http.Server
	feed    *usecase.FeedService
}

func New(cfg config.Config, logger *logging.Logger, slogger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if slogger == nil {
		slogger = slog.Default()
	}

	var (
		db             *sqlx.DB
		rawDataRepo    rawdata.Repository
		extractionRepo news.ExtractionRepository
	)
	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Info("database disabled, using in-memory repositories")
		rawDataRepo = memory.NewRawDataRepository()
		extractionRepo = memory.NewExtractionRepository()
	} else {
		opened, err := otelsqlx.Open("postgres",
			normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
			otelsql.WithDBSystem("postgresql"),
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
			otelsql.WithQueryFormatter(formatDBQueryForTrace),
		)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db = opened
		rawDataRepo = postgres.NewRawDataRepository(db)
		extractionRepo = postgres.NewExtractionRepository(db)
	}

	var snapshotCache, standingsCache, scheduleCache, newsCache *cache.Store
	if cfg.CacheEnabled {
		snapshotCache = cache.NewStore(cfg.CacheTTL)
		standingsCache = cache.NewStore(cfg.CacheTTL)
		scheduleCache = cache.NewStore(cfg.CacheTTL)
		newsCache = cache.NewStoreWithStale(cfg.NewsCacheTTL, cfg.NewsStaleTTL)
	}

	football := apifootball.NewClient(apifootball.ClientConfig{
		BaseURL:    cfg.FootballBaseURL,
		APIKey:     cfg.FootballAPIKey,
		Timeout:    cfg.FootballTimeout,
		MaxRetries: cfg.FootballMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FootballCircuitEnabled,
			FailureThreshold: cfg.FootballCircuitFailureCount,
			OpenTimeout:      cfg.FootballCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FootballCircuitHalfOpenMaxReq,
		},
	})
	newsClient := newsapi.NewClient(newsapi.ClientConfig{
		BaseURL:    cfg.NewsBaseURL,
		APIKey:     cfg.NewsAPIKey,
		Timeout:    cfg.NewsTimeout,
		MaxRetries: cfg.NewsMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.NewsCircuitEnabled,
			FailureThreshold: cfg.NewsCircuitFailureCount,
			OpenTimeout:      cfg.NewsCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.NewsCircuitHalfOpenMaxReq,
		},
	})
	articleExtractor := extractor.New(extractor.Config{
		Timeout:      cfg.ExtractorTimeout,
		MaxBodyBytes: cfg.ExtractorMaxBodyBytes,
		UserAgent:    cfg.ExtractorUserAgent,
		Logger:       logger,
	})

	archiveSvc := usecase.NewArchiveService(rawDataRepo)
	matchSvc := usecase.NewLiveMatchService(football, archiveSvc, snapshotCache, logger)
	feedSvc := usecase.NewFeedService(matchSvc, idgen.NewRandomGenerator(), logger, usecase.FeedConfig{
		RefreshInterval: cfg.FeedRefreshInterval,
		WorkerPoolSize:  cfg.FeedWorkerPoolSize,
		SessionTTL:      cfg.FeedSessionTTL,
		MaxWatched:      cfg.FeedMaxWatched,
	})
	standingsSvc := usecase.NewStandingsService(football, archiveSvc, standingsCache, logger, cfg.FootballDefaultSeason)
	scheduleSvc := usecase.NewTeamScheduleService(football, archiveSvc, scheduleCache, logger, cfg.FootballDefaultSeason)
	newsSvc := usecase.NewNewsService(newsClient, archiveSvc, newsCache, logger, cfg.NewsDefaultQuery, cfg.NewsPageSize)
	articleSvc := usecase.NewArticleService(articleExtractor, extractionRepo, logger)

	handler := httpapi.NewHandler(matchSvc, feedSvc, standingsSvc, scheduleSvc, newsSvc, articleSvc, logger)
	router := httpapi.NewRouter(handler, slogger, cfg.CORSAllowedOrigins)

	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		slogger: slogger,
		db:      db,
		server:  server,
		feed:    feedSvc,
	}, nil
}

// Run starts the feed refresh loop and the HTTP server, then blocks until the
// context is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	feedDone := make(chan error, 1)
	go func() {
		feedDone <- a.feed.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "addr", a.cfg.HTTPAddr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		cancel()
		<-feedDone
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	<-feedDone
	a.logger.Info("http server stopped")

	return nil
}

// Close releases resources that outlive Run, currently the database pool.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
