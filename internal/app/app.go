package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/statline/internal/config"
	"github.com/riskibarqy/statline/internal/domain/achievement"
	"github.com/riskibarqy/statline/internal/domain/game"
	"github.com/riskibarqy/statline/internal/infrastructure/identity"
	cacherepo "github.com/riskibarqy/statline/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/statline/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/statline/internal/infrastructure/repository/sqlstore"
	"github.com/riskibarqy/statline/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/statline/internal/platform/cache"
	idgen "github.com/riskibarqy/statline/internal/platform/id"
	"github.com/riskibarqy/statline/internal/platform/logging"
	"github.com/riskibarqy/statline/internal/usecase"
)

const dbPingTimeout = 5 * time.Second

// Server is the assembled HTTP service plus the resources it must release.
type Server struct {
	HTTP *http.Server
	db   *sqlx.DB
}

// Close releases the database pool, if any.
func (s *Server) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	db, gameRepo, achievementRepo, err := newRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var seasonCache *basecache.Store
	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		gameRepo = cacherepo.NewGameRepository(gameRepo, store)
		achievementRepo = cacherepo.NewAchievementRepository(achievementRepo, store)
		seasonCache = basecache.NewStore(cfg.CacheTTL)
	}

	ids := idgen.NewUUIDGenerator()
	games := usecase.NewGameStore(gameRepo)
	locks := usecase.NewLockService(games, cfg.EditLockLease, logger.Named("editlock"))
	achievements := usecase.NewAchievementService(
		achievement.NewEngine(achievement.DefaultRules()),
		achievementRepo,
		games,
		logger.Named("achievement"),
	)
	gameSvc := usecase.NewGameService(games, locks, achievements, ids, logger.Named("game"))
	trackingSvc := usecase.NewTrackingService(games, locks, ids, logger.Named("tracking"))
	seasonSvc := usecase.NewSeasonService(games, seasonCache, cfg.RollupWorkers, logger.Named("season"))

	verifier := identity.NewJWTVerifier(cfg.AuthJWTSecret, cfg.AuthJWTIssuer)
	handler := httpapi.NewHandler(gameSvc, locks, trackingSvc, achievements, seasonSvc, logger.Named("httpapi"))
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins)

	logger.Info("http server assembled",
		"db_driver", cfg.DBDriver,
		"cache_enabled", cfg.CacheEnabled,
		"edit_lock_lease", cfg.EditLockLease.String(),
	)

	return &Server{
		HTTP: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
		db: db,
	}, nil
}

func newRepositories(
	ctx context.Context,
	cfg config.Config,
	logger *logging.Logger,
) (*sqlx.DB, game.Repository, achievement.Repository, error) {
	if cfg.DBDriver == config.DBDriverMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		return nil, memory.NewGameRepository(), memory.NewAchievementRepository(), nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return db, sqlstore.NewGameRepository(db), sqlstore.NewAchievementRepository(db), nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := cfg.DBURL
	opts := []otelsql.Option{otelsql.WithQueryFormatter(formatDBQueryForTrace)}

	switch cfg.DBDriver {
	case config.DBDriverPostgres:
		dsn = normalizeDBURL(dsn, cfg.DBDisablePreparedBinaryResult)
		opts = append(opts, otelsql.WithDBSystem("postgresql"))
	case config.DBDriverSQLite:
		opts = append(opts, otelsql.WithDBSystem("sqlite"))
	}
	if name := dbNameFromURL(cfg.DBURL); name != "" {
		opts = append(opts, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Open(cfg.DBDriver, dsn, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	if cfg.DBDriver == config.DBDriverSQLite {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.DBDriver, err)
	}

	return db, nil
}
