package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	jsonfileAdapter "crewscore/adapters/jsonfile"
	mem "crewscore/adapters/memory"
	redisAdapter "crewscore/adapters/redis"
	sqlxAdapter "crewscore/adapters/sqlx"
	"crewscore/api/httpapi"
	"crewscore/catalog"
	"crewscore/config"
	"crewscore/engine"
	"crewscore/leaderboard"
	"crewscore/progression"
	"crewscore/realtime"
)

// App aggregates the assembled server components.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Hub     *realtime.Hub
	Board   leaderboard.Board
	Service *engine.Service
	Handler http.Handler
	Server  *http.Server
}

func provideConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Environment == config.EnvProduction {
		if err := cfg.LoadSecretsFromEnv(ctx); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return setupLogging(cfg)
}

func provideHub() *realtime.Hub {
	return realtime.NewHub()
}

func provideBoard() leaderboard.Board {
	return leaderboard.NewSkipList()
}

func provideCatalog(cfg *config.Config, logger *slog.Logger) (*catalog.Catalog, error) {
	return setupCatalog(cfg, logger)
}

func provideLedger(ctx context.Context, cfg *config.Config) (engine.Ledger, error) {
	return setupLedger(ctx, cfg)
}

func provideService(hub *realtime.Hub, board leaderboard.Board, ledger engine.Ledger, cat *catalog.Catalog) *engine.Service {
	return progression.New(
		progression.WithLedger(ledger),
		progression.WithCatalog(cat),
		progression.WithRealtime(hub),
		progression.WithLeaderboard(board),
		progression.WithDispatchMode(engine.DispatchAsync),
	)
}

func provideHandler(svc *engine.Service, hub *realtime.Hub, board leaderboard.Board, cfg *config.Config) http.Handler {
	return httpapi.NewMux(svc, hub, board, httpapi.Options{
		PathPrefix:       cfg.Server.PathPrefix,
		AllowCORSOrigin:  cfg.Server.CORSOrigin,
		APIKeys:          cfg.Security.APIKeys,
		RateLimitEnabled: cfg.Security.EnableRateLimit,
		RateLimitRPM:     cfg.Security.RateLimit.RequestsPerMinute,
		RateLimitBurst:   cfg.Security.RateLimit.BurstSize,
	})
}

func provideServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

// setupLogging configures the logger based on configuration.
func setupLogging(cfg *config.Config) *slog.Logger {
	var out *os.File
	switch cfg.Logging.Output {
	case "stderr":
		out = os.Stderr
	default:
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	var handler slog.Handler
	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	if len(cfg.Logging.Attributes) > 0 {
		handler = handler.WithAttrs(convertAttributes(cfg.Logging.Attributes))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// convertAttributes converts map[string]string to []slog.Attr.
func convertAttributes(attrs map[string]string) []slog.Attr {
	var result []slog.Attr
	for k, v := range attrs {
		result = append(result, slog.String(k, v))
	}
	return result
}

// setupCatalog loads the tier/badge catalog from disk, or falls back to the
// built-in defaults when no path is configured.
func setupCatalog(cfg *config.Config, logger *slog.Logger) (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Default(), nil
	}
	cat, dropped, err := catalog.LoadFromFile(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", cfg.Catalog.Path, err)
	}
	for _, id := range dropped {
		logger.Warn("dropped malformed badge definition", "badge", id, "path", cfg.Catalog.Path)
	}
	return cat, nil
}

// setupLedger creates the appropriate persistence adapter based on configuration.
func setupLedger(ctx context.Context, cfg *config.Config) (engine.Ledger, error) {
	switch cfg.Storage.Adapter {
	case "memory":
		return mem.New(), nil
	case "redis":
		return redisAdapter.New(cfg.Storage.Redis)
	case "sql":
		store, err := sqlxAdapter.New(cfg.Storage.SQL)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case "file":
		return jsonfileAdapter.New(cfg.Storage.File.Path)
	default:
		return nil, fmt.Errorf("unknown storage adapter: %s", cfg.Storage.Adapter)
	}
}
