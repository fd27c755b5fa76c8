package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"ChannelSync/internal/config"
	"ChannelSync/internal/grouping"
	"ChannelSync/internal/infrastructure/events"
	"ChannelSync/internal/infrastructure/media"
	"ChannelSync/internal/infrastructure/parser"
	"ChannelSync/internal/infrastructure/scheduler"
	"ChannelSync/internal/infrastructure/storage"
	"ChannelSync/internal/infrastructure/telegram"
	"ChannelSync/internal/logging"
	"ChannelSync/internal/metrics"
	"ChannelSync/internal/ports"
	"ChannelSync/internal/scanner"
	"ChannelSync/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	metrics  *metrics.Recorder
	closers  []func(context.Context) error
}

// New connects every configured adapter and builds the pipeline.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger, metrics: metrics.New()}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.onClose(func(context.Context) error { pool.Close(); return nil })
	if err := pool.Ping(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := storage.NewPostgresStore(pool, cfg.Database.Table)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	cursors, err := a.cursorStore(ctx)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Sources.Timeout}
	registry := scanner.NewRegistry()
	registry.Register(parser.NewTelegramWebScanner(httpClient, cfg.Sources.TelegramWebURL, cfg.Sources.UserAgent,
		baseLogger.With("component", "scanner.telegram_web")))
	registry.Register(parser.NewRSSScanner(httpClient, cfg.Sources.UserAgent,
		baseLogger.With("component", "scanner.rss")))
	source := parser.NewStrategySource(registry, cfg.Sync.Limit, baseLogger.With("component", "source"))

	deps := usecase.PipelineDeps{
		Channels: cfg.Channels,
		Source:   source,
		Store:    store,
		Cursors:  cursors,
		Metrics:  a.metrics,
		Thresholds: grouping.Thresholds{
			Base:                cfg.Grouping.Base,
			ContinuationCeiling: cfg.Grouping.ContinuationCeiling,
		},
		Logger: baseLogger.With("component", "pipeline"),
	}

	if cfg.Storage.Enabled() {
		bucket := storage.NewBucketStore(nil, cfg.Storage.URL, cfg.Storage.ServiceKey, cfg.Storage.Bucket)
		deps.Media = media.NewResolver(nil, bucket, baseLogger.With("component", "media"))
	} else {
		baseLogger.Info("media upload disabled: storage is not configured")
	}

	if cfg.Notifications.Telegram.Enabled() {
		deps.Notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	if cfg.Events.NATSURL != "" {
		publisher, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Subject)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		a.onClose(publisher.Close)
		deps.Events = publisher
	}

	a.pipeline = usecase.NewPipeline(deps)
	return a, nil
}

func (a *Application) cursorStore(ctx context.Context) (ports.CursorStore, error) {
	switch a.cfg.Cursor.Backend {
	case config.CursorRedis:
		client := redis.NewClient(&redis.Options{Addr: a.cfg.Cursor.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis %s: %w", a.cfg.Cursor.RedisAddr, err)
		}
		a.onClose(func(context.Context) error { return client.Close() })
		return storage.NewRedisCursorStore(client, a.cfg.Cursor.RedisPrefix), nil
	default:
		return storage.NewFileCursorStore(a.cfg.Cursor.Path), nil
	}
}

func (a *Application) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// Sync performs one pass and, when configured, dumps metrics to the textfile.
func (a *Application) Sync(ctx context.Context, opts usecase.RunOptions) (usecase.Report, error) {
	report, err := a.pipeline.Run(ctx, opts)

	if path := a.cfg.Metrics.Textfile; path != "" {
		if werr := a.metrics.WriteTextfile(path); werr != nil {
			a.logger.Warn("cannot write metrics textfile", "path", path, "error", werr)
		}
	}
	return report, err
}

// Watch runs incremental passes on the configured cron schedule and serves
// /metrics until ctx is cancelled.
func (a *Application) Watch(ctx context.Context, opts usecase.RunOptions) error {
	driver := scheduler.NewCronScheduler(
		a.cfg.Scheduler.CronExpression,
		a.cfg.Scheduler.Location(),
		true,
		a.logger.With("component", "scheduler"),
	)
	sched := usecase.NewScheduler(driver, a.pipeline, opts, a.logger.With("component", "watch"))

	var server *http.Server
	serveErr := make(chan error, 1)
	if a.cfg.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics.Handler())
		server = &http.Server{
			Addr:              a.cfg.Metrics.Listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}()
		a.logger.Info("serving metrics", "addr", a.cfg.Metrics.Listen)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watching channels", "cron", a.cfg.Scheduler.CronExpression, "timezone", a.cfg.Scheduler.Location().String())

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
		runErr = fmt.Errorf("metrics server: %w", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sched.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler stop", "error", err)
	}
	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("metrics server shutdown", "error", err)
		}
	}
	return runErr
}

// Close releases connections in reverse order of creation.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
