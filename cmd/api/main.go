package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"live-poll/config"
	"live-poll/internal/events"
	"live-poll/internal/handler"
	"live-poll/internal/redis"
	"live-poll/internal/server"
	"live-poll/internal/services"
	"live-poll/internal/storage"
	"live-poll/internal/websocket"
	"live-poll/pkg/database"
	"live-poll/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	if err := cfg.Validate(); err != nil {
		l.Logger.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.UsesDefaultClientTokenSecret() {
		l.Logger.Warn("CLIENT_TOKEN_SECRET is not set; participant tokens are signed with the development default")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil {
		l.Logger.Error("server exited with error", zap.Error(err))
		l.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, l *logger.Logger) error {
	store, err := database.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(closeCtx)
	}()
	l.Logger.Info("store connected", zap.String("driver", cfg.StoreDriver))

	var (
		bus     events.Bus = events.NewLocalBus()
		limiter *redis.RateLimiter
		rdb     *goredis.Client
	)
	if cfg.RedisEnabled {
		rdb, err = redis.Connect(ctx, redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		bus = events.NewRedisBus(redis.NewPublisher(rdb), redis.NewSubscriber(rdb), l.Named("events").Logger)
		limiter = redis.NewRateLimiter(rdb, redis.RateLimitConfig{
			SubmitLimit:  cfg.SubmitRateLimit,
			SubmitWindow: cfg.SubmitRateWindow,
		})
		l.Logger.Info("redis change feed enabled")
	}

	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		return err
	}

	publisher := services.NewEventPublisher(bus, l)
	admin := services.NewAdminService(store, publisher, uploader, cfg.UploadMaxBytes, l)
	participant := services.NewParticipantService(store, publisher, cfg.Employees, l)
	results := services.NewResultsService(store)
	identity := services.NewClientIdentityService(cfg.ClientTokenSecret)

	hub := websocket.NewHub()
	views := websocket.NewViews(admin, participant, results)
	notifier := websocket.NewNotifier(hub, views, bus, cfg.RealtimeDebounce, l)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Admin:       handler.NewAdminHandler(admin, l),
		Participant: handler.NewParticipantHandler(participant, identity, l),
		Results:     handler.NewResultsHandler(results, l),
		Realtime:    websocket.NewHandler(hub, views, identity, notifier, l),
	}, server.Dependencies{
		Identity: identity,
		Limiter:  limiter,
		Health:   store.Ping,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return notifier.Run(gctx)
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})
	return g.Wait()
}

// newUploader picks the media backend. A missing preset endpoint leaves
// Meme creation unavailable rather than failing startup.
func newUploader(ctx context.Context, cfg *config.Config) (services.MediaUploader, error) {
	switch cfg.UploadBackend {
	case config.UploadBackendS3:
		client, err := storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
		})
		if err != nil {
			return nil, err
		}
		return services.NewS3Uploader(client), nil
	default:
		if cfg.UploadEndpoint == "" {
			return nil, nil
		}
		return services.NewPresetUploader(cfg.UploadEndpoint, cfg.UploadPreset, &http.Client{Timeout: 60 * time.Second}), nil
	}
}
