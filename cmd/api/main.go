package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/ecoscan/internal/application"
	"github.com/bryanwahyu/ecoscan/internal/application/analysis"
	appuploads "github.com/bryanwahyu/ecoscan/internal/application/uploads"
	"github.com/bryanwahyu/ecoscan/internal/config"
	"github.com/bryanwahyu/ecoscan/internal/infra/ai/provider"
	"github.com/bryanwahyu/ecoscan/internal/infra/httpserver"
	"github.com/bryanwahyu/ecoscan/internal/infra/imaging"
	"github.com/bryanwahyu/ecoscan/internal/infra/storage"
	"github.com/bryanwahyu/ecoscan/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// init generator
	gen, err := provider.New(ctx, cfg.AI)
	if err != nil {
		logger.Fatal("ai provider init error", zap.Error(err))
	}

	// init storage
	store, err := storage.NewLocal(cfg.Uploads.Dir, cfg.Server.PublicBaseURL)
	if err != nil {
		logger.Fatal("upload dir init error", zap.Error(err))
	}
	checkers := map[string]middleware.HealthChecker{"uploads": store}

	svc := &appuploads.Service{
		Store:          store,
		Clock:          application.SystemClock{},
		MaxUploadBytes: cfg.Uploads.MaxUploadBytes,
		Logger:         logger,
	}

	// init minio (opsional)
	if cfg.Minio.Enabled {
		mirror, err := storage.NewMinio(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			logger.Fatal("minio init error", zap.Error(err))
		}
		svc.Publisher = mirror
		checkers["minio"] = mirror
	}

	metrics := middleware.NewMetrics()
	svc.Engine = &analysis.Engine{
		Generator:     gen,
		Normalizer:    imaging.NewNormalizer(logger),
		MaxImageBytes: cfg.AI.MaxImageBytes,
		Logger:        logger,
		Metrics:       metrics,
	}

	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.Server.RateLimit.PerSecond, cfg.Server.RateLimit.Burst)
	}

	// init router
	handler := httpserver.NewRouter(svc, httpserver.Options{
		UploadDir:      cfg.Uploads.Dir,
		MaxUploadBytes: cfg.Uploads.MaxUploadBytes,
		Logger:         logger,
		Metrics:        metrics,
		RateLimiter:    limiter,
		Checkers:       checkers,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logger.Info("server listening",
			zap.String("addr", addr),
			zap.String("provider", gen.Name()),
			zap.String("upload_dir", cfg.Uploads.Dir),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
