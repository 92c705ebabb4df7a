package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/viewtube/internal/config"
	"github.com/iudanet/viewtube/internal/server"
	"github.com/iudanet/viewtube/internal/server/auth"
	"github.com/iudanet/viewtube/internal/server/blob"
	"github.com/iudanet/viewtube/internal/server/storage/sqlite"
	"github.com/iudanet/viewtube/internal/token"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	logger.Info("ViewTube server starting",
		"version", Version,
		"build_date", BuildDate,
		"git_commit", GitCommit,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	blobs, err := blob.New(ctx, blob.Config{
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		return err
	}

	codec := token.NewCodec(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	sessions := auth.NewService(logger, store, codec, auth.NewBcryptHasher(0))

	srv := server.New(server.Deps{
		Logger:   logger,
		Config:   cfg,
		Users:    store,
		Profiles: store,
		Blobs:    blobs,
		Codec:    codec,
		Sessions: sessions,
		Health:   store,
		Version:  Version,
	})

	return srv.Run(ctx)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
