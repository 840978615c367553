package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"salons/backend/internal/ratelimit"
	"salons/backend/internal/router"
	"salons/backend/internal/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default command)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, flush, err := bootstrap()
	if err != nil {
		return err
	}
	defer flush()

	storage.Init(cfg.MediaRoot, cfg.MediaURL, cfg.MaxUploadBytes())

	opts := router.Options{Logger: zap.L(), MediaURL: cfg.MediaURL}
	if cfg.RedisURL != "" {
		rdb := ratelimit.NewClient(cfg.RedisURL)
		defer rdb.Close()
		opts.SendLimiter = ratelimit.New(rdb, cfg.SendRateLimit, cfg.SendRateWindow)
		zap.L().Info("send rate limit enabled",
			zap.Int("limit", cfg.SendRateLimit),
			zap.Duration("window", cfg.SendRateWindow))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("Server is running", zap.String("addr", srv.Addr))
		zap.L().Info("Swagger UI is available", zap.String("url", "http://localhost:"+cfg.Port+"/swagger/index.html"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
