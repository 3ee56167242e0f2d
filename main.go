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

	"github.com/gin-gonic/gin"

	"github.com/muhammadolammi/musecareer/internal/app"
	"github.com/muhammadolammi/musecareer/internal/config"
	"github.com/muhammadolammi/musecareer/internal/logger"
	"github.com/muhammadolammi/musecareer/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	appLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer appLog.Sync()

	if err := run(cfg, appLog); err != nil {
		appLog.Fatal("server stopped", "error", err)
	}
}

func run(cfg config.Config, appLog *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitOTel(ctx, appLog, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		Exporter:    cfg.Otel.Exporter,
		ServiceName: serviceName,
		Environment: cfg.Env,
	})
	defer shutdownTracing(context.Background())

	publisher := app.NewPublisher(cfg.Rabbit, appLog)
	defer publisher.Close()

	analyzer, err := app.NewAnalyzer(ctx, cfg, publisher, appLog)
	if err != nil {
		return fmt.Errorf("failed to create completion provider: %w", err)
	}

	serverConfig := &ServerConfig{
		Config:   cfg,
		Analyzer: analyzer,
		Log:      appLog,
	}
	store, err := app.NewFileStore(ctx, cfg)
	if err != nil {
		return err
	}
	if store != nil {
		serverConfig.Files = store
	}

	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(serverConfig),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("MuseCareer backend listening",
			"port", cfg.Port,
			"provider", cfg.LLM.Provider,
			"auth", cfg.LLM.Auth,
			"model", cfg.LLM.Model,
			"object_storage", serverConfig.Files != nil,
		)
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

	appLog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
