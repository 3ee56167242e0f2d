package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muhammadolammi/musecareer/internal/app"
	"github.com/muhammadolammi/musecareer/internal/observability"
	"github.com/muhammadolammi/musecareer/internal/worker"
)

var workerCount int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume analysis jobs from RabbitMQ",
	Long: `Starts a pool of consumers on RABBITMQ_QUEUE. Each job names a CV in object
storage; progress and results are published to RABBITMQ_EXCHANGE.`,
	Args: cobra.NoArgs,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().IntVarP(&workerCount, "workers", "w", 0, "number of consumers (default WORKER_COUNT)")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	verbose = true
	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		Exporter:    cfg.Otel.Exporter,
		ServiceName: "musecareer-worker",
		Environment: cfg.Env,
	})
	defer shutdownTracing(context.Background())

	publisher := app.NewPublisher(cfg.Rabbit, log)
	defer publisher.Close()

	analyzer, err := buildAnalyzer(ctx, cfg, publisher, log)
	if err != nil {
		return fmt.Errorf("failed to create completion provider: %w", err)
	}
	store, err := app.NewFileStore(ctx, cfg)
	if err != nil {
		return err
	}
	var files worker.Fetcher
	if store != nil {
		files = store
	} else {
		log.Warn("object storage not configured, every job will fail")
	}

	n := cfg.Rabbit.Workers
	if workerCount > 0 {
		n = workerCount
	}
	pool, err := worker.NewPool(worker.Config{URL: cfg.Rabbit.URL, Queue: cfg.Rabbit.Queue, Workers: n}, analyzer, files, publisher, log)
	if err != nil {
		return err
	}
	return pool.Run(ctx)
}
