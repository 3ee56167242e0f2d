// Package worker runs analyses for jobs queued on RabbitMQ. Each job points at
// a CV already uploaded to object storage; the outcome is reported through the
// analysis lifecycle updates.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/muhammadolammi/musecareer/internal/analysis"
	"github.com/muhammadolammi/musecareer/internal/events"
	"github.com/muhammadolammi/musecareer/internal/extract"
	"github.com/muhammadolammi/musecareer/internal/logger"
)

// Job is the message body expected on the queue.
type Job struct {
	RequestID string `json:"request_id"`
	FileURI   string `json:"file_uri"`
	MimeType  string `json:"mime_type"`
	Interests string `json:"interests"`
}

// Fetcher downloads the document a job refers to.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

type Config struct {
	URL     string
	Queue   string
	Workers int
}

type Pool struct {
	cfg       Config
	analyzer  *analysis.Analyzer
	files     Fetcher
	publisher events.Publisher
	log       *logger.Logger
}

func NewPool(cfg Config, analyzer *analysis.Analyzer, files Fetcher, publisher events.Publisher, log *logger.Logger) (*Pool, error) {
	if cfg.URL == "" {
		return nil, errors.New("empty RABBITMQ_URL in environment")
	}
	if cfg.Queue == "" {
		return nil, errors.New("empty queue name")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Pool{cfg: cfg, analyzer: analyzer, files: files, publisher: publisher, log: log}, nil
}

// Run starts the workers and blocks until ctx is cancelled or a worker loses
// its channel.
func (p *Pool) Run(ctx context.Context) error {
	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		return fmt.Errorf("error dialling rabbitmq: %w", err)
	}
	defer conn.Close()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	wg.Add(p.cfg.Workers)
	for i := range p.cfg.Workers {
		p.log.Info("worker started", "worker_id", i+1, "queue", p.cfg.Queue)
		go func(id int) {
			defer wg.Done()
			if err := p.consume(ctx, conn, id); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("worker %d: %w", id, err))
				mu.Unlock()
			}
		}(i + 1)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (p *Pool) consume(ctx context.Context, conn *amqp.Connection, id int) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("error connecting to rabbitmq channel: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.cfg.Queue, // queue name
		true,        // durable (survives broker restarts)
		false,       // auto-delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := ch.Consume(
		p.cfg.Queue, // queue name
		"",          // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("error consuming rabbitmq message: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("delivery channel closed")
			}
			p.log.Debug("job received", "worker_id", id, "message_id", msg.MessageId)
			// jobs are not redelivered: a failure is reported, not retried
			if err := p.Handle(ctx, msg.Body); err != nil {
				p.log.Warn("job failed", "worker_id", id, "error", err)
			}
			if err := msg.Ack(false); err != nil {
				p.log.Warn("failed to ack message", "worker_id", id, "error", err)
			}
		}
	}
}

// Handle processes one message body. Decoding and download failures are
// published here; pipeline failures are published by the analyzer.
func (p *Pool) Handle(ctx context.Context, body []byte) error {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		p.fail(ctx, job.RequestID, fmt.Errorf("error unmarshalling message body: %w", err))
		return err
	}
	if job.RequestID == "" {
		job.RequestID = uuid.NewString()
	}
	log := p.log.With("request_id", job.RequestID)

	if strings.TrimSpace(job.FileURI) == "" {
		err := errors.New("job has no file_uri")
		p.fail(ctx, job.RequestID, err)
		return err
	}
	if p.files == nil {
		err := errors.New("object storage is not configured")
		p.fail(ctx, job.RequestID, err)
		return err
	}

	data, err := p.files.Fetch(ctx, job.FileURI)
	if err != nil {
		err = fmt.Errorf("file download error: %w", err)
		p.fail(ctx, job.RequestID, err)
		return err
	}

	start := time.Now()
	_, err = p.analyzer.Analyze(ctx, job.RequestID, &extract.RawDocument{Bytes: data, MediaType: job.MimeType}, job.Interests)
	if err != nil {
		return err
	}
	log.Info("job analyzed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (p *Pool) fail(ctx context.Context, requestID string, cause error) {
	err := p.publisher.Publish(ctx, events.Update{
		RequestID: requestID,
		Status:    events.StatusFailed,
		Message:   "analysis failed",
		Error:     cause.Error(),
		Timestamp: time.Now(),
	})
	if err != nil {
		p.log.Warn("failed to publish update", "request_id", requestID, "error", err)
	}
}
