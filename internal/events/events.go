// Package events publishes analysis lifecycle updates so other services can
// follow a request without polling it.
package events

import (
	"context"
	"time"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Update is one lifecycle step of a request. Result is set on completion and
// Error on failure; nothing else records the outcome.
type Update struct {
	RequestID string    `json:"request_id"`
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, update Update) error
	Close() error
}

// Noop is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Update) error { return nil }
func (Noop) Close() error                          { return nil }
