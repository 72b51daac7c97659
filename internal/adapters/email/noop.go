package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// NoopSender logs sends without delivering them. Used in development
// when no provider key is configured.
type NoopSender struct {
	seq atomic.Int64
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the email but does not deliver it.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	slog.Info("email_event", "event", "noop_send", "to", req.To, "subject", req.Subject)
	return SendResult{MessageID: s.nextID(), SentAt: time.Now()}, nil
}

// SendBatch logs the batch but does not deliver it.
// PRE: len(reqs) <= MaxBatchSize
func (s *NoopSender) SendBatch(_ context.Context, reqs []SendRequest) ([]SendResult, error) {
	if len(reqs) > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrBatchTooLarge, len(reqs))
	}
	results := make([]SendResult, 0, len(reqs))
	for range reqs {
		results = append(results, SendResult{MessageID: s.nextID(), SentAt: time.Now()})
	}
	slog.Info("email_event", "event", "noop_batch", "count", len(reqs))
	return results, nil
}

func (s *NoopSender) nextID() string {
	return fmt.Sprintf("noop-%d", s.seq.Add(1))
}
