package email

import (
	"context"
	"errors"
	"time"
)

// MaxBatchSize is the most messages the provider accepts in one batch call.
const MaxBatchSize = 100

// ErrBatchTooLarge is returned when SendBatch gets more than MaxBatchSize requests.
var ErrBatchTooLarge = errors.New("batch exceeds 100 messages")

// SendRequest contains the data needed to send one email.
type SendRequest struct {
	To      []string
	From    string // empty uses the sender's default
	Subject string
	HTML    string
	ReplyTo string
	Headers map[string]string // e.g. List-Unsubscribe
}

// SendResult contains the provider response for one accepted message.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	// SendBatch submits up to MaxBatchSize messages in a single provider call.
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
