package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a sender with the given API key and default from address.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
func NewResendSender(apiKey, from string) *ResendSender {
	return NewResendSenderWithClient(resend.NewClient(apiKey), from)
}

// NewResendSenderWithClient wraps an already configured client.
func NewResendSenderWithClient(client *resend.Client, from string) *ResendSender {
	return &ResendSender{client: client, from: from}
}

// Send sends a single email via Resend.
// PRE: req has at least one recipient and a subject
// POST: Email is queued for delivery; returns the Resend message ID
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, s.params(req))
	if err != nil {
		slog.Error("email_event", "event", "send_failed", "error", err, "subject", req.Subject)
		return SendResult{}, fmt.Errorf("resend send: %w", err)
	}

	slog.Info("email_event", "event", "sent", "message_id", sent.Id, "subject", req.Subject)
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// SendBatch submits reqs as one Resend batch call.
// PRE: len(reqs) <= MaxBatchSize
// POST: Returns one result per accepted message, in request order
func (s *ResendSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	if len(reqs) > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrBatchTooLarge, len(reqs))
	}

	params := make([]*resend.SendEmailRequest, 0, len(reqs))
	for _, req := range reqs {
		params = append(params, s.params(req))
	}

	resp, err := s.client.Batch.SendWithContext(ctx, params)
	if err != nil {
		slog.Error("email_event", "event", "batch_failed", "error", err, "batch_size", len(reqs))
		return nil, fmt.Errorf("resend batch send: %w", err)
	}

	now := time.Now()
	results := make([]SendResult, 0, len(resp.Data))
	for _, item := range resp.Data {
		results = append(results, SendResult{MessageID: item.Id, SentAt: now})
	}
	slog.Info("email_event", "event", "batch_sent", "count", len(results), "rejected", len(resp.Errors))
	return results, nil
}

func (s *ResendSender) params(req SendRequest) *resend.SendEmailRequest {
	from := req.From
	if from == "" {
		from = s.from
	}
	return &resend.SendEmailRequest{
		From:    from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		ReplyTo: req.ReplyTo,
		Headers: req.Headers,
	}
}
