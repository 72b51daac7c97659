package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	emailAdapter "bogoninja/internal/adapters/email"
	"bogoninja/internal/adapters/email/templates"
	registrantStore "bogoninja/internal/adapters/storage/registrant"
	"bogoninja/internal/domain/announcement"
	"bogoninja/internal/domain/registrant"
	"bogoninja/internal/domain/unsubscribe"
)

// RegistrantStoreForSessionEmail defines the store interface needed by SendSessionEmail.
type RegistrantStoreForSessionEmail interface {
	List(ctx context.Context, order registrantStore.Order) ([]registrant.Registrant, error)
}

// SendSessionEmailDeps holds dependencies for SendSessionEmail.
type SendSessionEmailDeps struct {
	RegistrantStore RegistrantStoreForSessionEmail
	Sender          emailAdapter.Sender
	Renderer        *templates.Renderer
	Signer          *unsubscribe.Signer
	BaseURL         string
}

// SendSessionEmailResult reports how many messages the provider accepted.
type SendSessionEmailResult struct {
	Sent   int
	Total  int
	Errors []string // one entry per failed batch
}

var ErrNoRegistrants = errors.New("no registrants to notify")

// ExecuteSendSessionEmail announces a session to every registrant, in
// provider batches of at most emailAdapter.MaxBatchSize.
// PRE: none
// POST: Every batch was attempted once; a failed batch does not stop the rest
func ExecuteSendSessionEmail(ctx context.Context, input announcement.Announcement, deps SendSessionEmailDeps) (SendSessionEmailResult, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return SendSessionEmailResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	registrants, err := deps.RegistrantStore.List(ctx, registrantStore.OldestFirst)
	if err != nil {
		return SendSessionEmailResult{}, err
	}
	if len(registrants) == 0 {
		return SendSessionEmailResult{}, ErrNoRegistrants
	}

	reqs := make([]emailAdapter.SendRequest, 0, len(registrants))
	for _, reg := range registrants {
		unsubscribeURL := deps.Signer.URL(reg.Email, deps.BaseURL)
		msg, err := deps.Renderer.Session(reg.Name, input, unsubscribeURL)
		if err != nil {
			return SendSessionEmailResult{}, err
		}
		reqs = append(reqs, emailAdapter.SendRequest{
			To:      []string{reg.Email},
			Subject: msg.Subject,
			HTML:    msg.HTML,
			Headers: listUnsubscribeHeaders(unsubscribeURL),
		})
	}

	result := SendSessionEmailResult{Total: len(reqs)}
	for start := 0; start < len(reqs); start += emailAdapter.MaxBatchSize {
		end := min(start+emailAdapter.MaxBatchSize, len(reqs))
		if _, err := deps.Sender.SendBatch(ctx, reqs[start:end]); err != nil {
			slog.Error("email_event", "event", "session_batch_failed", "from", start, "to", end, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("lote %d-%d: %v", start+1, end, err))
			continue
		}
		result.Sent += end - start
	}

	slog.Info("email_event", "event", "session_sent", "sent", result.Sent, "total", result.Total, "failed_batches", len(result.Errors))
	return result, nil
}
