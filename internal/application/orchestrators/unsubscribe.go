package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	registrantStore "bogoninja/internal/adapters/storage/registrant"
	"bogoninja/internal/domain/registrant"
)

// RegistrantStoreForUnsubscribe defines the store interface needed by Unsubscribe.
type RegistrantStoreForUnsubscribe interface {
	DeleteByEmail(ctx context.Context, email string) error
}

// TokenVerifier checks unsubscribe tokens.
type TokenVerifier interface {
	Verify(email, token string) bool
}

// UnsubscribeInput carries input for the unsubscribe orchestrator.
type UnsubscribeInput struct {
	Email string
	Token string
}

// UnsubscribeDeps holds dependencies for Unsubscribe.
type UnsubscribeDeps struct {
	RegistrantStore RegistrantStoreForUnsubscribe
	Tokens          TokenVerifier
}

var (
	ErrUnsubscribeMissingFields = errors.New("email and token are required")
	ErrInvalidUnsubscribeToken  = errors.New("invalid unsubscribe token")
	ErrRegistrantNotFound       = errors.New("registrant not found")
)

// ExecuteUnsubscribe deletes the registrant when the token matches the email.
// PRE: none
// POST: The registrant row is gone; a replay returns ErrRegistrantNotFound
func ExecuteUnsubscribe(ctx context.Context, input UnsubscribeInput, deps UnsubscribeDeps) error {
	email := registrant.NormalizeEmail(input.Email)
	token := strings.TrimSpace(input.Token)
	if email == "" || token == "" {
		return ErrUnsubscribeMissingFields
	}
	if !deps.Tokens.Verify(email, token) {
		slog.Info("unsubscribe_event", "event", "invalid_token")
		return ErrInvalidUnsubscribeToken
	}

	err := deps.RegistrantStore.DeleteByEmail(ctx, email)
	if errors.Is(err, registrantStore.ErrNotFound) {
		return ErrRegistrantNotFound
	}
	if err != nil {
		return err
	}
	slog.Info("unsubscribe_event", "event", "deleted")
	return nil
}
