package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	registrantStore "bogoninja/internal/adapters/storage/registrant"
	"bogoninja/internal/domain/registrant"
)

// RegistrantStoreForContact defines the store interface needed by SubmitContact.
type RegistrantStoreForContact interface {
	Upsert(ctx context.Context, value registrant.Registrant, cutoff time.Time) (registrantStore.UpsertResult, error)
}

// ContactNotifier is told about every accepted submission.
type ContactNotifier interface {
	RegistrantSaved(ctx context.Context, reg registrant.Registrant, isNew bool)
}

// SubmitContactInput carries input for the contact orchestrator.
type SubmitContactInput struct {
	Name       string
	Improve    string
	Experience string
	Email      string
	Location   string
	ClientIP   string
}

// SubmitContactResult carries the outcome of a submission.
type SubmitContactResult struct {
	Created          bool
	Registrant       registrant.Registrant
	RemainingMinutes int // set with ErrCooldownActive
}

// SubmitContactDeps holds dependencies for SubmitContact.
type SubmitContactDeps struct {
	RegistrantStore RegistrantStoreForContact
	Notifier        ContactNotifier // may be nil
	Now             func() time.Time
}

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrCooldownActive = errors.New("submission cooldown active")
)

// ExecuteSubmitContact creates or updates the registrant for the submitted email.
// PRE: ClientIP is the normalized client address
// POST: On success the row reflects the submission and a notification is queued
// INVARIANT: The same (email, IP) pair cannot write twice within registrant.Cooldown
func ExecuteSubmitContact(ctx context.Context, input SubmitContactInput, deps SubmitContactDeps) (SubmitContactResult, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	at := now().UTC()

	reg := registrant.Registrant{
		ID:         uuid.NewString(),
		Email:      input.Email,
		Name:       input.Name,
		Improve:    input.Improve,
		Experience: input.Experience,
		Location:   input.Location,
		IPUpdate:   input.ClientIP,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	reg.Normalize()
	if err := reg.Validate(); err != nil {
		return SubmitContactResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	res, err := deps.RegistrantStore.Upsert(ctx, reg, at.Add(-registrant.Cooldown))
	if err != nil {
		return SubmitContactResult{}, err
	}

	switch res.Outcome {
	case registrantStore.Throttled:
		remaining := res.Registrant.RemainingMinutes(at)
		slog.Info("contact_event", "event", "cooldown", "remaining_minutes", remaining)
		return SubmitContactResult{Registrant: res.Registrant, RemainingMinutes: remaining}, ErrCooldownActive
	case registrantStore.Created, registrantStore.Updated:
		isNew := res.Outcome == registrantStore.Created
		slog.Info("contact_event", "event", kindOf(isNew), "registrant_id", res.Registrant.ID, "location", res.Registrant.Location)
		if deps.Notifier != nil {
			deps.Notifier.RegistrantSaved(ctx, res.Registrant, isNew)
		}
		return SubmitContactResult{Created: isNew, Registrant: res.Registrant}, nil
	default:
		return SubmitContactResult{}, fmt.Errorf("unexpected upsert outcome %d", res.Outcome)
	}
}
