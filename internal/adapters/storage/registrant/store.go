package registrant

import (
	"context"
	"errors"
	"time"

	domain "bogoninja/internal/domain/registrant"
)

// ErrNotFound is returned when no registrant matches the lookup.
var ErrNotFound = errors.New("registrant not found")

// Outcome says what an Upsert did.
type Outcome int

const (
	Created Outcome = iota + 1
	Updated
	Throttled
)

// UpsertResult carries the outcome and the stored row.
// For Throttled, Registrant is the existing row left untouched.
type UpsertResult struct {
	Outcome    Outcome
	Registrant domain.Registrant
}

// Order selects the created_at sort direction of List.
type Order int

const (
	OldestFirst Order = iota
	NewestFirst
)

// Store persists Registrant state.
type Store interface {
	Upsert(ctx context.Context, value domain.Registrant, cutoff time.Time) (UpsertResult, error)
	GetByEmail(ctx context.Context, email string) (domain.Registrant, error)
	List(ctx context.Context, order Order) ([]domain.Registrant, error)
	DeleteByEmail(ctx context.Context, email string) error
	Count(ctx context.Context) (int, error)
}
