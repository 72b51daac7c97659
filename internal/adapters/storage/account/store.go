package account

import (
	"context"
	"errors"

	domain "bogoninja/internal/domain/account"
)

// ErrNotFound is returned when no account has the requested correo.
var ErrNotFound = errors.New("account not found")

// Store persists admin credentials.
type Store interface {
	GetByCorreo(ctx context.Context, correo string) (domain.Account, error)
	Create(ctx context.Context, correo, passwordHash string) (domain.Account, error)
	Count(ctx context.Context) (int, error)
}
