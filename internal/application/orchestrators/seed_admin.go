package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	accountStore "bogoninja/internal/adapters/storage/account"
	"bogoninja/internal/domain/account"
)

// AccountStoreForSeed defines the store interface needed by SeedAdmin.
type AccountStoreForSeed interface {
	GetByCorreo(ctx context.Context, correo string) (account.Account, error)
	Create(ctx context.Context, correo, passwordHash string) (account.Account, error)
}

// SeedAdminInput carries the first admin's credentials.
type SeedAdminInput struct {
	Correo   string
	Password string
}

// ExecuteSeedAdmin creates the admin account when it does not exist yet.
// PRE: none
// POST: An account with input.Correo exists; an existing one is left untouched
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, store AccountStoreForSeed) (created bool, err error) {
	correo := strings.ToLower(strings.TrimSpace(input.Correo))
	candidate := account.Account{Correo: correo, PasswordHash: "pending"}
	if err := candidate.Validate(); err != nil {
		return false, err
	}
	if input.Password == "" {
		return false, account.ErrEmptyPassword
	}

	_, err = store.GetByCorreo(ctx, correo)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, accountStore.ErrNotFound) {
		return false, err
	}

	hash, err := account.HashPassword(input.Password)
	if err != nil {
		return false, err
	}
	acct, err := store.Create(ctx, correo, hash)
	if err != nil {
		return false, err
	}
	slog.Info("auth_event", "event", "admin_seeded", "admin_id", acct.ID)
	return true, nil
}
