package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bogoninja/internal/adapters/storage"
	domain "bogoninja/internal/domain/account"
)

// SQLStore implements Store on SQLite or Postgres.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new account store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByCorreo retrieves an Account by its login email.
// Matching is case-insensitive so rows inserted with mixed case stay reachable.
// POST: Returns the entity or ErrNotFound
func (s *SQLStore) GetByCorreo(ctx context.Context, correo string) (domain.Account, error) {
	var entity domain.Account
	err := s.db.QueryRowContext(ctx,
		"SELECT id, correo, password FROM account WHERE LOWER(correo) = ? ORDER BY id LIMIT 1",
		strings.ToLower(strings.TrimSpace(correo)),
	).Scan(&entity.ID, &entity.Correo, &entity.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, ErrNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}
	return entity, nil
}

// Create inserts a new admin with the next numeric id.
// PRE: passwordHash is in salt:hash form
// POST: Returns the stored account
func (s *SQLStore) Create(ctx context.Context, correo, passwordHash string) (domain.Account, error) {
	entity := domain.Account{Correo: correo, PasswordHash: passwordHash}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO account (id, correo, password)
		SELECT COALESCE(MAX(id), 0) + 1, CAST(? AS TEXT), CAST(? AS TEXT) FROM account
		RETURNING id`,
		correo, passwordHash,
	).Scan(&entity.ID)
	if err != nil {
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}
	return entity, nil
}

// Count returns the total number of accounts.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&count)
	return count, err
}
