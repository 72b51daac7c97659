package registrant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bogoninja/internal/adapters/storage"
	domain "bogoninja/internal/domain/registrant"
)

const columns = "id, email, name, improve, experience, location, ip_update, created_at, updated_at"

// upsertQuery inserts a new row or overwrites the existing one unless the
// same IP wrote it after the cutoff. The cooldown check and the write are
// one statement, so two concurrent submissions cannot both pass the check.
const upsertQuery = `INSERT INTO registrant (` + columns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (email) DO UPDATE SET
	name = excluded.name,
	improve = excluded.improve,
	experience = excluded.experience,
	location = excluded.location,
	ip_update = excluded.ip_update,
	updated_at = excluded.updated_at
WHERE NOT (registrant.ip_update = excluded.ip_update AND registrant.updated_at > ?)
RETURNING ` + columns

// SQLStore implements Store on SQLite or Postgres.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new registrant store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Upsert creates value, or updates the row with the same email unless the
// cooldown holds for value.IPUpdate.
// PRE: value has been normalized and validated; value.ID is a fresh id
// POST: Created or Updated rows carry the stored state; Throttled leaves the row untouched
func (s *SQLStore) Upsert(ctx context.Context, value domain.Registrant, cutoff time.Time) (UpsertResult, error) {
	row := s.db.QueryRowContext(ctx, upsertQuery,
		value.ID,
		value.Email,
		value.Name,
		value.Improve,
		value.Experience,
		value.Location,
		value.IPUpdate,
		toMicros(value.CreatedAt),
		toMicros(value.UpdatedAt),
		toMicros(cutoff),
	)
	stored, err := scanRegistrant(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		existing, err := s.GetByEmail(ctx, value.Email)
		if err != nil {
			return UpsertResult{}, fmt.Errorf("read throttled registrant: %w", err)
		}
		return UpsertResult{Outcome: Throttled, Registrant: existing}, nil
	}
	if err != nil {
		return UpsertResult{}, fmt.Errorf("upsert registrant: %w", err)
	}

	// On conflict the existing id is kept, so a matching id means a fresh insert.
	outcome := Updated
	if stored.ID == value.ID {
		outcome = Created
	}
	return UpsertResult{Outcome: outcome, Registrant: stored}, nil
}

// GetByEmail retrieves a Registrant by normalized email.
// PRE: email is normalized
// POST: Returns the entity or ErrNotFound
func (s *SQLStore) GetByEmail(ctx context.Context, email string) (domain.Registrant, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM registrant WHERE email = ?", email)
	entity, err := scanRegistrant(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Registrant{}, ErrNotFound
	}
	return entity, err
}

// List returns every registrant sorted by creation time.
func (s *SQLStore) List(ctx context.Context, order Order) ([]domain.Registrant, error) {
	query := "SELECT " + columns + " FROM registrant ORDER BY created_at ASC, email ASC"
	if order == NewestFirst {
		query = "SELECT " + columns + " FROM registrant ORDER BY created_at DESC, email ASC"
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	defer rows.Close()

	var results []domain.Registrant
	for rows.Next() {
		entity, err := scanRegistrant(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// DeleteByEmail removes the registrant with the given email.
// POST: Returns ErrNotFound when nothing was deleted
func (s *SQLStore) DeleteByEmail(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM registrant WHERE email = ?", email)
	if err != nil {
		return fmt.Errorf("delete registrant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete registrant: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of registrants.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM registrant").Scan(&count)
	return count, err
}

// scanRegistrant extracts a Registrant from a row scanner function.
func scanRegistrant(scan func(dest ...any) error) (domain.Registrant, error) {
	var entity domain.Registrant
	var createdAt, updatedAt int64
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.Name,
		&entity.Improve,
		&entity.Experience,
		&entity.Location,
		&entity.IPUpdate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Registrant{}, err
	}
	entity.CreatedAt = time.UnixMicro(createdAt).UTC()
	entity.UpdatedAt = time.UnixMicro(updatedAt).UTC()
	return entity, nil
}

func toMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}
