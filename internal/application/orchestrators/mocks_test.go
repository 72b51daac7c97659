package orchestrators

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	emailAdapter "bogoninja/internal/adapters/email"
	accountStore "bogoninja/internal/adapters/storage/account"
	registrantStore "bogoninja/internal/adapters/storage/registrant"
	"bogoninja/internal/domain/account"
	"bogoninja/internal/domain/registrant"
)

// --- Mock registrant store ---

type mockRegistrantStore struct {
	mu   sync.Mutex
	rows map[string]registrant.Registrant
	err  error
}

func newMockRegistrantStore() *mockRegistrantStore {
	return &mockRegistrantStore{rows: make(map[string]registrant.Registrant)}
}

// Upsert applies the same cooldown rule as the SQL statement.
func (m *mockRegistrantStore) Upsert(_ context.Context, value registrant.Registrant, cutoff time.Time) (registrantStore.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return registrantStore.UpsertResult{}, m.err
	}
	existing, ok := m.rows[value.Email]
	if !ok {
		m.rows[value.Email] = value
		return registrantStore.UpsertResult{Outcome: registrantStore.Created, Registrant: value}, nil
	}
	if existing.IPUpdate == value.IPUpdate && existing.UpdatedAt.After(cutoff) {
		return registrantStore.UpsertResult{Outcome: registrantStore.Throttled, Registrant: existing}, nil
	}
	value.ID = existing.ID
	value.CreatedAt = existing.CreatedAt
	m.rows[value.Email] = value
	return registrantStore.UpsertResult{Outcome: registrantStore.Updated, Registrant: value}, nil
}

func (m *mockRegistrantStore) List(_ context.Context, order registrantStore.Order) ([]registrant.Registrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []registrant.Registrant
	for _, r := range m.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if order == registrantStore.NewestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockRegistrantStore) DeleteByEmail(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[email]; !ok {
		return registrantStore.ErrNotFound
	}
	delete(m.rows, email)
	return nil
}

// --- Mock account store ---

type mockAccountStore struct {
	accounts map[string]account.Account
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account)}
}

func (m *mockAccountStore) GetByCorreo(_ context.Context, correo string) (account.Account, error) {
	a, ok := m.accounts[correo]
	if !ok {
		return account.Account{}, accountStore.ErrNotFound
	}
	return a, nil
}

func (m *mockAccountStore) Create(_ context.Context, correo, hash string) (account.Account, error) {
	a := account.Account{ID: int64(len(m.accounts) + 1), Correo: correo, PasswordHash: hash}
	m.accounts[correo] = a
	return a, nil
}

// --- Recording email sender ---

type recordingSender struct {
	mu       sync.Mutex
	sent     []emailAdapter.SendRequest
	batches  [][]emailAdapter.SendRequest
	failCall map[int]bool // batch call index (0-based) to fail
	calls    int
}

func (s *recordingSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, req)
	return emailAdapter.SendResult{MessageID: "m", SentAt: time.Now()}, nil
}

func (s *recordingSender) SendBatch(_ context.Context, reqs []emailAdapter.SendRequest) ([]emailAdapter.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	call := s.calls
	s.calls++
	if len(reqs) > emailAdapter.MaxBatchSize {
		return nil, emailAdapter.ErrBatchTooLarge
	}
	if s.failCall[call] {
		return nil, errors.New("provider unavailable")
	}
	s.batches = append(s.batches, append([]emailAdapter.SendRequest(nil), reqs...))
	return make([]emailAdapter.SendResult, len(reqs)), nil
}

func (s *recordingSender) sentTo() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var to []string
	for _, r := range s.sent {
		to = append(to, r.To...)
	}
	return to
}

// --- Recording notifier ---

type notification struct {
	reg   registrant.Registrant
	isNew bool
}

type recordingNotifier struct {
	calls []notification
}

func (n *recordingNotifier) RegistrantSaved(_ context.Context, reg registrant.Registrant, isNew bool) {
	n.calls = append(n.calls, notification{reg: reg, isNew: isNew})
}
