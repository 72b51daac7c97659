package projections

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	registrantStore "bogoninja/internal/adapters/storage/registrant"
	"bogoninja/internal/domain/registrant"
)

type mockRegistrantStore struct {
	rows      []registrant.Registrant
	err       error
	lastOrder registrantStore.Order
}

func (m *mockRegistrantStore) List(_ context.Context, order registrantStore.Order) ([]registrant.Registrant, error) {
	m.lastOrder = order
	return m.rows, m.err
}

func TestQueryGetRegistrantList(t *testing.T) {
	store := &mockRegistrantStore{rows: []registrant.Registrant{
		{ID: "2", Email: "b@x.co", Name: "B", IPUpdate: "1.2.3.4", CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "1", Email: "a@x.co", Name: "A", IPUpdate: "local", CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}

	res, err := QueryGetRegistrantList(context.Background(), GetRegistrantListDeps{RegistrantStore: store})
	if err != nil {
		t.Fatalf("QueryGetRegistrantList: %v", err)
	}
	if store.lastOrder != registrantStore.NewestFirst {
		t.Error("list should be requested newest first")
	}
	if res.Count != 2 || res.Ninjas[0].ID != "2" {
		t.Errorf("result = %+v", res)
	}

	body, _ := json.Marshal(res)
	if strings.Contains(string(body), "1.2.3.4") {
		t.Error("client IP must not be exposed")
	}
	if !strings.Contains(string(body), `"created_at":"2026-02-01T00:00:00Z"`) {
		t.Errorf("body = %s", body)
	}
}

func TestQueryGetRegistrantListEmpty(t *testing.T) {
	res, err := QueryGetRegistrantList(context.Background(), GetRegistrantListDeps{RegistrantStore: &mockRegistrantStore{}})
	if err != nil {
		t.Fatalf("QueryGetRegistrantList: %v", err)
	}
	body, _ := json.Marshal(res)
	if string(body) != `{"ninjas":[],"count":0}` {
		t.Errorf("body = %s", body)
	}
}

func TestQueryGetRegistrantListError(t *testing.T) {
	_, err := QueryGetRegistrantList(context.Background(), GetRegistrantListDeps{RegistrantStore: &mockRegistrantStore{err: errors.New("boom")}})
	if err == nil {
		t.Error("expected error")
	}
}
