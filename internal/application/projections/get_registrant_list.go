package projections

import (
	"context"
	"time"

	registrantStore "bogoninja/internal/adapters/storage/registrant"
	"bogoninja/internal/domain/registrant"
)

// RegistrantStore interface for registrant queries.
type RegistrantStore interface {
	List(ctx context.Context, order registrantStore.Order) ([]registrant.Registrant, error)
}

// RegistrantView is one row of the admin list.
type RegistrantView struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Improve    string    `json:"improve"`
	Experience string    `json:"experience"`
	Location   string    `json:"location"`
	CreatedAt  time.Time `json:"created_at"`
}

// GetRegistrantListResult carries the query result.
type GetRegistrantListResult struct {
	Ninjas []RegistrantView `json:"ninjas"`
	Count  int              `json:"count"`
}

// GetRegistrantListDeps holds dependencies for GetRegistrantList.
type GetRegistrantListDeps struct {
	RegistrantStore RegistrantStore
}

// QueryGetRegistrantList lists every registrant, newest first.
// POST: Ninjas is never nil so it encodes as []
func QueryGetRegistrantList(ctx context.Context, deps GetRegistrantListDeps) (GetRegistrantListResult, error) {
	rows, err := deps.RegistrantStore.List(ctx, registrantStore.NewestFirst)
	if err != nil {
		return GetRegistrantListResult{}, err
	}

	views := make([]RegistrantView, 0, len(rows))
	for _, r := range rows {
		views = append(views, RegistrantView{
			ID:         r.ID,
			Email:      r.Email,
			Name:       r.Name,
			Improve:    r.Improve,
			Experience: r.Experience,
			Location:   r.Location,
			CreatedAt:  r.CreatedAt,
		})
	}
	return GetRegistrantListResult{Ninjas: views, Count: len(views)}, nil
}
