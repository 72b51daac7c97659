package registrant_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"bogoninja/internal/domain/registrant"
)

func validRegistrant() registrant.Registrant {
	return registrant.Registrant{
		Email:    "ninja@example.com",
		Name:     "Kage",
		Improve:  "flexibilidad",
		Location: registrant.LocationModelia,
	}
}

// TestRegistrantValidation tests validation of Registrant.
func TestRegistrantValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *registrant.Registrant)
		wantErr error
	}{
		{name: "valid registrant", mutate: func(r *registrant.Registrant) {}},
		{name: "optional experience", mutate: func(r *registrant.Registrant) { r.Experience = "karate 3 años" }},
		{name: "empty name", mutate: func(r *registrant.Registrant) { r.Name = "" }, wantErr: registrant.ErrEmptyName},
		{name: "empty improve", mutate: func(r *registrant.Registrant) { r.Improve = "" }, wantErr: registrant.ErrEmptyImprove},
		{name: "empty email", mutate: func(r *registrant.Registrant) { r.Email = "" }, wantErr: registrant.ErrEmptyEmail},
		{name: "not an email", mutate: func(r *registrant.Registrant) { r.Email = "not-an-email" }, wantErr: registrant.ErrInvalidEmail},
		{name: "missing tld", mutate: func(r *registrant.Registrant) { r.Email = "a@b" }, wantErr: registrant.ErrInvalidEmail},
		{name: "unknown location", mutate: func(r *registrant.Registrant) { r.Location = "chapinero" }, wantErr: registrant.ErrInvalidLocation},
		{name: "name too long", mutate: func(r *registrant.Registrant) { r.Name = strings.Repeat("n", registrant.MaxNameLength+1) }, wantErr: registrant.ErrFieldTooLong},
		{name: "experience too long", mutate: func(r *registrant.Registrant) { r.Experience = strings.Repeat("e", registrant.MaxExperienceLength+1) }, wantErr: registrant.ErrFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRegistrant()
			tt.mutate(&r)
			err := r.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestNormalize verifies whitespace trimming and email canonicalization.
func TestNormalize(t *testing.T) {
	r := registrant.Registrant{
		Email:    "  Ninja@Example.COM ",
		Name:     " Kage ",
		Improve:  "\tfuerza\n",
		Location: " mosquera",
	}
	r.Normalize()

	if r.Email != "ninja@example.com" {
		t.Errorf("Email = %q, want %q", r.Email, "ninja@example.com")
	}
	if r.Name != "Kage" || r.Improve != "fuerza" || r.Location != "mosquera" {
		t.Errorf("fields not trimmed: %+v", r)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("normalized registrant should be valid: %v", err)
	}
}

// TestWhitespaceOnlyFieldsRejected verifies that trimmed-empty fields fail validation.
func TestWhitespaceOnlyFieldsRejected(t *testing.T) {
	r := validRegistrant()
	r.Name = "   "
	r.Normalize()
	if err := r.Validate(); !errors.Is(err, registrant.ErrEmptyName) {
		t.Errorf("Validate() = %v, want ErrEmptyName", err)
	}
}

// TestInCooldown covers the joint (email, IP) cooldown rule.
func TestInCooldown(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		ip      string
		updated time.Time
		want    bool
	}{
		{name: "same ip within window", ip: "1.2.3.4", updated: now.Add(-5 * time.Minute), want: true},
		{name: "same ip just before expiry", ip: "1.2.3.4", updated: now.Add(-14*time.Minute - 59*time.Second), want: true},
		{name: "same ip at expiry", ip: "1.2.3.4", updated: now.Add(-15 * time.Minute), want: false},
		{name: "same ip after window", ip: "1.2.3.4", updated: now.Add(-20 * time.Minute), want: false},
		{name: "different ip within window", ip: "5.6.7.8", updated: now.Add(-1 * time.Minute), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := registrant.Registrant{IPUpdate: "1.2.3.4", UpdatedAt: tt.updated}
			if got := r.InCooldown(tt.ip, now); got != tt.want {
				t.Errorf("InCooldown() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestRemainingMinutes verifies remaining = ceil(15 - elapsed).
func TestRemainingMinutes(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{elapsed: 0, want: 15},
		{elapsed: 30 * time.Second, want: 15},
		{elapsed: 1 * time.Minute, want: 14},
		{elapsed: 5*time.Minute + 30*time.Second, want: 10},
		{elapsed: 14*time.Minute + 59*time.Second, want: 1},
		{elapsed: 15 * time.Minute, want: 0},
		{elapsed: time.Hour, want: 0},
	}

	for _, tt := range tests {
		r := registrant.Registrant{UpdatedAt: now.Add(-tt.elapsed)}
		if got := r.RemainingMinutes(now); got != tt.want {
			t.Errorf("RemainingMinutes(elapsed=%v) = %d, want %d", tt.elapsed, got, tt.want)
		}
	}
}

// TestLocationName returns display names and falls back to the raw value.
func TestLocationName(t *testing.T) {
	r := registrant.Registrant{Location: registrant.LocationParqueNacional}
	if got := r.LocationName(); got != "Parque Nacional" {
		t.Errorf("LocationName() = %q", got)
	}
	r.Location = "otro"
	if got := r.LocationName(); got != "otro" {
		t.Errorf("LocationName() = %q, want raw value", got)
	}
}
