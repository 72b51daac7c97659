package registrant

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength      = 80
	MaxNameLength       = 60
	MaxImproveLength    = 100
	MaxExperienceLength = 500
)

// Training venues a registrant can pick.
const (
	LocationModelia        = "modelia"
	LocationParqueNacional = "parque-nacional"
	LocationMosquera       = "mosquera"
)

// ValidLocations contains all valid location values.
var ValidLocations = []string{LocationModelia, LocationParqueNacional, LocationMosquera}

// LocationNames maps a location value to its display name.
var LocationNames = map[string]string{
	LocationModelia:        "Modelia",
	LocationParqueNacional: "Parque Nacional",
	LocationMosquera:       "Mosquera",
}

// Cooldown is the minimum time between two writes to the same record from the same IP.
const Cooldown = 15 * time.Minute

// Domain errors
var (
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrEmptyImprove    = errors.New("improve cannot be empty")
	ErrEmptyEmail      = errors.New("email cannot be empty")
	ErrInvalidEmail    = errors.New("email must look like local@domain.tld")
	ErrInvalidLocation = errors.New("location must be one of: modelia, parque-nacional, mosquera")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Registrant is a person who submitted the training-interest form.
type Registrant struct {
	ID         string
	Email      string
	Name       string
	Improve    string
	Experience string
	Location   string
	IPUpdate   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NormalizeEmail returns the canonical form used for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether email matches the basic local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Normalize trims every text field and canonicalizes the email.
// POST: Email is lowercase; no field has surrounding whitespace
func (r *Registrant) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	r.Improve = strings.TrimSpace(r.Improve)
	r.Experience = strings.TrimSpace(r.Experience)
	r.Location = strings.TrimSpace(r.Location)
}

// Validate checks if the Registrant has valid data.
// PRE: Normalize has been called
// POST: Returns nil if valid, error otherwise
func (r *Registrant) Validate() error {
	if r.Name == "" {
		return ErrEmptyName
	}
	if r.Improve == "" {
		return ErrEmptyImprove
	}
	if r.Email == "" {
		return ErrEmptyEmail
	}
	if !IsValidEmail(r.Email) {
		return ErrInvalidEmail
	}
	if !IsValidLocation(r.Location) {
		return ErrInvalidLocation
	}
	if utf8.RuneCountInString(r.Email) > MaxEmailLength ||
		utf8.RuneCountInString(r.Name) > MaxNameLength ||
		utf8.RuneCountInString(r.Improve) > MaxImproveLength ||
		utf8.RuneCountInString(r.Experience) > MaxExperienceLength {
		return ErrFieldTooLong
	}
	return nil
}

// LocationName returns the display name of the registrant's venue.
func (r *Registrant) LocationName() string {
	if name, ok := LocationNames[r.Location]; ok {
		return name
	}
	return r.Location
}

// InCooldown reports whether a write from ip at now must be rejected.
// Cooldown is keyed on (email, IP) jointly: a different IP is never blocked.
// INVARIANT: Registrant fields are not mutated
func (r *Registrant) InCooldown(ip string, now time.Time) bool {
	return r.IPUpdate == ip && now.Sub(r.UpdatedAt) < Cooldown
}

// RemainingMinutes returns ceil(15 - elapsedMinutes) since the last update.
// Returns 0 once the cooldown has passed.
func (r *Registrant) RemainingMinutes(now time.Time) int {
	elapsed := now.Sub(r.UpdatedAt).Minutes()
	remaining := Cooldown.Minutes() - elapsed
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining))
}

// IsValidLocation reports whether loc is one of the known venues.
func IsValidLocation(loc string) bool {
	for _, l := range ValidLocations {
		if l == loc {
			return true
		}
	}
	return false
}
