package announcement

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Domain errors
var (
	ErrMissingFields   = errors.New("fecha, hora, location and mapsLink are required")
	ErrInvalidFecha    = errors.New("fecha must be DD-MM")
	ErrInvalidHora     = errors.New("hora must be HH:MM (24h)")
	ErrInvalidMapsLink = errors.New("mapsLink must be an http(s) URL")
)

var months = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// Announcement describes the next training session sent to every registrant.
type Announcement struct {
	Fecha    string `json:"fecha"`    // DD-MM
	Hora     string `json:"hora"`     // HH:MM, 24h
	Location string `json:"location"` // free-text venue name
	MapsLink string `json:"mapsLink"`
}

// Normalize trims all fields.
func (a *Announcement) Normalize() {
	a.Fecha = strings.TrimSpace(a.Fecha)
	a.Hora = strings.TrimSpace(a.Hora)
	a.Location = strings.TrimSpace(a.Location)
	a.MapsLink = strings.TrimSpace(a.MapsLink)
}

// Validate checks presence and format of every field.
// PRE: Normalize has been called
// POST: Returns nil if valid, error otherwise
func (a *Announcement) Validate() error {
	if a.Fecha == "" || a.Hora == "" || a.Location == "" || a.MapsLink == "" {
		return ErrMissingFields
	}
	if _, err := a.date(); err != nil {
		return ErrInvalidFecha
	}
	if _, err := time.Parse("15:04", a.Hora); err != nil || len(a.Hora) != 5 {
		return ErrInvalidHora
	}
	u, err := url.Parse(a.MapsLink)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidMapsLink
	}
	return nil
}

// LongDate renders Fecha as "01 de Marzo".
// PRE: Validate returned nil
func (a *Announcement) LongDate() string {
	d, err := a.date()
	if err != nil {
		return a.Fecha
	}
	return fmt.Sprintf("%02d de %s", d.Day(), months[d.Month()-1])
}

// TimeOfDay renders Hora on a 12-hour clock, e.g. "07:00 am" or "02:30 pm".
// PRE: Validate returned nil
func (a *Announcement) TimeOfDay() string {
	t, err := time.Parse("15:04", a.Hora)
	if err != nil {
		return a.Hora
	}
	return t.Format("03:04") + " " + strings.ToLower(t.Format("PM"))
}

// date parses Fecha against a leap year so 29-02 is accepted.
func (a *Announcement) date() (time.Time, error) {
	if len(a.Fecha) != 5 {
		return time.Time{}, ErrInvalidFecha
	}
	return time.Parse("02-01-2006", a.Fecha+"-2024")
}
