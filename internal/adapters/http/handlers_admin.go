package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"bogoninja/internal/application/orchestrators"
	"bogoninja/internal/application/projections"
	"bogoninja/internal/domain/announcement"
)

// handleAdminNinjas handles GET /api/admin/ninjas
func handleAdminNinjas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	result, err := projections.QueryGetRegistrantList(r.Context(), projections.GetRegistrantListDeps{
		RegistrantStore: stores.RegistrantStore,
	})
	if err != nil {
		internalErrorMessage(w, err, "Error consultando ninjas")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type sessionEmailRequest struct {
	Fecha    string `json:"fecha"`
	Hora     string `json:"hora"`
	Location string `json:"location"`
	MapsLink string `json:"mapsLink"`
}

func (s *sessionEmailRequest) bindForm(form url.Values) {
	s.Fecha = form.Get("fecha")
	s.Hora = form.Get("hora")
	s.Location = form.Get("location")
	s.MapsLink = form.Get("mapsLink")
}

type sessionEmailResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Sent    int      `json:"sent"`
	Total   int      `json:"total"`
	Errors  []string `json:"errors,omitempty"`
}

// announcementMessages maps validation failures to client messages.
var announcementMessages = map[error]string{
	announcement.ErrMissingFields:   "Todos los campos son requeridos",
	announcement.ErrInvalidFecha:    "La fecha debe tener el formato DD-MM",
	announcement.ErrInvalidHora:     "La hora debe tener el formato HH:MM",
	announcement.ErrInvalidMapsLink: "El link del mapa debe ser una URL http(s)",
}

// handleSessionEmail handles POST /api/admin/session-email
func handleSessionEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var body sessionEmailRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Todos los campos son requeridos"})
		return
	}

	input := announcement.Announcement{
		Fecha:    body.Fecha,
		Hora:     body.Hora,
		Location: body.Location,
		MapsLink: body.MapsLink,
	}
	deps := orchestrators.SendSessionEmailDeps{
		RegistrantStore: stores.RegistrantStore,
		Sender:          emailSender,
		Renderer:        emailRenderer,
		Signer:          unsubscribeSigner,
		BaseURL:         baseURL,
	}

	result, err := orchestrators.ExecuteSendSessionEmail(r.Context(), input, deps)
	if errors.Is(err, orchestrators.ErrInvalidInput) {
		msg := "Todos los campos son requeridos"
		for target, m := range announcementMessages {
			if errors.Is(err, target) {
				msg = m
			}
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
		return
	}
	if errors.Is(err, orchestrators.ErrNoRegistrants) {
		writeJSON(w, http.StatusOK, sessionEmailResponse{Error: "No hay ninjas registrados"})
		return
	}
	if err != nil {
		internalErrorMessage(w, err, "Error enviando emails")
		return
	}

	writeJSON(w, http.StatusOK, sessionEmailResponse{
		Success: len(result.Errors) == 0,
		Sent:    result.Sent,
		Total:   result.Total,
		Errors:  result.Errors,
	})
}

// defaultMetricsWindow is the lookback of /api/admin/metrics without ?minutes.
const defaultMetricsWindow = 60 * time.Minute

// handleAdminMetrics handles GET /api/admin/metrics
func handleAdminMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if perfCollector == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Métricas no disponibles"})
		return
	}

	window := defaultMetricsWindow
	if v := r.URL.Query().Get("minutes"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "minutes debe ser un entero positivo"})
			return
		}
		window = time.Duration(minutes) * time.Minute
	}

	writeJSON(w, http.StatusOK, perfCollector.Snapshot(timeNow().Add(-window), 10))
}
