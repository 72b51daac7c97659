package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	"bogoninja/internal/adapters/http/middleware"
	"bogoninja/internal/application/orchestrators"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// maxBodyBytes caps every request body.
const maxBodyBytes = 64 << 10

// Client-facing messages.
const (
	msgInternal         = "Error interno del servidor"
	msgMethodNotAllowed = "Método no permitido"
	msgRouteNotFound    = "Ruta no encontrada"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	internalErrorMessage(w, err, msgInternal)
}

func internalErrorMessage(w http.ResponseWriter, err error, msg string) {
	slog.Error("internal_error", "error", err.Error())
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg})
}

// methodNotAllowed answers 405 with the Allow header set.
func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: msgMethodNotAllowed})
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// formBinder is implemented by request bodies that also accept form posts.
type formBinder interface {
	bindForm(form url.Values)
}

func isFormRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}

// decodeBody reads a JSON or form body into v, bounded by maxBodyBytes.
func decodeBody(w http.ResponseWriter, r *http.Request, v formBinder) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if isFormRequest(r) {
		if err := r.ParseForm(); err != nil {
			return err
		}
		v.bindForm(r.PostForm)
		return nil
	}
	return strictDecode(r, v)
}

// --- Contact ---

type contactRequest struct {
	Name       string `json:"name"`
	Improve    string `json:"improve"`
	Experience string `json:"experience"`
	Email      string `json:"email"`
	Location   string `json:"location"`
}

func (c *contactRequest) bindForm(form url.Values) {
	c.Name = form.Get("name")
	c.Improve = form.Get("improve")
	c.Experience = form.Get("experience")
	c.Email = form.Get("email")
	c.Location = form.Get("location")
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type cooldownResponse struct {
	Error            string `json:"error"`
	RemainingMinutes int    `json:"remainingMinutes"`
}

// handleContact handles POST /api/contact
func handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var body contactRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Datos del formulario inválidos"})
		return
	}

	input := orchestrators.SubmitContactInput{
		Name:       body.Name,
		Improve:    body.Improve,
		Experience: body.Experience,
		Email:      body.Email,
		Location:   body.Location,
		ClientIP:   middleware.ClientIP(r),
	}
	deps := orchestrators.SubmitContactDeps{
		RegistrantStore: stores.RegistrantStore,
		Notifier:        notifier,
		Now:             timeNow,
	}

	result, err := orchestrators.ExecuteSubmitContact(r.Context(), input, deps)
	switch {
	case errors.Is(err, orchestrators.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Datos del formulario incompletos o inválidos"})
	case errors.Is(err, orchestrators.ErrCooldownActive):
		writeJSON(w, http.StatusTooManyRequests, cooldownResponse{
			Error:            fmt.Sprintf("Debes esperar %d minuto(s) para actualizar tus datos", result.RemainingMinutes),
			RemainingMinutes: result.RemainingMinutes,
		})
	case err != nil:
		internalErrorMessage(w, err, "Error interno del servidor. Por favor intenta más tarde.")
	case result.Created:
		writeJSON(w, http.StatusCreated, successResponse{Success: true, Message: "¡Registro creado exitosamente!"})
	default:
		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "¡Datos actualizados correctamente!"})
	}
}

// --- Misc ---

// handleVersion handles GET /api/version
func handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"version": appVersion, "author": "AzanoRivers"})
}

// handleCSRFToken handles GET /api/csrf, giving form clients a token to post back.
func handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": csrf.Token(r)})
}

// handleAPINotFound answers every unknown /api/ path.
func handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: msgRouteNotFound})
}
