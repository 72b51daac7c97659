package web

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/csrf"

	"bogoninja/internal/application/orchestrators"
)

//go:embed templates/*.html
var pageFS embed.FS

var unsubscribePage = template.Must(template.ParseFS(pageFS, "templates/unsubscribe.html"))

const msgUnsubscribed = "Te has desuscrito correctamente de las notificaciones de entrenamiento"

type unsubscribeRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (u *unsubscribeRequest) bindForm(form url.Values) {
	u.Email = form.Get("email")
	u.Token = form.Get("token")
}

type unsubscribeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// unsubscribeOutcome maps an unsubscribe result to a status and client message.
func unsubscribeOutcome(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, msgUnsubscribed
	case errors.Is(err, orchestrators.ErrUnsubscribeMissingFields):
		return http.StatusBadRequest, "Email y token son requeridos"
	case errors.Is(err, orchestrators.ErrInvalidUnsubscribeToken):
		return http.StatusForbidden, "Token inválido o expirado"
	case errors.Is(err, orchestrators.ErrRegistrantNotFound):
		return http.StatusNotFound, "No se encontró el registro"
	default:
		slog.Error("internal_error", "error", err.Error())
		return http.StatusInternalServerError, "Error interno del servidor. Por favor intenta más tarde."
	}
}

func runUnsubscribe(r *http.Request, email, token string) error {
	return orchestrators.ExecuteUnsubscribe(r.Context(), orchestrators.UnsubscribeInput{
		Email: email,
		Token: token,
	}, orchestrators.UnsubscribeDeps{
		RegistrantStore: stores.RegistrantStore,
		Tokens:          unsubscribeSigner,
	})
}

// handleUnsubscribeAPI handles POST /api/unsubscribe
func handleUnsubscribeAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, unsubscribeResponse{Error: msgMethodNotAllowed})
		return
	}

	var body unsubscribeRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, unsubscribeResponse{Error: "Datos inválidos"})
		return
	}

	status, msg := unsubscribeOutcome(runUnsubscribe(r, body.Email, body.Token))
	if status != http.StatusOK {
		writeJSON(w, status, unsubscribeResponse{Error: msg})
		return
	}
	writeJSON(w, status, unsubscribeResponse{Success: true, Message: msg})
}

// unsubscribeView is the data of the unsubscribe page.
type unsubscribeView struct {
	Email     string
	Token     string
	CSRFField template.HTML
	Confirm   bool // show the confirmation form
	Done      bool
	Message   string
}

// handleUnsubscribePage handles GET (confirmation form) and POST (unsubscribe) for /unsubscribe.
// GET never deletes: link scanners in mail clients follow GET links.
func handleUnsubscribePage(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		email := r.URL.Query().Get("email")
		token := r.URL.Query().Get("token")
		view := unsubscribeView{Email: email, Token: token, CSRFField: csrf.TemplateField(r)}

		switch {
		case email == "" || token == "":
			_, view.Message = unsubscribeOutcome(orchestrators.ErrUnsubscribeMissingFields)
			renderUnsubscribePage(w, http.StatusBadRequest, view)
		case !unsubscribeSigner.Verify(email, token):
			_, view.Message = unsubscribeOutcome(orchestrators.ErrInvalidUnsubscribeToken)
			renderUnsubscribePage(w, http.StatusForbidden, view)
		default:
			view.Confirm = true
			renderUnsubscribePage(w, http.StatusOK, view)
		}

	case http.MethodPost:
		var body unsubscribeRequest
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			renderUnsubscribePage(w, http.StatusBadRequest, unsubscribeView{Message: "Datos inválidos"})
			return
		}
		body.bindForm(r.PostForm)

		status, msg := unsubscribeOutcome(runUnsubscribe(r, body.Email, body.Token))
		renderUnsubscribePage(w, status, unsubscribeView{Email: body.Email, Done: status == http.StatusOK, Message: msg})

	default:
		w.Header().Set("Allow", "GET, POST")
		renderUnsubscribePage(w, http.StatusMethodNotAllowed, unsubscribeView{Message: msgMethodNotAllowed})
	}
}

func renderUnsubscribePage(w http.ResponseWriter, status int, view unsubscribeView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := unsubscribePage.Execute(w, view); err != nil {
		slog.Error("template_render_failed", "template", "unsubscribe.html", "error", err)
	}
}
