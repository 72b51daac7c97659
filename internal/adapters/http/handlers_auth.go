package web

import (
	"errors"
	"net/http"
	"net/url"

	"bogoninja/internal/adapters/http/middleware"
	"bogoninja/internal/application/orchestrators"
)

type loginRequest struct {
	Correo   string `json:"correo"`
	Password string `json:"password"`
}

func (l *loginRequest) bindForm(form url.Values) {
	l.Correo = form.Get("correo")
	l.Password = form.Get("password")
}

// handleLogin handles POST /api/auth/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var body loginRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Correo y contraseña requeridos"})
		return
	}

	input := orchestrators.LoginInput{Correo: body.Correo, Password: body.Password}
	deps := orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		Sessions:     sessions,
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
	switch {
	case errors.Is(err, orchestrators.ErrMissingCredentials):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Correo y contraseña requeridos"})
		return
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Credenciales inválidas"})
		return
	case err != nil:
		internalError(w, err)
		return
	}

	middleware.SetSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// handleLogout handles POST /api/auth/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		orchestrators.ExecuteLogout(cookie.Value, sessions)
	}

	middleware.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
