package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	accountStore "bogoninja/internal/adapters/storage/account"
	"bogoninja/internal/domain/account"
	"bogoninja/internal/domain/session"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByCorreo(ctx context.Context, correo string) (account.Account, error)
}

// SessionSigner issues session tokens.
type SessionSigner interface {
	Sign(s session.Session) (string, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Correo   string
	Password string
}

// LoginResult carries the signed token of a successful login.
type LoginResult struct {
	Token   string
	Session session.Session
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	Sessions     SessionSigner
}

var (
	ErrMissingCredentials = errors.New("correo and password are required")
	ErrInvalidCredentials = errors.New("invalid correo or password")
)

// decoyCredential is verified when the correo is unknown so both failure
// paths cost one scrypt derivation.
const decoyCredential = "00000000000000000000000000000000:00"

// ExecuteLogin checks the credentials and signs a session token.
// PRE: none
// POST: Returns a token on success; unknown correo and wrong password give the same error
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	correo := strings.ToLower(strings.TrimSpace(input.Correo))
	if correo == "" || input.Password == "" {
		return LoginResult{}, ErrMissingCredentials
	}

	acct, err := deps.AccountStore.GetByCorreo(ctx, correo)
	if err != nil && !errors.Is(err, accountStore.ErrNotFound) {
		return LoginResult{}, err
	}
	if err != nil {
		account.VerifyPassword(input.Password, decoyCredential)
		slog.Info("auth_event", "event", "login_failed", "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		slog.Info("auth_event", "event", "login_failed", "admin_id", acct.ID, "reason", "wrong_password")
		return LoginResult{}, ErrInvalidCredentials
	}

	sess := session.Session{AdminID: acct.ID, Correo: acct.Correo}
	token, err := deps.Sessions.Sign(sess)
	if err != nil {
		return LoginResult{}, err
	}

	slog.Info("auth_event", "event", "login_success", "admin_id", acct.ID)
	return LoginResult{Token: token, Session: sess}, nil
}

// SessionRevoker invalidates issued tokens.
type SessionRevoker interface {
	Revoke(token string)
}

// ExecuteLogout revokes token so it stops verifying before its expiry.
// POST: An empty or invalid token is a no-op
func ExecuteLogout(token string, sessions SessionRevoker) {
	if token == "" {
		return
	}
	sessions.Revoke(token)
	slog.Info("auth_event", "event", "logout")
}
