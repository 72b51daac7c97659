package web

import (
	"net/http"
	"time"

	"bogoninja/internal/adapters/email"
	"bogoninja/internal/adapters/email/templates"
	"bogoninja/internal/adapters/http/middleware"
	"bogoninja/internal/adapters/http/perf"
	accountStore "bogoninja/internal/adapters/storage/account"
	registrantStore "bogoninja/internal/adapters/storage/registrant"
	"bogoninja/internal/application/orchestrators"
	"bogoninja/internal/domain/session"
	"bogoninja/internal/domain/unsubscribe"
)

// Stores holds all storage dependencies.
type Stores struct {
	RegistrantStore registrantStore.Store
	AccountStore    accountStore.Store
}

// Options carries everything NewMux wires into the handlers.
type Options struct {
	StaticDir      string
	Sessions       *session.Manager
	Unsubscribe    *unsubscribe.Signer
	Sender         email.Sender
	Renderer       *templates.Renderer
	Notifier       orchestrators.ContactNotifier // nil sends nothing after a submission
	BaseURL        string
	CSRFKey        []byte // 32 bytes
	SecureCookies  bool
	TrustedOrigins []string
	RateLimit      int // requests per second per client; 0 uses RateLimitPerSecond
	SlowRequestMs  int
	Collector      *perf.Collector
	Version        string
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session manager (set by NewMux)
var sessions *session.Manager

// Global unsubscribe signer (set by NewMux)
var unsubscribeSigner *unsubscribe.Signer

// Email dependencies (set by NewMux)
var (
	emailSender   email.Sender
	emailRenderer *templates.Renderer
	notifier      orchestrators.ContactNotifier
	baseURL       string
)

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// appVersion is reported by /api/version.
var appVersion = "dev"

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, o Options) http.Handler {
	stores = s
	sessions = o.Sessions
	unsubscribeSigner = o.Unsubscribe
	emailSender = o.Sender
	emailRenderer = o.Renderer
	notifier = o.Notifier
	baseURL = o.BaseURL
	perfCollector = o.Collector
	if o.Version != "" {
		appVersion = o.Version
	}
	middleware.SecureCookies = o.SecureCookies

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(o.StaticDir)))
	registerRoutes(mux)

	rate := o.RateLimit
	if rate <= 0 {
		rate = RateLimitPerSecond
	}
	limiter := middleware.NewRateLimiter(rate, time.Second)

	// Apply middleware: Timing -> SecurityHeaders -> RateLimit -> Auth -> CSRF -> Mux
	return middleware.Chain(mux,
		middleware.CSRF(o.CSRFKey, o.SecureCookies, o.TrustedOrigins),
		middleware.Auth(o.Sessions),
		middleware.RateLimit(limiter),
		middleware.SecurityHeaders,
		middleware.Timing(o.Collector, o.SlowRequestMs),
	)
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/contact", handleContact)
	mux.HandleFunc("/api/auth/login", handleLogin)
	mux.HandleFunc("/api/auth/logout", handleLogout)
	mux.HandleFunc("/api/admin/ninjas", handleAdminNinjas)
	mux.HandleFunc("/api/admin/session-email", handleSessionEmail)
	mux.HandleFunc("/api/admin/metrics", handleAdminMetrics)
	mux.HandleFunc("/api/unsubscribe", handleUnsubscribeAPI)
	mux.HandleFunc("/api/version", handleVersion)
	mux.HandleFunc("/api/csrf", handleCSRFToken)
	mux.HandleFunc("/api/", handleAPINotFound)
	mux.HandleFunc("/unsubscribe", handleUnsubscribePage)
}
