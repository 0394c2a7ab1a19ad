package web

import (
	"crypto/rand"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"portfolio/internal/adapters/email"
	"portfolio/internal/adapters/http/middleware"
	"portfolio/internal/adapters/http/perf"
	"portfolio/internal/application/dashboard"
	"portfolio/internal/domain/record"
)

//go:embed static
var staticFS embed.FS

// ErrBadKey is returned for secrets that are not 64 hex characters.
var ErrBadKey = errors.New("key must be 64 hex characters (32 bytes)")

// LoadKey decodes a hex-encoded 32-byte secret. An empty value is only
// allowed outside production, where a random per-process key is generated.
func LoadKey(name, hexKey string, production bool) ([]byte, error) {
	if hexKey != "" {
		key, err := hex.DecodeString(hexKey)
		if err != nil || len(key) != 32 {
			return nil, fmt.Errorf("%s: %w", name, ErrBadKey)
		}
		return key, nil
	}
	if production {
		return nil, fmt.Errorf("%s is required in production", name)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate %s: %w", name, err)
	}
	slog.Warn("config_event", "event", "random_key", "name", name, "detail", "sessions won't survive restart")
	return key, nil
}

// Options configures the HTTP server.
type Options struct {
	Store              record.Store
	Sender             email.Sender
	NotifyTo           string
	Collector          *perf.Collector
	CSRFKey            []byte
	CookieKey          []byte
	SessionTTL         time.Duration
	SlowRequest        time.Duration
	RateLimitPerMinute int
	Secure             bool
	TrustedOrigins     []string
	Now                func() time.Time
}

// Server owns the dashboard controller, sessions and renderer.
type Server struct {
	opts     Options
	sessions *middleware.SessionStore
	limiter  *middleware.RateLimiter
	dash     *dashboard.Controller
	view     *Renderer
	cookies  *cookieJar

	// loginLimiter is separate so contact traffic from a shared address
	// cannot lock the owner out of the sign-in form.
	loginLimiter *middleware.RateLimiter
}

// NewServer validates opts and builds a Server. Call Close when done.
func NewServer(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("web: store is required")
	}
	if len(opts.CSRFKey) != 32 || len(opts.CookieKey) != 32 {
		return nil, fmt.Errorf("web: csrf and cookie keys: %w", ErrBadKey)
	}
	if opts.Sender == nil {
		opts.Sender = email.NewNoopSender()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Collector == nil {
		opts.Collector = perf.NewCollector(perf.DefaultRingSize)
	}
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = 5
	}
	view, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	middleware.SecureCookies = opts.Secure
	return &Server{
		opts:         opts,
		sessions:     middleware.NewSessionStore(opts.SessionTTL),
		limiter:      middleware.NewRateLimiter(opts.RateLimitPerMinute, time.Minute),
		loginLimiter: middleware.NewRateLimiter(opts.RateLimitPerMinute, time.Minute),
		dash:         dashboard.New(opts.Store),
		view:         view,
		cookies:      newCookieJar(opts.CookieKey),
	}, nil
}

// Close stops background work.
func (s *Server) Close() {
	s.limiter.Close()
	s.loginLimiter.Close()
}

// SweepSessions drops expired sessions.
func (s *Server) SweepSessions() int {
	return s.sessions.Sweep()
}

// Handler wires the routes:
//
//	/healthz                       backend ping
//	/api/portfolio, /api/contact   public JSON API
//	/admin/login                   sign-in form (public)
//	/admin/*                       dashboard behind the session gate and CSRF
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/overview", http.StatusSeeOther)
	})
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/portfolio", s.handlePortfolio)
		r.With(middleware.RateLimit(s.limiter)).Post("/contact", s.handleContact)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.CSRF(s.opts.CSRFKey, s.opts.Secure, s.opts.TrustedOrigins))
		r.Get("/login", s.handleLoginPage)
		r.With(middleware.RateLimit(s.loginLimiter)).Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/admin/overview", http.StatusSeeOther)
			})
			r.Post("/logout", s.handleLogout)
			r.Get("/export", s.handleExport)
			r.Get("/perf", s.handlePerf)
			r.Get("/fragments/{section}", s.handleFragment)
			r.Get("/{section}", s.handleSection)
			r.Post("/{section}", s.handleSubmit)
			r.Post("/{section}/{id}/delete", s.handleDelete)
			r.Post("/{section}/{id}/toggle-read", s.handleToggleRead)
		})
	})

	return middleware.Chain(r,
		middleware.Auth(s.sessions),
		middleware.SecurityHeaders,
		middleware.Timing(s.opts.Collector, s.opts.SlowRequest),
	)
}
