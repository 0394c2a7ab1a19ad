package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"portfolio/internal/adapters/http/middleware"
	"portfolio/internal/application/dashboard"
)

const (
	flashCookieName    = "portfolio_flash"
	rememberCookieName = "portfolio_remember"
	rememberFor        = 30 * 24 * time.Hour
)

// cookieJar signs the flash and remember-me cookies.
type cookieJar struct {
	codec *securecookie.SecureCookie
}

func newCookieJar(hashKey []byte) *cookieJar {
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(int(rememberFor.Seconds()))
	return &cookieJar{codec: codec}
}

func (j *cookieJar) set(w http.ResponseWriter, name string, value any, maxAge time.Duration) error {
	encoded, err := j.codec.Encode(name, value)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    encoded,
		Path:     "/admin",
		HttpOnly: true,
		Secure:   middleware.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})
	return nil
}

func (j *cookieJar) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/admin",
		HttpOnly: true,
		Secure:   middleware.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (j *cookieJar) get(r *http.Request, name string, dst any) bool {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return false
	}
	return j.codec.Decode(name, c.Value, dst) == nil
}

// setFlash carries a notification across the post/redirect/get hop.
func (j *cookieJar) setFlash(w http.ResponseWriter, n *dashboard.Notification) {
	if n == nil {
		return
	}
	if err := j.set(w, flashCookieName, *n, time.Minute); err != nil {
		slog.Warn("flash_not_set", "error", err)
	}
}

// popFlash returns and clears the pending notification, if any.
func (j *cookieJar) popFlash(w http.ResponseWriter, r *http.Request) *dashboard.Notification {
	var n dashboard.Notification
	if !j.get(r, flashCookieName, &n) {
		return nil
	}
	j.clear(w, flashCookieName)
	return &n
}

func (j *cookieJar) remember(w http.ResponseWriter, email string) {
	if err := j.set(w, rememberCookieName, email, rememberFor); err != nil {
		slog.Warn("remember_cookie_not_set", "error", err)
	}
}

func (j *cookieJar) remembered(r *http.Request) string {
	var email string
	if !j.get(r, rememberCookieName, &email) {
		return ""
	}
	return email
}
