package web

import (
	"errors"
	"log/slog"
	"net/http"

	"portfolio/internal/adapters/http/middleware"
	"portfolio/internal/adapters/storage"
	"portfolio/internal/application/dashboard"
	"portfolio/internal/application/orchestrators"
	"portfolio/internal/domain/account"
	"portfolio/internal/domain/record"
)

// loginForm is the state of the sign-in form between submissions.
type loginForm struct {
	Email    string
	Error    string
	Remember bool
}

var signInMessages = map[orchestrators.SignInErrorKind]string{
	orchestrators.SignInInvalidInput:    "Please enter both email and password.",
	orchestrators.SignInUserNotFound:    "No account found with this email address.",
	orchestrators.SignInWrongPassword:   "Incorrect password. Please try again.",
	orchestrators.SignInTooManyRequests: "Too many failed attempts. Please try again later.",
	orchestrators.SignInUserDisabled:    "This account has been disabled. Contact support.",
	orchestrators.SignInUnavailable:     "Login failed. Please check your credentials.",
}

func signInStatus(kind orchestrators.SignInErrorKind) int {
	switch kind {
	case orchestrators.SignInInvalidInput:
		return http.StatusBadRequest
	case orchestrators.SignInTooManyRequests:
		return http.StatusTooManyRequests
	case orchestrators.SignInUserDisabled:
		return http.StatusForbidden
	case orchestrators.SignInUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusUnauthorized
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, form loginForm) {
	data := s.newPageData(r, "Admin Login")
	data.Notice = s.cookies.popFlash(w, r)
	data.Login = form
	s.view.Page(w, status, "login", data)
}

// handleLoginPage handles GET /admin/login.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/admin/overview", http.StatusSeeOther)
		return
	}
	email := s.cookies.remembered(r)
	s.renderLogin(w, r, http.StatusOK, loginForm{Email: email, Remember: email != ""})
}

// handleLogin handles POST /admin/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	form := loginForm{
		Email:    r.PostForm.Get("email"),
		Remember: r.PostForm.Get("remember") != "",
	}

	res, err := orchestrators.ExecuteSignIn(r.Context(), orchestrators.SignInInput{
		Email:    form.Email,
		Password: r.PostForm.Get("password"),
	}, orchestrators.SignInDeps{
		Accounts: storage.NewRepository[account.Account](s.opts.Store, record.Accounts),
		Now:      s.opts.Now,
	})
	if err != nil {
		var sie *orchestrators.SignInError
		if !errors.As(err, &sie) {
			internalError(w, err)
			return
		}
		form.Error = signInMessages[sie.Kind]
		s.renderLogin(w, r, signInStatus(sie.Kind), form)
		return
	}

	token, err := s.sessions.Create(res.AccountID, res.Email)
	if err != nil {
		internalError(w, err)
		return
	}
	if form.Remember {
		middleware.SetSessionCookie(w, token, s.sessions.TTL())
		s.cookies.remember(w, res.Email)
	} else {
		middleware.SetSessionCookie(w, token, 0)
		s.cookies.clear(w, rememberCookieName)
	}
	slog.Info("auth_event", "event", "session_created", "account_id", res.AccountID, "remember", form.Remember)

	s.redirectWithFlash(w, r, dashboard.Overview, &dashboard.Notification{
		Kind: dashboard.NoticeSuccess,
		Text: "Login successful!",
	})
}

// handleLogout handles POST /admin/logout.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		s.sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	slog.Info("auth_event", "event", "logout")
	s.cookies.setFlash(w, &dashboard.Notification{Kind: dashboard.NoticeSuccess, Text: "You have been logged out."})
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}
