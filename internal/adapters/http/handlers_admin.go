package web

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"

	"portfolio/internal/adapters/http/middleware"
	"portfolio/internal/application/dashboard"
	"portfolio/internal/application/orchestrators"
	"portfolio/internal/domain/about"
	"portfolio/internal/domain/export"
)

// pageData is the model for every full-page template.
type pageData struct {
	Title      string
	Email      string
	CSRFField  template.HTML
	Sections   []dashboard.Section
	Page       dashboard.Page
	List       template.HTML
	Categories []string
	Notice     *dashboard.Notification
	Login      loginForm
}

func (s *Server) newPageData(r *http.Request, title string) pageData {
	data := pageData{
		Title:      title,
		CSRFField:  csrf.TemplateField(r),
		Sections:   dashboard.Sections,
		Categories: about.CategoryKeys,
	}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		data.Email = sess.Email
	}
	return data
}

func sectionParam(r *http.Request) dashboard.Section {
	return dashboard.Section(chi.URLParam(r, "section"))
}

// sectionError maps controller errors that are not backend failures.
func sectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dashboard.ErrUnknownSection):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, dashboard.ErrUnsupported):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		internalError(w, err)
	}
}

// renderDashboard writes the dashboard page. A pending flash is shown when
// the page has no notice of its own.
func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, status int, page dashboard.Page) {
	flash := s.cookies.popFlash(w, r)
	if page.Notice == nil {
		page.Notice = flash
	}

	data := s.newPageData(r, page.Section.Title())
	data.Page = page
	if c := page.Section.Collection(); c != "" && !c.IsSingleton() {
		list, err := s.view.Fragment(c, page.Items)
		if err != nil {
			slog.Error("render_error", "section", page.Section, "error", err)
		}
		data.List = list
	}
	s.view.Page(w, status, "dashboard", data)
}

// redirectWithFlash finishes a successful post with post/redirect/get.
func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, section dashboard.Section, n *dashboard.Notification) {
	s.cookies.setFlash(w, n)
	http.Redirect(w, r, "/admin/"+string(section), http.StatusSeeOther)
}

func succeeded(p dashboard.Page) bool {
	return p.Notice != nil && p.Notice.Kind == dashboard.NoticeSuccess && p.Modal == nil && !p.Errors.Any()
}

// handleSection handles GET /admin/{section}.
// ?new=1 opens the add modal, ?edit=<id> the edit modal, ?confirm=<id> the delete prompt.
func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	section := sectionParam(r)
	q := r.URL.Query()

	var page dashboard.Page
	var err error
	switch {
	case q.Get("edit") != "":
		page, err = s.dash.OpenModal(r.Context(), section, q.Get("edit"))
	case q.Get("new") != "":
		page, err = s.dash.OpenModal(r.Context(), section, "")
	case q.Get("confirm") != "":
		page, err = s.dash.Delete(r.Context(), section, q.Get("confirm"), false)
	default:
		page, err = s.dash.Show(r.Context(), section)
	}
	if err != nil {
		sectionError(w, err)
		return
	}
	s.renderDashboard(w, r, http.StatusOK, page)
}

// handleSubmit handles POST /admin/{section} for the modal and singleton forms.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	section := sectionParam(r)
	page, err := s.dash.Submit(r.Context(), section, r.PostForm.Get("edit_id"), r.PostForm)
	if err != nil {
		sectionError(w, err)
		return
	}
	if succeeded(page) {
		s.redirectWithFlash(w, r, section, page.Notice)
		return
	}
	status := http.StatusOK
	if page.Errors.Any() || (page.Modal != nil && page.Modal.Errors.Any()) {
		status = http.StatusUnprocessableEntity
	}
	s.renderDashboard(w, r, status, page)
}

// handleDelete handles POST /admin/{section}/{id}/delete. Without confirmed=1
// it only renders the confirmation prompt.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	section := sectionParam(r)
	confirmed := r.PostForm.Get("confirmed") == "1"
	page, err := s.dash.Delete(r.Context(), section, chi.URLParam(r, "id"), confirmed)
	if err != nil {
		sectionError(w, err)
		return
	}
	if confirmed && succeeded(page) {
		s.redirectWithFlash(w, r, section, page.Notice)
		return
	}
	s.renderDashboard(w, r, http.StatusOK, page)
}

// handleToggleRead handles POST /admin/messages/{id}/toggle-read.
func (s *Server) handleToggleRead(w http.ResponseWriter, r *http.Request) {
	if sectionParam(r) != dashboard.Messages {
		http.NotFound(w, r)
		return
	}
	page, err := s.dash.ToggleRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		sectionError(w, err)
		return
	}
	if succeeded(page) {
		s.redirectWithFlash(w, r, dashboard.Messages, page.Notice)
		return
	}
	s.renderDashboard(w, r, http.StatusOK, page)
}

// handleFragment handles GET /admin/fragments/{section}: only the list markup.
func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	section := sectionParam(r)
	items, err := s.dash.Items(r.Context(), section)
	if errors.Is(err, dashboard.ErrUnknownSection) || errors.Is(err, dashboard.ErrUnsupported) {
		sectionError(w, err)
		return
	}
	if err != nil {
		slog.Warn("dashboard_event", "event", "fragment_load_failed", "section", section, "error", err)
		http.Error(w, "Error loading data: "+err.Error(), http.StatusBadGateway)
		return
	}
	html, err := s.view.Fragment(section.Collection(), items)
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// handleExport handles GET /admin/export: the whole dataset as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := orchestrators.ExecuteExport(r.Context(), orchestrators.ExportDeps{Store: s.opts.Store})
	var body []byte
	if err == nil {
		body, err = doc.ToJSON()
	}
	if err != nil {
		slog.Warn("export_event", "event", "export_failed", "error", err)
		s.redirectWithFlash(w, r, dashboard.Overview, &dashboard.Notification{
			Kind: dashboard.NoticeError,
			Text: "Error exporting data: " + err.Error(),
		})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Write(body)
}

// handlePerf handles GET /admin/perf?window=15m: timing aggregates as JSON.
func (s *Server) handlePerf(w http.ResponseWriter, r *http.Request) {
	window := time.Hour
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			http.Error(w, "window must be a positive duration", http.StatusBadRequest)
			return
		}
		window = d
	}
	writeJSON(w, http.StatusOK, s.opts.Collector.Snapshot(s.opts.Now().Add(-window), 10))
}
