package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"portfolio/internal/adapters/storage"
	"portfolio/internal/application/orchestrators"
	"portfolio/internal/application/projections"
	"portfolio/internal/domain/message"
	"portfolio/internal/domain/record"
)

const maxContactBody = 64 << 10

// internalError logs the real error and returns a generic 500 to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode_error", "error", err)
	}
}

// handleHealth handles GET /healthz by listing one collection.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.opts.Store.List(r.Context(), record.Projects); err != nil {
		slog.Warn("health_event", "event", "store_unreachable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePortfolio handles GET /api/portfolio for the public site.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	res, err := projections.GetPortfolio(r.Context(), projections.GetPortfolioDeps{Store: s.opts.Store})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func isContactValidation(err error) bool {
	return errors.Is(err, message.ErrEmptyName) ||
		errors.Is(err, message.ErrInvalidEmail) ||
		errors.Is(err, message.ErrEmptyBody) ||
		errors.Is(err, message.ErrFieldTooLong)
}

// handleContact handles POST /api/contact. It accepts JSON or a urlencoded form.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)

	var req contactRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := strictDecode(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form body"})
			return
		}
		req = contactRequest{
			Name:    r.PostForm.Get("name"),
			Email:   r.PostForm.Get("email"),
			Subject: r.PostForm.Get("subject"),
			Message: r.PostForm.Get("message"),
		}
	}

	id, err := orchestrators.ExecuteSubmitContact(r.Context(), orchestrators.SubmitContactInput(req), orchestrators.SubmitContactDeps{
		Messages: storage.NewRepository[message.Message](s.opts.Store, record.Messages),
		Sender:   s.opts.Sender,
		NotifyTo: s.opts.NotifyTo,
		Now:      s.opts.Now,
	})
	if isContactValidation(err) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":      id,
		"message": "Message sent successfully! I'll get back to you soon.",
	})
}
