package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/compumarket/catalogadmin/internal/form"
	"github.com/compumarket/catalogadmin/internal/imageset"
	"github.com/compumarket/catalogadmin/internal/models"
	"github.com/compumarket/catalogadmin/internal/preview"
	"github.com/compumarket/catalogadmin/internal/storage"
)

type Handler struct {
	sessionStore *storage.SessionStore
	api          form.API
	previews     *preview.Pool
}

// SessionView is the JSON shape of an open form session
type SessionView struct {
	ID            string               `json:"id"`
	ProductID     models.FlexInt       `json:"product_id,omitempty"`
	Editing       bool                 `json:"editing"`
	Product       models.Product       `json:"product"`
	Subcategories []models.Subcategory `json:"subcategories,omitempty"`
	Images        []imageset.Entry     `json:"images"`
	Removed       []imageset.Entry     `json:"removed"`
	Warnings      []string             `json:"warnings,omitempty"`
}

func New(api form.API, previews *preview.Pool, sessions *storage.SessionStore) *Handler {
	return &Handler{
		sessionStore: sessions,
		api:          api,
		previews:     previews,
	}
}

// Routes wires every console endpoint
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/sessions", h.HandleSessions)
	mux.HandleFunc("POST /api/sessions", h.HandleOpenSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.HandleSessionDetail)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.HandleCancelSession)
	mux.HandleFunc("PUT /api/sessions/{id}/product", h.HandleProductFields)
	mux.HandleFunc("POST /api/sessions/{id}/images", h.HandleAddImages)
	mux.HandleFunc("DELETE /api/sessions/{id}/images/{index}", h.HandleRemoveImage)
	mux.HandleFunc("POST /api/sessions/{id}/submit", h.HandleSubmit)
	mux.HandleFunc("GET /previews/{handle}", h.HandlePreview)
	mux.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return mux
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	h.writeJSON(w, code, map[string]string{"error": message})
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, r *http.Request) (*storage.Session, bool) {
	session, exists := h.sessionStore.Get(r.PathValue("id"))
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

// view renders a session; the caller holds session.Mu
func (h *Handler) view(session *storage.Session, warnings []string) SessionView {
	f := session.Form
	return SessionView{
		ID:            session.ID,
		ProductID:     f.ID(),
		Editing:       f.Editing(),
		Product:       f.Product,
		Subcategories: f.Subcategories(),
		Images:        previewLinks(f.Images.Entries()),
		Removed:       previewLinks(f.Images.Removed()),
		Warnings:      warnings,
	}
}

// previewLinks points local preview handles at the /previews endpoint
func previewLinks(entries []imageset.Entry) []imageset.Entry {
	for i := range entries {
		if strings.HasPrefix(entries[i].PreviewURL, preview.Scheme) {
			entries[i].PreviewURL = "/previews/" + strings.TrimPrefix(entries[i].PreviewURL, preview.Scheme)
		}
	}
	return entries
}
