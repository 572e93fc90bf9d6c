package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"github.com/compumarket/catalogadmin/internal/catalog"
	"github.com/compumarket/catalogadmin/internal/form"
	"github.com/compumarket/catalogadmin/internal/models"
	"github.com/compumarket/catalogadmin/internal/storage"
)

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessionStore.GetAll()
	sessionList := make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		session.Mu.Lock()
		sessionList = append(sessionList, h.view(session, nil))
		session.Mu.Unlock()
	}
	sort.Slice(sessionList, func(i, j int) bool { return sessionList[i].ID < sessionList[j].ID })
	h.writeJSON(w, http.StatusOK, sessionList)
}

func (h *Handler) HandleOpenSession(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ProductID models.FlexInt `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	f, err := form.Open(r.Context(), h.api, h.previews, request.ProductID)
	if err != nil {
		h.writeAPIError(w, "Failed to open product", err)
		return
	}

	session := h.sessionStore.Add(f)
	slog.Info("Form session opened", "session_id", session.ID, "product_id", request.ProductID)

	session.Mu.Lock()
	defer session.Mu.Unlock()
	h.writeJSON(w, http.StatusCreated, h.view(session, nil))
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	session.Mu.Lock()
	defer session.Mu.Unlock()
	h.writeJSON(w, http.StatusOK, h.view(session, nil))
}

func (h *Handler) HandleCancelSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessionStore.Delete(r.PathValue("id")) {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	slog.Info("Form session cancelled", "session_id", r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// HandleProductFields merges the JSON fields sent into the form's product.
// Fields that are not sent keep their values; changing categoria_id without
// sending subcategoria_id clears the subcategory.
func (h *Handler) HandleProductFields(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.writeError(w, "Failed to read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	var sent map[string]json.RawMessage
	if err := json.Unmarshal(body, &sent); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if !h.lockEditable(w, session) {
		return
	}
	defer session.Mu.Unlock()

	f := session.Form
	updated := f.Product
	if err := json.Unmarshal(body, &updated); err != nil {
		h.writeError(w, "Invalid product fields: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Identity and stored images are not editable through this endpoint.
	updated.ID = f.Product.ID
	updated.Images = f.Product.Images
	updated.FinalPrice = f.Product.FinalPrice

	_, categorySent := sent["categoria_id"]
	_, subcategorySent := sent["subcategoria_id"]
	if categorySent && !subcategorySent && updated.CategoryID != f.Product.CategoryID {
		updated.SubcategoryID = 0
	}
	f.Product = updated

	h.writeJSON(w, http.StatusOK, h.view(session, nil))
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	if !h.lockEditable(w, session) {
		return
	}
	saved, err := session.Form.Submit(r.Context())
	session.Mu.Unlock()

	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": verr.Error(), "fields": verr.Fields})
		return
	case err != nil:
		h.writeAPIError(w, "Failed to save product", err)
		return
	}

	h.sessionStore.Delete(session.ID)
	slog.Info("Form session submitted", "session_id", session.ID, "product_id", saved.ID)
	h.writeJSON(w, http.StatusOK, saved)
}

// lockEditable takes session.Mu unless the form was already submitted. A
// submitted session is about to be removed and refuses further edits.
func (h *Handler) lockEditable(w http.ResponseWriter, session *storage.Session) bool {
	session.Mu.Lock()
	if session.Form.Submitted() {
		session.Mu.Unlock()
		h.writeError(w, "Session already submitted", http.StatusConflict)
		return false
	}
	return true
}

// writeAPIError maps catalog failures onto console responses
func (h *Handler) writeAPIError(w http.ResponseWriter, message string, err error) {
	var apiErr *catalog.APIError
	switch {
	case errors.Is(err, catalog.ErrNotLoggedIn), errors.Is(err, catalog.ErrUnauthorized):
		h.writeError(w, message+": "+err.Error(), http.StatusUnauthorized)
	case errors.Is(err, catalog.ErrNotFound):
		h.writeError(w, message+": "+err.Error(), http.StatusNotFound)
	case errors.As(err, &apiErr) && apiErr.StatusCode < 500:
		h.writeError(w, message+": "+err.Error(), apiErr.StatusCode)
	default:
		h.writeError(w, message+": "+err.Error(), http.StatusBadGateway)
	}
}
