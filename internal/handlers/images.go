package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/compumarket/catalogadmin/internal/imageset"
)

const (
	maxUploadBytes = 64 << 20
	maxMemoryBytes = 32 << 20
)

func (h *Handler) HandleAddImages(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxMemoryBytes); err != nil {
		h.writeError(w, "Failed to read upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		h.writeError(w, "No files in upload", http.StatusBadRequest)
		return
	}

	files := make([]imageset.File, 0, len(headers))
	var warnings []string
	for _, header := range headers {
		fh, err := header.Open()
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(fh)
		fh.Close()
		if err != nil {
			h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusBadRequest)
			return
		}

		f := imageset.NewFile(header.Filename, data)
		if warning := f.Advisory(); warning != "" {
			warnings = append(warnings, warning)
		}
		files = append(files, f)
	}

	if !h.lockEditable(w, session) {
		return
	}
	defer session.Mu.Unlock()
	session.Form.Images.AddFiles(files...)
	h.writeJSON(w, http.StatusOK, h.view(session, warnings))
}

func (h *Handler) HandleRemoveImage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.writeError(w, "Invalid image index", http.StatusBadRequest)
		return
	}

	if !h.lockEditable(w, session) {
		return
	}
	defer session.Mu.Unlock()
	// Stale indexes from the browser are ignored.
	session.Form.Images.RemoveAt(index)
	h.writeJSON(w, http.StatusOK, h.view(session, nil))
}

func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	img, ok := h.previews.Open(r.PathValue("handle"))
	if !ok {
		h.writeError(w, "Preview not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := w.Write(img.Data); err != nil {
		slog.Error("Unable to write preview", "err", err)
	}
}
