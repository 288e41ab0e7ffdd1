package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"manualrag/internal/contextutil"
	"manualrag/internal/extract"
	"manualrag/internal/service"
	"manualrag/internal/storage"
)

// multipartMemory is how much of a multipart body is buffered in memory before
// the rest spills to temporary files.
const multipartMemory = 32 << 20

// ManualHandler serves manual upload and management endpoints.
type ManualHandler struct {
	manuals        service.ManualService
	maxUploadBytes int64
}

// NewManualHandler creates a new ManualHandler. Request bodies of /upload are
// capped at maxUploadBytes.
func NewManualHandler(manuals service.ManualService, maxUploadBytes int64) *ManualHandler {
	return &ManualHandler{
		manuals:        manuals,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	Message   string `json:"message"`
	NumChunks int    `json:"num_chunks"`
}

// ManualsResponse is returned by GET /manuals.
type ManualsResponse struct {
	ManualTitles []string `json:"manual_titles"`
}

// UploadsResponse is returned by GET /uploads.
type UploadsResponse struct {
	Uploads []storage.Upload `json:"uploads"`
}

// Upload handles POST /upload: multipart form with a "title" field and one or
// more "files" parts.
func (h *ManualHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.WarnContext(ctx, "upload too large", "limit", tooLarge.Limit)
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		logger.WarnContext(ctx, "invalid multipart body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	title := strings.TrimSpace(r.FormValue("title"))
	headers := r.MultipartForm.File["files"]
	if title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "at least one file is required")
		return
	}

	docs := make([]extract.Document, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			logger.ErrorContext(ctx, "failed to read uploaded file", "file", fh.Filename, "error", err)
			writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}
		docs = append(docs, extract.Document{Name: fh.Filename, Data: data})
	}

	res, err := h.manuals.Upload(ctx, service.UploadRequest{Title: title, Files: docs})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to upload manual")
		return
	}

	writeJSON(ctx, w, http.StatusOK, UploadResponse{
		Message:   fmt.Sprintf("Manual '%s' uploaded successfully", title),
		NumChunks: res.NumChunks,
	})
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// List handles GET /manuals.
func (h *ManualHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	titles, err := h.manuals.List(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list manuals")
		return
	}
	if titles == nil {
		titles = []string{}
	}
	writeJSON(ctx, w, http.StatusOK, ManualsResponse{ManualTitles: titles})
}

// Get handles GET /manual?title=.
func (h *ManualHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	title := r.URL.Query().Get("title")
	if strings.TrimSpace(title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	manual, err := h.manuals.Get(ctx, title)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to get manual")
		return
	}
	writeJSON(ctx, w, http.StatusOK, manual)
}

// Delete handles DELETE /manual?title=.
func (h *ManualHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	title := r.URL.Query().Get("title")
	if strings.TrimSpace(title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	if _, err := h.manuals.Delete(ctx, title); err != nil {
		handleServiceError(ctx, w, err, "Failed to delete manual")
		return
	}
	writeJSON(ctx, w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Manual '%s' deleted successfully", title)})
}

// Uploads handles GET /uploads, optionally filtered by ?title=.
func (h *ManualHandler) Uploads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uploads, err := h.manuals.Uploads(ctx, r.URL.Query().Get("title"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list uploads")
		return
	}
	if uploads == nil {
		uploads = []storage.Upload{}
	}
	writeJSON(ctx, w, http.StatusOK, UploadsResponse{Uploads: uploads})
}
