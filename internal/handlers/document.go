package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"manualrag/internal/contextutil"
	"manualrag/internal/service"
	"manualrag/internal/storage"
)

// DocumentHandler serves document CRUD under /documents.
type DocumentHandler struct {
	documents service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documents service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// CreateDocumentResponse is returned by POST /documents.
type CreateDocumentResponse struct {
	ID string `json:"id"`
}

// DetailResponse acknowledges an update or delete.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// Create handles POST /documents.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req service.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.documents.Create(ctx, req)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to create document")
		return
	}
	writeJSON(ctx, w, http.StatusCreated, CreateDocumentResponse{ID: id})
}

// Get handles GET /documents/{id}.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, err := h.documents.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to get document")
		return
	}
	writeJSON(ctx, w, http.StatusOK, doc)
}

// Update handles PUT /documents/{id}. Only fields present in the body change.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var patch storage.DocumentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.documents.Update(ctx, chi.URLParam(r, "id"), patch); err != nil {
		handleServiceError(ctx, w, err, "Failed to update document")
		return
	}
	writeJSON(ctx, w, http.StatusOK, DetailResponse{Detail: "Document updated successfully"})
}

// Delete handles DELETE /documents/{id}.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.documents.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(ctx, w, err, "Failed to delete document")
		return
	}
	writeJSON(ctx, w, http.StatusOK, DetailResponse{Detail: "Document deleted successfully"})
}
