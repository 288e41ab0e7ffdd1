package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"manualrag/internal/apperr"
	"manualrag/internal/service"
	"manualrag/internal/service/mocks"
	"manualrag/internal/storage"
)

func documentRouter(h *DocumentHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/documents", h.Create)
	r.Get("/documents/{id}", h.Get)
	r.Put("/documents/{id}", h.Update)
	r.Delete("/documents/{id}", h.Delete)
	return r
}

func TestDocumentHandler(t *testing.T) {
	missing := apperr.NotFound("get document", errors.New("no rows"))

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		setupMock  func(*mocks.MockDocumentService)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "create",
			method: http.MethodPost,
			path:   "/documents",
			body:   `{"title":"T","content":"C","author":"A"}`,
			setupMock: func(m *mocks.MockDocumentService) {
				m.EXPECT().Create(gomock.Any(), service.CreateDocumentRequest{Title: "T", Content: "C", Author: "A"}).Return("doc-1", nil)
			},
			wantStatus: http.StatusCreated,
			wantBody:   `{"id":"doc-1"}`,
		},
		{
			name:       "create bad json",
			method:     http.MethodPost,
			path:       "/documents",
			body:       `{"title":`,
			setupMock:  func(m *mocks.MockDocumentService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "create validation",
			method: http.MethodPost,
			path:   "/documents",
			body:   `{"title":"T"}`,
			setupMock: func(m *mocks.MockDocumentService) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return("", &apperr.ValidationError{Field: "content", Message: "cannot be empty"})
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"validation error on field content: cannot be empty"}`,
		},
		{
			name:   "get",
			method: http.MethodGet,
			path:   "/documents/doc-1",
			setupMock: func(m *mocks.MockDocumentService) {
				m.EXPECT().Get(gomock.Any(), "doc-1").Return(&storage.Document{ID: "doc-1", Title: "T", Content: "C"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "get missing",
			method: http.MethodGet,
			path:   "/documents/nope",
			setupMock: func(m *mocks.MockDocumentService) {
				m.EXPECT().Get(gomock.Any(), "nope").Return(nil, missing)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "partial update",
			method: http.MethodPut,
			path:   "/documents/doc-1",
			body:   `{"title":"New"}`,
			setupMock: func(m *mocks.MockDocumentService) {
				m.EXPECT().Update(gomock.Any(), "doc-1", gomock.Any()).DoAndReturn(
					func(_ context.Context, _ string, p storage.DocumentPatch) error {
						if p.Title == nil || *p.Title != "New" || p.Content != nil || p.Author != nil {
							t.Errorf("Update() patch = %+v", p)
						}
						return nil
					})
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"detail":"Document updated successfully"}`,
		},
		{
			name:   "update missing",
			method: http.MethodPut,
			path:   "/documents/nope",
			body:   `{"content":"x"}`,
			setupMock: func(m *mocks.MockDocumentService) {
				m.EXPECT().Update(gomock.Any(), "nope", gomock.Any()).Return(missing)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			path:   "/documents/doc-1",
			setupMock: func(m *mocks.MockDocumentService) {
				m.EXPECT().Delete(gomock.Any(), "doc-1").Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"detail":"Document deleted successfully"}`,
		},
		{
			name:   "delete store failure",
			method: http.MethodDelete,
			path:   "/documents/doc-1",
			setupMock: func(m *mocks.MockDocumentService) {
				m.EXPECT().Delete(gomock.Any(), "doc-1").Return(errors.New("database is locked"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Failed to delete document"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := mocks.NewMockDocumentService(ctrl)
			tt.setupMock(svc)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			documentRouter(NewDocumentHandler(svc)).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("%s %s status = %v, want %v (body %s)", tt.method, tt.path, w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantBody != "" && strings.TrimSpace(w.Body.String()) != tt.wantBody {
				t.Errorf("body = %s, want %s", w.Body.String(), tt.wantBody)
			}
		})
	}
}
