package service_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"manualrag/internal/apperr"
	"manualrag/internal/service"
	"manualrag/internal/storage"
	storage_mocks "manualrag/internal/storage/mocks"
)

func ptr(s string) *string { return &s }

func TestDocumentService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       service.CreateDocumentRequest
		setupMock func(*storage_mocks.MockDocumentStore)
		wantID    string
		wantKind  error
	}{
		{
			name: "creates",
			req:  service.CreateDocumentRequest{Title: "Warranty", Content: "Two years", Author: "ops"},
			setupMock: func(m *storage_mocks.MockDocumentStore) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, d *storage.Document) error {
					if d.Title != "Warranty" || d.Author != "ops" {
						t.Errorf("Create() got %+v", d)
					}
					d.ID = "doc-1"
					return nil
				})
			},
			wantID: "doc-1",
		},
		{
			name:      "missing title",
			req:       service.CreateDocumentRequest{Content: "x"},
			setupMock: func(*storage_mocks.MockDocumentStore) {},
			wantKind:  apperr.ErrInvalidInput,
		},
		{
			name:      "missing content",
			req:       service.CreateDocumentRequest{Title: "x"},
			setupMock: func(*storage_mocks.MockDocumentStore) {},
			wantKind:  apperr.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := storage_mocks.NewMockDocumentStore(ctrl)
			tt.setupMock(store)

			id, err := service.NewDocumentService(store).Create(context.Background(), tt.req)
			if tt.wantKind != nil {
				if !errors.Is(err, tt.wantKind) {
					t.Fatalf("Create() error = %v, want kind %v", err, tt.wantKind)
				}
				return
			}
			if err != nil || id != tt.wantID {
				t.Errorf("Create() = %q, %v; want %q", id, err, tt.wantID)
			}
		})
	}
}

func TestDocumentService_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := storage_mocks.NewMockDocumentStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)
	store.EXPECT().Update(gomock.Any(), "missing", gomock.Any()).Return(storage.ErrNotFound)
	store.EXPECT().Delete(gomock.Any(), "missing").Return(storage.ErrNotFound)

	svc := service.NewDocumentService(store)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if err := svc.Update(ctx, "missing", storage.DocumentPatch{Title: ptr("x")}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentService_UpdateValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewDocumentService(storage_mocks.NewMockDocumentStore(ctrl))

	for name, patch := range map[string]storage.DocumentPatch{
		"empty patch":   {},
		"blank title":   {Title: ptr(" ")},
		"blank content": {Content: ptr("")},
	} {
		if err := svc.Update(context.Background(), "id", patch); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("%s: Update() error = %v, want ErrInvalidInput", name, err)
		}
	}
}

func TestDocumentService_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := storage_mocks.NewMockDocumentStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "id").Return(nil, errors.New("database is locked"))

	_, err := service.NewDocumentService(store).Get(context.Background(), "id")
	if err == nil || errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get() error = %v, want a non-NotFound failure", err)
	}
}
