package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"manualrag/internal/apperr"
	"manualrag/internal/service/mocks"
)

type fixedSessions int

func (f fixedSessions) Active() int { return int(f) }

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		wantBody string
	}{
		{
			name:     "index reachable",
			wantBody: `{"status":"ok","connection":"connected","active_sessions":2}`,
		},
		{
			name:     "index down",
			pingErr:  apperr.Storage("ping", errors.New("dial tcp: refused")),
			wantBody: `{"status":"degraded","connection":"disconnected","active_sessions":2}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := mocks.NewMockManualService(ctrl)
			svc.EXPECT().Ping(gomock.Any()).Return(tt.pingErr)

			w := httptest.NewRecorder()
			NewHealthHandler(svc, fixedSessions(2)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != http.StatusOK {
				t.Errorf("status = %v, want 200", w.Code)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.wantBody {
				t.Errorf("body = %s, want %s", got, tt.wantBody)
			}
		})
	}
}
