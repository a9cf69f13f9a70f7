package update

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tv-manager/internal/ledger"
	"github.com/magabrotheeeer/tv-manager/internal/models"
	"github.com/magabrotheeeer/tv-manager/internal/services/manager"
)

// MockService реализует интерфейс update.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, id string, upd models.ClientUpdate) (models.ClientView, error) {
	args := m.Called(ctx, id, upd)
	return args.Get(0).(models.ClientView), args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	body := map[string]any{"name": "Ana Maria", "user": "ana", "whatsapp": "11999990000", "value": 35}

	tests := []struct {
		name           string
		requestBody    any
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешное обновление",
			requestBody: body,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, "c-1", mock.AnythingOfType("models.ClientUpdate")).
					Return(models.ClientView{Client: models.Client{ID: "c-1", Name: "Ana Maria"}}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"Ana Maria"`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name:           "ошибка валидации",
			requestBody:    map[string]any{"name": "", "whatsapp": ""},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Name is a required field, field WhatsApp is a required field`,
		},
		{
			name:        "клиент не найден",
			requestBody: body,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, "c-1", mock.Anything).
					Return(models.ClientView{}, fmt.Errorf("manager.Update: %w", manager.ErrClientNotFound)).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"client not found"}`,
		},
		{
			name:        "отрицательная сумма",
			requestBody: body,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, "c-1", mock.Anything).
					Return(models.ClientView{}, fmt.Errorf("x: %w", ledger.ErrNegativeValue)).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "value must not be negative",
		},
		{
			name:        "ошибка сервиса",
			requestBody: body,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, "c-1", mock.Anything).Return(models.ClientView{}, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not update client"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(logger, mockService)

			var raw []byte
			if str, ok := tt.requestBody.(string); ok {
				raw = []byte(str)
			} else {
				var err error
				raw, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPut, "/clients/c-1", bytes.NewReader(raw))
			req.Header.Set("Content-Type", "application/json")

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "c-1")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
