package history

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/tv-manager/internal/ledger"
)

// MockService реализует интерфейс history.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) History(g ledger.Granularity) ledger.HistoryView {
	return m.Called(g).Get(0).(ledger.HistoryView)
}

func TestHistoryHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		query          string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "по умолчанию по дням",
			setupMock: func(m *MockService) {
				m.On("History", ledger.ByDay).Return(ledger.HistoryView{Granularity: ledger.ByDay}).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"granularity":"day"`,
		},
		{
			name:  "по месяцам",
			query: "?group=month",
			setupMock: func(m *MockService) {
				m.On("History", ledger.ByMonth).Return(ledger.HistoryView{
					Granularity: ledger.ByMonth,
					Groups:      []ledger.Group{{Key: "2024-06", Label: "junho 2024", Total: decimal.NewFromInt(60), Count: 2}},
				}).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"label":"junho 2024"`,
		},
		{
			name:           "неизвестная группировка",
			query:          "?group=year",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "group must be day, week or month",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(logger, mockService)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
