package read

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tv-manager/internal/models"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Settings() models.Settings {
	return m.Called().Get(0).(models.Settings)
}

func TestReadSettingsHandler(t *testing.T) {
	mockService := new(MockService)
	mockService.On("Settings").Return(models.DefaultSettings()).Once()

	handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), mockService)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/settings", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Status string `json:"status"`
		Data   struct {
			Settings models.Settings `json:"settings"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "OK", got.Status)
	assert.Equal(t, models.DefaultSettings(), got.Data.Settings)
	mockService.AssertExpectations(t)
}
