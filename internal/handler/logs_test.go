package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/hotel-booking/internal/logship"
)

type mockLogReader struct {
	filter logship.Filter
	body   json.RawMessage
	err    error
}

func (m *mockLogReader) Fetch(_ context.Context, f logship.Filter) (json.RawMessage, error) {
	m.filter = f
	return m.body, m.err
}

func (m *mockLogReader) Stats(context.Context) logship.Stats {
	return logship.Stats{Sent: 3, Dropped: 1}
}

func TestLogsHandler_List_ForcesCurrentUser(t *testing.T) {
	userID := uuid.New()
	reader := &mockLogReader{body: json.RawMessage(`{"data":[]}`)}

	rec := httptest.NewRecorder()
	NewLogsHandler(reader).List(rec, newRequest(t, http.MethodGet, "/api/v1/logs?user_id="+uuid.NewString()+"&level=info&per_page=10", nil, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID.String(), reader.filter.UserID)
	assert.Equal(t, "info", reader.filter.Level)
	assert.Equal(t, 10, reader.filter.PerPage)
	assert.JSONEq(t, `{"data":[]}`, string(decodeEnvelope(t, rec).Data))
}

func TestLogsHandler_List_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		err        error
		wantStatus int
	}{
		{name: "bad page", query: "?page=0", wantStatus: http.StatusBadRequest},
		{name: "per page too large", query: "?per_page=500", wantStatus: http.StatusBadRequest},
		{name: "upstream down", err: fmt.Errorf("Fetch: %w", logship.ErrUpstream), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewLogsHandler(&mockLogReader{err: tt.err}).List(rec, newRequest(t, http.MethodGet, "/api/v1/logs"+tt.query, nil, uuid.New()))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestLogsHandler_Stats(t *testing.T) {
	rec := httptest.NewRecorder()
	NewLogsHandler(&mockLogReader{}).Stats(rec, newRequest(t, http.MethodGet, "/api/v1/logs/stats", nil, uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, decodeEnvelope(t, rec))
	assert.Equal(t, float64(3), data["sent"])
	assert.Equal(t, float64(1), data["dropped"])
}
