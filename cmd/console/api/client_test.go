package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlovtnik/homeswift/internal/models"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, body models.APIResponse) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, ErrInvalidBaseURL)

	_, err = NewClient("localhost:8080")
	assert.ErrorIs(t, err, ErrInvalidBaseURL)

	c, err := NewClient("http://localhost:8080//")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.BaseURL)
}

func TestClient_ListRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/service-requests", r.URL.Path)
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		assert.Equal(t, "thandi", r.URL.Query().Get("search"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		page := models.NewPaginatedResponse([]models.ServiceRequestResponse{{
			ID:                8,
			CustomerName:      "Thandi",
			Status:            models.RequestStatusPending,
			TotalCustomerPaid: decimal.NewFromInt(485),
		}}, 1, 20, 1)
		writeEnvelope(t, w, http.StatusOK, models.SuccessResponse(page))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	c.SetToken("tok")

	res, err := c.ListRequests(context.Background(), models.RequestStatusPending, "thandi", 0)
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, int64(8), res.Data[0].ID)
	assert.True(t, res.Data[0].TotalCustomerPaid.Equal(decimal.NewFromInt(485)))
	assert.Equal(t, 1, res.TotalPages)
}

func TestClient_SetStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/service-requests/8", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body models.UpdateServiceRequestRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotNil(t, body.Status)
		assert.Equal(t, models.RequestStatusConfirmed, *body.Status)
		assert.Nil(t, body.Priority)

		writeEnvelope(t, w, http.StatusOK, models.SuccessResponse(models.ServiceRequestResponse{
			ID: 8, Status: *body.Status,
		}))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	sr, err := c.SetStatus(context.Background(), 8, models.RequestStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusConfirmed, sr.Status)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusBadRequest, models.ErrorResponse("INVALID_STATUS_TRANSITION", "cannot move a completed request", nil))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.SetStatus(context.Background(), 3, models.RequestStatusPending)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
	assert.Contains(t, err.Error(), "INVALID_STATUS_TRANSITION")
}

func TestClient_PlainErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Stats(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502: bad gateway")
}

func TestClient_SendRemindersAndStats(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/admin/send-reminders", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusOK, models.SuccessResponse(models.ReminderSweepResult{Candidates: 3, Sent: 2, Failed: 1}))
	})
	mux.HandleFunc("GET /api/v1/admin/stats", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusOK, models.SuccessResponse(models.AdminStats{TotalBookings: 7, Pending: 2}))
	})
	mux.HandleFunc("GET /api/v1/service-requests/{id}/history", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("page_size"))
		writeEnvelope(t, w, http.StatusOK, models.SuccessResponse(models.NewPaginatedResponse([]models.HistoryEntry{
			{ID: 1, RequestID: 5, Action: models.HistoryActionCreate, PerformedBy: "customer"},
		}, 1, 100, 1)))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	sweep, err := c.SendReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ReminderSweepResult{Candidates: 3, Sent: 2, Failed: 1}, *sweep)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalBookings)
	assert.Equal(t, 2, stats.Pending)

	hist, err := c.History(ctx, 5)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, models.HistoryActionCreate, hist[0].Action)
}
