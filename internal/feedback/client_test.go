package feedback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmap-kz/slackrep/internal/feedback/model"
)

func TestClient_FetchFormatted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/feedback", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]model.Entry{
			{
				ID:        uuid.New(),
				Date:      "2026-02-01",
				Category:  model.CategoryFormat,
				Text:      "더 짧게",
				CreatedAt: time.Now(),
			},
		})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "tok")
	got, err := c.FetchFormatted(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "[2026-02-01] [포맷/형식 변경] 더 짧게", got)
}

func TestClient_FetchAll_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "")
	_, err := c.FetchAll(context.Background())
	assert.Error(t, err)
}
