package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindtube/curator/internal/curation"
)

func TestStart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/curation/start", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"jobId":"abcd1234"}`))
	}))
	defer srv.Close()

	jobID, err := New(srv.URL).Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abcd1234", jobID)
}

func TestStartConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"a curation run is already active"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Start(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsConflict())
	assert.Contains(t, apiErr.Message, "already active")
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/curation/status", r.URL.Path)
		_, _ = w.Write([]byte(`{"jobId":"abcd1234","status":"running","totalItems":10,"processedItems":3,"errors":[]}`))
	}))
	defer srv.Close()

	status, err := New(srv.URL).Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, curation.StatusRunning, status.Status)
	assert.Equal(t, 10, status.TotalItems)
	assert.Equal(t, 3, status.ProcessedItems)
}

func TestStop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/curation/stop", r.URL.Path)
		_, _ = w.Write([]byte(`{"stopping":true}`))
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL).Stop(context.Background()))
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	err := New(srv.URL).Health(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.False(t, apiErr.IsConflict())
}
