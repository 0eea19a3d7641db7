package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		seconds int
		wantErr bool
	}{
		{"PT45S", 45, false},
		{"PT6M", 360, false},
		{"PT1H23M45S", 5025, false},
		{"PT2H", 7200, false},
		{"P1DT2H", 93600, false},
		{"P1W", 604800, false},
		{"PT0S", 0, false},
		{"", 0, true},
		{"1H30M", 0, true},
		{"PTXS", 0, true},
		{"PT5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.seconds, got)
		})
	}
}

func TestSearchChannels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "channel", r.URL.Query().Get("type"))
		assert.Equal(t, "meditation", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":{"channelId":"UC1"},"snippet":{"title":"Calm Minds"}},
			{"id":{"channelId":"UC2"},"snippet":{"title":"Still Waters"}}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	channels, err := c.SearchChannels(context.Background(), "meditation", 5)
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "UC1", channels[0].ID)
	assert.Equal(t, "Calm Minds", channels[0].Title)
}

func TestChannelUploads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "UC1", r.URL.Query().Get("channelId"))
			_, _ = w.Write([]byte(`{"items":[{"id":{"videoId":"vid1"},"snippet":{"title":"x"}}]}`))
		case "/videos":
			assert.Equal(t, "vid1", r.URL.Query().Get("id"))
			_, _ = w.Write([]byte(`{"items":[{
				"id":"vid1",
				"snippet":{
					"title":"Morning Sit",
					"description":"20 minute guided session",
					"channelId":"UC1",
					"channelTitle":"Calm Minds",
					"publishedAt":"2025-06-01T08:00:00Z",
					"defaultAudioLanguage":"en",
					"thumbnails":{"high":{"url":"https://img.example/vid1.jpg"}}
				},
				"contentDetails":{"duration":"PT21M4S"}
			}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	videos, err := c.ChannelUploads(context.Background(), "UC1", 10)
	require.NoError(t, err)
	require.Len(t, videos, 1)

	v := videos[0]
	assert.Equal(t, "vid1", v.ExternalID)
	assert.Equal(t, "Calm Minds", v.ChannelTitle)
	assert.Equal(t, 21*60+4, v.DurationSeconds)
	assert.Equal(t, "en", v.Language)
	assert.Equal(t, "https://www.youtube.com/watch?v=vid1", v.URL())
}

func TestQuotaExceededClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The request cannot be completed because you have exceeded your quota.","errors":[{"reason":"quotaExceeded"}]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	_, err := c.SearchChannels(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.True(t, IsQuotaExceeded(err))
}

func TestGenericErrorIsNotQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Invalid argument.","errors":[{"reason":"badRequest"}]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	_, err := c.ChannelDetails(context.Background(), "UC1")
	require.Error(t, err)
	assert.False(t, IsQuotaExceeded(err))
}
