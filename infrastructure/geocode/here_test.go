package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "schoolride-backend/pkg/errors"
)

func TestHereClientGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1st Main, Bengaluru", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"title":"1st Main","position":{"lat":12.9716,"lng":77.5946}}]}`))
	}))
	defer server.Close()

	client := NewHereClient("test-key", zap.NewNop()).WithEndpoint(server.URL)

	location, err := client.Geocode(context.Background(), "1st Main, Bengaluru")
	require.NoError(t, err)
	assert.Equal(t, 12.9716, location.Latitude())
	assert.Equal(t, 77.5946, location.Longitude())
}

func TestHereClientGeocodeNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	client := NewHereClient("test-key", zap.NewNop()).WithEndpoint(server.URL)

	_, err := client.Geocode(context.Background(), "nowhere")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestHereClientGeocodeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHereClient("test-key", zap.NewNop()).WithEndpoint(server.URL)

	_, err := client.Geocode(context.Background(), "anywhere")
	require.Error(t, err)
	assert.False(t, apperrors.IsNotFound(err))
}

func TestHereClientRequiresAPIKey(t *testing.T) {
	client := NewHereClient("", zap.NewNop())

	_, err := client.Geocode(context.Background(), "anywhere")
	assert.Error(t, err)
}

func TestNopGeocoder(t *testing.T) {
	_, err := NopGeocoder{}.Geocode(context.Background(), "anywhere")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
