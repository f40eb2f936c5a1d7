package serpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/Domenick1991/flightagent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func query() domain.SearchQuery {
	return domain.SearchQuery{Origin: "DEL", Destination: "BOM", Date: "2026-01-20"}
}

func TestClient_Search_OK(t *testing.T) {
	var gotParams url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotParams = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"best_flights": [{"price": "₹4,000", "flights": [{"airline": "Air India"}]}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithCurrency("INR"), WithLanguage("en"), WithLogf(func(string, ...any) {}))

	payload, err := client.Search(context.Background(), query())
	require.NoError(t, err)
	assert.Contains(t, payload, "best_flights")

	assert.Equal(t, "google_flights", gotParams.Get("engine"))
	assert.Equal(t, "DEL", gotParams.Get("departure_id"))
	assert.Equal(t, "BOM", gotParams.Get("arrival_id"))
	assert.Equal(t, "2026-01-20", gotParams.Get("outbound_date"))
	assert.Equal(t, "INR", gotParams.Get("currency"))
	assert.Equal(t, "en", gotParams.Get("hl"))
	assert.Equal(t, "2", gotParams.Get("type"))
	assert.Equal(t, "test-key", gotParams.Get("api_key"))
}

func TestClient_Search_ErrorField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": "Invalid API key"}`))
	}))
	defer server.Close()

	client := NewClient("bad-key", WithBaseURL(server.URL), WithLogf(func(string, ...any) {}))

	_, err := client.Search(context.Background(), query())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestClient_Search_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"search_metadata": {"id": "abc"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithLogf(func(string, ...any) {}))

	_, err := client.Search(context.Background(), query())
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestClient_Search_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithLogf(func(string, ...any) {}))

	_, err := client.Search(context.Background(), query())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestClient_Search_LanguageOverride(t *testing.T) {
	var gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.URL.Query().Get("hl")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"best_flights": []}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithLanguage("de"), WithLogf(func(string, ...any) {}))

	_, err := client.Search(context.Background(), query())
	require.NoError(t, err)
	assert.Equal(t, "de", gotLang)
}

func TestClient_Search_OtherFlightsOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"other_flights": []}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithLogf(func(string, ...any) {}))

	payload, err := client.Search(context.Background(), query())
	require.NoError(t, err)
	assert.Contains(t, payload, "other_flights")
}
