package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GenerateContent_OK(t *testing.T) {
	var gotPath, gotKey string
	var gotReq GenerateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [{"text": "hello"}]}}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	req := GenerateRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: "hi"}}}},
	}
	resp, err := client.GenerateContent(context.Background(), "models/gemini-2.5-pro", req)

	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text())
	assert.Empty(t, resp.FunctionCalls())

	assert.Equal(t, "/models/gemini-2.5-pro:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "hi", gotReq.Contents[0].Parts[0].Text)
}

func TestClient_GenerateContent_FunctionCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [
			{"functionCall": {"name": "search_flights", "args": {"origin": "DEL", "destination": "BOM", "date": "2026-01-20"}}}
		]}}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	resp, err := client.GenerateContent(context.Background(), "models/gemini-2.5-flash", GenerateRequest{})
	require.NoError(t, err)

	calls := resp.FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "search_flights", calls[0].Name)
	assert.Equal(t, "DEL", calls[0].Args["origin"])
	assert.Equal(t, "", resp.Text())
}

func TestClient_GenerateContent_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {
			"code": 429,
			"message": "You exceeded your current quota",
			"status": "RESOURCE_EXHAUSTED",
			"details": [{"@type": "type.googleapis.com/google.rpc.RetryInfo", "retryDelay": "22s"}]
		}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	_, err := client.GenerateContent(context.Background(), "models/gemini-2.5-pro", GenerateRequest{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 429, apiErr.Code)
	assert.Equal(t, "RESOURCE_EXHAUSTED", apiErr.Status)
	assert.Equal(t, 22*time.Second, apiErr.RetryDelay)
}

func TestClient_GenerateContent_APIErrorWithoutEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	_, err := client.GenerateContent(context.Background(), "models/gemini-2.5-pro", GenerateRequest{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Code)
}

func TestClient_ListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models": [
			{"name": "models/gemini-2.5-pro", "displayName": "Gemini 2.5 Pro", "supportedGenerationMethods": ["generateContent"]},
			{"name": "models/embedding-001", "displayName": "Embedding", "supportedGenerationMethods": ["embedContent"]}
		]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "models/gemini-2.5-pro", models[0].Name)
	assert.Contains(t, models[0].SupportedGenerationMethods, "generateContent")
}

func TestGenerateResponse_TextJoinsParts(t *testing.T) {
	resp := &GenerateResponse{Candidates: []Candidate{{
		Content: Content{Parts: []Part{{Text: "first"}, {Text: "second"}}},
	}}}
	assert.Equal(t, "first\nsecond", resp.Text())
}

func TestGenerateResponse_EmptyCandidates(t *testing.T) {
	resp := &GenerateResponse{}
	assert.Equal(t, "", resp.Text())
	assert.Empty(t, resp.FunctionCalls())
}
