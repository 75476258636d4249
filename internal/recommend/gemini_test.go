package recommend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiReply(text string) generateResponse {
	var out generateResponse
	out.Candidates = []struct {
		Content content `json:"content"`
	}{{Content: content{Parts: []part{{Text: text}}}}}
	return out
}

func TestGeminiSuggest_ParsesGroupedIDs(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "recommendation engine")
		json.NewEncoder(w).Encode(geminiReply(`{"basedOnFavourites":[1,3],"newToYou":[2]}`))
	}))
	defer srv.Close()

	g := NewGeminiClient("api-key")
	g.url = srv.URL

	favs, fresh, err := g.Suggest(context.Background(), "You are a restaurant recommendation engine.")

	require.NoError(t, err)
	assert.Equal(t, "api-key", gotKey)
	assert.Equal(t, []uint64{1, 3}, favs)
	assert.Equal(t, []uint64{2}, fresh)
}

func TestGeminiSuggest_StripsMarkdownFence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiReply("```json\n{\"basedOnFavourites\":[5],\"newToYou\":[6]}\n```"))
	}))
	defer srv.Close()

	g := NewGeminiClient("api-key")
	g.url = srv.URL

	favs, fresh, err := g.Suggest(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, favs)
	assert.Equal(t, []uint64{6}, fresh)
}

func TestGeminiSuggest_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{})
	}))
	defer srv.Close()

	g := NewGeminiClient("api-key")
	g.url = srv.URL

	_, _, err := g.Suggest(context.Background(), "prompt")
	require.Error(t, err)
}

func TestGeminiSuggest_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGeminiClient("api-key")
	g.url = srv.URL

	_, _, err := g.Suggest(context.Background(), "prompt")
	require.Error(t, err)
}
