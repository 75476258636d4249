package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultGenerateURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

// GeminiClient calls the Gemini generateContent REST API and extracts the
// grouped restaurant IDs from the model's reply.
type GeminiClient struct {
	hc     *http.Client
	apiKey string
	url    string
}

// NewGeminiClient returns a client authenticated with the given API key.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		hc:     &http.Client{Timeout: 30 * time.Second},
		apiKey: apiKey,
		url:    defaultGenerateURL,
	}
}

// generateContent request/response wire shapes, reduced to the fields we use.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// grouped is the JSON document the prompt instructs the model to return.
type grouped struct {
	BasedOnFavourites []uint64 `json:"basedOnFavourites"`
	NewToYou          []uint64 `json:"newToYou"`
}

// Suggest sends the prompt and parses the model's answer into the two ID
// groups. The model is told to return bare JSON but often wraps it in a
// markdown code fence, so fences are stripped before parsing.
func (g *GeminiClient) Suggest(ctx context.Context, prompt string) (favourites, fresh []uint64, err error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.hc.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("gemini request: unexpected status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, nil, fmt.Errorf("gemini response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, nil, fmt.Errorf("gemini response: no candidates")
	}

	text := out.Candidates[0].Content.Parts[0].Text
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	var g2 grouped
	if err := json.Unmarshal([]byte(text), &g2); err != nil {
		return nil, nil, fmt.Errorf("gemini response: parse groups: %w", err)
	}
	return g2.BasedOnFavourites, g2.NewToYou, nil
}
