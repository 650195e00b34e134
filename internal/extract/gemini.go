package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Ensure Gemini implements Extractor
var _ Extractor = (*Gemini)(nil)

// Gemini calls the generateContent REST endpoint of the Gemini API.
type Gemini struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewGemini creates a client. endpoint is the API base URL, for example
// https://generativelanguage.googleapis.com/v1beta.
func NewGemini(endpoint, model, apiKey string, logger *slog.Logger) *Gemini {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{
		endpoint:   endpoint,
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

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

// Extract sends the prompt plus text to the model and parses its reply.
func (g *Gemini) Extract(ctx context.Context, text string) (Candidate, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: Prompt + text}}}},
	})
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.endpoint, url.PathEscape(g.model), url.QueryEscape(g.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	g.logger.Debug("Extractor response received",
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		g.logger.Warn("Extractor returned non-OK status", "status_code", resp.StatusCode, "body", string(body))
		return Candidate{}, fmt.Errorf("extractor returned status: %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Candidate{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return failed("No response from model"), nil
	}

	return ParseResponse(out.Candidates[0].Content.Parts[0].Text), nil
}
