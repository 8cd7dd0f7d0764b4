package reply

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGeminiURL   = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel = "gemini-2.5-flash"
)

// GeminiProvider calls the Gemini generateContent endpoint.
type GeminiProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// GeminiOption tweaks a provider.
type GeminiOption func(*GeminiProvider)

// WithBaseURL points the provider at another endpoint, used by tests.
func WithBaseURL(u string) GeminiOption {
	return func(p *GeminiProvider) { p.baseURL = strings.TrimRight(u, "/") }
}

// WithModel overrides the model name.
func WithModel(m string) GeminiOption { return func(p *GeminiProvider) { p.model = m } }

// WithHTTPClient replaces the client.
func WithHTTPClient(c *http.Client) GeminiOption { return func(p *GeminiProvider) { p.httpClient = c } }

// NewGeminiProvider creates a provider for apiKey.
func NewGeminiProvider(apiKey string, opts ...GeminiOption) *GeminiProvider {
	p := &GeminiProvider{
		apiKey:     apiKey,
		baseURL:    defaultGeminiURL,
		model:      defaultGeminiModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string `json:"responseMimeType"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Reply sends one request; errors are returned for the caller to fall back.
func (p *GeminiProvider) Reply(ctx context.Context, req Request) (Response, error) {
	if p.apiKey == "" {
		return Response{}, ErrNotConfigured
	}
	var body geminiRequest
	body.Contents = []geminiContent{{Parts: []geminiPart{{Text: BuildPrompt(req)}}}}
	body.GenerationConfig.ResponseMimeType = "application/json"
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.model, url.QueryEscape(p.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, respBody)
	}

	var gr geminiResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return Response{}, fmt.Errorf("parse response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return Response{}, fmt.Errorf("no response from model")
	}
	var out Response
	text := gr.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return Response{}, fmt.Errorf("parse reply json: %w", err)
	}
	if out.ReplyText == "" {
		return Response{}, fmt.Errorf("empty reply text")
	}
	if out.Location == "" {
		out.Location = req.EndLocation
	}
	return out, nil
}
