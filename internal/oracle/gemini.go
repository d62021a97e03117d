package oracle

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

	"github.com/rs/zerolog/log"

	"github.com/uradori/uradori/internal/model"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiClient calls the generateContent endpoint of a Gemini-style
// provider.
type GeminiClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// Gemini wire structures
type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig geminiGeneration `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGeneration struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata *geminiUsage      `json:"usageMetadata"`
	Error         *geminiError      `json:"error"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewGeminiClient creates a Gemini oracle client
func NewGeminiClient(cfg model.OracleConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigError{Reason: "GEMINI_API_KEY is not set"}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &GeminiClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Model returns the bound model identifier
func (c *GeminiClient) Model() string {
	return c.model
}

// Generate sends a single user turn and decodes the response once at
// this boundary.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts Options) (*Response, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGeneration{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxOutputTokens,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Status: httpResp.StatusCode, Err: err}
	}

	log.Debug().Int("status", httpResp.StatusCode).Str("model", c.model).Msg("gemini response")

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &TransportError{Status: httpResp.StatusCode, Body: string(respBody)}
	}

	var decoded geminiResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if decoded.Error != nil {
		return nil, &TransportError{Status: decoded.Error.Code, Body: decoded.Error.Message}
	}

	return responseFromGemini(decoded)
}

// responseFromGemini maps the decoded wire shape onto a Response,
// enforcing the candidate/finish-reason/content contract.
func responseFromGemini(decoded geminiResponse) (*Response, error) {
	if len(decoded.Candidates) == 0 {
		return nil, ErrNoCandidates
	}

	first := decoded.Candidates[0]
	reason := strings.ToUpper(first.FinishReason)
	switch reason {
	case FinishStop, FinishMaxTokens, "":
	default:
		return nil, &BlockedError{Reason: first.FinishReason}
	}

	var sb strings.Builder
	for _, part := range first.Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, ErrEmptyResponse
	}

	resp := &Response{
		Text:         text,
		FinishReason: reason,
		Truncated:    reason == FinishMaxTokens,
	}
	if decoded.UsageMetadata != nil {
		resp.PromptTokens = decoded.UsageMetadata.PromptTokenCount
		resp.OutputTokens = decoded.UsageMetadata.CandidatesTokenCount
	}
	return resp, nil
}
