package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/uradori/uradori/internal/model"
)

func geminiConfig(baseURL string) model.OracleConfig {
	return model.OracleConfig{
		Provider: "gemini",
		Model:    "gemini-2.5-flash",
		APIKey:   "test-key",
		BaseURL:  baseURL,
		Timeout:  5,
	}
}

func geminiBody(text, finishReason string) string {
	body := map[string]any{
		"candidates": []map[string]any{
			{
				"content":      map[string]any{"parts": []map[string]any{{"text": text}}},
				"finishReason": finishReason,
			},
		},
		"usageMetadata": map[string]any{"promptTokenCount": 12, "candidatesTokenCount": 34},
	}
	data, _ := json.Marshal(body)
	return string(data)
}

func TestGeminiClient_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected key query param, got %q", r.URL.Query().Get("key"))
		}

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Role != "user" {
			t.Errorf("expected one user turn, got %+v", req.Contents)
		}
		if req.GenerationConfig.MaxOutputTokens != 800 {
			t.Errorf("expected maxOutputTokens 800, got %d", req.GenerationConfig.MaxOutputTokens)
		}

		_, _ = w.Write([]byte(geminiBody(`{"isCorrect": true}`, "STOP")))
	}))
	defer server.Close()

	client, err := NewGeminiClient(geminiConfig(server.URL))
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}

	resp, err := client.Generate(context.Background(), "check this claim", Options{MaxOutputTokens: 800, Temperature: 0.3})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.Text != `{"isCorrect": true}` {
		t.Errorf("unexpected text: %q", resp.Text)
	}
	if resp.Truncated {
		t.Error("STOP response must not be flagged truncated")
	}
	if resp.PromptTokens != 12 || resp.OutputTokens != 34 {
		t.Errorf("usage not decoded: %+v", resp)
	}
}

func TestGeminiClient_Generate_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(geminiBody(`{"isCorrect"`, "MAX_TOKENS")))
	}))
	defer server.Close()

	client, err := NewGeminiClient(geminiConfig(server.URL))
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}

	resp, err := client.Generate(context.Background(), "check", Options{})
	if err != nil {
		t.Fatalf("truncation must be a soft success, got error: %v", err)
	}
	if !resp.Truncated {
		t.Error("MAX_TOKENS response must be flagged truncated")
	}
}

func TestGeminiClient_Generate_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client, err := NewGeminiClient(geminiConfig(server.URL))
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}

	_, err = client.Generate(context.Background(), "check", Options{})
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("expected ErrNoCandidates, got %v", err)
	}
}

func TestGeminiClient_Generate_SafetyBlocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(geminiBody("partial", "SAFETY")))
	}))
	defer server.Close()

	client, err := NewGeminiClient(geminiConfig(server.URL))
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}

	_, err = client.Generate(context.Background(), "check", Options{})
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected BlockedError, got %v", err)
	}
	if blocked.Reason != "SAFETY" {
		t.Errorf("expected reason SAFETY, got %q", blocked.Reason)
	}
}

func TestGeminiClient_Generate_EmptyText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(geminiBody("   \n", "STOP")))
	}))
	defer server.Close()

	client, err := NewGeminiClient(geminiConfig(server.URL))
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}

	_, err = client.Generate(context.Background(), "check", Options{})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGeminiClient_Generate_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream overloaded"))
	}))
	defer server.Close()

	client, err := NewGeminiClient(geminiConfig(server.URL))
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}

	_, err = client.Generate(context.Background(), "check", Options{})
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transport.Status != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", transport.Status)
	}
	if !strings.Contains(transport.Body, "overloaded") {
		t.Errorf("expected body to be carried, got %q", transport.Body)
	}
}

func TestGeminiClient_Generate_APIErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	client, err := NewGeminiClient(geminiConfig(server.URL))
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}

	_, err = client.Generate(context.Background(), "check", Options{})
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !strings.Contains(transport.Body, "quota exceeded") {
		t.Errorf("expected error message carried, got %q", transport.Body)
	}
}

func TestNewGeminiClient_MissingKey(t *testing.T) {
	_, err := NewGeminiClient(model.OracleConfig{Model: "gemini-2.5-flash"})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError, got %v", err)
	}
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(model.OracleConfig{Provider: "delphi", APIKey: "k"})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError, got %v", err)
	}
}
