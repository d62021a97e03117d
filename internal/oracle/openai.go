package oracle

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/uradori/uradori/internal/model"
)

// OpenAIClient adapts an OpenAI-compatible chat completion endpoint to
// the Client interface, so the rest of the pipeline is indifferent to
// which oracle backs it.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAI-backed oracle client
func NewOpenAIClient(cfg model.OracleConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigError{Reason: "OPENAI_API_KEY is not set"}
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}, nil
}

// Model returns the bound model identifier
func (c *OpenAIClient) Model() string {
	return c.model
}

// Generate sends a single user turn through the chat completions API
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts Options) (*Response, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   opts.MaxOutputTokens,
		Temperature: float32(opts.Temperature),
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if len(resp.Choices) == 0 {
		return nil, ErrNoCandidates
	}

	first := resp.Choices[0]
	reason, truncated, err := normalizeOpenAIFinish(first.FinishReason)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(first.Message.Content)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	return &Response{
		Text:         text,
		FinishReason: reason,
		Truncated:    truncated,
		PromptTokens: resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

// normalizeOpenAIFinish maps OpenAI finish reasons onto the shared
// vocabulary ("stop" -> STOP, "length" -> MAX_TOKENS).
func normalizeOpenAIFinish(reason openai.FinishReason) (string, bool, error) {
	switch reason {
	case openai.FinishReasonStop, openai.FinishReasonNull, "":
		return FinishStop, false, nil
	case openai.FinishReasonLength:
		return FinishMaxTokens, true, nil
	default:
		return "", false, &BlockedError{Reason: string(reason)}
	}
}
