package oracle

import (
	"strings"

	"github.com/uradori/uradori/internal/model"
)

// NewClient creates an oracle client for the configured provider. The
// model identifier is a parameter of the configuration, never hardcoded
// in verification logic.
func NewClient(cfg model.OracleConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini", "":
		return NewGeminiClient(cfg)

	case "openai":
		return NewOpenAIClient(cfg)

	default:
		return nil, &ConfigError{Reason: "unknown oracle provider: " + cfg.Provider + " (supported: gemini, openai)"}
	}
}
