// Package oracle talks to the external judgment oracle: a
// large-language-model endpoint used as a verifier. All response-shape
// handling lives at this boundary; downstream code receives a decoded
// Response and never re-derives presence or absence of nested fields.
package oracle

import (
	"context"
	"errors"
	"fmt"
)

// Finish reasons reported by the oracle.
const (
	FinishStop      = "STOP"
	FinishMaxTokens = "MAX_TOKENS"
)

// Options tunes a single oracle call. Zero values mean "provider
// default".
type Options struct {
	MaxOutputTokens int
	Temperature     float64
}

// Response is the decoded result of one oracle invocation. Truncated
// is set when generation stopped at the output-token limit; the text
// may be incomplete but is still usable.
type Response struct {
	Text         string
	FinishReason string
	Truncated    bool
	PromptTokens int
	OutputTokens int
}

// Client sends a single-turn prompt to the judgment oracle
type Client interface {
	// Generate sends prompt as a user turn and returns the decoded
	// response. Truncation is reported via Response.Truncated, never as
	// an error.
	Generate(ctx context.Context, prompt string, opts Options) (*Response, error)

	// Model returns the model identifier this client is bound to.
	Model() string
}

// ErrNoCandidates reports a response with zero candidates, which
// usually means the provider blocked the request before generating.
var ErrNoCandidates = errors.New("oracle returned no candidates")

// ErrEmptyResponse reports a candidate whose text content is blank
// after trimming.
var ErrEmptyResponse = errors.New("oracle returned empty text")

// ConfigError reports a startup misconfiguration, typically a missing
// credential. It is fatal at construction, never per-call.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "oracle config: " + e.Reason
}

// TransportError reports that the call to the oracle did not complete:
// a network failure or a non-2xx status. Status is zero for pure
// network failures.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("oracle transport: status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("oracle transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BlockedError reports a finish reason other than normal stop or
// token-limit truncation, typically a safety filter.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return "oracle blocked generation: " + e.Reason
}
