package oracle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/uradori/uradori/internal/worker"
)

const (
	defaultInitialBudget = 800
	defaultBudgetCeiling = 4096
	defaultMaxAttempts   = 3
)

// Retrier wraps a Client with the retry-with-growing-budget strategy:
// when the oracle truncates its output, the call is reissued with a
// doubled output budget, up to a bounded number of attempts and a
// budget ceiling. Truncation is reported to the caller, never treated
// as fatal. Any other failure propagates immediately without retry.
type Retrier struct {
	client      Client
	limiter     *worker.Limiter
	initial     int
	ceiling     int
	maxAttempts int
}

// NewRetrier wraps client. limiter may be nil to disable pacing.
func NewRetrier(client Client, limiter *worker.Limiter, initialBudget, ceiling, maxAttempts int) *Retrier {
	if initialBudget <= 0 {
		initialBudget = defaultInitialBudget
	}
	if ceiling <= 0 {
		ceiling = defaultBudgetCeiling
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Retrier{
		client:      client,
		limiter:     limiter,
		initial:     initialBudget,
		ceiling:     ceiling,
		maxAttempts: maxAttempts,
	}
}

// Model returns the wrapped client's model identifier
func (r *Retrier) Model() string {
	return r.client.Model()
}

// Generate issues the call, growing the output budget on truncation.
// The last response is returned even if still truncated after the
// final attempt.
func (r *Retrier) Generate(ctx context.Context, prompt string, opts Options) (*Response, error) {
	budget := opts.MaxOutputTokens
	if budget <= 0 {
		budget = r.initial
	}
	if budget > r.ceiling {
		budget = r.ceiling
	}

	callID := uuid.NewString()

	for attempt := 1; ; attempt++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		attemptOpts := opts
		attemptOpts.MaxOutputTokens = budget

		start := time.Now()
		resp, err := r.client.Generate(ctx, prompt, attemptOpts)

		event := log.Info()
		if err != nil {
			event = log.Warn().Err(err)
		}
		event.
			Str("call_id", callID).
			Str("model", r.client.Model()).
			Int("attempt", attempt).
			Int("prompt_len", len(prompt)).
			Int("max_output_tokens", budget).
			Dur("elapsed", time.Since(start))
		if resp != nil {
			event = event.
				Str("finish_reason", resp.FinishReason).
				Bool("truncated", resp.Truncated).
				Int("output_tokens", resp.OutputTokens)
		}
		event.Msg("oracle call")

		if err != nil {
			return nil, err
		}
		if !resp.Truncated || attempt >= r.maxAttempts {
			return resp, nil
		}

		budget *= 2
		if budget > r.ceiling {
			budget = r.ceiling
		}
	}
}
