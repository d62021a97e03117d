package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/uradori/uradori/internal/model"
)

// ErrSourceUnavailable reports that the authoritative route source
// could not answer: network failure, non-2xx status, or an undecodable
// body. Route claims are never judged without an official answer.
var ErrSourceUnavailable = errors.New("route source unavailable")

// TransitClient queries the authoritative transit API for official
// route durations and fares.
type TransitClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewTransitClient builds a TransitClient from config
func NewTransitClient(cfg model.TransitConfig) *TransitClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if cfg.Timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TransitClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// routeWire decodes both response shapes the transit API is known to
// emit: duration and fare at the top level, or nested under "result".
type routeWire struct {
	Duration string `json:"duration"`
	Fare     string `json:"fare"`
	Result   *struct {
		Duration string `json:"duration"`
		Fare     string `json:"fare"`
	} `json:"result"`
}

// VerifyRoute checks one route claim against the official source. The
// stated duration and fare are compared to the official values by
// exact string equality.
func (c *TransitClient) VerifyRoute(ctx context.Context, claim model.Claim) (*model.RouteVerification, error) {
	query := url.Values{}
	query.Set("from", claim.From)
	query.Set("to", claim.To)
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}
	reqURL := c.baseURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("route %s→%s: %w", claim.From, claim.To, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("route %s→%s: %w: %w", claim.From, claim.To, ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("route %s→%s: %w: %w", claim.From, claim.To, ErrSourceUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().
			Int("status", resp.StatusCode).
			Str("from", claim.From).
			Str("to", claim.To).
			Msg("transit source error")
		return nil, fmt.Errorf("route %s→%s: status %d: %w", claim.From, claim.To, resp.StatusCode, ErrSourceUnavailable)
	}

	var wire routeWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("route %s→%s: decode: %w: %w", claim.From, claim.To, ErrSourceUnavailable, err)
	}

	official := struct{ duration, fare string }{wire.Duration, wire.Fare}
	if wire.Result != nil {
		official.duration = wire.Result.Duration
		official.fare = wire.Result.Fare
	}
	if official.duration == "" && official.fare == "" {
		return nil, fmt.Errorf("route %s→%s: empty answer: %w", claim.From, claim.To, ErrSourceUnavailable)
	}

	// The key never appears in the recorded source URL.
	sourceQuery := url.Values{}
	sourceQuery.Set("from", claim.From)
	sourceQuery.Set("to", claim.To)

	return &model.RouteVerification{
		Claim:             claim,
		IsDurationCorrect: claim.Duration == official.duration,
		IsFareCorrect:     claim.Fare == official.fare,
		OfficialDuration:  official.duration,
		OfficialFare:      official.fare,
		SourceURL:         c.baseURL + "?" + sourceQuery.Encode(),
	}, nil
}
