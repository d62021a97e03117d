// Package validate probes evidence links: it checks that the URLs an
// oracle verdict cites actually answer, while staying polite to the
// hosts it touches.
package validate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/uradori/uradori/internal/model"
)

const checkMaxRetries = 3

// checkSleepFunc is the sleep between retries, injectable for tests.
var checkSleepFunc = time.Sleep

// LinkStatus is the outcome of probing one evidence URL.
type LinkStatus struct {
	URL        string `json:"url"`
	Accessible bool   `json:"accessible"`
	StatusCode int    `json:"statusCode,omitempty"`

	// Skipped is set when robots.txt disallowed the probe. A skipped
	// link is neither accessible nor dead.
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LinkChecker probes evidence URLs concurrently with HEAD requests,
// honoring each host's robots.txt.
type LinkChecker struct {
	httpClient *http.Client
	robots     *robotsGate
	maxWorkers int
	userAgent  string
}

// NewLinkChecker builds a LinkChecker from config
func NewLinkChecker(cfg model.LinksConfig) *LinkChecker {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 10
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if cfg.Timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LinkChecker{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		robots:     newRobotsGate(cfg.UserAgent, timeout),
		maxWorkers: workers,
		userAgent:  cfg.UserAgent,
	}
}

// CheckAll probes every evidence URL and returns one status per input,
// in input order.
func (c *LinkChecker) CheckAll(ctx context.Context, evidence []model.Evidence) []LinkStatus {
	if len(evidence) == 0 {
		return []LinkStatus{}
	}

	statuses := make([]LinkStatus, len(evidence))
	semaphore := make(chan struct{}, c.maxWorkers)
	var wg sync.WaitGroup

	for i, ev := range evidence {
		wg.Add(1)
		go func(idx int, url string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				statuses[idx] = LinkStatus{URL: url, Error: "context cancelled"}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			statuses[idx] = c.checkWithRetry(ctx, url)
		}(i, ev.URL)
	}

	wg.Wait()
	return statuses
}

func (c *LinkChecker) check(ctx context.Context, url string) LinkStatus {
	status := LinkStatus{URL: url}

	if !c.robots.allows(ctx, url) {
		status.Skipped = true
		log.Debug().Str("url", url).Msg("robots.txt disallows probe")
		return status
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		status.Error = fmt.Sprintf("create request: %v", err)
		return status
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		status.Error = fmt.Sprintf("request failed: %v", err)
		return status
	}
	defer func() { _ = resp.Body.Close() }()

	status.StatusCode = resp.StatusCode
	status.Accessible = resp.StatusCode >= 200 && resp.StatusCode < 400
	return status
}

// checkWithRetry retries transient failures with exponential backoff
func (c *LinkChecker) checkWithRetry(ctx context.Context, url string) LinkStatus {
	var status LinkStatus
	for attempt := 0; attempt < checkMaxRetries; attempt++ {
		status = c.check(ctx, url)
		if !isRetryable(status) {
			return status
		}
		if attempt < checkMaxRetries-1 {
			checkSleepFunc(time.Duration(1<<uint(attempt)) * time.Second)
		}
	}
	return status
}

// isRetryable returns true for transient failures: 5xx, rate limiting,
// and common network errors.
func isRetryable(status LinkStatus) bool {
	if status.Skipped {
		return false
	}
	if status.StatusCode >= 500 && status.StatusCode < 600 {
		return true
	}
	if status.StatusCode == 429 {
		return true
	}
	if status.Error != "" {
		s := strings.ToLower(status.Error)
		return strings.Contains(s, "timeout") ||
			strings.Contains(s, "connection refused") ||
			strings.Contains(s, "connection reset")
	}
	return false
}
