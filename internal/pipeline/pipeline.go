// Package pipeline orchestrates the full check: extract claims, fan
// them out to workers for verification, and reassemble the results in
// claim order.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/uradori/uradori/internal/extract"
	"github.com/uradori/uradori/internal/model"
	"github.com/uradori/uradori/internal/report"
	"github.com/uradori/uradori/internal/validate"
	"github.com/uradori/uradori/internal/verify"
	"github.com/uradori/uradori/internal/worker"
)

// Pipeline wires extraction, verification and reporting together.
// transit and links may be nil when route checking or link probing is
// not configured.
type Pipeline struct {
	verifier *verify.Verifier
	transit  *verify.TransitClient
	links    *validate.LinkChecker
	workers  int
}

// New builds a Pipeline. workers bounds concurrent verifications.
func New(verifier *verify.Verifier, transit *verify.TransitClient, links *validate.LinkChecker, workers int) *Pipeline {
	if workers <= 0 {
		workers = 4
	}
	return &Pipeline{
		verifier: verifier,
		transit:  transit,
		links:    links,
		workers:  workers,
	}
}

// verifyTask checks one claim on the pool
type verifyTask struct {
	idx      int
	claim    model.Claim
	verifier *verify.Verifier
}

// verifyOutcome carries the result back with its batch position
type verifyOutcome struct {
	idx          int
	claim        model.Claim
	verification *model.Verification
	err          error
}

func (o *verifyOutcome) Index() int { return o.idx }
func (o *verifyOutcome) Err() error { return o.err }

func (t *verifyTask) Run(ctx context.Context) worker.Outcome {
	v, err := t.verifier.Verify(ctx, t.claim)
	return &verifyOutcome{idx: t.idx, claim: t.claim, verification: v, err: err}
}

// CheckText extracts generic claims from text and verifies them
// concurrently. Results follow claim extraction order. A claim whose
// verification failed is still present, carrying its error; only an
// empty extraction short-circuits.
func (p *Pipeline) CheckText(ctx context.Context, text string) ([]report.Result, error) {
	claims := extract.Claims(text)
	if len(claims) == 0 {
		return []report.Result{}, nil
	}

	return p.verifyAll(ctx, claims), nil
}

// verifyAll fans claims out to the pool and reassembles results in
// claim order. The caller's context reaches every oracle call through
// the pool, so a CLI timeout or a dropped HTTP request aborts the batch.
func (p *Pipeline) verifyAll(ctx context.Context, claims []model.Claim) []report.Result {
	log.Info().Int("claims", len(claims)).Int("workers", p.workers).Msg("verifying claims")

	pool := worker.NewPool(p.workers)
	pool.Start(ctx)

	for i, claim := range claims {
		pool.Submit(&verifyTask{idx: i, claim: claim, verifier: p.verifier})
	}

	outcomes := pool.Wait()

	// Claims the pool never ran (cancelled before starting) produce no
	// outcome; they still get a result carrying the cancellation.
	results := make([]report.Result, len(claims))
	for i, claim := range claims {
		results[i] = report.Result{Claim: claim, Err: ctx.Err()}
	}
	for _, outcome := range outcomes {
		o := outcome.(*verifyOutcome)
		results[o.idx] = report.Result{
			Claim:        o.claim,
			Verification: o.verification,
			Err:          o.err,
		}
	}
	return results
}

// CheckRoutes extracts route claims from text and checks each against
// the authoritative source. Verifications follow claim order; failed
// claims are dropped from the result and their errors joined into the
// returned error, so callers get both the partial result and the
// failures.
func (p *Pipeline) CheckRoutes(ctx context.Context, text string) ([]model.RouteVerification, error) {
	if p.transit == nil {
		return nil, fmt.Errorf("route checking is not configured")
	}

	claims := extract.RouteClaims(text)
	if len(claims) == 0 {
		return []model.RouteVerification{}, nil
	}

	verifications := make([]model.RouteVerification, 0, len(claims))
	var errs []error
	for _, claim := range claims {
		v, err := p.transit.VerifyRoute(ctx, claim)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		verifications = append(verifications, *v)
	}
	return verifications, errors.Join(errs...)
}

// CheckHTML strips the document to visible text and runs CheckText
func (p *Pipeline) CheckHTML(ctx context.Context, htmlContent string) ([]report.Result, error) {
	claims, err := extract.ClaimsFromHTML(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("extract from HTML: %w", err)
	}
	if len(claims) == 0 {
		return []report.Result{}, nil
	}
	return p.verifyAll(ctx, claims), nil
}

// CheckLinks probes the evidence URLs of successful verifications.
// Returns nil when link checking is not configured.
func (p *Pipeline) CheckLinks(ctx context.Context, results []report.Result) []validate.LinkStatus {
	if p.links == nil {
		return nil
	}

	var evidence []model.Evidence
	for _, r := range results {
		if r.Verification != nil {
			evidence = append(evidence, r.Verification.Evidence...)
		}
	}
	if len(evidence) == 0 {
		return []validate.LinkStatus{}
	}
	return p.links.CheckAll(ctx, evidence)
}
