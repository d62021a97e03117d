// Package verify checks claims: generic claims against the judgment
// oracle, route claims against the authoritative transit source.
package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/uradori/uradori/internal/cache"
	"github.com/uradori/uradori/internal/jsonx"
	"github.com/uradori/uradori/internal/model"
	"github.com/uradori/uradori/internal/oracle"
)

// Verifier checks generic claims against the judgment oracle. Verdicts
// are cached by prompt when a cache is attached; the cache may be nil.
type Verifier struct {
	oracle      oracle.Client
	cache       *cache.VerdictCache
	temperature float64
}

// NewVerifier builds a Verifier. cache may be nil to disable caching.
func NewVerifier(client oracle.Client, verdicts *cache.VerdictCache, temperature float64) *Verifier {
	return &Verifier{
		oracle:      client,
		cache:       verdicts,
		temperature: temperature,
	}
}

// verdictWire is the JSON shape the oracle is instructed to return.
type verdictWire struct {
	IsCorrect bool             `json:"isCorrect"`
	Evidence  []model.Evidence `json:"evidence"`
}

// Verify checks one claim and returns its verification with the claim
// attached. Oracle failures and unrecoverable responses are returned
// as errors; the caller decides how a failed claim is reported.
func (v *Verifier) Verify(ctx context.Context, claim model.Claim) (*model.Verification, error) {
	prompt := buildPrompt(claim)

	if cached, ok := v.cache.Get(prompt); ok {
		log.Debug().Str("claim", claim.Text()).Msg("verdict cache hit")
		cached.Claim = claim
		return cached, nil
	}

	resp, err := v.oracle.Generate(ctx, prompt, oracle.Options{Temperature: v.temperature})
	if err != nil {
		return nil, fmt.Errorf("verify %q: %w", claim.Text(), err)
	}

	var wire verdictWire
	if err := jsonx.RecoverInto(resp.Text, &wire); err != nil {
		return nil, fmt.Errorf("verify %q: %w", claim.Text(), err)
	}

	verification := &model.Verification{
		Claim:     claim,
		IsCorrect: wire.IsCorrect,
		Evidence:  wire.Evidence,
	}
	v.cache.Put(prompt, verification)
	return verification, nil
}

// buildPrompt renders the research instruction for one claim. The
// oracle is told to answer with a bare JSON object so the recovery
// layer has a predictable shape to find.
func buildPrompt(claim model.Claim) string {
	var b strings.Builder
	b.WriteString("以下の主張が正しいか調べ、JSONで回答してください。")
	b.WriteString("公式サイトや複数ソースを優先して検索し、根拠となるURLと抜粋を示してください。\n")
	b.WriteString("主張: ")
	b.WriteString(claim.Text())
	b.WriteString("\n\n")
	b.WriteString("回答は次の形式のJSONオブジェクトのみ:\n")
	b.WriteString(`{"isCorrect": true または false, "evidence": [{"url": "...", "snippet": "..."}]}`)
	return b.String()
}
