// Package evaluate scores text against named criteria and, when the
// score falls below a threshold, asks the oracle for a corrected
// version in a second pass.
package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/uradori/uradori/internal/jsonx"
	"github.com/uradori/uradori/internal/model"
	"github.com/uradori/uradori/internal/oracle"
)

// Evaluator runs the score-then-fix pipeline against the oracle.
type Evaluator struct {
	oracle oracle.Client
	cfg    model.EvaluateConfig
}

// NewEvaluator builds an Evaluator from config
func NewEvaluator(client oracle.Client, cfg model.EvaluateConfig) *Evaluator {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 8
	}
	return &Evaluator{oracle: client, cfg: cfg}
}

// Evaluate scores text against criteria. When the correctness score is
// below the threshold, a second oracle call produces a correction and
// explanation, merged over the first pass. A failure in either pass
// propagates; a partial result is never returned.
func (e *Evaluator) Evaluate(ctx context.Context, text, criteria string) (*model.EvaluationResult, error) {
	scored, err := e.score(ctx, text, criteria)
	if err != nil {
		return nil, fmt.Errorf("evaluate: score pass: %w", err)
	}

	correctness, _ := scored["correctness"].(float64)
	if correctness >= e.cfg.Threshold {
		return resultFromMap(scored)
	}

	log.Info().
		Float64("correctness", correctness).
		Float64("threshold", e.cfg.Threshold).
		Msg("score below threshold, requesting fix")

	fixed, err := e.fix(ctx, text, criteria, scored)
	if err != nil {
		return nil, fmt.Errorf("evaluate: fix pass: %w", err)
	}

	// Fix output wins key by key; score-pass fields it omits survive.
	for k, v := range fixed {
		scored[k] = v
	}
	return resultFromMap(scored)
}

func (e *Evaluator) score(ctx context.Context, text, criteria string) (map[string]any, error) {
	resp, err := e.oracle.Generate(ctx, scorePrompt(text, criteria), oracle.Options{
		MaxOutputTokens: e.cfg.ScoreBudget,
	})
	if err != nil {
		return nil, err
	}
	return jsonx.Recover(resp.Text)
}

func (e *Evaluator) fix(ctx context.Context, text, criteria string, scored map[string]any) (map[string]any, error) {
	scoredJSON, err := json.Marshal(scored)
	if err != nil {
		return nil, fmt.Errorf("marshal score: %w", err)
	}

	resp, err := e.oracle.Generate(ctx, fixPrompt(text, criteria, string(scoredJSON)), oracle.Options{
		MaxOutputTokens: e.cfg.FixBudget,
	})
	if err != nil {
		return nil, err
	}
	return jsonx.Recover(resp.Text)
}

func resultFromMap(m map[string]any) (*model.EvaluationResult, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("evaluate: encode result: %w", err)
	}
	var result model.EvaluationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("evaluate: decode result: %w", err)
	}
	return &result, nil
}

// scorePrompt instructs the oracle to emit only the score envelope.
// Comments and prose are explicitly forbidden so the recovery layer
// has the least possible work to do.
func scorePrompt(text, criteria string) string {
	var b strings.Builder
	b.WriteString("以下の文章を基準に照らして採点してください。\n")
	b.WriteString("基準: ")
	b.WriteString(criteria)
	b.WriteString("\n文章:\n")
	b.WriteString(text)
	b.WriteString("\n\n")
	b.WriteString("回答は次の形式のJSONオブジェクトのみ。コメントや説明文は一切禁止:\n")
	b.WriteString(`{"correctness": 0から10の数値, "sources": ["根拠URL", ...]}`)
	return b.String()
}

// fixPrompt embeds the first-pass score and asks for a correction in
// the same envelope, extended with correction and explanation fields.
func fixPrompt(text, criteria, scoredJSON string) string {
	var b strings.Builder
	b.WriteString("前回の採点結果は以下の通りです:\n")
	b.WriteString(scoredJSON)
	b.WriteString("\n\n基準: ")
	b.WriteString(criteria)
	b.WriteString("\n文章:\n")
	b.WriteString(text)
	b.WriteString("\n\n")
	b.WriteString("スコアが低いため、文章を修正してください。")
	b.WriteString("回答は同じ形式のJSONオブジェクトのみ。コメントは禁止:\n")
	b.WriteString(`{"correctness": 数値, "sources": [...], "correction": "修正後の文章", "explanation": "修正理由"}`)
	return b.String()
}
