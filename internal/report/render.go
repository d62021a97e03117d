// Package report renders verification outcomes as human-readable
// Japanese reports. Rendering is deterministic: the same results
// always produce the same text, in input order.
package report

import (
	"fmt"
	"strings"

	"github.com/uradori/uradori/internal/model"
)

// Result pairs a claim with its verification outcome. Exactly one of
// Verification and Err is set: a claim whose check failed still
// appears in the report, marked as unverifiable.
type Result struct {
	Claim        model.Claim         `json:"claim"`
	Verification *model.Verification `json:"verification,omitempty"`
	Err          error               `json:"-"`
}

// ErrText returns the failure text for JSON and report output
func (r Result) ErrText() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Render produces the generic fact-check report. An empty result set
// yields the header alone.
func Render(results []Result) string {
	var b strings.Builder
	b.WriteString("### FactCheck レポート\n")

	for _, r := range results {
		fmt.Fprintf(&b, "- **Claim:** %s\n", r.Claim.Text())

		if r.Err != nil {
			fmt.Fprintf(&b, "  - ⚠ 検証失敗: %s\n", r.Err.Error())
			continue
		}

		if r.Verification.IsCorrect {
			b.WriteString("  - ✅ 正しい\n")
		} else {
			b.WriteString("  - ❌ 誤り\n")
		}

		if len(r.Verification.Evidence) > 0 {
			b.WriteString("  - 根拠:\n")
			for i, ev := range r.Verification.Evidence {
				fmt.Fprintf(&b, "    %d. %s %q\n", i+1, ev.URL, ev.Snippet)
			}
		}
	}

	return b.String()
}

// RenderRoute produces the route fact-check report. An empty result
// set yields the header alone.
func RenderRoute(results []model.RouteVerification) string {
	var b strings.Builder
	b.WriteString("◆FactCheck結果\n")

	for _, r := range results {
		fmt.Fprintf(&b, "– Claim: “%s→%s”\n", r.Claim.From, r.Claim.To)

		if r.IsDurationCorrect {
			fmt.Fprintf(&b, "  → 所要時間: ✔︎ (%s)\n", r.OfficialDuration)
		} else {
			fmt.Fprintf(&b, "  → 所要時間: ✖︎ (公式: %s)\n", r.OfficialDuration)
		}

		if r.IsFareCorrect {
			fmt.Fprintf(&b, "  → 運賃: ✔︎ (%s)\n", r.OfficialFare)
		} else {
			fmt.Fprintf(&b, "  → 運賃: ✖︎ (公式: %s)\n", r.OfficialFare)
		}

		if r.SourceURL != "" {
			fmt.Fprintf(&b, "  → 根拠: %s\n", r.SourceURL)
		}
	}

	return b.String()
}
