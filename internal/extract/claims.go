// Package extract turns free text into structured claims. It is a
// best-effort heuristic extractor, not an NLP system: sentences are
// split on terminal punctuation and resolved by topic-particle
// matching, and route claims are pulled out by pattern.
package extract

import (
	"regexp"
	"strings"

	"github.com/uradori/uradori/internal/model"
)

var (
	// "topic は predicate" — the topic particle marks the subject.
	topicPattern = regexp.MustCompile(`^(.*?)は(.+)$`)

	// ORIGIN→DESTINATION ... 所要時間: N分 ... 運賃: ¥amount
	routePattern = regexp.MustCompile(`([\w\p{Han}]+)→([\w\p{Han}]+).*?所要時間[:：]?\s*([0-9]+分).*?運賃[:：]?\s*(¥?\d+(?:,\d+)?)`)
)

// Claims extracts generic claims from text. Pure function: the same
// input always yields the same claim sequence. Empty or whitespace-only
// input yields an empty sequence.
func Claims(text string) []model.Claim {
	sentences := splitSentences(text)
	claims := make([]model.Claim, 0, len(sentences))
	for _, s := range sentences {
		claims = append(claims, resolveClaim(s))
	}
	return claims
}

// RouteClaims extracts route claims (origin/destination/duration/fare)
// from text, in order of appearance.
func RouteClaims(text string) []model.Claim {
	matches := routePattern.FindAllStringSubmatch(text, -1)
	claims := make([]model.Claim, 0, len(matches))
	for _, m := range matches {
		claims = append(claims, model.Claim{
			From:     m[1],
			To:       m[2],
			Duration: m[3],
			Fare:     m[4],
		})
	}
	return claims
}

// splitSentences splits on sentence-terminal punctuation and newlines,
// dropping empty fragments.
func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '。' || r == '!' || r == '?' || r == '\n'
	})

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// resolveClaim turns one sentence into a claim. Sentences with no
// extractable subject still yield a claim with an empty subject —
// downstream consumers treat those as low confidence rather than
// dropping them.
func resolveClaim(sentence string) model.Claim {
	if m := topicPattern.FindStringSubmatch(sentence); m != nil {
		return model.Claim{
			Subject:   strings.TrimSpace(m[1]),
			Predicate: strings.TrimSpace(m[2]),
		}
	}

	fields := strings.Fields(sentence)
	if len(fields) == 0 {
		return model.Claim{}
	}
	return model.Claim{
		Subject:   fields[0],
		Predicate: strings.Join(fields[1:], " "),
	}
}
