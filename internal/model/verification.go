package model

// Evidence is a cited source backing a verdict: a URL plus the snippet
// the oracle quoted from it.
type Evidence struct {
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Verification is the outcome of checking one generic claim against
// the oracle. The source claim is always attached before a
// Verification is handed to any caller.
type Verification struct {
	Claim     Claim      `json:"claim"`
	IsCorrect bool       `json:"isCorrect"`
	Evidence  []Evidence `json:"evidence,omitempty"`
}

// RouteVerification is the outcome of checking one route claim against
// the authoritative transit source. Stated duration and fare are
// compared by exact string equality; the official values and the
// queried source URL are always recorded.
type RouteVerification struct {
	Claim             Claim  `json:"claim"`
	IsDurationCorrect bool   `json:"isDurationCorrect"`
	IsFareCorrect     bool   `json:"isFareCorrect"`
	OfficialDuration  string `json:"officialDuration"`
	OfficialFare      string `json:"officialFare"`
	SourceURL         string `json:"sourceUrl"`
}
