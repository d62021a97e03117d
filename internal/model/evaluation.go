package model

// EvaluationResult is the outcome of scoring text against named
// criteria. Correction and Explanation are present only when the
// first-pass score fell below the caller's threshold and a fix pass
// ran.
type EvaluationResult struct {
	Correctness float64  `json:"correctness"`
	Sources     []string `json:"sources"`
	Correction  string   `json:"correction,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// Corrected reports whether a fix pass contributed to this result.
func (r EvaluationResult) Corrected() bool {
	return r.Correction != ""
}
