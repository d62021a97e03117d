package model

import "strings"

// Claim represents a factual assertion extracted from text, pending
// verification. Claims come in two forms: generic (subject/predicate
// and an optional object) and route (origin/destination with a stated
// duration and fare). A single claim never mixes the two forms.
//
// Claims are immutable once produced: extraction creates them, the
// verifier reads them, and the resulting verification embeds them.
type Claim struct {
	Subject   string `json:"subject,omitempty"`
	Predicate string `json:"predicate,omitempty"`
	Object    string `json:"object,omitempty"`

	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Duration string `json:"duration,omitempty"`
	Fare     string `json:"fare,omitempty"`
}

// IsRoute reports whether the claim is in route form.
func (c Claim) IsRoute() bool {
	return c.From != "" || c.To != ""
}

// Text renders the claim as a single line for prompts and reports.
func (c Claim) Text() string {
	if c.IsRoute() {
		return c.From + "→" + c.To
	}
	parts := []string{c.Subject, c.Predicate}
	if c.Object != "" {
		parts = append(parts, c.Object)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
