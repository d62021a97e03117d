// Package jsonx recovers best-effort JSON objects from free-form model
// output. The oracle is a text generator, not a structured API: token
// limits and stylistic drift routinely wrap, truncate, or slightly
// corrupt otherwise valid JSON. Recovery repairs syntactic wrapping
// only; it never fabricates field values.
package jsonx

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSONFound reports that the input contains no JSON object at all.
var ErrNoJSONFound = errors.New("no JSON object found")

// MalformedJSONError reports a chunk that failed strict parsing even
// after repair. Chunk carries the offending text for diagnostics.
type MalformedJSONError struct {
	Chunk string
	Err   error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed JSON after repair: %v", e.Err)
}

func (e *MalformedJSONError) Unwrap() error {
	return e.Err
}

var fencePattern = regexp.MustCompile("```json\\s*")

// Recover extracts and parses the first JSON object embedded in raw.
func Recover(raw string) (map[string]any, error) {
	var obj map[string]any
	if err := RecoverInto(raw, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// RecoverInto extracts the first JSON object embedded in raw and
// unmarshals it into v. Returns ErrNoJSONFound when no opening brace
// exists, or a *MalformedJSONError when the repaired chunk still does
// not parse.
func RecoverInto(raw string, v any) error {
	chunk, ok := Chunk(raw)
	if !ok {
		return ErrNoJSONFound
	}
	if err := json.Unmarshal([]byte(chunk), v); err != nil {
		return &MalformedJSONError{Chunk: chunk, Err: err}
	}
	return nil
}

// Chunk isolates the first JSON object in raw and applies repairs:
// code fences are stripped, a truncated object is closed, trailing
// commas are removed, and unbalanced quotes/braces are balanced. The
// returned chunk is not guaranteed to parse; callers must still run it
// through a strict parser.
func Chunk(raw string) (string, bool) {
	s := strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
	s = strings.ReplaceAll(s, "```", "")

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	// Depth scan with a string-literal toggle so braces inside quoted
	// values do not count.
	depth := 0
	inString := false
	escaped := false
	end := -1
scan:
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				end = i
				break scan
			}
		}
	}

	var chunk string
	if end >= 0 {
		chunk = s[start : end+1]
	} else {
		// Output truncated mid-structure: synthesize the missing
		// closers instead of discarding the chunk.
		chunk = s[start:] + strings.Repeat("}", depth)
	}

	return repair(chunk), true
}

// repair applies the tolerant fixes in order: trailing commas, quote
// parity, then brace deficit.
func repair(chunk string) string {
	s := stripTrailingCommas(chunk)

	if strings.Count(s, `"`)%2 != 0 {
		s += `"`
	}

	if deficit := strings.Count(s, "{") - strings.Count(s, "}"); deficit > 0 {
		s += strings.Repeat("}", deficit)
	}

	return s
}

// stripTrailingCommas drops commas whose next significant character is
// a closing brace or bracket. It walks the chunk with the same
// string-literal toggle as the depth scan, so a literal ",}" inside a
// quoted value is left untouched.
func stripTrailingCommas(chunk string) string {
	var b strings.Builder
	b.Grow(len(chunk))

	inString := false
	escaped := false
	for i := 0; i < len(chunk); i++ {
		c := chunk[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == ',':
			j := i + 1
			for j < len(chunk) && (chunk[j] == ' ' || chunk[j] == '\t' || chunk[j] == '\n' || chunk[j] == '\r') {
				j++
			}
			if j < len(chunk) && (chunk[j] == '}' || chunk[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
