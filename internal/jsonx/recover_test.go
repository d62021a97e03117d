package jsonx

import (
	"errors"
	"reflect"
	"testing"
)

func TestRecover_FencedWithProse(t *testing.T) {
	raw := "Sure, here is the result:\n```json\n{\"isCorrect\": true, \"evidence\": [{\"url\": \"https://example.com\", \"snippet\": \"quote\"}]}\n```\nLet me know if you need more."

	obj, err := Recover(raw)
	if err != nil {
		t.Fatalf("Recover failed: %v", err)
	}

	if obj["isCorrect"] != true {
		t.Errorf("expected isCorrect=true, got %v", obj["isCorrect"])
	}
	evidence, ok := obj["evidence"].([]any)
	if !ok || len(evidence) != 1 {
		t.Errorf("expected 1 evidence entry, got %v", obj["evidence"])
	}
}

func TestRecover_PlainObject(t *testing.T) {
	obj, err := Recover(`{"correctness": 7, "sources": ["https://a.example"]}`)
	if err != nil {
		t.Fatalf("Recover failed: %v", err)
	}

	want := map[string]any{
		"correctness": float64(7),
		"sources":     []any{"https://a.example"},
	}
	if !reflect.DeepEqual(obj, want) {
		t.Errorf("got %v, want %v", obj, want)
	}
}

func TestRecover_TrailingComma(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{
			name: "object trailing comma",
			raw:  `{"a":1,}`,
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "array trailing comma",
			raw:  `{"a":[1,2,],}`,
			want: map[string]any{"a": []any{float64(1), float64(2)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := Recover(tt.raw)
			if err != nil {
				t.Fatalf("Recover failed: %v", err)
			}
			if !reflect.DeepEqual(obj, tt.want) {
				t.Errorf("got %v, want %v", obj, tt.want)
			}
		})
	}
}

func TestRecover_CommaBeforeBraceInsideString(t *testing.T) {
	// A ",}" sequence inside a string literal is data, not a trailing
	// comma; repair must not rewrite it.
	obj, err := Recover(`{"note": "a,}", "evidence": ["x,]"],}`)
	if err != nil {
		t.Fatalf("Recover failed: %v", err)
	}

	if obj["note"] != "a,}" {
		t.Errorf("quoted comma-brace must survive repair, got %v", obj["note"])
	}
	evidence, ok := obj["evidence"].([]any)
	if !ok || len(evidence) != 1 || evidence[0] != "x,]" {
		t.Errorf("quoted comma-bracket must survive repair, got %v", obj["evidence"])
	}
}

func TestRecover_TruncatedObject(t *testing.T) {
	// Truncated mid-value: missing closers are synthesized.
	obj, err := Recover(`{"summary": "ok", "scores": {"logic": 8`)
	if err != nil {
		t.Fatalf("Recover failed: %v", err)
	}
	if obj["summary"] != "ok" {
		t.Errorf("expected summary to survive truncation repair, got %v", obj["summary"])
	}
}

func TestRecover_TruncatedMidArray(t *testing.T) {
	// Mid-array truncation cannot always be repaired. Either outcome is
	// acceptable; what matters is a typed failure, never a panic.
	obj, err := Recover(`{"a":1,"b":[1,2`)
	if err != nil {
		var malformed *MalformedJSONError
		if !errors.As(err, &malformed) {
			t.Fatalf("expected MalformedJSONError, got %v", err)
		}
		if malformed.Chunk == "" {
			t.Error("expected offending chunk to be attached")
		}
		return
	}
	if obj["a"] != float64(1) {
		t.Errorf("expected a=1 in repaired object, got %v", obj["a"])
	}
}

func TestRecover_UnterminatedString(t *testing.T) {
	obj, err := Recover(`{"correction": "the fare is ¥1,550`)
	if err != nil {
		t.Fatalf("Recover failed: %v", err)
	}
	if obj["correction"] == "" {
		t.Error("expected non-empty correction after quote balancing")
	}
}

func TestRecover_NoJSON(t *testing.T) {
	tests := []string{
		"",
		"   \n\t ",
		"the oracle refused to answer in JSON",
		"```\nplain fenced text\n```",
	}

	for _, raw := range tests {
		_, err := Recover(raw)
		if !errors.Is(err, ErrNoJSONFound) {
			t.Errorf("Recover(%q): expected ErrNoJSONFound, got %v", raw, err)
		}
	}
}

func TestRecover_BracesInsideStrings(t *testing.T) {
	obj, err := Recover(`{"snippet": "code: {nested} and } stray"}`)
	if err != nil {
		t.Fatalf("Recover failed: %v", err)
	}
	if obj["snippet"] != "code: {nested} and } stray" {
		t.Errorf("braces inside string literals must not affect the scan, got %v", obj["snippet"])
	}
}

func TestRecoverInto_Struct(t *testing.T) {
	var out struct {
		IsCorrect bool `json:"isCorrect"`
		Evidence  []struct {
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"evidence"`
	}

	raw := "```json\n{\"isCorrect\": false, \"evidence\": [{\"url\": \"https://official.example\", \"snippet\": \"60分\"},]}\n```"
	if err := RecoverInto(raw, &out); err != nil {
		t.Fatalf("RecoverInto failed: %v", err)
	}

	if out.IsCorrect {
		t.Error("expected isCorrect=false")
	}
	if len(out.Evidence) != 1 || out.Evidence[0].URL != "https://official.example" {
		t.Errorf("unexpected evidence: %+v", out.Evidence)
	}
}

func TestChunk_SecondObjectIgnored(t *testing.T) {
	chunk, ok := Chunk(`prefix {"a":1} {"b":2}`)
	if !ok {
		t.Fatal("expected a chunk")
	}
	if chunk != `{"a":1}` {
		t.Errorf("expected first object only, got %q", chunk)
	}
}
