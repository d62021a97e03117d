package oracle

import (
	"context"
	"errors"
	"testing"
)

// scriptedClient returns canned responses in sequence and records the
// options of each call.
type scriptedClient struct {
	responses []*Response
	errs      []error
	calls     []Options
}

func (c *scriptedClient) Model() string { return "scripted" }

func (c *scriptedClient) Generate(_ context.Context, _ string, opts Options) (*Response, error) {
	i := len(c.calls)
	c.calls = append(c.calls, opts)
	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	return c.responses[i], nil
}

func TestRetrier_GrowsBudgetOnTruncation(t *testing.T) {
	client := &scriptedClient{
		responses: []*Response{
			{Text: "partial", FinishReason: FinishMaxTokens, Truncated: true},
			{Text: "still partial", FinishReason: FinishMaxTokens, Truncated: true},
			{Text: "complete", FinishReason: FinishStop},
		},
	}

	r := NewRetrier(client, nil, 512, 4096, 3)
	resp, err := r.Generate(context.Background(), "prompt", Options{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.Text != "complete" {
		t.Errorf("expected the third response, got %q", resp.Text)
	}
	if len(client.calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(client.calls))
	}
	if client.calls[2].MaxOutputTokens <= client.calls[0].MaxOutputTokens {
		t.Errorf("budget must grow: call 1 got %d, call 3 got %d",
			client.calls[0].MaxOutputTokens, client.calls[2].MaxOutputTokens)
	}
}

func TestRetrier_BudgetCeiling(t *testing.T) {
	client := &scriptedClient{
		responses: []*Response{
			{Text: "a", Truncated: true},
			{Text: "b", Truncated: true},
			{Text: "c", Truncated: true},
		},
	}

	r := NewRetrier(client, nil, 3000, 4096, 3)
	if _, err := r.Generate(context.Background(), "prompt", Options{}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for i, call := range client.calls {
		if call.MaxOutputTokens > 4096 {
			t.Errorf("call %d exceeded ceiling: %d", i+1, call.MaxOutputTokens)
		}
	}
}

func TestRetrier_ExhaustedAttemptsReturnsLastResponse(t *testing.T) {
	client := &scriptedClient{
		responses: []*Response{
			{Text: "t1", Truncated: true},
			{Text: "t2", Truncated: true},
			{Text: "t3", Truncated: true},
		},
	}

	r := NewRetrier(client, nil, 256, 4096, 3)
	resp, err := r.Generate(context.Background(), "prompt", Options{})
	if err != nil {
		t.Fatalf("repeated truncation must not fail: %v", err)
	}
	if resp.Text != "t3" {
		t.Errorf("expected the last response, got %q", resp.Text)
	}
	if !resp.Truncated {
		t.Error("truncation must still be reported to the caller")
	}
	if len(client.calls) != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", len(client.calls))
	}
}

func TestRetrier_NoRetryOnFailure(t *testing.T) {
	client := &scriptedClient{
		errs: []error{ErrNoCandidates},
	}

	r := NewRetrier(client, nil, 256, 4096, 3)
	_, err := r.Generate(context.Background(), "prompt", Options{})
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
	if len(client.calls) != 1 {
		t.Errorf("failures other than truncation must not be retried, got %d calls", len(client.calls))
	}
}

func TestRetrier_NoRetryWhenNotTruncated(t *testing.T) {
	client := &scriptedClient{
		responses: []*Response{{Text: "done", FinishReason: FinishStop}},
	}

	r := NewRetrier(client, nil, 256, 4096, 3)
	resp, err := r.Generate(context.Background(), "prompt", Options{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Text != "done" || len(client.calls) != 1 {
		t.Errorf("expected a single call, got %d", len(client.calls))
	}
}

func TestRetrier_CallerBudgetRespected(t *testing.T) {
	client := &scriptedClient{
		responses: []*Response{{Text: "done"}},
	}

	r := NewRetrier(client, nil, 256, 4096, 3)
	if _, err := r.Generate(context.Background(), "prompt", Options{MaxOutputTokens: 1024}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if client.calls[0].MaxOutputTokens != 1024 {
		t.Errorf("caller budget ignored: got %d", client.calls[0].MaxOutputTokens)
	}
}
