package cache

import (
	"testing"
	"time"

	"github.com/uradori/uradori/internal/model"
)

func TestKey_Deterministic(t *testing.T) {
	k1 := Key("gemini-2.5-flash", "prompt")
	k2 := Key("gemini-2.5-flash", "prompt")
	if k1 != k2 {
		t.Errorf("same inputs produced different keys: %s vs %s", k1, k2)
	}

	if Key("gemini-2.5-flash", "prompt") == Key("gemini-2.5-pro", "prompt") {
		t.Error("different models must produce different keys")
	}
	if Key("gemini-2.5-flash", "a") == Key("gemini-2.5-flash", "b") {
		t.Error("different prompts must produce different keys")
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("expected miss for unknown key")
	}

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, found := c.Get("k")
	if !found || string(got) != "v" {
		t.Errorf("expected hit with value v, got %q found=%v", got, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expected miss after delete")
	}
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("expected entry to expire")
	}
}

func TestMemoryCache_TTLFloors(t *testing.T) {
	c := NewMemoryCache(0, 0)
	if c.defaultTTL != fallbackVerdictTTL {
		t.Errorf("non-positive TTL must fall back to %v, got %v", fallbackVerdictTTL, c.defaultTTL)
	}

	// A non-positive per-entry TTL must inherit the default, never pin
	// the entry forever.
	c = NewMemoryCache(20*time.Millisecond, time.Minute)
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, found := c.Get("k"); !found {
		t.Fatal("expected a fresh entry to be readable")
	}
	time.Sleep(50 * time.Millisecond)
	if _, found := c.Get("k"); found {
		t.Error("entry stored with zero TTL must still expire")
	}
}

func TestVerdictCache_RoundTrip(t *testing.T) {
	vc := NewVerdictCache(NewMemoryCache(time.Minute, time.Minute), "gemini-2.5-flash", time.Minute)

	if _, found := vc.Get("prompt"); found {
		t.Error("expected miss before Put")
	}

	v := &model.Verification{
		Claim:     model.Claim{Subject: "宇佐八幡", Predicate: "大分空港まで直通バスがある"},
		IsCorrect: true,
		Evidence:  []model.Evidence{{URL: "https://example.com", Snippet: "公式時刻表"}},
	}
	vc.Put("prompt", v)

	got, found := vc.Get("prompt")
	if !found {
		t.Fatal("expected hit after Put")
	}
	if got.Claim.Subject != v.Claim.Subject || !got.IsCorrect || len(got.Evidence) != 1 {
		t.Errorf("cached verdict mismatch: %+v", got)
	}
}

func TestVerdictCache_NilSafe(t *testing.T) {
	var vc *VerdictCache
	if _, found := vc.Get("prompt"); found {
		t.Error("nil cache must report a miss")
	}
	vc.Put("prompt", &model.Verification{}) // must not panic
}
