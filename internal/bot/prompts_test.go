package bot

import (
	"testing"
	"time"
)

func TestPromptBook(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewPromptBook(30 * time.Second)
	p.now = func() time.Time { return now }

	p.Open("c", "u1", "TSLA", 20)
	p.Open("c", "u2", "AAPL", 10)
	p.Open("c", "u1", "MSFT", 300)

	pr, ok := p.Take("c", "u1")
	if !ok || pr.Symbol != "MSFT" {
		t.Errorf("Take = %+v, %v; reopening should replace the prompt", pr, ok)
	}
	if _, ok := p.Take("c", "u1"); ok {
		t.Error("Take should consume the prompt")
	}
	if _, ok := p.Take("other", "u2"); ok {
		t.Error("prompts are per chat")
	}

	now = now.Add(30 * time.Second)
	if n := p.Sweep(); n != 1 {
		t.Errorf("Sweep removed %d, want 1", n)
	}
	if p.Len() != 0 {
		t.Errorf("Len = %d after sweep", p.Len())
	}
}
