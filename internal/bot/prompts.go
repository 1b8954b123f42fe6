package bot

import (
	"sync"
	"time"
)

// Prompt is an open "how many shares?" question raised by a Buy Stock button.
type Prompt struct {
	Symbol  string
	Price   float64 // price shown on the button
	Expires time.Time
}

// PromptBook holds at most one open prompt per user per chat.
type PromptBook struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending map[string]Prompt
	now     func() time.Time
}

// NewPromptBook creates a book whose prompts expire after ttl.
func NewPromptBook(ttl time.Duration) *PromptBook {
	return &PromptBook{
		ttl:     ttl,
		pending: map[string]Prompt{},
		now:     time.Now,
	}
}

func promptKey(chatID, userID string) string { return chatID + ":" + userID }

// Open replaces any prompt the user already has in the chat.
func (p *PromptBook) Open(chatID, userID, symbol string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[promptKey(chatID, userID)] = Prompt{
		Symbol:  symbol,
		Price:   price,
		Expires: p.now().Add(p.ttl),
	}
}

// Take removes and returns the user's live prompt.
func (p *PromptBook) Take(chatID, userID string) (Prompt, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := promptKey(chatID, userID)
	pr, ok := p.pending[key]
	if !ok {
		return Prompt{}, false
	}
	delete(p.pending, key)
	if !p.now().Before(pr.Expires) {
		return Prompt{}, false
	}
	return pr, true
}

// Sweep drops expired prompts and reports how many were removed.
func (p *PromptBook) Sweep() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	n := 0
	for key, pr := range p.pending {
		if !now.Before(pr.Expires) {
			delete(p.pending, key)
			n++
		}
	}
	return n
}

// Len is the number of prompts held, expired or not.
func (p *PromptBook) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}
