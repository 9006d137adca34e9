package attack

import (
	"log/slog"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates the token footprint of response payloads handed to
// agent callers. Counting never fails at use time: without an encoder it
// falls back to a character heuristic.
type TokenCounter struct {
	encoder *tiktoken.Tiktoken
}

// NewTokenCounter loads the cl100k_base encoding. On error the returned
// counter is still usable and approximates.
func NewTokenCounter() (*TokenCounter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return &TokenCounter{}, err
	}
	return &TokenCounter{encoder: enc}, nil
}

// CountTokens returns the token count for text.
func (tc *TokenCounter) CountTokens(text string) int {
	if tc.encoder == nil {
		// English text averages about four characters per token.
		return len(text) / 4
	}
	return len(tc.encoder.Encode(text, nil, nil))
}

// tokenBudget meters response payloads against a fixed token allowance. The
// first admitted item always fits whatever its cost, so a response is never
// empty when there is something to return; after that, an item that would
// overflow closes the budget for good.
type tokenBudget struct {
	counter *TokenCounter
	limit   int
	spent   int
	items   int
	closed  bool
}

func newTokenBudget(limit int) *tokenBudget {
	if limit <= 0 {
		limit = DefaultTokenBudget
	}
	counter, err := NewTokenCounter()
	if err != nil {
		slog.Warn("token counter initialization failed, using approximation", "error", err)
	}
	return &tokenBudget{counter: counter, limit: limit}
}

// admit charges payload against the budget and reports whether the caller
// should include it. Once admit returns false the budget stays closed.
func (b *tokenBudget) admit(payload []byte) bool {
	if b.closed {
		return false
	}
	tokens := b.counter.CountTokens(string(payload))
	if b.items > 0 && b.spent+tokens > b.limit {
		b.closed = true
		return false
	}
	b.items++
	b.spent += tokens
	if b.spent > b.limit {
		b.closed = true
	}
	return true
}
