package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// UserAccount is one player's cash and share holdings.
type UserAccount struct {
	Username  string    `json:"username,omitempty"`
	Balance   float64   `json:"money"`
	Holdings  Holdings  `json:"portfolio"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the account.
func (a UserAccount) Clone() UserAccount {
	c := a
	c.Holdings = make(Holdings, len(a.Holdings))
	for sym, n := range a.Holdings {
		c.Holdings[sym] = n
	}
	return c
}

// TotalShares sums the share count over all holdings.
func (a UserAccount) TotalShares() float64 {
	var total float64
	for _, n := range a.Holdings {
		total += n
	}
	return total
}

// Ledger maps a user id to that user's account.
type Ledger map[string]UserAccount

// Holdings maps an upper-case symbol to a share count.
type Holdings map[string]float64

// legacyAggregateKey is the running share total older ledgers mixed into the portfolio object.
const legacyAggregateKey = "shares"

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// UnmarshalJSON accepts both {"TSLA": 2} and the older {"tsla": {"shares": 2}, "shares": 2} layout.
func (h *Holdings) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Holdings, len(raw))
	for key, val := range raw {
		var n float64
		if err := json.Unmarshal(val, &n); err == nil {
			if key == legacyAggregateKey {
				continue
			}
			out[NormalizeSymbol(key)] += n
			continue
		}
		var nested struct {
			Shares float64 `json:"shares"`
		}
		if err := json.Unmarshal(val, &nested); err != nil {
			return fmt.Errorf("holding %q: %w", key, err)
		}
		out[NormalizeSymbol(key)] += nested.Shares
	}
	*h = out
	return nil
}
