package trade

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSymbol      = errors.New("invalid symbol")
	ErrInvalidShares      = errors.New("shares must be a positive number")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNotHeld            = errors.New("symbol not held")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrQuoteUnavailable   = errors.New("quote unavailable")
)

// InsufficientFundsError reports a buy the balance cannot cover.
type InsufficientFundsError struct {
	Symbol  string
	Cost    float64
	Balance float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: cost %.2f exceeds balance %.2f", ErrInsufficientFunds, e.Cost, e.Balance)
}

func (e *InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }

// InsufficientSharesError reports a sell larger than the holding.
type InsufficientSharesError struct {
	Symbol    string
	Requested float64
	Available float64
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("%s: %s has %g, requested %g", ErrInsufficientShares, e.Symbol, e.Available, e.Requested)
}

func (e *InsufficientSharesError) Is(target error) bool { return target == ErrInsufficientShares }
