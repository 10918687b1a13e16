package types

import "errors"

// Sentinel errors, wrapped at call sites with fmt.Errorf("...: %w", ...)
// and matched with errors.Is.
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidSnapshot        = errors.New("invalid snapshot")
	ErrSnapshotNotFound       = errors.New("snapshot not found")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrInvalidPrice           = errors.New("invalid price")
	ErrInsufficientHoldings   = errors.New("insufficient holdings")
	ErrInsufficientCapital    = errors.New("insufficient capital")
	ErrDailyLimitReached      = errors.New("daily trade limit reached")
	ErrUnknownSymbol          = errors.New("unknown symbol")
	ErrConflictingSymbol      = errors.New("conflicting symbol")
	ErrPriceSourceUnavailable = errors.New("price source unavailable")
)
