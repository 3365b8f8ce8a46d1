package orderv1

import "errors"

var (
	ErrOverfill      = errors.New("fill exceeds order quantity")
	ErrOverclaim     = errors.New("claim exceeds filled quantity")
	ErrInactiveOrder = errors.New("order is not active")
	ErrOrderNotFound = errors.New("order not found in book")
	ErrInvalidSide   = errors.New("side must be buy or sell")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidOrder  = errors.New("order violates book invariants")
	ErrOverflow      = errors.New("price times quantity overflows int64")
)
