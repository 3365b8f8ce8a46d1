package orderv1

import (
	"fmt"
	"math"
	"time"
)

// Side selects one of the two order lists of a Book.
type Side string

const (
	// SideBuy is an instant-buy offer: the owner pays price per unit.
	SideBuy Side = "buy"
	// SideSell is an instant-sell offer: the owner delivers units at price each.
	SideSell Side = "sell"
)

// Valid reports whether s is buy or sell.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Order is one outstanding buy or sell intent.
type Order struct {
	UserID        string  `json:"userID,omitempty"`
	Price         int64   `json:"price"`
	Num           int64   `json:"num"`
	FilledAmount  int64   `json:"filledAmount"`
	ClaimedAmount int64   `json:"claimedAmount"`
	Editions      []int64 `json:"editions"`
	ListTime      int64   `json:"listTime"`
}

// NewOrder builds an unfilled order listed at now.
func NewOrder(userID string, price, num int64, editions []int64, now time.Time) Order {
	return Order{
		UserID:   userID,
		Price:    price,
		Num:      num,
		Editions: append([]int64(nil), editions...),
		ListTime: now.UnixMilli(),
	}
}

// Validate checks price, quantity and the fill/claim bounds.
func (o Order) Validate() error {
	switch {
	case o.Price <= 0:
		return fmt.Errorf("%w: price %d", ErrInvalidOrder, o.Price)
	case o.Num < 1:
		return fmt.Errorf("%w: num %d", ErrInvalidOrder, o.Num)
	case o.FilledAmount < 0 || o.FilledAmount > o.Num:
		return fmt.Errorf("%w: filled %d of %d", ErrInvalidOrder, o.FilledAmount, o.Num)
	case o.ClaimedAmount < 0 || o.ClaimedAmount > o.FilledAmount:
		return fmt.Errorf("%w: claimed %d of %d filled", ErrInvalidOrder, o.ClaimedAmount, o.FilledAmount)
	}
	if _, err := Proceeds(o.Price, o.Num); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOrder, err)
	}
	return nil
}

// Proceeds returns price*amount, or ErrOverflow when it does not fit in int64.
func Proceeds(price, amount int64) (int64, error) {
	if price < 0 || amount < 0 {
		return 0, fmt.Errorf("%w: %d x %d", ErrInvalidAmount, price, amount)
	}
	if amount != 0 && price > math.MaxInt64/amount {
		return 0, fmt.Errorf("%w: %d x %d", ErrOverflow, price, amount)
	}
	return price * amount, nil
}

// ExpiresAt returns the first instant at which the order is expired.
func (o Order) ExpiresAt(window time.Duration) time.Time {
	return time.UnixMilli(o.ListTime).Add(window)
}

// Expired reports whether now is at or past the end of the expiry window.
func (o Order) Expired(now time.Time, window time.Duration) bool {
	return !now.Before(o.ExpiresAt(window))
}

// Filled reports whether the full quantity has been matched.
func (o Order) Filled() bool {
	return o.FilledAmount >= o.Num
}

// Active reports whether the order can still be matched.
func (o Order) Active(now time.Time, window time.Duration) bool {
	return !o.Filled() && !o.Expired(now, window)
}

// Remaining is the unfilled quantity.
func (o Order) Remaining() int64 {
	return o.Num - o.FilledAmount
}

// Unclaimed is the filled quantity the owner has not withdrawn yet.
func (o Order) Unclaimed() int64 {
	return o.FilledAmount - o.ClaimedAmount
}

// MatchesEdition reports whether the order can be matched against edition.
// Orders without editions are fungible and match any edition.
func (o Order) MatchesEdition(edition int64) bool {
	return len(o.Editions) == 0 || o.Editions[0] == edition
}

// clone returns a copy that shares nothing with o.
func (o Order) clone() Order {
	o.Editions = append([]int64(nil), o.Editions...)
	return o
}
