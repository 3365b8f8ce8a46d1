package orderv1

import (
	"fmt"
	"time"
)

// Book holds the outstanding orders for one item. Orders are identified by their
// position in InstaBuys or InstaSells; positions never change because orders are
// only appended.
//
// The transforms below never modify their input. They return a new Book that
// shares untouched orders with the old one, so callers must treat every Book as
// read-only and serialize writers through the record's queue key.
type Book struct {
	InstaBuys  []Order `json:"instaBuys"`
	InstaSells []Order `json:"instaSells"`
}

// Orders returns the list for side.
func (b Book) Orders(side Side) ([]Order, error) {
	switch side {
	case SideBuy:
		return b.InstaBuys, nil
	case SideSell:
		return b.InstaSells, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidSide, side)
}

// Order returns a copy of the order at index on side.
func (b Book) Order(side Side, index int) (Order, error) {
	orders, err := b.Orders(side)
	if err != nil {
		return Order{}, err
	}
	if index < 0 || index >= len(orders) {
		return Order{}, fmt.Errorf("%w: %s[%d] of %d", ErrOrderNotFound, side, index, len(orders))
	}
	return orders[index].clone(), nil
}

// Empty reports whether the book has no orders at all.
func (b Book) Empty() bool {
	return len(b.InstaBuys) == 0 && len(b.InstaSells) == 0
}

func (b Book) with(side Side, orders []Order) Book {
	if side == SideBuy {
		b.InstaBuys = orders
	} else {
		b.InstaSells = orders
	}
	return b
}

// replace returns a copy of the side's list with order at index swapped in.
func (b Book) replace(side Side, index int, order Order) Book {
	orders, _ := b.Orders(side)
	next := make([]Order, len(orders))
	copy(next, orders)
	next[index] = order
	return b.with(side, next)
}

// PlaceOrder appends order to side and returns the new book with the order's index.
// Only the order invariants are checked; affordability is the caller's concern.
func PlaceOrder(b Book, side Side, order Order) (Book, int, error) {
	orders, err := b.Orders(side)
	if err != nil {
		return b, -1, err
	}
	if err := order.Validate(); err != nil {
		return b, -1, err
	}

	next := make([]Order, len(orders), len(orders)+1)
	copy(next, orders)
	next = append(next, order.clone())
	return b.with(side, next), len(orders), nil
}

// Fill adds amount to the filled quantity of the order at index. The order must be
// active at now.
func Fill(b Book, side Side, index int, amount int64, now time.Time, window time.Duration) (Book, error) {
	if amount < 1 {
		return b, fmt.Errorf("%w: fill %d", ErrInvalidAmount, amount)
	}
	order, err := b.Order(side, index)
	if err != nil {
		return b, err
	}
	if !order.Active(now, window) {
		return b, fmt.Errorf("%w: %s[%d] filled %d of %d, expires %s",
			ErrInactiveOrder, side, index, order.FilledAmount, order.Num, order.ExpiresAt(window).UTC().Format(time.RFC3339))
	}
	if amount > order.Remaining() {
		return b, fmt.Errorf("%w: %s[%d] fill %d, remaining %d", ErrOverfill, side, index, amount, order.Remaining())
	}

	order.FilledAmount += amount
	return b.replace(side, index, order), nil
}

// Claim adds amount to the claimed quantity of the order at index. Expired orders can
// still be claimed.
func Claim(b Book, side Side, index int, amount int64) (Book, error) {
	if amount < 1 {
		return b, fmt.Errorf("%w: claim %d", ErrInvalidAmount, amount)
	}
	order, err := b.Order(side, index)
	if err != nil {
		return b, err
	}
	if amount > order.Unclaimed() {
		return b, fmt.Errorf("%w: %s[%d] claim %d, unclaimed %d", ErrOverclaim, side, index, amount, order.Unclaimed())
	}

	order.ClaimedAmount += amount
	return b.replace(side, index, order), nil
}
