package market

import (
	"math"
	"time"

	marketv1 "github.com/muhammadchandra19/economy/internal/domain/market/v1"
	orderv1 "github.com/muhammadchandra19/economy/internal/domain/order/v1"
)

// Resolver derives market snapshots from order books. It holds no state besides the
// expiry window and takes no locks.
type Resolver struct {
	window time.Duration
}

// NewResolver creates a Resolver for orders that expire window after listing.
func NewResolver(window time.Duration) *Resolver {
	return &Resolver{window: window}
}

// Window returns the order expiry window.
func (r *Resolver) Window() time.Duration {
	return r.window
}

type resolveOptions struct {
	edition    int64
	hasEdition bool
}

// Option adjusts a resolution.
type Option func(*resolveOptions)

// WithEdition restricts resolution to orders for edition. Volume then counts
// qualifying orders instead of remaining quantity.
func WithEdition(edition int64) Option {
	return func(o *resolveOptions) {
		o.edition = edition
		o.hasEdition = true
	}
}

// Resolve computes the best prices and volumes of book at now.
//
// The best price of a side is the price of the first qualifying order in list
// order, which is the oldest one still active. Orders are not sorted by price.
func (r *Resolver) Resolve(book orderv1.Book, now time.Time, opts ...Option) *marketv1.Snapshot {
	o := &resolveOptions{}
	for _, opt := range opts {
		opt(o)
	}

	buyPrice, buyIndex, buyVolume := r.side(book.InstaBuys, now, o)
	sellPrice, sellIndex, sellVolume := r.side(book.InstaSells, now, o)

	return &marketv1.Snapshot{
		BestBuyPrice:  buyPrice,
		BestSellPrice: sellPrice,
		BuyVolume:     buyVolume,
		SellVolume:    sellVolume,
		BestBuyIndex:  buyIndex,
		BestSellIndex: sellIndex,
		Edition:       o.edition,
		HasEdition:    o.hasEdition,
		ResolvedAt:    now,
	}
}

func (r *Resolver) qualifies(order orderv1.Order, now time.Time, o *resolveOptions) bool {
	if !order.Active(now, r.window) {
		return false
	}
	return !o.hasEdition || order.MatchesEdition(o.edition)
}

func (r *Resolver) side(orders []orderv1.Order, now time.Time, o *resolveOptions) (marketv1.Price, int, int64) {
	price := marketv1.Price{}
	index := -1
	var volume int64

	for i, order := range orders {
		if !r.qualifies(order, now, o) {
			continue
		}
		if index < 0 {
			price = marketv1.PriceOf(order.Price)
			index = i
		}
		if o.hasEdition {
			volume++
		} else {
			volume += order.Remaining()
		}
	}
	return price, index, volume
}

// EditionOrders lists the active orders on side that can be matched against edition,
// in list order.
func (r *Resolver) EditionOrders(book orderv1.Book, side orderv1.Side, edition int64, now time.Time) []marketv1.EditionOrder {
	orders, err := book.Orders(side)
	if err != nil {
		return nil
	}

	o := &resolveOptions{edition: edition, hasEdition: true}
	var out []marketv1.EditionOrder
	for i, order := range orders {
		if r.qualifies(order, now, o) {
			cp, _ := book.Order(side, i)
			out = append(out, marketv1.EditionOrder{Index: i, Order: cp})
		}
	}
	return out
}

// Claimables lists the orders of userID in book that have filled quantity left to
// claim. Expired orders are included.
func Claimables(book orderv1.Book, userID string) []marketv1.Claimable {
	var out []marketv1.Claimable
	collect := func(side orderv1.Side, orders []orderv1.Order) {
		for i, order := range orders {
			if order.UserID != userID || order.Unclaimed() <= 0 {
				continue
			}
			cp, _ := book.Order(side, i)
			c := marketv1.Claimable{Side: side, Index: i, Order: cp}
			if side == orderv1.SideBuy {
				c.Items = order.Unclaimed()
			} else {
				bucks, err := orderv1.Proceeds(order.Price, order.Unclaimed())
				if err != nil {
					// only reachable for stored orders that never passed Validate
					bucks = math.MaxInt64
				}
				c.Bucks = bucks
			}
			out = append(out, c)
		}
	}
	collect(orderv1.SideBuy, book.InstaBuys)
	collect(orderv1.SideSell, book.InstaSells)
	return out
}
