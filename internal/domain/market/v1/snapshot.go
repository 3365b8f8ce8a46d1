package marketv1

import (
	"time"

	orderv1 "github.com/muhammadchandra19/economy/internal/domain/order/v1"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is how an absent price is rendered.
const NotAvailable = "N/A"

var printer = message.NewPrinter(language.English)

// Price is a unit price that may be absent when no order qualifies.
type Price struct {
	Amount  int64
	Present bool
}

// PriceOf returns a present price.
func PriceOf(amount int64) Price {
	return Price{Amount: amount, Present: true}
}

// String renders the price with digit grouping, or NotAvailable.
func (p Price) String() string {
	if !p.Present {
		return NotAvailable
	}
	return printer.Sprintf("%d", p.Amount)
}

// Snapshot is the derived market view of one book at one instant. It is never
// persisted. A side with no qualifying order has an absent price, zero volume and
// index -1.
type Snapshot struct {
	BestBuyPrice  Price
	BestSellPrice Price
	BuyVolume     int64
	SellVolume    int64

	// BestBuyIndex and BestSellIndex locate the orders that set the best prices.
	BestBuyIndex  int
	BestSellIndex int

	Edition    int64
	HasEdition bool
	ResolvedAt time.Time
}

// EditionOrder is an order that qualifies for an edition, with its position in the book.
type EditionOrder struct {
	Index int
	Order orderv1.Order
}

// Claimable is an order with proceeds its owner has not withdrawn.
// Buy orders yield Items, sell orders yield Bucks.
type Claimable struct {
	Side  orderv1.Side
	Index int
	Order orderv1.Order
	Items int64
	Bucks int64
}

// String renders the claimable proceeds like the orders page does.
func (c Claimable) String() string {
	switch {
	case c.Items > 0:
		return printer.Sprintf("%d items", c.Items)
	case c.Bucks > 0:
		return printer.Sprintf("$%d", c.Bucks)
	}
	return "None"
}
