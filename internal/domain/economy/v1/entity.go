package economyv1

import (
	"errors"

	marketv1 "github.com/muhammadchandra19/economy/internal/domain/market/v1"
	orderv1 "github.com/muhammadchandra19/economy/internal/domain/order/v1"
	recordv1 "github.com/muhammadchandra19/economy/internal/domain/record/v1"
)

// ErrNotOrderOwner is returned when a user claims an order placed by someone else.
var ErrNotOrderOwner = errors.New("order belongs to another user")

// PlaceOrderRequest lists a new order. Affordability must be checked by the caller.
type PlaceOrderRequest struct {
	UserID   string
	ItemType string
	ItemID   string
	Side     orderv1.Side
	Price    int64
	Num      int64
	Editions []int64
}

// FillOrderRequest matches amount units against the order at Index.
type FillOrderRequest struct {
	ItemType string
	ItemID   string
	Side     orderv1.Side
	Index    int
	Amount   int64
}

// ClaimOrderRequest withdraws proceeds of a filled order. Amount zero claims all
// unclaimed proceeds.
type ClaimOrderRequest struct {
	UserID   string
	ItemType string
	ItemID   string
	Side     orderv1.Side
	Index    int
	Amount   int64
}

// MarketQuery selects the book to resolve and an optional edition filter.
type MarketQuery struct {
	ItemType string
	ItemID   string
	Edition  *int64
}

// Outcome is the committed result of a mutation. For claims, User holds the owner's
// record after the proceeds were credited.
type Outcome struct {
	ItemType string
	ItemID   string
	Side     orderv1.Side
	Index    int
	Amount   int64
	Order    orderv1.Order

	User *recordv1.UserRecord
}

// UserOrder is an order of a user that is still active or has proceeds to claim.
type UserOrder struct {
	ItemType  string
	ItemID    string
	Side      orderv1.Side
	Index     int
	Order     orderv1.Order
	Active    bool
	Claimable marketv1.Claimable
}
