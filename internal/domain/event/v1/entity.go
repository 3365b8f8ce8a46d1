package eventv1

import (
	"encoding/json"
	"time"

	orderv1 "github.com/muhammadchandra19/economy/internal/domain/order/v1"
	"github.com/oklog/ulid/v2"
)

// Type is the kind of change an OrderEvent reports.
type Type string

const (
	OrderPlaced  Type = "order_placed"
	OrderFilled  Type = "order_filled"
	OrderClaimed Type = "order_claimed"
)

// OrderEvent reports a committed change to an order book.
type OrderEvent struct {
	ID         string        `json:"id"`
	Type       Type          `json:"type"`
	ItemType   string        `json:"itemType"`
	ItemID     string        `json:"itemID"`
	Side       orderv1.Side  `json:"side"`
	Index      int           `json:"index"`
	Amount     int64         `json:"amount,omitempty"`
	UserID     string        `json:"userID,omitempty"`
	Order      orderv1.Order `json:"order"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// NewOrderEvent builds an event with a fresh id.
func NewOrderEvent(t Type, itemType, itemID string, side orderv1.Side, index int, order orderv1.Order, at time.Time) *OrderEvent {
	return &OrderEvent{
		ID:         ulid.Make().String(),
		Type:       t,
		ItemType:   itemType,
		ItemID:     itemID,
		Side:       side,
		Index:      index,
		Order:      order,
		OccurredAt: at,
	}
}

// Key groups events of one book together, e.g. for kafka partitioning.
func (e *OrderEvent) Key() string {
	return e.ItemType + "/" + e.ItemID
}

// ToBytes encodes the event as JSON. OrderEvent has no unencodable fields.
func ToBytes(e *OrderEvent) []byte {
	b, _ := json.Marshal(e)
	return b
}
