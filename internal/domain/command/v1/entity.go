package commandv1

import (
	"errors"
	"fmt"

	orderv1 "github.com/muhammadchandra19/economy/internal/domain/order/v1"
)

// ErrInvalidCommand is returned for commands missing required fields.
var ErrInvalidCommand = errors.New("invalid command")

// Type selects the economy operation a command requests.
type Type string

const (
	TypePlace Type = "place"
	TypeFill  Type = "fill"
	TypeClaim Type = "claim"
)

// Command is a mutation request from the interaction layer.
type Command struct {
	ID       string       `json:"id"`
	Type     Type         `json:"type"`
	UserID   string       `json:"userID"`
	ItemType string       `json:"itemType"`
	ItemID   string       `json:"itemID"`
	Side     orderv1.Side `json:"side"`

	// place
	Price    int64   `json:"price,omitempty"`
	Num      int64   `json:"num,omitempty"`
	Editions []int64 `json:"editions,omitempty"`

	// fill and claim
	Index  int   `json:"index,omitempty"`
	Amount int64 `json:"amount,omitempty"`
}

// Validate checks that the fields the command type needs are present. Value ranges
// are left to the order book.
func (c *Command) Validate() error {
	if c.ItemType == "" || c.ItemID == "" {
		return fmt.Errorf("%w: %s: item is required", ErrInvalidCommand, c.ID)
	}
	if !c.Side.Valid() {
		return fmt.Errorf("%w: %s: side %q", ErrInvalidCommand, c.ID, c.Side)
	}

	switch c.Type {
	case TypePlace, TypeClaim:
		if c.UserID == "" {
			return fmt.Errorf("%w: %s: user is required", ErrInvalidCommand, c.ID)
		}
	case TypeFill:
	default:
		return fmt.Errorf("%w: %s: type %q", ErrInvalidCommand, c.ID, c.Type)
	}
	return nil
}
