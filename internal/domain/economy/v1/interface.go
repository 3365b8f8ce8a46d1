package economyv1

import (
	"context"

	commandv1 "github.com/muhammadchandra19/economy/internal/domain/command/v1"
	marketv1 "github.com/muhammadchandra19/economy/internal/domain/market/v1"
	orderv1 "github.com/muhammadchandra19/economy/internal/domain/order/v1"
	"github.com/muhammadchandra19/economy/pkg/taskqueue"
)

// Usecase is the economy core offered to command and presentation layers. Mutations
// are serialized per record through the task queue; reads are served from the last
// saved records without queuing.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=economyv1_mock
type Usecase interface {
	// Submit queues the mutation a command asks for and returns without waiting.
	// Commands submitted in order are applied in order.
	Submit(ctx context.Context, cmd *commandv1.Command) (*taskqueue.Future[*Outcome], error)
	// Await waits for a submitted mutation, including a claim's credit step.
	Await(ctx context.Context, f *taskqueue.Future[*Outcome]) (*Outcome, error)

	PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*Outcome, error)
	FillOrder(ctx context.Context, req *FillOrderRequest) (*Outcome, error)
	ClaimOrder(ctx context.Context, req *ClaimOrderRequest) (*Outcome, error)

	Market(ctx context.Context, q *MarketQuery) (*marketv1.Snapshot, error)
	EditionOrders(ctx context.Context, itemType, itemID string, side orderv1.Side, edition int64) ([]marketv1.EditionOrder, error)
	UserOrders(ctx context.Context, userID string) ([]UserOrder, error)
}
