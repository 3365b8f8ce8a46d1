package economy

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	commandv1 "github.com/muhammadchandra19/economy/internal/domain/command/v1"
	economyv1 "github.com/muhammadchandra19/economy/internal/domain/economy/v1"
	eventv1 "github.com/muhammadchandra19/economy/internal/domain/event/v1"
	marketv1 "github.com/muhammadchandra19/economy/internal/domain/market/v1"
	orderv1 "github.com/muhammadchandra19/economy/internal/domain/order/v1"
	recordv1 "github.com/muhammadchandra19/economy/internal/domain/record/v1"
	"github.com/muhammadchandra19/economy/internal/usecase/market"
	"github.com/muhammadchandra19/economy/internal/usecase/record"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/muhammadchandra19/economy/pkg/taskqueue"
	"github.com/muhammadchandra19/economy/pkg/util"
)

// DefaultMarketName is the id of the global record holding every order book.
const DefaultMarketName = "market"

type (
	marketRepository = record.Repository[recordv1.MarketRecord, *recordv1.MarketRecord]
	userRepository   = record.Repository[recordv1.UserRecord, *recordv1.UserRecord]
)

// Options configures the economy usecase.
type Options struct {
	MarketName string
	Clock      util.Clock
	Publisher  eventv1.Publisher
}

type usecase struct {
	queue     *taskqueue.Queue
	markets   *marketRepository
	users     *userRepository
	resolver  *market.Resolver
	publisher eventv1.Publisher
	clock     util.Clock
	marketKey string
	market    string
	logger    logger.Interface
}

// NewUsecase creates the economy usecase. Every record of driver must only be
// mutated through queue.
func NewUsecase(
	queue *taskqueue.Queue,
	driver recordv1.Driver,
	resolver *market.Resolver,
	opts Options,
	log logger.Interface,
) *usecase {
	if opts.MarketName == "" {
		opts.MarketName = DefaultMarketName
	}
	if opts.Clock == nil {
		opts.Clock = util.RealClock{}
	}
	if opts.Publisher == nil {
		opts.Publisher = eventv1.NopPublisher{}
	}

	return &usecase{
		queue:     queue,
		markets:   record.NewRepository[recordv1.MarketRecord](driver, recordv1.KindGlobal, log),
		users:     record.NewRepository[recordv1.UserRecord](driver, recordv1.KindUser, log),
		resolver:  resolver,
		publisher: opts.Publisher,
		clock:     opts.Clock,
		marketKey: recordv1.Global(opts.MarketName).Key(),
		market:    opts.MarketName,
		logger:    log,
	}
}

// Submit queues the mutation cmd asks for.
func (u *usecase) Submit(ctx context.Context, cmd *commandv1.Command) (*taskqueue.Future[*economyv1.Outcome], error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	ctx = util.WithCommandID(ctx, cmd.ID)

	switch cmd.Type {
	case commandv1.TypePlace:
		return u.submitPlace(ctx, &economyv1.PlaceOrderRequest{
			UserID:   cmd.UserID,
			ItemType: cmd.ItemType,
			ItemID:   cmd.ItemID,
			Side:     cmd.Side,
			Price:    cmd.Price,
			Num:      cmd.Num,
			Editions: cmd.Editions,
		}), nil
	case commandv1.TypeFill:
		return u.submitFill(ctx, &economyv1.FillOrderRequest{
			ItemType: cmd.ItemType,
			ItemID:   cmd.ItemID,
			Side:     cmd.Side,
			Index:    cmd.Index,
			Amount:   cmd.Amount,
		}), nil
	default:
		return u.submitClaim(ctx, &economyv1.ClaimOrderRequest{
			UserID:   cmd.UserID,
			ItemType: cmd.ItemType,
			ItemID:   cmd.ItemID,
			Side:     cmd.Side,
			Index:    cmd.Index,
			Amount:   cmd.Amount,
		}), nil
	}
}

// Await waits for a submitted mutation. A claim resolves once the owner is credited.
func (u *usecase) Await(ctx context.Context, f *taskqueue.Future[*economyv1.Outcome]) (*economyv1.Outcome, error) {
	return f.Wait(ctx)
}

// PlaceOrder lists a new order and waits for it to be saved.
func (u *usecase) PlaceOrder(ctx context.Context, req *economyv1.PlaceOrderRequest) (*economyv1.Outcome, error) {
	return u.Await(ctx, u.submitPlace(ctx, req))
}

// FillOrder matches against an existing order and waits for it to be saved.
func (u *usecase) FillOrder(ctx context.Context, req *economyv1.FillOrderRequest) (*economyv1.Outcome, error) {
	return u.Await(ctx, u.submitFill(ctx, req))
}

// ClaimOrder withdraws the proceeds of an order and waits until the owner is credited.
func (u *usecase) ClaimOrder(ctx context.Context, req *economyv1.ClaimOrderRequest) (*economyv1.Outcome, error) {
	return u.Await(ctx, u.submitClaim(ctx, req))
}

func (u *usecase) submitPlace(ctx context.Context, req *economyv1.PlaceOrderRequest) *taskqueue.Future[*economyv1.Outcome] {
	ctx = util.WithActorID(ctx, req.UserID)
	return taskqueue.Enqueue(ctx, u.queue, u.marketKey, func(ctx context.Context) (*economyv1.Outcome, error) {
		return u.mutateBook(ctx, req.ItemType, req.ItemID, eventv1.OrderPlaced,
			func(book orderv1.Book, now time.Time) (orderv1.Book, *economyv1.Outcome, error) {
				order := orderv1.NewOrder(req.UserID, req.Price, req.Num, req.Editions, now)
				next, index, err := orderv1.PlaceOrder(book, req.Side, order)
				if err != nil {
					return book, nil, err
				}
				return next, &economyv1.Outcome{Side: req.Side, Index: index, Amount: req.Num}, nil
			})
	})
}

func (u *usecase) submitFill(ctx context.Context, req *economyv1.FillOrderRequest) *taskqueue.Future[*economyv1.Outcome] {
	return taskqueue.Enqueue(ctx, u.queue, u.marketKey, func(ctx context.Context) (*economyv1.Outcome, error) {
		return u.mutateBook(ctx, req.ItemType, req.ItemID, eventv1.OrderFilled,
			func(book orderv1.Book, now time.Time) (orderv1.Book, *economyv1.Outcome, error) {
				next, err := orderv1.Fill(book, req.Side, req.Index, req.Amount, now, u.resolver.Window())
				if err != nil {
					return book, nil, err
				}
				return next, &economyv1.Outcome{Side: req.Side, Index: req.Index, Amount: req.Amount}, nil
			})
	})
}

// submitClaim credits the owner's record before the claim is saved on the market
// record. The credit runs on the user key from inside the market task; keys are
// always taken market first, user second, and user tasks never queue on the market
// key.
func (u *usecase) submitClaim(ctx context.Context, req *economyv1.ClaimOrderRequest) *taskqueue.Future[*economyv1.Outcome] {
	ctx = util.WithActorID(ctx, req.UserID)
	return taskqueue.Enqueue(ctx, u.queue, u.marketKey, func(ctx context.Context) (*economyv1.Outcome, error) {
		return u.mutateBook(ctx, req.ItemType, req.ItemID, eventv1.OrderClaimed,
			func(book orderv1.Book, _ time.Time) (orderv1.Book, *economyv1.Outcome, error) {
				order, err := book.Order(req.Side, req.Index)
				if err != nil {
					return book, nil, err
				}
				if order.UserID != req.UserID {
					return book, nil, fmt.Errorf("%w: %s[%d]", economyv1.ErrNotOrderOwner, req.Side, req.Index)
				}

				amount := req.Amount
				if amount == 0 {
					amount = order.Unclaimed()
					if amount == 0 {
						return book, nil, fmt.Errorf("%w: %s[%d] has nothing to claim", orderv1.ErrOverclaim, req.Side, req.Index)
					}
				}

				next, err := orderv1.Claim(book, req.Side, req.Index, amount)
				if err != nil {
					return book, nil, err
				}
				return next, &economyv1.Outcome{Side: req.Side, Index: req.Index, Amount: amount}, nil
			},
			u.creditOwner,
		)
	})
}

// beforeSave runs after the book change is computed and before the market record is
// saved. A non nil undo is called when the save fails.
type beforeSave func(ctx context.Context, out *economyv1.Outcome) (undo func(ctx context.Context), err error)

// mutateBook runs inside the market key. It applies fn to the book of one item,
// saves the market record and publishes the change.
func (u *usecase) mutateBook(
	ctx context.Context,
	itemType, itemID string,
	eventType eventv1.Type,
	fn func(book orderv1.Book, now time.Time) (orderv1.Book, *economyv1.Outcome, error),
	hooks ...beforeSave,
) (*economyv1.Outcome, error) {
	rec, _, err := u.markets.LoadOrNew(ctx, u.market, nil)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	next, out, err := fn(rec.Book(itemType, itemID), now)
	if err != nil {
		return nil, err
	}

	out.ItemType = itemType
	out.ItemID = itemID
	out.Order, _ = next.Order(out.Side, out.Index)

	var undos []func(ctx context.Context)
	for _, hook := range hooks {
		undo, err := hook(ctx, out)
		if err != nil {
			u.rollback(ctx, undos)
			return nil, err
		}
		if undo != nil {
			undos = append(undos, undo)
		}
	}

	rec.SetBook(itemType, itemID, next)
	rec.LastUpdated = now.UnixMilli()
	if err := u.markets.Save(ctx, u.market, rec); err != nil {
		u.rollback(ctx, undos)
		return nil, err
	}

	u.logger.InfoContext(ctx, string(eventType),
		logger.Field{Key: "item", Value: itemType + "/" + itemID},
		logger.Field{Key: "side", Value: string(out.Side)},
		logger.Field{Key: "index", Value: out.Index},
		logger.Field{Key: "amount", Value: out.Amount},
	)
	u.publish(ctx, eventType, out, now)

	return out, nil
}

func (u *usecase) rollback(ctx context.Context, undos []func(ctx context.Context)) {
	for i := len(undos) - 1; i >= 0; i-- {
		undos[i](ctx)
	}
}

func (u *usecase) publish(ctx context.Context, eventType eventv1.Type, out *economyv1.Outcome, now time.Time) {
	event := eventv1.NewOrderEvent(eventType, out.ItemType, out.ItemID, out.Side, out.Index, out.Order, now)
	event.Amount = out.Amount
	event.UserID = util.GetActorID(ctx)

	if err := u.publisher.Publish(ctx, event); err != nil {
		u.logger.ErrorContext(ctx, err, logger.Field{Key: "event_id", Value: event.ID})
	}
}

// creditOwner moves the claimed proceeds into the owner's record through the user
// key and waits for it. The credit is reverted the same way if the claim cannot be
// saved.
func (u *usecase) creditOwner(ctx context.Context, out *economyv1.Outcome) (func(ctx context.Context), error) {
	key := recordv1.User(out.Order.UserID).Key()

	// The market task must not give up on a credit that may still be saved.
	user, err := taskqueue.Do(context.WithoutCancel(ctx), u.queue, key, u.adjust(out, 1))
	if err != nil {
		return nil, err
	}
	out.User = user

	undo := func(ctx context.Context) {
		if _, err := taskqueue.Do(context.WithoutCancel(ctx), u.queue, key, u.adjust(out, -1)); err != nil {
			u.logger.ErrorContext(ctx, err,
				logger.Field{Key: "action", Value: "revert_credit"},
				logger.Field{Key: "user_id", Value: out.Order.UserID},
				logger.Field{Key: "amount", Value: out.Amount},
			)
			return
		}
		out.User = nil
	}
	return undo, nil
}

// adjust returns the task that adds (sign 1) or removes (sign -1) the proceeds of a
// claim: items for a buy order, bucks for a sell order.
func (u *usecase) adjust(out *economyv1.Outcome, sign int64) taskqueue.Task[*recordv1.UserRecord] {
	userID := out.Order.UserID
	return func(ctx context.Context) (*recordv1.UserRecord, error) {
		user, _, err := u.users.LoadOrNew(ctx, userID, func() *recordv1.UserRecord {
			return &recordv1.UserRecord{UserID: userID}
		})
		if err != nil {
			return nil, err
		}

		if out.Side == orderv1.SideBuy {
			h := user.Holding(out.ItemType, out.ItemID)
			h.Num += sign * out.Amount
			if len(out.Order.Editions) > 0 {
				if sign > 0 {
					for i := int64(0); i < out.Amount; i++ {
						h.Editions = append(h.Editions, out.Order.Editions[0])
					}
				} else {
					h.Editions = h.Editions[:max(0, int64(len(h.Editions))-out.Amount)]
				}
			}
		} else {
			proceeds, err := orderv1.Proceeds(out.Order.Price, out.Amount)
			if err != nil {
				return nil, err
			}
			if sign > 0 && user.Bucks > math.MaxInt64-proceeds {
				return nil, fmt.Errorf("%w: balance %d plus %d", orderv1.ErrOverflow, user.Bucks, proceeds)
			}
			user.Bucks += sign * proceeds
		}
		if sign > 0 {
			user.LastClaim = u.clock.Now().UnixMilli()
		}

		if err := u.users.Save(ctx, userID, user); err != nil {
			return nil, err
		}
		u.logger.InfoContext(ctx, "claim credited",
			logger.Field{Key: "bucks", Value: user.Bucks},
			logger.Field{Key: "item", Value: out.ItemType + "/" + out.ItemID},
			logger.Field{Key: "reverted", Value: sign < 0},
		)
		return user, nil
	}
}

func (u *usecase) loadMarket(ctx context.Context) (*recordv1.MarketRecord, error) {
	rec, _, err := u.markets.LoadOrNew(ctx, u.market, nil)
	return rec, err
}

// Market resolves the book of one item from the last saved market record.
func (u *usecase) Market(ctx context.Context, q *economyv1.MarketQuery) (*marketv1.Snapshot, error) {
	rec, err := u.loadMarket(ctx)
	if err != nil {
		return nil, err
	}

	var opts []market.Option
	if q.Edition != nil {
		opts = append(opts, market.WithEdition(*q.Edition))
	}
	return u.resolver.Resolve(rec.Book(q.ItemType, q.ItemID), u.clock.Now(), opts...), nil
}

// EditionOrders lists the active orders of one item that match edition.
func (u *usecase) EditionOrders(ctx context.Context, itemType, itemID string, side orderv1.Side, edition int64) ([]marketv1.EditionOrder, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("%w: %q", orderv1.ErrInvalidSide, side)
	}
	rec, err := u.loadMarket(ctx)
	if err != nil {
		return nil, err
	}
	return u.resolver.EditionOrders(rec.Book(itemType, itemID), side, edition, u.clock.Now()), nil
}

// UserOrders lists the orders of userID that are active or have proceeds left, sorted
// by item type, item id, side and index.
func (u *usecase) UserOrders(ctx context.Context, userID string) ([]economyv1.UserOrder, error) {
	rec, err := u.loadMarket(ctx)
	if err != nil {
		return nil, err
	}
	now := u.clock.Now()

	var out []economyv1.UserOrder
	for _, itemType := range sortedKeys(rec.Books) {
		for _, itemID := range sortedKeys(rec.Books[itemType]) {
			book := rec.Books[itemType][itemID]

			claimables := map[orderv1.Side]map[int]marketv1.Claimable{}
			for _, c := range market.Claimables(book, userID) {
				if claimables[c.Side] == nil {
					claimables[c.Side] = map[int]marketv1.Claimable{}
				}
				claimables[c.Side][c.Index] = c
			}

			for _, side := range []orderv1.Side{orderv1.SideBuy, orderv1.SideSell} {
				orders, _ := book.Orders(side)
				for i, order := range orders {
					if order.UserID != userID {
						continue
					}
					active := order.Active(now, u.resolver.Window())
					c, claimable := claimables[side][i]
					if !active && !claimable {
						continue
					}
					cp, _ := book.Order(side, i)
					out = append(out, economyv1.UserOrder{
						ItemType:  itemType,
						ItemID:    itemID,
						Side:      side,
						Index:     i,
						Order:     cp,
						Active:    active,
						Claimable: c,
					})
				}
			}
		}
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
