package economy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	commandv1 "github.com/muhammadchandra19/economy/internal/domain/command/v1"
	economyv1 "github.com/muhammadchandra19/economy/internal/domain/economy/v1"
	eventv1 "github.com/muhammadchandra19/economy/internal/domain/event/v1"
	eventv1_mock "github.com/muhammadchandra19/economy/internal/domain/event/v1/mock"
	orderv1 "github.com/muhammadchandra19/economy/internal/domain/order/v1"
	recordv1 "github.com/muhammadchandra19/economy/internal/domain/record/v1"
	"github.com/muhammadchandra19/economy/internal/infrastructure/filestore"
	"github.com/muhammadchandra19/economy/internal/usecase/market"
	"github.com/muhammadchandra19/economy/internal/usecase/record"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/muhammadchandra19/economy/pkg/taskqueue"
	"github.com/muhammadchandra19/economy/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const window = 24 * time.Hour

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testFixture struct {
	store     *filestore.Store
	queue     *taskqueue.Queue
	publisher *eventv1_mock.MockPublisher
	usecase   *usecase
}

func setupTestFixture(t *testing.T) *testFixture {
	ctrl := gomock.NewController(t)
	dir := t.TempDir()

	store, err := filestore.New(filestore.Options{
		UserDir:   filepath.Join(dir, "users"),
		GuildDir:  filepath.Join(dir, "guilds"),
		GlobalDir: filepath.Join(dir, "global"),
	}, logger.NewNopLogger())
	require.NoError(t, err)

	f := &testFixture{
		store:     store,
		queue:     taskqueue.New(nil),
		publisher: eventv1_mock.NewMockPublisher(ctrl),
	}
	f.usecase = f.at(t0)
	return f
}

// at returns a usecase over the same store and queue whose clock reads now.
func (f *testFixture) at(now time.Time) *usecase {
	return NewUsecase(f.queue, f.store, market.NewResolver(window), Options{
		Clock:     util.FixedClock(now),
		Publisher: f.publisher,
	}, logger.NewNopLogger())
}

func (f *testFixture) allowEvents() {
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func (f *testFixture) place(t *testing.T, userID string, side orderv1.Side, price, num int64, editions ...int64) int {
	t.Helper()
	out, err := f.usecase.PlaceOrder(context.Background(), &economyv1.PlaceOrderRequest{
		UserID:   userID,
		ItemType: "boar",
		ItemID:   "golden",
		Side:     side,
		Price:    price,
		Num:      num,
		Editions: editions,
	})
	require.NoError(t, err)
	return out.Index
}

func (f *testFixture) fill(t *testing.T, side orderv1.Side, index int, amount int64) {
	t.Helper()
	_, err := f.usecase.FillOrder(context.Background(), &economyv1.FillOrderRequest{
		ItemType: "boar",
		ItemID:   "golden",
		Side:     side,
		Index:    index,
		Amount:   amount,
	})
	require.NoError(t, err)
}

func (f *testFixture) marketRecord(t *testing.T) *recordv1.MarketRecord {
	t.Helper()
	repo := record.NewRepository[recordv1.MarketRecord](f.store, recordv1.KindGlobal, logger.NewNopLogger())
	rec, err := repo.Load(context.Background(), DefaultMarketName)
	require.NoError(t, err)
	return rec
}

func TestPlaceOrder(t *testing.T) {
	f := setupTestFixture(t)

	var events []*eventv1.OrderEvent
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *eventv1.OrderEvent) error {
			events = append(events, e)
			return nil
		}).Times(3)

	assert.Equal(t, 0, f.place(t, "1", orderv1.SideBuy, 100, 2))
	assert.Equal(t, 1, f.place(t, "2", orderv1.SideBuy, 120, 1))
	assert.Equal(t, 0, f.place(t, "3", orderv1.SideSell, 150, 4))

	snap, err := f.usecase.Market(context.Background(), &economyv1.MarketQuery{ItemType: "boar", ItemID: "golden"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), snap.BestBuyPrice.Amount)
	assert.Equal(t, int64(150), snap.BestSellPrice.Amount)
	assert.Equal(t, int64(3), snap.BuyVolume)
	assert.Equal(t, int64(4), snap.SellVolume)

	rec := f.marketRecord(t)
	book := rec.Book("boar", "golden")
	require.Len(t, book.InstaBuys, 2)
	assert.Equal(t, "2", book.InstaBuys[1].UserID)
	assert.Equal(t, t0.UnixMilli(), book.InstaBuys[1].ListTime)
	assert.Equal(t, t0.UnixMilli(), rec.LastUpdated)

	require.Len(t, events, 3)
	assert.Equal(t, eventv1.OrderPlaced, events[2].Type)
	assert.Equal(t, "3", events[2].UserID)
	assert.Equal(t, orderv1.SideSell, events[2].Side)
	assert.Equal(t, "boar/golden", events[2].Key())
}

func TestPlaceOrderInvalid(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.usecase.PlaceOrder(context.Background(), &economyv1.PlaceOrderRequest{
		UserID:   "1",
		ItemType: "boar",
		ItemID:   "golden",
		Side:     orderv1.SideBuy,
		Price:    0,
		Num:      1,
	})

	var taskErr *taskqueue.TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, "global:market", taskErr.Key)
	assert.ErrorIs(t, err, orderv1.ErrInvalidOrder)

	_, err = f.store.Load(context.Background(), recordv1.Global(DefaultMarketName))
	assert.ErrorIs(t, err, recordv1.ErrNotFound)
}

func TestFillOrder(t *testing.T) {
	testCases := []struct {
		name     string
		at       time.Time
		req      economyv1.FillOrderRequest
		assertFn func(t *testing.T, out *economyv1.Outcome, err error)
	}{
		{
			name: "partial fill",
			at:   t0.Add(time.Hour),
			req:  economyv1.FillOrderRequest{Side: orderv1.SideSell, Index: 0, Amount: 2},
			assertFn: func(t *testing.T, out *economyv1.Outcome, err error) {
				require.NoError(t, err)
				assert.Equal(t, int64(2), out.Order.FilledAmount)
				assert.Equal(t, int64(2), out.Amount)
			},
		},
		{
			name: "overfill",
			at:   t0.Add(time.Hour),
			req:  economyv1.FillOrderRequest{Side: orderv1.SideSell, Index: 0, Amount: 4},
			assertFn: func(t *testing.T, out *economyv1.Outcome, err error) {
				assert.Nil(t, out)
				assert.ErrorIs(t, err, orderv1.ErrOverfill)
			},
		},
		{
			name: "expired",
			at:   t0.Add(window),
			req:  economyv1.FillOrderRequest{Side: orderv1.SideSell, Index: 0, Amount: 1},
			assertFn: func(t *testing.T, out *economyv1.Outcome, err error) {
				assert.Nil(t, out)
				assert.ErrorIs(t, err, orderv1.ErrInactiveOrder)
			},
		},
		{
			name: "unknown index",
			at:   t0.Add(time.Hour),
			req:  economyv1.FillOrderRequest{Side: orderv1.SideBuy, Index: 0, Amount: 1},
			assertFn: func(t *testing.T, out *economyv1.Outcome, err error) {
				assert.Nil(t, out)
				assert.ErrorIs(t, err, orderv1.ErrOrderNotFound)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.allowEvents()
			f.place(t, "7", orderv1.SideSell, 50, 3)

			tc.req.ItemType = "boar"
			tc.req.ItemID = "golden"
			out, err := f.at(tc.at).FillOrder(context.Background(), &tc.req)
			tc.assertFn(t, out, err)

			if err != nil {
				order := f.marketRecord(t).Book("boar", "golden").InstaSells[0]
				assert.Equal(t, int64(0), order.FilledAmount)
			}
		})
	}
}

func TestClaimOrder(t *testing.T) {
	testCases := []struct {
		name     string
		setup    func(t *testing.T, f *testFixture)
		req      economyv1.ClaimOrderRequest
		assertFn func(t *testing.T, f *testFixture, out *economyv1.Outcome, err error)
	}{
		{
			name: "sell proceeds credit bucks",
			setup: func(t *testing.T, f *testFixture) {
				f.place(t, "7", orderv1.SideSell, 50, 3)
				f.fill(t, orderv1.SideSell, 0, 2)
			},
			req: economyv1.ClaimOrderRequest{UserID: "7", Side: orderv1.SideSell, Index: 0},
			assertFn: func(t *testing.T, f *testFixture, out *economyv1.Outcome, err error) {
				require.NoError(t, err)
				assert.Equal(t, int64(2), out.Amount)
				assert.Equal(t, int64(2), out.Order.ClaimedAmount)
				require.NotNil(t, out.User)
				assert.Equal(t, int64(100), out.User.Bucks)
				assert.Equal(t, t0.UnixMilli(), out.User.LastClaim)

				users := record.NewRepository[recordv1.UserRecord](f.store, recordv1.KindUser, logger.NewNopLogger())
				user, err := users.Load(context.Background(), "7")
				require.NoError(t, err)
				assert.Equal(t, int64(100), user.Bucks)
			},
		},
		{
			name: "buy proceeds credit editions",
			setup: func(t *testing.T, f *testFixture) {
				f.place(t, "8", orderv1.SideBuy, 500, 2, 3)
				f.fill(t, orderv1.SideBuy, 0, 2)
			},
			req: economyv1.ClaimOrderRequest{UserID: "8", Side: orderv1.SideBuy, Index: 0, Amount: 1},
			assertFn: func(t *testing.T, f *testFixture, out *economyv1.Outcome, err error) {
				require.NoError(t, err)
				assert.Equal(t, int64(1), out.Amount)
				require.NotNil(t, out.User)
				assert.Equal(t, int64(0), out.User.Bucks)
				h := out.User.Items["boar"]["golden"]
				require.NotNil(t, h)
				assert.Equal(t, int64(1), h.Num)
				assert.Equal(t, []int64{3}, h.Editions)
			},
		},
		{
			name: "more than unclaimed",
			setup: func(t *testing.T, f *testFixture) {
				f.place(t, "7", orderv1.SideSell, 50, 3)
				f.fill(t, orderv1.SideSell, 0, 1)
			},
			req: economyv1.ClaimOrderRequest{UserID: "7", Side: orderv1.SideSell, Index: 0, Amount: 2},
			assertFn: func(t *testing.T, f *testFixture, out *economyv1.Outcome, err error) {
				assert.Nil(t, out)
				assert.ErrorIs(t, err, orderv1.ErrOverclaim)
				order := f.marketRecord(t).Book("boar", "golden").InstaSells[0]
				assert.Equal(t, int64(0), order.ClaimedAmount)

				_, err = f.store.Load(context.Background(), recordv1.User("7"))
				assert.ErrorIs(t, err, recordv1.ErrNotFound)
			},
		},
		{
			name: "nothing to claim",
			setup: func(t *testing.T, f *testFixture) {
				f.place(t, "7", orderv1.SideSell, 50, 3)
			},
			req: economyv1.ClaimOrderRequest{UserID: "7", Side: orderv1.SideSell, Index: 0},
			assertFn: func(t *testing.T, f *testFixture, out *economyv1.Outcome, err error) {
				assert.Nil(t, out)
				assert.ErrorIs(t, err, orderv1.ErrOverclaim)
			},
		},
		{
			name: "someone else's order",
			setup: func(t *testing.T, f *testFixture) {
				f.place(t, "7", orderv1.SideSell, 50, 3)
				f.fill(t, orderv1.SideSell, 0, 3)
			},
			req: economyv1.ClaimOrderRequest{UserID: "9", Side: orderv1.SideSell, Index: 0},
			assertFn: func(t *testing.T, f *testFixture, out *economyv1.Outcome, err error) {
				assert.Nil(t, out)
				assert.ErrorIs(t, err, economyv1.ErrNotOrderOwner)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.allowEvents()
			tc.setup(t, f)

			tc.req.ItemType = "boar"
			tc.req.ItemID = "golden"
			out, err := f.usecase.ClaimOrder(context.Background(), &tc.req)
			tc.assertFn(t, f, out, err)
		})
	}
}

func TestClaimExpiredOrder(t *testing.T) {
	f := setupTestFixture(t)
	f.allowEvents()
	f.place(t, "7", orderv1.SideSell, 10, 5)
	f.fill(t, orderv1.SideSell, 0, 5)

	out, err := f.at(t0.Add(2*window)).ClaimOrder(context.Background(), &economyv1.ClaimOrderRequest{
		UserID:   "7",
		ItemType: "boar",
		ItemID:   "golden",
		Side:     orderv1.SideSell,
		Index:    0,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50), out.User.Bucks)
}

// failingSaves fails every save of one record kind.
type failingSaves struct {
	recordv1.Driver
	kind recordv1.Kind
}

func (d failingSaves) Save(ctx context.Context, loc recordv1.Locator, data []byte) error {
	if loc.Kind == d.kind {
		return fmt.Errorf("%w: disk full", recordv1.ErrIO)
	}
	return d.Driver.Save(ctx, loc, data)
}

func TestClaimKeepsProceedsWhenCreditFails(t *testing.T) {
	f := setupTestFixture(t)
	f.allowEvents()
	ctx := context.Background()
	f.place(t, "7", orderv1.SideSell, 100, 2)
	f.fill(t, orderv1.SideSell, 0, 2)
	require.NoError(t, f.store.Save(ctx, recordv1.User("7"), []byte(`{"bogus":1}`)))

	req := &economyv1.ClaimOrderRequest{UserID: "7", ItemType: "boar", ItemID: "golden", Side: orderv1.SideSell, Index: 0}
	out, err := f.usecase.ClaimOrder(ctx, req)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, recordv1.ErrCorrupt)
	assert.Equal(t, int64(0), f.marketRecord(t).Book("boar", "golden").InstaSells[0].ClaimedAmount)

	require.NoError(t, f.store.Save(ctx, recordv1.User("7"), []byte(`{"userID":"7"}`)))
	out, err = f.usecase.ClaimOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(200), out.User.Bucks)
	assert.Equal(t, int64(2), f.marketRecord(t).Book("boar", "golden").InstaSells[0].ClaimedAmount)
}

func TestClaimRevertsCreditWhenMarketSaveFails(t *testing.T) {
	testCases := []struct {
		name     string
		side     orderv1.Side
		editions []int64
		assertFn func(t *testing.T, user *recordv1.UserRecord)
	}{
		{
			name: "sell",
			side: orderv1.SideSell,
			assertFn: func(t *testing.T, user *recordv1.UserRecord) {
				assert.Equal(t, int64(0), user.Bucks)
			},
		},
		{
			name:     "buy with editions",
			side:     orderv1.SideBuy,
			editions: []int64{4},
			assertFn: func(t *testing.T, user *recordv1.UserRecord) {
				h := user.Items["boar"]["golden"]
				require.NotNil(t, h)
				assert.Equal(t, int64(0), h.Num)
				assert.Empty(t, h.Editions)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.allowEvents()
			ctx := context.Background()
			f.place(t, "7", tc.side, 100, 2, tc.editions...)
			f.fill(t, tc.side, 0, 2)

			broken := NewUsecase(f.queue, failingSaves{Driver: f.store, kind: recordv1.KindGlobal},
				market.NewResolver(window), Options{Clock: util.FixedClock(t0), Publisher: f.publisher}, logger.NewNopLogger())

			_, err := broken.ClaimOrder(ctx, &economyv1.ClaimOrderRequest{
				UserID: "7", ItemType: "boar", ItemID: "golden", Side: tc.side, Index: 0,
			})
			assert.ErrorIs(t, err, recordv1.ErrIO)
			order, err := f.marketRecord(t).Book("boar", "golden").Order(tc.side, 0)
			require.NoError(t, err)
			assert.Equal(t, int64(0), order.ClaimedAmount)

			users := record.NewRepository[recordv1.UserRecord](f.store, recordv1.KindUser, logger.NewNopLogger())
			user, err := users.Load(ctx, "7")
			require.NoError(t, err)
			tc.assertFn(t, user)
		})
	}
}

func TestPlaceOrderOverflow(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.usecase.PlaceOrder(context.Background(), &economyv1.PlaceOrderRequest{
		UserID:   "1",
		ItemType: "boar",
		ItemID:   "golden",
		Side:     orderv1.SideSell,
		Price:    math.MaxInt64 / 2,
		Num:      3,
	})
	assert.ErrorIs(t, err, orderv1.ErrOverflow)
}

func TestSubmitKeepsStreamOrder(t *testing.T) {
	f := setupTestFixture(t)
	f.allowEvents()
	ctx := context.Background()

	var futures []*taskqueue.Future[*economyv1.Outcome]
	for i := 0; i < 20; i++ {
		fut, err := f.usecase.Submit(ctx, &commandv1.Command{
			ID:       fmt.Sprintf("cmd-%d", i),
			Type:     commandv1.TypePlace,
			UserID:   fmt.Sprintf("%d", i),
			ItemType: "boar",
			ItemID:   "golden",
			Side:     orderv1.SideBuy,
			Price:    int64(100 + i),
			Num:      1,
		})
		require.NoError(t, err)
		futures = append(futures, fut)
	}

	for i, fut := range futures {
		out, err := f.usecase.Await(ctx, fut)
		require.NoError(t, err)
		assert.Equal(t, i, out.Index)
		assert.Equal(t, int64(100+i), out.Order.Price)
	}

	assert.Eventually(t, func() bool { return f.queue.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSubmitClaimCredits(t *testing.T) {
	f := setupTestFixture(t)
	f.allowEvents()
	ctx := context.Background()
	f.place(t, "7", orderv1.SideSell, 50, 3)

	fill, err := f.usecase.Submit(ctx, &commandv1.Command{
		ID: "fill", Type: commandv1.TypeFill, ItemType: "boar", ItemID: "golden", Side: orderv1.SideSell, Index: 0, Amount: 3,
	})
	require.NoError(t, err)
	claim, err := f.usecase.Submit(ctx, &commandv1.Command{
		ID: "claim", Type: commandv1.TypeClaim, UserID: "7", ItemType: "boar", ItemID: "golden", Side: orderv1.SideSell, Index: 0,
	})
	require.NoError(t, err)

	_, err = f.usecase.Await(ctx, fill)
	require.NoError(t, err)
	out, err := f.usecase.Await(ctx, claim)
	require.NoError(t, err)
	assert.Equal(t, int64(150), out.User.Bucks)
}

func TestSubmitInvalidCommand(t *testing.T) {
	f := setupTestFixture(t)

	fut, err := f.usecase.Submit(context.Background(), &commandv1.Command{
		ID: "bad", Type: commandv1.TypeClaim, ItemType: "boar", ItemID: "golden", Side: orderv1.SideSell,
	})
	assert.Nil(t, fut)
	assert.ErrorIs(t, err, commandv1.ErrInvalidCommand)
	assert.Equal(t, 0, f.queue.Len())
}

func TestPublishFailureIsNotReturned(t *testing.T) {
	f := setupTestFixture(t)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	index := f.place(t, "1", orderv1.SideBuy, 10, 1)
	assert.Equal(t, 0, index)
	assert.Len(t, f.marketRecord(t).Book("boar", "golden").InstaBuys, 1)
}

func TestMarket(t *testing.T) {
	f := setupTestFixture(t)
	f.allowEvents()

	snap, err := f.usecase.Market(context.Background(), &economyv1.MarketQuery{ItemType: "boar", ItemID: "golden"})
	require.NoError(t, err)
	assert.False(t, snap.BestBuyPrice.Present)
	assert.Equal(t, "N/A", snap.BestSellPrice.String())
	assert.Equal(t, int64(0), snap.BuyVolume)

	f.place(t, "1", orderv1.SideSell, 900, 1, 4)
	f.place(t, "2", orderv1.SideSell, 700, 1, 5)
	f.place(t, "3", orderv1.SideSell, 800, 1)

	edition := int64(5)
	snap, err = f.usecase.Market(context.Background(), &economyv1.MarketQuery{ItemType: "boar", ItemID: "golden", Edition: &edition})
	require.NoError(t, err)
	assert.Equal(t, int64(700), snap.BestSellPrice.Amount)
	assert.Equal(t, 1, snap.BestSellIndex)
	assert.Equal(t, int64(2), snap.SellVolume)

	orders, err := f.usecase.EditionOrders(context.Background(), "boar", "golden", orderv1.SideSell, 5)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 1, orders[0].Index)
	assert.Equal(t, 2, orders[1].Index)

	_, err = f.usecase.EditionOrders(context.Background(), "boar", "golden", orderv1.Side("hold"), 5)
	assert.ErrorIs(t, err, orderv1.ErrInvalidSide)

	later, err := f.at(t0.Add(window)).Market(context.Background(), &economyv1.MarketQuery{ItemType: "boar", ItemID: "golden"})
	require.NoError(t, err)
	assert.False(t, later.BestSellPrice.Present)
	assert.Equal(t, int64(0), later.SellVolume)
}

func TestUserOrders(t *testing.T) {
	f := setupTestFixture(t)
	f.allowEvents()
	ctx := context.Background()

	f.place(t, "7", orderv1.SideSell, 50, 3)
	f.place(t, "7", orderv1.SideBuy, 20, 1)
	f.place(t, "8", orderv1.SideBuy, 30, 1)
	f.fill(t, orderv1.SideSell, 0, 3)

	_, err := f.usecase.PlaceOrder(ctx, &economyv1.PlaceOrderRequest{
		UserID: "7", ItemType: "badge", ItemID: "first", Side: orderv1.SideSell, Price: 5, Num: 1,
	})
	require.NoError(t, err)

	orders, err := f.usecase.UserOrders(ctx, "7")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "badge", orders[0].ItemType)
	assert.Equal(t, "golden", orders[1].ItemID)
	assert.Equal(t, orderv1.SideBuy, orders[1].Side)
	assert.True(t, orders[1].Active)
	assert.Equal(t, orderv1.SideSell, orders[2].Side)
	assert.False(t, orders[2].Active)
	assert.Equal(t, int64(150), orders[2].Claimable.Bucks)

	// Once expired only the order with proceeds is left.
	orders, err = f.at(t0.Add(window)).UserOrders(ctx, "7")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, orderv1.SideSell, orders[0].Side)
	assert.Equal(t, "golden", orders[0].ItemID)
}
