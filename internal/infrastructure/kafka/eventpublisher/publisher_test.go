package eventpublisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	eventv1 "github.com/muhammadchandra19/economy/internal/domain/event/v1"
	orderv1 "github.com/muhammadchandra19/economy/internal/domain/order/v1"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
	closed  bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	fake := &fakeWriter{}
	p := &Publisher{kafkaWriter: fake, logger: logger.NewNopLogger()}

	event := eventv1.NewOrderEvent(eventv1.OrderFilled, "boar", "golden", orderv1.SideSell, 3,
		orderv1.Order{Price: 25, Num: 4, FilledAmount: 2}, time.UnixMilli(1700000000000))
	event.Amount = 2

	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, fake.written, 1)
	assert.Equal(t, "boar/golden", string(fake.written[0].Key))

	var decoded eventv1.OrderEvent
	require.NoError(t, json.Unmarshal(fake.written[0].Value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, eventv1.OrderFilled, decoded.Type)
	assert.Equal(t, int64(2), decoded.Amount)
	assert.Equal(t, int64(2), decoded.Order.FilledAmount)

	require.NoError(t, p.Close())
	assert.True(t, fake.closed)
}

func TestPublishFailure(t *testing.T) {
	p := &Publisher{kafkaWriter: &fakeWriter{err: errors.New("leader not available")}, logger: logger.NewNopLogger()}

	err := p.Publish(context.Background(), &eventv1.OrderEvent{ItemType: "boar", ItemID: "golden"})
	assert.ErrorContains(t, err, "leader not available")
}
