package commandreader

import (
	"context"
	"errors"
	"testing"

	commandv1 "github.com/muhammadchandra19/economy/internal/domain/command/v1"
	orderv1 "github.com/muhammadchandra19/economy/internal/domain/order/v1"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKafkaReader struct {
	msgs      []kafka.Message
	err       error
	committed []kafka.Message
}

func (f *fakeKafkaReader) FetchMessage(context.Context) (kafka.Message, error) {
	if f.err != nil {
		return kafka.Message{}, f.err
	}
	msg := f.msgs[0]
	f.msgs = f.msgs[1:]
	return msg, nil
}

func (f *fakeKafkaReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeKafkaReader) Close() error { return nil }

func TestReadCommand(t *testing.T) {
	testCases := []struct {
		name     string
		fake     *fakeKafkaReader
		assertFn func(t *testing.T, msg kafka.Message, cmd *commandv1.Command, err error)
	}{
		{
			name: "decodes place command",
			fake: &fakeKafkaReader{msgs: []kafka.Message{{
				Topic:  "economy.commands",
				Offset: 4,
				Value:  []byte(`{"id":"c1","type":"place","userID":"42","itemType":"boar","itemID":"golden","side":"buy","price":100,"num":2,"editions":[3]}`),
			}}},
			assertFn: func(t *testing.T, msg kafka.Message, cmd *commandv1.Command, err error) {
				require.NoError(t, err)
				assert.Equal(t, int64(4), msg.Offset)
				assert.Equal(t, "c1", cmd.ID)
				assert.Equal(t, commandv1.TypePlace, cmd.Type)
				assert.Equal(t, orderv1.SideBuy, cmd.Side)
				assert.Equal(t, int64(100), cmd.Price)
				assert.Equal(t, []int64{3}, cmd.Editions)
			},
		},
		{
			name: "missing id falls back to message position",
			fake: &fakeKafkaReader{msgs: []kafka.Message{{
				Topic:     "economy.commands",
				Partition: 1,
				Offset:    9,
				Value:     []byte(`{"type":"fill","itemType":"boar","itemID":"golden","side":"sell","index":2,"amount":1}`),
			}}},
			assertFn: func(t *testing.T, msg kafka.Message, cmd *commandv1.Command, err error) {
				require.NoError(t, err)
				assert.Equal(t, "economy.commands/1/9", cmd.ID)
				assert.Equal(t, 2, cmd.Index)
			},
		},
		{
			name: "malformed payload keeps the message",
			fake: &fakeKafkaReader{msgs: []kafka.Message{{Offset: 11, Value: []byte(`{"type":"place","bogus":1}`)}}},
			assertFn: func(t *testing.T, msg kafka.Message, cmd *commandv1.Command, err error) {
				assert.Nil(t, cmd)
				assert.Equal(t, int64(11), msg.Offset)
				assert.ErrorIs(t, err, commandv1.ErrInvalidCommand)
			},
		},
		{
			name: "fetch failure",
			fake: &fakeKafkaReader{err: errors.New("broker gone")},
			assertFn: func(t *testing.T, msg kafka.Message, cmd *commandv1.Command, err error) {
				assert.Nil(t, cmd)
				assert.ErrorContains(t, err, "broker gone")
				assert.NotErrorIs(t, err, commandv1.ErrInvalidCommand)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Reader{kafkaReader: tc.fake, logger: logger.NewNopLogger()}

			msg, cmd, err := r.ReadCommand(context.Background())
			tc.assertFn(t, msg, cmd, err)
		})
	}
}

func TestCommitMessages(t *testing.T) {
	fake := &fakeKafkaReader{}
	r := &Reader{kafkaReader: fake, logger: logger.NewNopLogger()}

	require.NoError(t, r.CommitMessages(context.Background(), kafka.Message{Offset: 1}, kafka.Message{Offset: 2}))
	assert.Len(t, fake.committed, 2)
	assert.NoError(t, r.Close())
}
