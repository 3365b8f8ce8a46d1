package commandwriter

import (
	"context"
	"encoding/json"

	commandv1 "github.com/muhammadchandra19/economy/internal/domain/command/v1"
	"github.com/muhammadchandra19/economy/pkg/errors"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Writer sends commands to the intake topic.
type Writer struct {
	kafkaWriter messageWriter
	logger      logger.Interface
}

// NewWriter creates a Writer for topic.
func NewWriter(brokers []string, topic string, log logger.Interface) *Writer {
	return &Writer{
		kafkaWriter: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
		logger: log,
	}
}

// Write encodes cmds and writes them in one batch, keyed by item.
func (w *Writer) Write(ctx context.Context, cmds ...*commandv1.Command) error {
	msgs := make([]kafka.Message, 0, len(cmds))
	for _, cmd := range cmds {
		value, err := json.Marshal(cmd)
		if err != nil {
			return errors.NewTracer(string(errors.GeneralInternalServerError)).Wrap(err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(cmd.ItemType + "/" + cmd.ItemID),
			Value: value,
		})
	}

	if err := w.kafkaWriter.WriteMessages(ctx, msgs...); err != nil {
		w.logger.Error(err, logger.Field{Key: "commands", Value: len(cmds)})
		return errors.NewTracer(string(errors.GeneralInternalServerError)).Wrap(err)
	}
	return nil
}

// Close flushes and closes the writer.
func (w *Writer) Close() error {
	return w.kafkaWriter.Close()
}
