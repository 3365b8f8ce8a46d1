package eventpublisher

import (
	"context"

	eventv1 "github.com/muhammadchandra19/economy/internal/domain/event/v1"
	"github.com/muhammadchandra19/economy/pkg/errors"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Config holds the settings of the event topic writer.
type Config struct {
	Brokers []string
	Topic   string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes order events to a kafka topic, keyed by item so events of one
// book stay in one partition.
type Publisher struct {
	kafkaWriter messageWriter
	logger      logger.Interface
}

var _ eventv1.Publisher = (*Publisher)(nil)

// NewPublisher creates a Publisher for the event topic.
func NewPublisher(config Config, log logger.Interface) *Publisher {
	kafkaWriter := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}

	return &Publisher{
		kafkaWriter: kafkaWriter,
		logger:      log,
	}
}

// Publish writes event to the topic.
func (p *Publisher) Publish(ctx context.Context, event *eventv1.OrderEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.Key()),
		Value: eventv1.ToBytes(event),
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "error", Value: err.Error()},
			logger.Field{Key: "event_id", Value: event.ID},
		)
		return errors.NewTracer(string(errors.EventPublishError)).Wrap(err)
	}
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
