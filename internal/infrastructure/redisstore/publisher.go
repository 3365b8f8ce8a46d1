package redisstore

import (
	"context"

	eventv1 "github.com/muhammadchandra19/economy/internal/domain/event/v1"
	"github.com/muhammadchandra19/economy/pkg/errors"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/muhammadchandra19/economy/pkg/redis"
)

// Publisher sends order events to a redis pub/sub channel.
type Publisher struct {
	client  redis.Client
	channel string
	logger  logger.Interface
}

var _ eventv1.Publisher = (*Publisher)(nil)

// NewPublisher creates a Publisher for channel.
func NewPublisher(client redis.Client, channel string, log logger.Interface) *Publisher {
	return &Publisher{client: client, channel: channel, logger: log}
}

// Publish encodes event as JSON and publishes it.
func (p *Publisher) Publish(ctx context.Context, event *eventv1.OrderEvent) error {
	receivers, err := p.client.Publish(ctx, p.channel, eventv1.ToBytes(event))
	if err != nil {
		return errors.NewTracer(string(errors.EventPublishError)).Wrap(err)
	}

	p.logger.DebugContext(ctx, "event published",
		logger.Field{Key: "event_id", Value: event.ID},
		logger.Field{Key: "channel", Value: p.channel},
		logger.Field{Key: "receivers", Value: receivers},
	)
	return nil
}

// Close does nothing; the client is owned by the caller.
func (p *Publisher) Close() error {
	return nil
}
