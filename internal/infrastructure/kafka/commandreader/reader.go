package commandreader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	commandv1 "github.com/muhammadchandra19/economy/internal/domain/command/v1"
	"github.com/muhammadchandra19/economy/pkg/errors"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Config holds the settings of the command intake reader.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// messageReader is the part of kafka.Reader this package uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Reader consumes economy commands from a kafka topic as part of a consumer group.
// Offsets are only committed through CommitMessages.
type Reader struct {
	kafkaReader messageReader
	logger      logger.Interface
}

var _ commandv1.Reader = (*Reader)(nil)

// NewReader creates a Reader for the command topic.
func NewReader(config Config, log logger.Interface) *Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     config.Brokers,
		Topic:       config.Topic,
		GroupID:     config.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})

	return &Reader{
		kafkaReader: kafkaReader,
		logger:      log,
	}
}

func (r *Reader) logError(err error, operation string) {
	r.logger.Error(err,
		logger.Field{Key: "error", Value: err.Error()},
		logger.Field{Key: "operation", Value: operation},
	)
}

// ReadCommand fetches the next message and decodes it as a command. A message that
// does not decode is returned together with an error wrapping
// commandv1.ErrInvalidCommand, so the caller can commit past it.
func (r *Reader) ReadCommand(ctx context.Context) (kafka.Message, *commandv1.Command, error) {
	msg, err := r.kafkaReader.FetchMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logError(err, "FetchMessage")
		}
		return kafka.Message{}, nil, errors.NewTracer(string(errors.CommandReadError)).Wrap(err)
	}

	cmd, err := Decode(msg.Value)
	if err != nil {
		r.logError(err, "DecodeCommand")
		return msg, nil, errors.NewTracer(string(errors.CommandDecodeError)).Wrap(err)
	}
	if cmd.ID == "" {
		cmd.ID = fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
	}

	r.logger.Debug("ReadCommand",
		logger.Field{Key: "command_id", Value: cmd.ID},
		logger.Field{Key: "type", Value: string(cmd.Type)},
		logger.Field{Key: "offset", Value: msg.Offset},
	)
	return msg, cmd, nil
}

// Decode parses a JSON command. Unknown fields are rejected.
func Decode(data []byte) (*commandv1.Command, error) {
	var cmd commandv1.Command
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", commandv1.ErrInvalidCommand, err)
	}
	return &cmd, nil
}

// CommitMessages commits the offsets of msgs for the consumer group.
func (r *Reader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	if err := r.kafkaReader.CommitMessages(ctx, msgs...); err != nil {
		r.logError(err, "CommitMessages")
		return err
	}
	return nil
}

// Close closes the underlying kafka reader.
func (r *Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}
