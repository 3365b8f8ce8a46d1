package commandv1

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Reader reads economy commands from the intake stream.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=commandv1_mock
type Reader interface {
	// ReadCommand blocks for the next message and decodes it.
	ReadCommand(ctx context.Context) (kafka.Message, *Command, error)
	// CommitMessages marks messages as processed.
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
