package engine

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	commandv1 "github.com/muhammadchandra19/economy/internal/domain/command/v1"
	economyv1 "github.com/muhammadchandra19/economy/internal/domain/economy/v1"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/muhammadchandra19/economy/pkg/taskqueue"
	"github.com/muhammadchandra19/economy/pkg/util"
	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/semaphore"
)

// Engine feeds commands from a Reader into the economy usecase.
//
// Commands are submitted from a single loop in stream order, so two commands for the
// same record are applied in the order they were read. Completion is awaited on
// separate goroutines, at most MaxInFlight at a time. A message is committed once
// its command and every command read before it from the same partition have
// completed or failed.
type Engine struct {
	usecase economyv1.Usecase
	reader  commandv1.Reader
	options *Options
	logger  logger.Interface

	sem      *semaphore.Weighted
	offsets  *offsetTracker
	commitMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
}

// NewEngine creates an Engine. A nil options uses DefaultEngineOptions.
func NewEngine(usecase economyv1.Usecase, reader commandv1.Reader, log logger.Interface, options *Options) *Engine {
	if options == nil {
		options = DefaultEngineOptions()
	}
	if options.MaxInFlight < 1 {
		options.MaxInFlight = 1
	}

	return &Engine{
		usecase: usecase,
		reader:  reader,
		options: options,
		logger:  log,
		sem:     semaphore.NewWeighted(options.MaxInFlight),
		offsets: newOffsetTracker(),
		done:    make(chan struct{}),
	}
}

// Start runs the read loop in the background until Stop is called or ctx is done.
func (e *Engine) Start(ctx context.Context) {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.logger.InfoContext(ctx, "starting command engine",
		logger.Field{Key: "action", Value: "engine_start"},
		logger.Field{Key: "max_in_flight", Value: e.options.MaxInFlight},
	)

	go func() {
		defer close(e.done)
		e.run()
	}()
}

// Stop ends the read loop, waits for in-flight commands and closes the reader. It
// returns ctx.Err() if ctx ends first.
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.InfoContext(ctx, "stopping command engine", logger.Field{Key: "action", Value: "engine_stop"})
	if e.cancel != nil {
		e.cancel()
		select {
		case <-e.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	waited := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-ctx.Done():
		return ctx.Err()
	}

	return e.reader.Close()
}

func (e *Engine) run() {
	for {
		msg, cmd, err := e.reader.ReadCommand(e.ctx)
		if e.ctx.Err() != nil {
			return
		}
		if err != nil {
			if stderrors.Is(err, commandv1.ErrInvalidCommand) {
				e.offsets.track(msg)
				e.commit(context.Background(), msg)
				continue
			}
			e.logger.ErrorContext(e.ctx, err, logger.Field{Key: "action", Value: "read_command"})
			select {
			case <-e.ctx.Done():
				return
			case <-time.After(e.options.RetryDelay):
			}
			continue
		}

		if err := e.sem.Acquire(e.ctx, 1); err != nil {
			return
		}
		e.offsets.track(msg)
		e.process(msg, cmd)
	}
}

// process submits cmd and hands the wait to a goroutine. The caller holds one
// semaphore slot, which is released once the command is done.
func (e *Engine) process(msg kafka.Message, cmd *commandv1.Command) {
	// Queued work is not abandoned when the engine stops.
	ctx := util.WithCommandID(util.ContextWithRequestID(context.Background(), ""), cmd.ID)

	future, err := e.usecase.Submit(ctx, cmd)
	if err != nil {
		e.logger.WarnContext(ctx, "command rejected", logger.Field{Key: "reason", Value: err.Error()})
		e.sem.Release(1)
		e.commit(ctx, msg)
		return
	}

	e.wg.Add(1)
	go func(future *taskqueue.Future[*economyv1.Outcome]) {
		defer e.wg.Done()
		defer e.sem.Release(1)

		out, err := e.usecase.Await(ctx, future)
		if err != nil {
			e.logger.WarnContext(ctx, "command failed",
				logger.Field{Key: "type", Value: string(cmd.Type)},
				logger.Field{Key: "task_key", Value: future.Key()},
				logger.Field{Key: "reason", Value: err.Error()},
			)
		} else {
			e.logger.InfoContext(ctx, "command applied",
				logger.Field{Key: "type", Value: string(cmd.Type)},
				logger.Field{Key: "item", Value: out.ItemType + "/" + out.ItemID},
				logger.Field{Key: "index", Value: out.Index},
			)
		}
		e.commit(ctx, msg)
	}(future)
}

// commit marks msg as done and commits the completed prefix of its partition, if
// it grew. Commits are serialized so the committed offset never moves back.
func (e *Engine) commit(ctx context.Context, msg kafka.Message) {
	e.commitMu.Lock()
	defer e.commitMu.Unlock()

	last, ok := e.offsets.complete(msg)
	if !ok {
		e.logger.DebugContext(ctx, "commit deferred",
			logger.Field{Key: "partition", Value: msg.Partition},
			logger.Field{Key: "offset", Value: msg.Offset},
		)
		return
	}

	if err := e.reader.CommitMessages(ctx, last); err != nil {
		e.logger.ErrorContext(ctx, err,
			logger.Field{Key: "action", Value: "commit_message"},
			logger.Field{Key: "partition", Value: last.Partition},
			logger.Field{Key: "offset", Value: last.Offset},
		)
	}
}
