package engine

import (
	"sync"

	"github.com/segmentio/kafka-go"
)

type partition struct {
	topic string
	id    int
}

type partitionOffsets struct {
	// pending holds the messages not yet committed, in read order.
	pending []kafka.Message
	done    map[int64]bool
}

// offsetTracker releases a message for commit only once every message read before
// it from the same partition has completed.
type offsetTracker struct {
	mu         sync.Mutex
	partitions map[partition]*partitionOffsets
}

func newOffsetTracker() *offsetTracker {
	return &offsetTracker{partitions: map[partition]*partitionOffsets{}}
}

// track registers msg as read. Messages must be tracked in read order.
func (t *offsetTracker) track(msg kafka.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := partition{topic: msg.Topic, id: msg.Partition}
	p, ok := t.partitions[key]
	if !ok {
		p = &partitionOffsets{done: map[int64]bool{}}
		t.partitions[key] = p
	}
	p.pending = append(p.pending, msg)
}

// complete marks msg as done and returns the last message of the completed prefix
// of its partition. ok is false when the prefix did not grow.
func (t *offsetTracker) complete(msg kafka.Message) (last kafka.Message, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, found := t.partitions[partition{topic: msg.Topic, id: msg.Partition}]
	if !found {
		return kafka.Message{}, false
	}
	p.done[msg.Offset] = true

	n := 0
	for n < len(p.pending) && p.done[p.pending[n].Offset] {
		delete(p.done, p.pending[n].Offset)
		n++
	}
	if n == 0 {
		return kafka.Message{}, false
	}

	last = p.pending[n-1]
	p.pending = p.pending[n:]
	return last, true
}
