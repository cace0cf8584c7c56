package accounts

import (
	"errors"

	"github.com/dmitrijs2005/groupshare/internal/protocol"
)

// ErrQueueEmpty is returned when a continuation is requested but nothing is
// pending.
var ErrQueueEmpty = errors.New("continuation queue is empty")

// Queue is a FIFO of prebuilt response messages delivered one per
// continue request. The zero value is an empty queue.
type Queue struct {
	items []protocol.Message
}

// Push appends msgs in order.
func (q *Queue) Push(msgs ...protocol.Message) {
	q.items = append(q.items, msgs...)
}

// Pop removes and returns the head of the queue.
func (q *Queue) Pop() (protocol.Message, error) {
	if len(q.items) == 0 {
		return protocol.Message{}, ErrQueueEmpty
	}
	m := q.items[0]
	q.items[0] = protocol.Message{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return m, nil
}

// Reset drops everything still pending.
func (q *Queue) Reset() {
	q.items = nil
}

func (q *Queue) Len() int {
	return len(q.items)
}
