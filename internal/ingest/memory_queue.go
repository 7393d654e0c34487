package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultMemoryVisibility = 30 * time.Second

type leasedMessage struct {
	msg       queueMessage
	visibleAt time.Time
}

// MemoryQueue is a queueClient backed by a buffered channel. Used for local
// runs where SQS is not available. Received messages stay leased until
// deleted; a lease that outlives the visibility timeout is handed out again
// on a later Receive, so transient failures are retried as they are on SQS.
type MemoryQueue struct {
	ch         chan queueMessage
	visibility time.Duration
	now        func() time.Time

	mu     sync.Mutex
	leased map[string]leasedMessage
}

func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 128
	}
	return &MemoryQueue{
		ch:         make(chan queueMessage, buffer),
		visibility: defaultMemoryVisibility,
		now:        time.Now,
		leased:     make(map[string]leasedMessage),
	}
}

// Send enqueues an event or blocks until ctx is done.
func (q *MemoryQueue) Send(ctx context.Context, out outboundMessage) error {
	id := out.EventID
	if id == "" {
		id = uuid.NewString()
	}
	msg := queueMessage{ID: id, Body: out.Body, PatientID: out.PatientID}
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive returns expired leases first, otherwise blocks until a message
// arrives, ctx is done, or waitSeconds elapses.
func (q *MemoryQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error) {
	if maxMessages <= 0 {
		maxMessages = 1
	}
	if expired := q.reclaim(maxMessages); len(expired) > 0 {
		return q.lease(expired), nil
	}

	var timeout <-chan time.Time
	if waitSeconds > 0 {
		timer := time.NewTimer(time.Duration(waitSeconds) * time.Second)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout:
		return nil, nil
	case msg := <-q.ch:
		return q.lease(q.collect(msg, maxMessages)), nil
	}
}

// Delete acknowledges a leased message.
func (q *MemoryQueue) Delete(_ context.Context, receiptHandle string) error {
	q.mu.Lock()
	delete(q.leased, receiptHandle)
	q.mu.Unlock()
	return nil
}

// Len reports buffered messages that were never received.
func (q *MemoryQueue) Len() int { return len(q.ch) }

// InFlight reports received messages that were not deleted yet.
func (q *MemoryQueue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.leased)
}

func (q *MemoryQueue) lease(msgs []queueMessage) []queueMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	visibleAt := q.now().Add(q.visibility)
	for i := range msgs {
		msgs[i].ReceiveCount++
		msgs[i].ReceiptHandle = uuid.NewString()
		q.leased[msgs[i].ReceiptHandle] = leasedMessage{msg: msgs[i], visibleAt: visibleAt}
	}
	return msgs
}

func (q *MemoryQueue) reclaim(max int) []queueMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	var msgs []queueMessage
	for handle, l := range q.leased {
		if len(msgs) == max {
			break
		}
		if now.Before(l.visibleAt) {
			continue
		}
		delete(q.leased, handle)
		msgs = append(msgs, l.msg)
	}
	return msgs
}

func (q *MemoryQueue) collect(first queueMessage, max int) []queueMessage {
	messages := make([]queueMessage, 0, max)
	messages = append(messages, first)
	for len(messages) < max {
		select {
		case msg := <-q.ch:
			messages = append(messages, msg)
		default:
			return messages
		}
	}
	return messages
}
