package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dispatchhq/dispatchd/internal/app/ports"
)

// ErrQueueClosed indicates an enqueue after shutdown began.
var ErrQueueClosed = errors.New("task queue is closed")

// Handler processes one dequeued task. Errors are logged, not retried at
// this layer; re-delivery comes from the triggering side when needed.
type Handler func(ctx context.Context, task ports.Task) error

// Queue is the in-process async task boundary: a bounded channel drained
// by a worker pool. Delivery is at-least-once in spirit; handlers must be
// idempotent since the triggering side may enqueue duplicates.
type Queue struct {
	tasks   chan ports.Task
	handler Handler
	workers int
	log     *slog.Logger

	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	senders sync.WaitGroup
	wg      sync.WaitGroup
}

// New constructs a queue with the given buffer size and worker count.
func New(handler Handler, buffer, workers int, log *slog.Logger) *Queue {
	if buffer <= 0 {
		buffer = 256
	}
	if workers <= 0 {
		workers = 4
	}
	if log == nil {
		log = slog.Default()
	}
	return &Queue{
		tasks:   make(chan ports.Task, buffer),
		handler: handler,
		workers: workers,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Start launches the worker pool. Workers exit when the context is
// canceled or the queue is closed and drained.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-q.tasks:
			if !ok {
				return
			}
			if err := q.handler(ctx, task); err != nil {
				q.log.Warn("task failed",
					"task", task.Name,
					"delivery_id", task.DeliveryID,
					"integration_id", task.IntegrationID,
					"error", err)
			}
		}
	}
}

// Enqueue adds a task, blocking while the buffer is full. A shutdown
// that starts while the send is pending unblocks it with ErrQueueClosed.
func (q *Queue) Enqueue(ctx context.Context, task ports.Task) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrQueueClosed
	case q.tasks <- task:
		return nil
	}
}

// Close stops accepting tasks and waits for workers to drain the buffer.
// The task channel closes only after every in-flight enqueue has settled,
// so a pending send never hits a closed channel.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	close(q.done)
	q.senders.Wait()
	close(q.tasks)
	q.wg.Wait()
}

var _ ports.TaskQueue = (*Queue)(nil)
