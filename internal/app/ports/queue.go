package ports

import "context"

// TaskNameExecute is the integration dispatch task.
const TaskNameExecute = "integration:execute"

// Task is one queued unit of work. Delivery is at-least-once; handlers
// must tolerate duplicates.
type Task struct {
	Name          string
	DeliveryID    string
	IntegrationID int64
	Payload       []byte
}

// TaskQueue is the fire-and-forget async boundary between event dispatch
// and the outbound network call.
type TaskQueue interface {
	Enqueue(ctx context.Context, task Task) error
}
