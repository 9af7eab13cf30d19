package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dispatchhq/dispatchd/internal/app/ports"
	"github.com/dispatchhq/dispatchd/internal/chat"
	"github.com/dispatchhq/dispatchd/internal/event"
	"github.com/dispatchhq/dispatchd/internal/integration"
	"github.com/dispatchhq/dispatchd/internal/registry"
	"github.com/dispatchhq/dispatchd/internal/router"
)

// SenderFactory resolves the outbound transport for one variant and
// instance. Returning nil means the variant has no notification transport.
type SenderFactory func(variant registry.Variant, instance *integration.Instance) chat.Sender

// Executor runs non-chat variants. The default is a no-op for variants
// whose behavior lives entirely behind external collaborators.
type Executor interface {
	Execute(ctx context.Context, instance *integration.Instance, payload event.Payload) error
}

// DispatchService routes inbound events to eligible integration instances.
type DispatchService struct {
	repo      *IntegrationRepository
	registry  *registry.Registry
	router    *router.Router
	engine    *chat.Engine
	queue     ports.TaskQueue
	senders   SenderFactory
	executors map[string]Executor
	log       *slog.Logger
}

// NewDispatchService wires the dispatch pipeline.
func NewDispatchService(
	repo *IntegrationRepository,
	reg *registry.Registry,
	eventRouter *router.Router,
	engine *chat.Engine,
	queue ports.TaskQueue,
	senders SenderFactory,
	log *slog.Logger,
) *DispatchService {
	if log == nil {
		log = slog.Default()
	}
	return &DispatchService{
		repo:      repo,
		registry:  reg,
		router:    eventRouter,
		engine:    engine,
		queue:     queue,
		senders:   senders,
		executors: make(map[string]Executor),
		log:       log,
	}
}

// RegisterExecutor attaches a non-chat executor for a variant kind.
func (s *DispatchService) RegisterExecutor(kind string, executor Executor) {
	s.executors[kind] = executor
}

// AsyncExecute gates on activation and event support, then enqueues the
// dispatch task. The queue is fire-and-forget with at-least-once delivery;
// Execute re-checks eligibility so duplicates and late deactivation both
// collapse to no-ops.
func (s *DispatchService) AsyncExecute(ctx context.Context, instance *integration.Instance, body []byte) error {
	if !instance.Active {
		return nil
	}

	payload := event.Parse(body)
	variant, ok := s.registry.Lookup(instance.Kind)
	if !ok {
		s.log.Debug("async_execute skipped unknown kind", "kind", instance.Kind)
		return nil
	}
	if !variant.Supports(payload.Kind()) {
		s.log.Info("async_execute did nothing due to event not being supported",
			"integration", instance.Kind, "event", string(payload.Kind()))
		return nil
	}
	if !instance.EventEnabled(payload.Kind()) {
		return nil
	}

	return s.queue.Enqueue(ctx, ports.Task{
		Name:          ports.TaskNameExecute,
		DeliveryID:    uuid.NewString(),
		IntegrationID: instance.ID,
		Payload:       body,
	})
}

// Execute loads the instance fresh and runs the dispatch pipeline for one
// event. Idempotent under duplicate delivery: every run re-applies the
// full eligibility gate. Transport failures are logged, never returned as
// errors that would fail the triggering operation.
func (s *DispatchService) Execute(ctx context.Context, integrationID int64, body []byte) error {
	instance, err := s.repo.Load(ctx, integrationID)
	if err != nil {
		return err
	}

	payload := event.Parse(body)
	if !instance.EventEnabled(payload.Kind()) {
		return nil
	}

	variant, ok := s.registry.Lookup(instance.Kind)
	if !ok {
		s.log.Debug("execute skipped unknown kind", "kind", instance.Kind)
		return nil
	}

	if variant.IsChat() || variant.RequiresWebhook {
		sender := s.senders(variant, instance)
		if sender == nil {
			s.log.Debug("no sender for variant", "kind", instance.Kind)
			return nil
		}
		outcome := s.engine.Notify(ctx, instance, payload, sender)
		s.log.Info("dispatched event",
			"integration", instance.Kind,
			"integration_id", instance.ID,
			"event", string(payload.Kind()),
			"outcome", string(outcome))
		return nil
	}

	if !s.router.Eligible(instance, payload) {
		return nil
	}
	if executor, ok := s.executors[instance.Kind]; ok {
		if err := executor.Execute(ctx, instance, payload); err != nil {
			s.log.Warn("integration execute failed",
				"integration", instance.Kind,
				"integration_id", instance.ID,
				"error", err)
		}
	}
	return nil
}

// DispatchForProject fans an inbound event out over a project's
// integrations through the async boundary.
func (s *DispatchService) DispatchForProject(ctx context.Context, projectID int64, body []byte) (int, error) {
	instances, err := s.repo.ListForProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	enqueued := 0
	for _, instance := range instances {
		if err := s.AsyncExecute(ctx, instance, body); err != nil {
			s.log.Warn("failed to enqueue dispatch",
				"integration_id", instance.ID, "error", err)
			continue
		}
		enqueued++
	}
	return enqueued, nil
}

// TestResult reports the outcome of a manual integration test.
type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Test runs the pipeline once, synchronously, for a project-level
// instance. Group- and instance-level integrations are not testable.
func (s *DispatchService) Test(ctx context.Context, instance *integration.Instance, body []byte) TestResult {
	if !instance.Testable() {
		return TestResult{Success: false, Message: "only project-level integrations can be tested"}
	}
	if err := s.Execute(ctx, instance.ID, body); err != nil {
		return TestResult{Success: false, Message: err.Error()}
	}
	return TestResult{Success: true}
}
