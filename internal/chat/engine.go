package chat

import (
	"context"
	"log/slog"

	"github.com/dispatchhq/dispatchd/internal/event"
	"github.com/dispatchhq/dispatchd/internal/filter"
	"github.com/dispatchhq/dispatchd/internal/integration"
	"github.com/dispatchhq/dispatchd/internal/router"
)

// Outcome reports how far one event made it through the engine.
type Outcome string

const (
	OutcomeIneligible     Outcome = "ineligible"
	OutcomeBranchFiltered Outcome = "branch_filtered"
	OutcomeLabelFiltered  Outcome = "label_filtered"
	OutcomeNoMessage      Outcome = "no_message"
	OutcomeSent           Outcome = "sent"
	OutcomeSendFailed     Outcome = "send_failed"
)

// ProtectedBranchChecker answers whether a branch is protected in the
// event's project. Supplied by the host, since protection rules live
// outside this core.
type ProtectedBranchChecker func(branch string) bool

// Engine drives one event through eligibility, filters, message selection,
// channel resolution and the send collaborator.
type Engine struct {
	router    *router.Router
	protected ProtectedBranchChecker
	log       *slog.Logger
}

// NewEngine constructs a chat notification engine.
func NewEngine(r *router.Router, protected ProtectedBranchChecker, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{router: r, protected: protected, log: log}
}

// Notify runs the full pipeline for one instance and payload. A send
// failure is reported in the outcome, never as an error: a broken
// integration must not break the triggering operation.
func (e *Engine) Notify(ctx context.Context, instance *integration.Instance, payload event.Payload, sender Sender) Outcome {
	if !e.router.Eligible(instance, payload) {
		return OutcomeIneligible
	}

	if !e.passesBranchFilter(instance, payload) {
		return OutcomeBranchFiltered
	}

	kind := payload.Kind()
	if event.CarriesLabels(kind) {
		behavior := filter.LabelBehavior(instance.Prop("labels_to_be_notified_behavior"))
		if !filter.MatchLabels(instance.Prop("labels_to_be_notified"), behavior, payload.Labels()) {
			return OutcomeLabelFiltered
		}
	}

	message := e.buildMessage(instance, payload)
	if message == nil {
		return OutcomeNoMessage
	}

	message.Channels = filter.ChannelsForEvent(instance, kind)
	message.Username = instance.Prop("username")
	message.Meta = Meta{
		Kind:        string(event.Normalize(kind)),
		ProjectName: payload.ProjectName(),
		ProjectURL:  payload.ProjectWebURL(),
		SHA:         payload.SHA(),
		Ref:         payload.Ref(),
		Status:      payload.PipelineStatus(),
		UserName:    payload.UserName(),
	}

	if !e.deliver(ctx, instance, *message, sender) {
		return OutcomeSendFailed
	}
	return OutcomeSent
}

func (e *Engine) passesBranchFilter(instance *integration.Instance, payload event.Payload) bool {
	ctx := filter.BranchContext{
		Branch:        payload.Branch(),
		DefaultBranch: payload.DefaultBranch(),
		Protected:     e.protected,
		TagPush:       payload.IsTagPush(),
	}
	if legacy := instance.Prop("restrict_to_branch"); legacy != "" {
		return ctx.TagPush || filter.RestrictToBranch(legacy, ctx.Branch)
	}
	return filter.NotifyBranch(filter.BranchChoice(instance.Prop("branches_to_be_notified")), ctx)
}

// buildMessage applies message selection plus the pipeline-status and
// update-suppression rules layered on top of it.
func (e *Engine) buildMessage(instance *integration.Instance, payload event.Payload) *Message {
	kind := payload.Kind()

	if updateSuppressed(kind, payload) {
		return nil
	}

	if event.Normalize(kind) == event.KindPipeline && instance.BoolProp("notify_only_broken_pipelines") {
		if payload.PipelineStatus() != "failed" {
			return nil
		}
	}

	build := selectBuilder(kind)
	if build == nil {
		return nil
	}
	return build(payload)
}

func (e *Engine) deliver(ctx context.Context, instance *integration.Instance, message Message, sender Sender) bool {
	channels := message.Channels
	if len(channels) == 0 {
		// Variants without channel routing send once to the webhook default.
		channels = []string{""}
	}

	delivered := true
	for _, channel := range channels {
		opts := SendOptions{Channel: channel, Username: message.Username}
		if err := sender.Send(ctx, message, opts); err != nil {
			e.log.Warn("chat notification send failed",
				"integration", instance.Kind,
				"integration_id", instance.ID,
				"channel", channel,
				"error", err)
			delivered = false
		}
	}
	return delivered
}
