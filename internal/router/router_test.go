package router

import (
	"testing"

	"github.com/dispatchhq/dispatchd/internal/event"
	"github.com/dispatchhq/dispatchd/internal/integration"
	"github.com/dispatchhq/dispatchd/internal/registry"
)

func newInstance(kind string, active bool) *integration.Instance {
	projectID := int64(1)
	instance := integration.New(kind)
	instance.ProjectID = &projectID
	instance.Active = active
	return instance
}

func TestEligibleInactiveInstance(t *testing.T) {
	t.Parallel()

	r := New(registry.Default(), nil)
	instance := newInstance("slack", false)
	instance.SetProp("webhook", "https://hooks.example.com/x")

	payload := event.Parse([]byte(`{"object_kind":"push"}`))
	if r.Eligible(instance, payload) {
		t.Fatal("inactive instance must be ineligible")
	}
}

func TestEligibleUnknownKind(t *testing.T) {
	t.Parallel()

	r := New(registry.Default(), nil)
	instance := newInstance("no_such_integration", true)

	payload := event.Parse([]byte(`{"object_kind":"push"}`))
	if r.Eligible(instance, payload) {
		t.Fatal("unknown integration kind must be ineligible")
	}
}

func TestEligibleUnsupportedEvent(t *testing.T) {
	t.Parallel()

	r := New(registry.Default(), nil)
	// Jenkins reacts to pushes and merge requests, never wiki pages.
	instance := newInstance("jenkins", true)
	instance.SetProp("project_url", "https://jenkins.example.com/job/widgets")

	payload := event.Parse([]byte(`{"object_kind":"wiki_page"}`))
	if r.Eligible(instance, payload) {
		t.Fatal("unsupported event kind must be ineligible")
	}
}

func TestEligibleMissingWebhook(t *testing.T) {
	t.Parallel()

	r := New(registry.Default(), nil)
	instance := newInstance("slack", true)

	payload := event.Parse([]byte(`{"object_kind":"push"}`))
	if r.Eligible(instance, payload) {
		t.Fatal("chat notifier without a webhook must be ineligible")
	}

	instance.SetProp("webhook", "   ")
	if r.Eligible(instance, payload) {
		t.Fatal("whitespace-only webhook must be ineligible")
	}

	instance.SetProp("webhook", "https://hooks.example.com/x")
	if !r.Eligible(instance, payload) {
		t.Fatal("configured webhook must pass")
	}
}

func TestEligibleIncidentWorkItemSuppressed(t *testing.T) {
	t.Parallel()

	r := New(registry.Default(), nil)
	instance := newInstance("slack", true)
	instance.SetProp("webhook", "https://hooks.example.com/x")

	workItem := event.Parse([]byte(`{
		"event_type": "work_item",
		"object_attributes": {"type": "Incident"}
	}`))
	if r.Eligible(instance, workItem) {
		t.Fatal("incident-typed work item must not route through the work-item path")
	}

	taskWorkItem := event.Parse([]byte(`{
		"event_type": "work_item",
		"object_attributes": {"type": "Task"}
	}`))
	if !r.Eligible(instance, taskWorkItem) {
		t.Fatal("non-incident work item must stay eligible")
	}
}

func TestEligibleUnknownEventKind(t *testing.T) {
	t.Parallel()

	r := New(registry.Default(), nil)
	instance := newInstance("slack", true)
	instance.SetProp("webhook", "https://hooks.example.com/x")

	payload := event.Parse([]byte(`{"object_kind":"made_up_event"}`))
	if r.Eligible(instance, payload) {
		t.Fatal("unknown event kind must be ineligible, not an error")
	}
}
