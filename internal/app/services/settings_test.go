package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dispatchhq/dispatchd/internal/integration"
	"github.com/dispatchhq/dispatchd/internal/registry"
)

func newSettingsService(t *testing.T) *SettingsService {
	t.Helper()
	repo := NewIntegrationRepository(newMemStore(), testCipher(t))
	return NewSettingsService(repo, registry.Default(), 0)
}

func TestSaveUnknownKind(t *testing.T) {
	t.Parallel()

	svc := newSettingsService(t)
	instance := integration.New("no_such_integration")
	instance.ProjectID = int64p(1)

	err := svc.Save(context.Background(), instance)
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if ClassifySettingsError(err) != SettingsErrorUnknownKind {
		t.Fatalf("unexpected classification: %v", ClassifySettingsError(err))
	}
}

func TestSaveScopeViolations(t *testing.T) {
	t.Parallel()

	svc := newSettingsService(t)

	// Jenkins is project-only.
	jenkins := integration.New("jenkins")
	jenkins.GroupID = int64p(10)
	err := svc.Save(context.Background(), jenkins)
	if !errors.Is(err, ErrScopeNotAllowed) {
		t.Fatalf("expected ErrScopeNotAllowed, got %v", err)
	}
	if ClassifySettingsError(err) != SettingsErrorScope {
		t.Fatalf("unexpected classification: %v", ClassifySettingsError(err))
	}

	// Beyond Identity is instance-only.
	beyond := integration.New("beyond_identity")
	beyond.ProjectID = int64p(1)
	if err := svc.Save(context.Background(), beyond); !errors.Is(err, ErrScopeNotAllowed) {
		t.Fatalf("expected ErrScopeNotAllowed, got %v", err)
	}

	// No scope at all.
	unscoped := integration.New("slack")
	err = svc.Save(context.Background(), unscoped)
	if !errors.Is(err, integration.ErrInvalidScope) {
		t.Fatalf("expected ErrInvalidScope, got %v", err)
	}
	if ClassifySettingsError(err) != SettingsErrorScope {
		t.Fatalf("unexpected classification: %v", ClassifySettingsError(err))
	}
}

func TestSaveActiveRequiresFields(t *testing.T) {
	t.Parallel()

	svc := newSettingsService(t)

	instance := integration.New("slack")
	instance.ProjectID = int64p(1)
	instance.Active = true

	err := svc.Save(context.Background(), instance)
	if !errors.Is(err, ErrMissingRequiredField) {
		t.Fatalf("expected ErrMissingRequiredField, got %v", err)
	}
	if ClassifySettingsError(err) != SettingsErrorMissingField {
		t.Fatalf("unexpected classification: %v", ClassifySettingsError(err))
	}

	instance.SetProp("webhook", "https://hooks.example.com/x")
	if err := svc.Save(context.Background(), instance); err != nil {
		t.Fatalf("save with required field: %v", err)
	}
}

func TestSaveDraftSkipsRequiredFields(t *testing.T) {
	t.Parallel()

	svc := newSettingsService(t)

	instance := integration.New("slack")
	instance.ProjectID = int64p(1)
	instance.Active = false

	if err := svc.Save(context.Background(), instance); err != nil {
		t.Fatalf("inactive draft must save without required fields: %v", err)
	}
}

func TestSaveRequiredDataField(t *testing.T) {
	t.Parallel()

	svc := newSettingsService(t)

	tracker := integration.New("redmine")
	tracker.ProjectID = int64p(1)
	tracker.Active = true

	err := svc.Save(context.Background(), tracker)
	if !errors.Is(err, ErrMissingRequiredField) {
		t.Fatalf("expected ErrMissingRequiredField, got %v", err)
	}

	tracker.DataFields = map[string]string{
		"project_url":   "https://redmine.example.com/projects/widgets",
		"issues_url":    "https://redmine.example.com/issues/:id",
		"new_issue_url": "https://redmine.example.com/projects/widgets/issues/new",
	}
	if err := svc.Save(context.Background(), tracker); err != nil {
		t.Fatalf("save with data fields: %v", err)
	}
}

func TestSaveInvalidBranchChoice(t *testing.T) {
	t.Parallel()

	svc := newSettingsService(t)

	instance := integration.New("slack")
	instance.ProjectID = int64p(1)
	instance.SetProp("branches_to_be_notified", "only_fridays")

	err := svc.Save(context.Background(), instance)
	if !errors.Is(err, ErrInvalidBranchChoice) {
		t.Fatalf("expected ErrInvalidBranchChoice, got %v", err)
	}
	if ClassifySettingsError(err) != SettingsErrorInvalidValue {
		t.Fatalf("unexpected classification: %v", ClassifySettingsError(err))
	}
}

func TestSaveInvalidLabelBehavior(t *testing.T) {
	t.Parallel()

	svc := newSettingsService(t)

	instance := integration.New("slack")
	instance.ProjectID = int64p(1)
	instance.SetProp("labels_to_be_notified_behavior", "match_some")

	err := svc.Save(context.Background(), instance)
	if !errors.Is(err, ErrInvalidLabelBehavior) {
		t.Fatalf("expected ErrInvalidLabelBehavior, got %v", err)
	}
}

func TestSaveChannelLimit(t *testing.T) {
	t.Parallel()

	svc := newSettingsService(t)

	instance := integration.New("slack")
	instance.ProjectID = int64p(1)

	channels := ""
	for i := 0; i < 11; i++ {
		if i > 0 {
			channels += ","
		}
		channels += fmt.Sprintf("#chan-%d", i)
	}
	instance.SetProp("channel", channels)

	err := svc.Save(context.Background(), instance)
	if !errors.Is(err, ErrChannelLimitExceeded) {
		t.Fatalf("expected ErrChannelLimitExceeded, got %v", err)
	}
	if ClassifySettingsError(err) != SettingsErrorChannelsOverCap {
		t.Fatalf("unexpected classification: %v", ClassifySettingsError(err))
	}
}

func TestSaveChannelAtLimitPasses(t *testing.T) {
	t.Parallel()

	svc := newSettingsService(t)

	instance := integration.New("slack")
	instance.ProjectID = int64p(1)

	channels := ""
	for i := 0; i < 10; i++ {
		if i > 0 {
			channels += ","
		}
		channels += fmt.Sprintf("#chan-%d", i)
	}
	instance.SetProp("channel", channels)

	if err := svc.Save(context.Background(), instance); err != nil {
		t.Fatalf("ten channels must pass the cap: %v", err)
	}
}
