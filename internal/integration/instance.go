package integration

import (
	"errors"

	"github.com/dispatchhq/dispatchd/internal/event"
)

var (
	// ErrInvalidScope indicates an instance scoped to more or less than
	// exactly one of project, group or instance-wide.
	ErrInvalidScope = errors.New("integration must belong to exactly one of project, group or instance")
)

// Instance is one configured occurrence of an integration variant.
type Instance struct {
	ID            int64
	Kind          string
	ProjectID     *int64
	GroupID       *int64
	InstanceWide  bool
	Active        bool
	InheritFromID *int64

	// EventToggles is the coarse, UI-exposed per-event switch layer. It is
	// checked by the dispatch caller before the router, independently of
	// the variant's supported-events declaration.
	EventToggles map[event.Kind]bool

	properties        Properties
	updatedProperties map[string]string

	// DataFields holds side-table values for variants that keep their
	// configuration out of the encrypted blob.
	DataFields map[string]string
}

// DefaultEventToggles mirrors the original per-event defaults.
func DefaultEventToggles() map[event.Kind]bool {
	return map[event.Kind]bool{
		event.KindCommit:                   true,
		event.KindPush:                     true,
		event.KindTagPush:                  true,
		event.KindIssue:                    true,
		event.KindConfidentialIssue:        true,
		event.KindMergeRequest:             true,
		event.KindNote:                     true,
		event.KindConfidentialNote:         true,
		event.KindPipeline:                 true,
		event.KindJob:                      true,
		event.KindWikiPage:                 true,
		event.KindAlert:                    true,
		event.KindDeployment:               false,
		event.KindIncident:                 false,
		event.KindGroupMention:             false,
		event.KindGroupConfidentialMention: false,
	}
}

// New returns an inactive, unsaved instance of the given kind.
func New(kind string) *Instance {
	return &Instance{
		Kind:         kind,
		EventToggles: DefaultEventToggles(),
	}
}

// ValidateScope enforces the exactly-one-scope invariant.
func (i *Instance) ValidateScope() error {
	count := 0
	if i.ProjectID != nil {
		count++
	}
	if i.GroupID != nil {
		count++
	}
	if i.InstanceWide {
		count++
	}
	if count != 1 {
		return ErrInvalidScope
	}
	return nil
}

// ProjectLevel reports whether the instance is scoped to a project.
func (i *Instance) ProjectLevel() bool { return i.ProjectID != nil }

// GroupLevel reports whether the instance is scoped to a group.
func (i *Instance) GroupLevel() bool { return i.GroupID != nil }

// InstanceLevel reports whether the instance is scoped instance-wide.
func (i *Instance) InstanceLevel() bool { return i.InstanceWide }

// Inheritable reports whether other instances may default from this one.
// Only group- and instance-level integrations are inheritable.
func (i *Instance) Inheritable() bool {
	return i.GroupLevel() || i.InstanceLevel()
}

// UsesDefaultSettings reports whether the instance defaults from an
// ancestor's configuration.
func (i *Instance) UsesDefaultSettings() bool {
	return i.InheritFromID != nil
}

// IsActive satisfies the registry's instance view.
func (i *Instance) IsActive() bool { return i.Active }

// EventEnabled reports whether the coarse toggle for a kind is on.
// Kinds absent from the toggle map are enabled; the variant-declared
// supported set is the authoritative gate.
func (i *Instance) EventEnabled(kind event.Kind) bool {
	enabled, ok := i.EventToggles[event.Normalize(kind)]
	if !ok {
		return true
	}
	return enabled
}

// Activate marks the instance active.
func (i *Instance) Activate() { i.Active = true }

// Deactivate marks the instance inactive.
func (i *Instance) Deactivate() { i.Active = false }

// Toggle flips the activation state.
func (i *Instance) Toggle() { i.Active = !i.Active }

// Testable reports whether the test operation is available. Group- and
// instance-level integrations cannot be tested.
func (i *Instance) Testable() bool { return i.ProjectLevel() }

// BuildFrom clones an inheritable source instance into a new project- or
// group-scoped instance, recording the inheritance link.
func BuildFrom(source *Instance, projectID, groupID *int64) *Instance {
	clone := &Instance{
		Kind:         source.Kind,
		ProjectID:    projectID,
		GroupID:      groupID,
		Active:       source.Active,
		EventToggles: make(map[event.Kind]bool, len(source.EventToggles)),
		DataFields:   make(map[string]string, len(source.DataFields)),
	}
	for kind, enabled := range source.EventToggles {
		clone.EventToggles[kind] = enabled
	}
	for name, value := range source.DataFields {
		clone.DataFields[name] = value
	}
	clone.properties = source.Properties().Clone()
	if source.Inheritable() {
		id := source.ID
		clone.InheritFromID = &id
	}
	return clone
}
