package registry

import "github.com/dispatchhq/dispatchd/internal/event"

// Category groups variants by the concern they serve.
type Category string

const (
	CategoryCommon       Category = "common"
	CategoryChat         Category = "chat"
	CategoryCI           Category = "ci"
	CategoryIssueTracker Category = "issue_tracker"
	CategoryWiki         Category = "third_party_wiki"
	CategoryDeployment   Category = "deployment"
)

// Level restricts where a variant may be configured.
type Level string

const (
	// LevelAny allows project, group and instance scoping.
	LevelAny Level = "any"
	// LevelInstanceOnly allows instance scoping only.
	LevelInstanceOnly Level = "instance"
	// LevelProjectOnly allows project scoping only.
	LevelProjectOnly Level = "project"
	// LevelProjectAndGroup forbids instance scoping.
	LevelProjectAndGroup Level = "project_and_group"
)

// Variant is the immutable declaration of one integration kind: its field
// contract, capability flags and the events it reacts to.
type Variant struct {
	Kind        string
	Title       string
	Description string
	Category    Category
	Level       Level

	SupportedEvents []event.Kind
	Fields          []Field

	RequiresWebhook          bool
	SupportsDataFields       bool
	ConfigurableChannels     bool
	MaskConfigurableChannels bool

	// WebhookField names the field checked when RequiresWebhook is set.
	// Defaults to "webhook".
	WebhookField string
}

// Supports reports whether the variant reacts to the given event kind.
// Work-item kinds are checked through their issue aliases.
func (v Variant) Supports(kind event.Kind) bool {
	kind = event.Normalize(kind)
	for _, supported := range v.SupportedEvents {
		if supported == kind {
			return true
		}
	}
	return false
}

// FieldNamed returns the declared field with the given name.
func (v Variant) FieldNamed(name string) (Field, bool) {
	for _, field := range v.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

func (v Variant) webhookFieldName() string {
	if v.WebhookField != "" {
		return v.WebhookField
	}
	return "webhook"
}

// IsChat reports whether the variant routes through the chat engine.
func (v Variant) IsChat() bool { return v.Category == CategoryChat }

// IsCI reports whether the variant serves commit-status lookups.
func (v Variant) IsCI() bool { return v.Category == CategoryCI }

// AllowedAtProject reports whether the variant may be scoped to a project.
func (v Variant) AllowedAtProject() bool {
	return v.Level != LevelInstanceOnly
}

// AllowedAtGroup reports whether the variant may be scoped to a group.
func (v Variant) AllowedAtGroup() bool {
	return v.Level == LevelAny || v.Level == LevelProjectAndGroup
}

// AllowedAtInstance reports whether the variant may be scoped instance-wide.
func (v Variant) AllowedAtInstance() bool {
	return v.Level == LevelAny || v.Level == LevelInstanceOnly
}

// extend returns a copy of the variant with extra fields appended, used by
// specializations that add to an inherited field contract.
func (v Variant) extend(fields ...Field) Variant {
	combined := make([]Field, 0, len(v.Fields)+len(fields))
	combined = append(combined, v.Fields...)
	combined = append(combined, fields...)
	v.Fields = combined
	return v
}
