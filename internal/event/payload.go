package event

import (
	"strings"

	"github.com/tidwall/gjson"
)

const (
	tagRefPrefix    = "refs/tags/"
	branchRefPrefix = "refs/heads/"
)

// incidentWorkItemType marks a work item that is delivered separately
// through the dedicated incident event kind.
const incidentWorkItemType = "Incident"

// Payload is a read-only view over one inbound webhook body. Field access
// never fails: missing keys yield zero values and unknown keys are ignored.
type Payload struct {
	raw gjson.Result
}

// Parse wraps a raw JSON body. Invalid JSON produces a payload whose every
// lookup returns the zero value, which downstream gates treat as ineligible.
func Parse(body []byte) Payload {
	return Payload{raw: gjson.ParseBytes(body)}
}

// Kind returns the event kind from object_kind, falling back to event_type
// for payloads that only carry the work-item style discriminator.
func (p Payload) Kind() Kind {
	kind := p.raw.Get("object_kind").String()
	if kind == "" {
		kind = p.raw.Get("event_type").String()
	}
	return Kind(kind)
}

// NormalizedKind is Kind after work-item alias normalization.
func (p Payload) NormalizedKind() Kind {
	return Normalize(p.Kind())
}

// IsIncidentWorkItem reports whether a work-item payload describes an
// incident, which must be suppressed on the work-item path.
func (p Payload) IsIncidentWorkItem() bool {
	if !IsWorkItem(p.Kind()) {
		return false
	}
	return p.raw.Get("object_attributes.type").String() == incidentWorkItemType
}

// Ref returns the raw git ref of push-style events.
func (p Payload) Ref() string {
	if ref := p.raw.Get("ref").String(); ref != "" {
		return ref
	}
	return p.raw.Get("object_attributes.ref").String()
}

// Branch returns the branch name with any refs/heads/ prefix stripped.
func (p Payload) Branch() string {
	return strings.TrimPrefix(p.Ref(), branchRefPrefix)
}

// IsTagPush reports whether the event is a tag push, either by kind or by
// the ref namespace.
func (p Payload) IsTagPush() bool {
	return p.Kind() == KindTagPush || strings.HasPrefix(p.Ref(), tagRefPrefix)
}

// Action returns the object_attributes action, e.g. open, close, update.
func (p Payload) Action() string {
	return p.raw.Get("object_attributes.action").String()
}

// Labels collects the label titles attached to the event object.
func (p Payload) Labels() []string {
	result := p.raw.Get("labels")
	if !result.Exists() {
		result = p.raw.Get("object_attributes.labels")
	}
	var labels []string
	result.ForEach(func(_, value gjson.Result) bool {
		title := value.Get("title").String()
		if title == "" {
			title = value.String()
		}
		if title != "" {
			labels = append(labels, title)
		}
		return true
	})
	return labels
}

// PipelineStatus returns the pipeline status for pipeline events.
func (p Payload) PipelineStatus() string {
	return p.raw.Get("object_attributes.status").String()
}

// DefaultBranch returns the project default branch carried by the payload.
func (p Payload) DefaultBranch() string {
	return p.raw.Get("project.default_branch").String()
}

// UserName returns the display name of the acting user.
func (p Payload) UserName() string {
	if name := p.raw.Get("user.name").String(); name != "" {
		return name
	}
	return p.raw.Get("user_name").String()
}

// ProjectName returns the project display name.
func (p Payload) ProjectName() string {
	if name := p.raw.Get("project.name").String(); name != "" {
		return name
	}
	return p.raw.Get("repository.name").String()
}

// ProjectWebURL returns the project web URL.
func (p Payload) ProjectWebURL() string {
	return p.raw.Get("project.web_url").String()
}

// SHA returns the commit SHA most relevant to the event.
func (p Payload) SHA() string {
	for _, path := range []string{"checkout_sha", "after", "sha", "object_attributes.sha", "object_attributes.last_commit.id"} {
		if value := p.raw.Get(path).String(); value != "" {
			return value
		}
	}
	return ""
}

// Title returns the object title for issue, merge request and wiki events.
func (p Payload) Title() string {
	return p.raw.Get("object_attributes.title").String()
}

// URL returns the object URL if the payload carries one.
func (p Payload) URL() string {
	return p.raw.Get("object_attributes.url").String()
}

// CommitCount returns the number of commits on a push event.
func (p Payload) CommitCount() int {
	if count := p.raw.Get("total_commits_count"); count.Exists() {
		return int(count.Int())
	}
	return int(p.raw.Get("commits.#").Int())
}

// Get exposes raw gjson-path access for variant-specific fields.
func (p Payload) Get(path string) string {
	return p.raw.Get(path).String()
}
