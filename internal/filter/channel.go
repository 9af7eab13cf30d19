package filter

import (
	"fmt"

	"github.com/dispatchhq/dispatchd/internal/event"
	"github.com/dispatchhq/dispatchd/internal/registry"
)

// DefaultChannelLimit caps how many channels one event may notify. The cap
// is a save-time invariant, not a dispatch-time filter.
const DefaultChannelLimit = 10

// ChannelSource reads channel configuration off an integration instance.
type ChannelSource interface {
	Prop(name string) string
}

// ChannelsForEvent resolves destination channels for an event kind: the
// per-event override property wins, otherwise the default channel field.
// Names are comma-split, trimmed and deduplicated preserving order.
func ChannelsForEvent(source ChannelSource, kind event.Kind) []string {
	configured := source.Prop(registry.ChannelFieldName(event.Normalize(kind)))
	if configured == "" {
		configured = source.Prop("channel")
	}
	return dedupe(splitList(configured))
}

// ValidateChannelCount rejects configurations whose per-event channel list
// exceeds the limit. Called at save time.
func ValidateChannelCount(source ChannelSource, kinds []event.Kind, limit int) error {
	if limit <= 0 {
		limit = DefaultChannelLimit
	}
	for _, kind := range kinds {
		channels := ChannelsForEvent(source, kind)
		if len(channels) > limit {
			return fmt.Errorf("%d channels configured for %s events, only %d allowed", len(channels), kind, limit)
		}
	}
	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
