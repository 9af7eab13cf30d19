package filter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dispatchhq/dispatchd/internal/event"
)

type propMap map[string]string

func (p propMap) Prop(name string) string { return p[name] }

func TestChannelsForEventDefaultsToChannelProp(t *testing.T) {
	t.Parallel()

	source := propMap{"channel": "#general, #dev, #general"}
	channels := ChannelsForEvent(source, event.KindPush)
	if len(channels) != 2 || channels[0] != "#general" || channels[1] != "#dev" {
		t.Fatalf("unexpected channels: %v", channels)
	}
}

func TestChannelsForEventOverrideWins(t *testing.T) {
	t.Parallel()

	source := propMap{
		"channel":          "#general",
		"pipeline_channel": "#ci",
	}
	channels := ChannelsForEvent(source, event.KindPipeline)
	if len(channels) != 1 || channels[0] != "#ci" {
		t.Fatalf("expected override channel, got %v", channels)
	}
}

func TestChannelsForEventNormalizesWorkItemKind(t *testing.T) {
	t.Parallel()

	source := propMap{"issue_channel": "#issues"}
	channels := ChannelsForEvent(source, event.KindWorkItem)
	if len(channels) != 1 || channels[0] != "#issues" {
		t.Fatalf("expected work_item to resolve issue override, got %v", channels)
	}
}

func TestValidateChannelCount(t *testing.T) {
	t.Parallel()

	within := make([]string, DefaultChannelLimit)
	for i := range within {
		within[i] = fmt.Sprintf("#chan-%d", i)
	}
	source := propMap{"channel": strings.Join(within, ",")}
	if err := ValidateChannelCount(source, []event.Kind{event.KindPush}, DefaultChannelLimit); err != nil {
		t.Fatalf("limit channels must validate, got %v", err)
	}

	over := append(within, "#one-too-many")
	source = propMap{"channel": strings.Join(over, ",")}
	if err := ValidateChannelCount(source, []event.Kind{event.KindPush}, DefaultChannelLimit); err == nil {
		t.Fatal("expected error for channels over the limit")
	}
}
