package integration

import "testing"

func TestSetPropRecordsPreviousValue(t *testing.T) {
	t.Parallel()

	instance := New("slack")
	instance.SetProperties(Properties{"webhook": "https://old.example.com"})

	instance.SetProp("webhook", "https://new.example.com")
	if !instance.PropTouched("webhook") {
		t.Fatal("expected webhook to be touched")
	}
	if !instance.PropChanged("webhook") {
		t.Fatal("expected webhook to be changed")
	}
	if instance.PropWas("webhook") != "https://old.example.com" {
		t.Fatalf("unexpected previous value %q", instance.PropWas("webhook"))
	}

	// Later writes keep the value from the last commit, not the last write.
	instance.SetProp("webhook", "https://newer.example.com")
	if instance.PropWas("webhook") != "https://old.example.com" {
		t.Fatalf("previous value must survive repeated writes, got %q", instance.PropWas("webhook"))
	}
}

func TestPropChangedFalseWhenValueRestored(t *testing.T) {
	t.Parallel()

	instance := New("slack")
	instance.SetProperties(Properties{"channel": "#general"})

	instance.SetProp("channel", "#dev")
	instance.SetProp("channel", "#general")
	if instance.PropChanged("channel") {
		t.Fatal("restored value must not count as changed")
	}
	if instance.Dirty() {
		t.Fatal("instance with restored value must not be dirty")
	}
}

func TestResetUpdatedProperties(t *testing.T) {
	t.Parallel()

	instance := New("slack")
	instance.SetProp("webhook", "https://example.com")
	if !instance.Dirty() {
		t.Fatal("expected dirty after write")
	}

	instance.ResetUpdatedProperties()
	if instance.Dirty() || instance.PropTouched("webhook") {
		t.Fatal("expected clean state after reset")
	}
	if instance.Prop("webhook") != "https://example.com" {
		t.Fatal("reset must not discard the value itself")
	}
}

func TestBoolProp(t *testing.T) {
	t.Parallel()

	instance := New("slack")
	instance.SetProp("notify_only_broken_pipelines", "true")
	if !instance.BoolProp("notify_only_broken_pipelines") {
		t.Fatal("expected true")
	}
	instance.SetProp("notify_only_broken_pipelines", "0")
	if instance.BoolProp("notify_only_broken_pipelines") {
		t.Fatal("expected false for 0")
	}
	if instance.BoolProp("missing") {
		t.Fatal("missing property reads false")
	}
}
