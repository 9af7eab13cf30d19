package filter

import "testing"

func TestValidLabelBehavior(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"", "match_any", "match_all"} {
		if !ValidLabelBehavior(value) {
			t.Errorf("expected %q to be valid", value)
		}
	}
	if ValidLabelBehavior("match_some") {
		t.Error("match_some is not a valid behavior")
	}
}

func TestMatchLabels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		configured string
		behavior   LabelBehavior
		labels     []string
		want       bool
	}{
		{"empty config passes", "", MatchAny, nil, true},
		{"any with intersection", "bug,urgent", MatchAny, []string{"urgent"}, true},
		{"any without intersection", "bug,urgent", MatchAny, []string{"feature"}, false},
		{"all present", "bug,urgent", MatchAll, []string{"bug", "urgent", "extra"}, true},
		{"all missing one", "bug,urgent", MatchAll, []string{"bug"}, false},
		{"tilde marker stripped", "~bug", MatchAny, []string{"bug"}, true},
		{"tilde on event label", "bug", MatchAny, []string{"~bug"}, true},
		{"case sensitive", "Bug", MatchAny, []string{"bug"}, false},
	}
	for _, tc := range cases {
		if got := MatchLabels(tc.configured, tc.behavior, tc.labels); got != tc.want {
			t.Errorf("%s: MatchLabels(%q, %q, %v) = %v, want %v",
				tc.name, tc.configured, tc.behavior, tc.labels, got, tc.want)
		}
	}
}
