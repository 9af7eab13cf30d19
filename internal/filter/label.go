package filter

import "strings"

// LabelBehavior selects how configured labels match event labels.
type LabelBehavior string

const (
	// MatchAny passes when the configured and event label sets intersect.
	MatchAny LabelBehavior = "match_any"
	// MatchAll passes when every configured label is on the event.
	MatchAll LabelBehavior = "match_all"
)

// ValidLabelBehavior reports whether the value is a known behavior.
// The empty string defaults to match_any.
func ValidLabelBehavior(value string) bool {
	switch LabelBehavior(value) {
	case "", MatchAny, MatchAll:
		return true
	default:
		return false
	}
}

// MatchLabels applies the label filter. An empty configured list always
// passes. Comparison is case-sensitive after stripping the leading ~
// marker the configuration UI uses.
func MatchLabels(configured string, behavior LabelBehavior, eventLabels []string) bool {
	wanted := parseLabelList(configured)
	if len(wanted) == 0 {
		return true
	}
	present := make(map[string]struct{}, len(eventLabels))
	for _, label := range eventLabels {
		present[strings.TrimPrefix(label, "~")] = struct{}{}
	}
	switch behavior {
	case MatchAll:
		for _, label := range wanted {
			if _, ok := present[label]; !ok {
				return false
			}
		}
		return true
	default:
		for _, label := range wanted {
			if _, ok := present[label]; ok {
				return true
			}
		}
		return false
	}
}

func parseLabelList(value string) []string {
	var out []string
	for _, part := range splitList(value) {
		out = append(out, strings.TrimPrefix(part, "~"))
	}
	return out
}
