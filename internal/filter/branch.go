package filter

import "strings"

// BranchChoice is the notification-style branch filter enum.
type BranchChoice string

const (
	BranchesAll                 BranchChoice = "all"
	BranchesDefault             BranchChoice = "default"
	BranchesProtected           BranchChoice = "protected"
	BranchesDefaultAndProtected BranchChoice = "default_and_protected"
)

// ValidBranchChoice reports whether the value is a known enum member.
// The empty string is valid and treated as "all".
func ValidBranchChoice(value string) bool {
	switch BranchChoice(value) {
	case "", BranchesAll, BranchesDefault, BranchesProtected, BranchesDefaultAndProtected:
		return true
	default:
		return false
	}
}

// BranchContext carries the project-side facts a branch decision needs.
type BranchContext struct {
	Branch        string
	DefaultBranch string
	Protected     func(branch string) bool
	TagPush       bool
}

func (c BranchContext) isProtected() bool {
	return c.Protected != nil && c.Protected(c.Branch)
}

// NotifyBranch applies the enum-style branch filter. Tag pushes always
// pass regardless of the configured choice.
func NotifyBranch(choice BranchChoice, ctx BranchContext) bool {
	if ctx.TagPush {
		return true
	}
	switch choice {
	case BranchesDefault:
		return ctx.Branch == ctx.DefaultBranch
	case BranchesProtected:
		return ctx.isProtected()
	case BranchesDefaultAndProtected:
		return ctx.Branch == ctx.DefaultBranch || ctx.isProtected()
	default:
		return true
	}
}

// RestrictToBranch applies the legacy free-text comma-list filter. An
// empty list means no restriction.
func RestrictToBranch(configured, branch string) bool {
	branches := splitList(configured)
	if len(branches) == 0 {
		return true
	}
	for _, candidate := range branches {
		if candidate == branch {
			return true
		}
	}
	return false
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
