package statuscache

import "strings"

// Status is the canonical build status enum.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusCanceled Status = "canceled"
	StatusSkipped  Status = "skipped"
	// StatusError is the sentinel every unmatched or failed computation
	// collapses to. It is never raised as an exception.
	StatusError Status = "error"
)

// statusTokens is checked in order; the first case-insensitive substring
// match wins.
var statusTokens = []struct {
	token  string
	status Status
}{
	{"success", StatusSuccess},
	{"failed", StatusFailed},
	{"failure", StatusFailed},
	{"error", StatusFailed},
	{"pending", StatusPending},
	{"queued", StatusPending},
	{"running", StatusRunning},
	{"in progress", StatusRunning},
	{"canceled", StatusCanceled},
	{"cancelled", StatusCanceled},
	{"skipped", StatusSkipped},
}

// Canonicalize maps a remote status string onto the canonical enum.
// Anything unmatched maps to the error sentinel.
func Canonicalize(remote string) Status {
	lowered := strings.ToLower(remote)
	for _, candidate := range statusTokens {
		if strings.Contains(lowered, candidate.token) {
			return candidate.status
		}
	}
	return StatusError
}
