package statuscache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// RemoteConfig parameterizes the HTTP-backed status calculator for one CI
// integration instance.
type RemoteConfig struct {
	// StatusURL is the endpoint template; {sha} and {ref} are substituted.
	StatusURL string
	// BuildPageURL is the human-facing build page template.
	BuildPageURL string
	// StatusPath is the gjson path of the status field in the response.
	StatusPath string
	Username   string
	Password   string
}

// RemoteCalculator issues the CI API request and canonicalizes the
// response into the status enum.
type RemoteCalculator struct {
	config RemoteConfig
	client *http.Client
}

// NewRemoteCalculator constructs a calculator over the given CI endpoint.
func NewRemoteCalculator(config RemoteConfig, client *http.Client) *RemoteCalculator {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if config.StatusPath == "" {
		config.StatusPath = "status"
	}
	return &RemoteCalculator{config: config, client: client}
}

// BuildPage returns the build page URL for a commit.
func (r *RemoteCalculator) BuildPage(sha, ref string) string {
	return expand(r.config.BuildPageURL, sha, ref)
}

// Calculate fetches the remote build status. A 404 means the build is not
// known yet and maps to pending; any other non-2xx response maps to the
// error sentinel, never to a failure of the caller.
func (r *RemoteCalculator) Calculate(ctx context.Context, key Key) (Status, error) {
	url := expand(r.config.StatusURL, key.SHA, key.Ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return StatusError, fmt.Errorf("build request: %w", err)
	}
	if r.config.Username != "" {
		req.SetBasicAuth(r.config.Username, r.config.Password)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return StatusError, fmt.Errorf("status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return StatusPending, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return StatusError, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return StatusError, fmt.Errorf("read response: %w", err)
	}
	remote := gjson.GetBytes(body, r.config.StatusPath).String()
	if remote == "" {
		remote = strings.TrimSpace(string(body))
	}
	return Canonicalize(remote), nil
}

func expand(template, sha, ref string) string {
	out := strings.ReplaceAll(template, "{sha}", sha)
	return strings.ReplaceAll(out, "{ref}", ref)
}
