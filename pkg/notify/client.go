// Package notify delivers constructed notifications to HTTP endpoints.
// Deliveries are HMAC-signed; the receiver verifies the signature against
// the shared secret configured on the integration.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ceevent "github.com/cloudevents/sdk-go/v2/event"
	"github.com/google/uuid"

	"github.com/dispatchhq/dispatchd/internal/chat"
)

const (
	signatureHeader = "X-Webhook-Signature"
	eventSource     = "dispatchd/notifications"
)

// Client posts chat messages to one webhook endpoint. It implements the
// chat sender contract for every webhook-driven notifier variant.
type Client struct {
	URL    string
	Secret string
	// CloudEvents wraps deliveries in a structured CloudEvents envelope;
	// pipeline deliveries additionally carry a CDEvents pipelineRun body.
	CloudEvents bool
	Timeout     time.Duration
	HTTPClient  *http.Client
}

type chatPayload struct {
	Text        string           `json:"text"`
	Fallback    string           `json:"fallback,omitempty"`
	Channel     string           `json:"channel,omitempty"`
	Username    string           `json:"username,omitempty"`
	Attachments []attachmentBody `json:"attachments,omitempty"`
}

type attachmentBody struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
	Color string `json:"color,omitempty"`
}

// Send posts one message to the configured endpoint.
func (c Client) Send(ctx context.Context, message chat.Message, opts chat.SendOptions) error {
	body, contentType, err := c.buildBody(message, opts)
	if err != nil {
		return err
	}
	return c.post(ctx, body, contentType)
}

func (c Client) buildBody(message chat.Message, opts chat.SendOptions) ([]byte, string, error) {
	payload := chatPayload{
		Text:     message.Text,
		Fallback: message.Fallback,
		Channel:  opts.Channel,
		Username: opts.Username,
	}
	for _, attachment := range message.Attachments {
		payload.Attachments = append(payload.Attachments, attachmentBody{
			Title: attachment.Title,
			Text:  attachment.Text,
			Color: attachment.Color,
		})
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("marshal payload: %w", err)
	}
	if !c.CloudEvents {
		return raw, "application/json", nil
	}

	eventType := "dev.dispatchd.notification.sent"
	data := json.RawMessage(raw)
	if message.Meta.Kind == "pipeline" {
		cdBody, cdType, err := BuildPipelineRunBody(message.Meta)
		if err == nil {
			eventType = cdType
			data = cdBody
		}
	}

	envelope := ceevent.New()
	envelope.SetID(uuid.NewString())
	envelope.SetSource(eventSource)
	envelope.SetType(eventType)
	envelope.SetTime(time.Now().UTC())
	envelope.SetSubject(message.Meta.ProjectName)
	if err := envelope.SetData(ceevent.ApplicationJSON, data); err != nil {
		return nil, "", fmt.Errorf("set envelope data: %w", err)
	}

	wrapped, err := json.Marshal(envelope)
	if err != nil {
		return nil, "", fmt.Errorf("marshal envelope: %w", err)
	}
	return wrapped, "application/cloudevents+json", nil
}

func (c Client) post(ctx context.Context, body []byte, contentType string) error {
	endpoint := strings.TrimSpace(c.URL)
	if endpoint == "" {
		return fmt.Errorf("webhook endpoint is required")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if secret := strings.TrimSpace(c.Secret); secret != "" {
		req.Header.Set(signatureHeader, sign(body, secret))
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook rejected: status=%s body=%s", resp.Status, strings.TrimSpace(string(payload)))
	}
	return nil
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

var _ chat.Sender = Client{}
