package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const postTimeout = 5 * time.Second

// Client sends notifications to Slack via incoming webhooks.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	httpClient *http.Client
	notifyOn   NotifySettings
	log        zerolog.Logger
	wg         sync.WaitGroup
}

// NewClient creates a client from configuration. A disabled or incomplete
// config yields a client that silently drops everything.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if !cfg.Enabled || cfg.WebhookURL == "" {
		return &Client{enabled: false, log: log}
	}

	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    true,
		notifyOn:   cfg.NotifyOn,
		httpClient: &http.Client{Timeout: postTimeout},
		log:        log.With().Str("component", "notify").Logger(),
	}
}

// Enabled reports whether the client will post anything.
func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

type slackMessage struct {
	Channel string       `json:"channel,omitempty"`
	Text    string       `json:"text,omitempty"`
	Blocks  []slackBlock `json:"blocks,omitempty"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Fields   []slackText `json:"fields,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Post sends one event to Slack. Notifications are best-effort; most callers
// want Notify instead.
func (c *Client) Post(ctx context.Context, event EventType, fields map[string]string) error {
	if !c.Enabled() || !c.shouldNotify(event) {
		return nil
	}

	msg := formatMessage(event, fields, time.Now())
	if c.channel != "" {
		msg.Channel = c.channel
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) shouldNotify(event EventType) bool {
	switch event {
	case EventUserAuthorized, EventUserRevoked, EventUserBanned, EventUserUnbanned:
		return c.notifyOn.Access
	case EventGroupAuthorized, EventGroupRevoked:
		return c.notifyOn.Groups
	case EventBroadcast:
		return c.notifyOn.Broadcast
	default:
		return true
	}
}

// Notify posts in the background. Failures are logged, never returned.
// Safe to call on a nil or disabled client.
func (c *Client) Notify(event EventType, fields map[string]string) {
	if !c.Enabled() || !c.shouldNotify(event) {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), postTimeout)
		defer cancel()

		if err := c.Post(ctx, event, fields); err != nil {
			c.log.Warn().Err(err).Str("event", string(event)).Msg("slack notification failed")
		}
	}()
}

// Wait blocks until background notifications have finished.
func (c *Client) Wait() {
	if c == nil {
		return
	}
	c.wg.Wait()
}
