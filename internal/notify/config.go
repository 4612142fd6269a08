// Package notify posts owner audit events to a Slack incoming webhook.
package notify

// Config holds Slack notification configuration.
type Config struct {
	// Enabled controls whether notifications are sent.
	Enabled bool `toml:"enabled"`

	// WebhookURL is the Slack incoming webhook URL.
	WebhookURL string `toml:"webhook_url" validate:"fullUrl"`

	// Channel overrides the webhook's default channel.
	Channel string `toml:"channel"`

	// NotifyOn controls which events trigger notifications.
	NotifyOn NotifySettings `toml:"notify_on"`
}

// NotifySettings controls which events trigger notifications.
type NotifySettings struct {
	// Access covers user authorize, revoke, ban and unban.
	Access bool `toml:"access"`

	// Groups covers group authorize and revoke.
	Groups bool `toml:"groups"`

	// Broadcast reports the outcome of each owner broadcast.
	Broadcast bool `toml:"broadcast"`
}

// DefaultConfig returns a disabled config with every event selected.
func DefaultConfig() Config {
	return Config{
		NotifyOn: NotifySettings{
			Access:    true,
			Groups:    true,
			Broadcast: true,
		},
	}
}
