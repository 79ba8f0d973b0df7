package psalm

import "time"

// Settings is the connection configuration for the chat transport.
// BaseURL and APIKey together select the live client; without them the
// offline client is used. Temperature and MaxTokens are forwarded
// verbatim into requests. Timeout bounds every non-streaming call.
type Settings struct {
	BaseURL      string
	APIKey       string
	Model        string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
	Capabilities []Capability
}

// DefaultSettings returns the unconfigured defaults.
func DefaultSettings() Settings {
	return Settings{
		Model:        "gpt-4",
		Temperature:  0.7,
		MaxTokens:    2048,
		Timeout:      30 * time.Second,
		Capabilities: []Capability{CapabilityChat},
	}
}

// Configured reports whether a live endpoint is set up.
func (s Settings) Configured() bool {
	return s.BaseURL != "" && s.APIKey != ""
}
