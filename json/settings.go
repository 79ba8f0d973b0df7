package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/psalmlegal/psalm"
)

// settingsDTO is the JSON representation of connection settings. Timeout
// is stored in milliseconds, matching the persisted layout.
type settingsDTO struct {
	BaseURL      string   `json:"baseUrl"`
	APIKey       string   `json:"apiKey"`
	Model        string   `json:"model"`
	Temperature  float64  `json:"temperature"`
	MaxTokens    int      `json:"maxTokens"`
	TimeoutMS    int64    `json:"timeout"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// MarshalSettings serializes connection settings.
func MarshalSettings(s psalm.Settings) ([]byte, error) {
	dto := settingsDTO{
		BaseURL:     s.BaseURL,
		APIKey:      s.APIKey,
		Model:       s.Model,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
		TimeoutMS:   s.Timeout.Milliseconds(),
	}
	for _, c := range s.Capabilities {
		dto.Capabilities = append(dto.Capabilities, string(c))
	}
	return json.Marshal(dto)
}

// UnmarshalSettings deserializes connection settings.
func UnmarshalSettings(data []byte) (psalm.Settings, error) {
	var dto settingsDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return psalm.Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	s := psalm.Settings{
		BaseURL:     dto.BaseURL,
		APIKey:      dto.APIKey,
		Model:       dto.Model,
		Temperature: dto.Temperature,
		MaxTokens:   dto.MaxTokens,
		Timeout:     time.Duration(dto.TimeoutMS) * time.Millisecond,
	}
	for _, c := range dto.Capabilities {
		s.Capabilities = append(s.Capabilities, psalm.Capability(c))
	}
	return s, nil
}
