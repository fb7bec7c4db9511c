package config

// Config represents the top-level configuration stored at ~/.config/sessioncli/config.json.
type Config struct {
	BaseURL       string  `json:"base_url"`
	RefreshPath   string  `json:"refresh_path,omitempty"`
	SharedRefresh bool    `json:"shared_refresh,omitempty"`
	RateLimit     float64 `json:"rate_limit,omitempty"` // requests per second, 0 = unlimited
	UserAgent     string  `json:"user_agent,omitempty"`
}
