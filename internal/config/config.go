package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the persistent application configuration
type Config struct {
	// Remote news-chat service
	Service ServiceConfig `json:"service"`

	// Conversation behavior
	Conversation ConversationConfig `json:"conversation"`

	// Optional transcript database path. Empty means in-memory: nothing
	// survives the session.
	TranscriptPath string `json:"transcript_path,omitempty"`
}

// ServiceConfig holds settings for the remote service
type ServiceConfig struct {
	URL               string `json:"url"`
	TimeoutSeconds    int    `json:"timeout_seconds"`
	RequestsPerMinute int    `json:"requests_per_minute"` // client-side throttle; the backend rides a metered news API
}

// ConversationConfig holds conversation tuning knobs
type ConversationConfig struct {
	HistoryLimit      int `json:"history_limit"`       // turns of context sent with each query
	MaxNarrativeChars int `json:"max_narrative_chars"` // assistant replies longer than this get a cleanup pass
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			URL:               "http://localhost:8000",
			TimeoutSeconds:    60,
			RequestsPerMinute: 30,
		},
		Conversation: ConversationConfig{
			HistoryLimit:      10,
			MaxNarrativeChars: 200,
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".newschat", "config.json")
}

// Load reads config from disk, or returns defaults
func Load() (*Config, error) {
	path := ConfigPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.AutoPopulateFromEnv()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), nil
	}

	cfg.applyDefaults()
	cfg.AutoPopulateFromEnv()
	return &cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// AutoPopulateFromEnv overrides settings from environment variables
func (c *Config) AutoPopulateFromEnv() {
	if url := os.Getenv("NEWSCHAT_SERVICE_URL"); url != "" {
		c.Service.URL = url
	}
	if path := os.Getenv("NEWSCHAT_TRANSCRIPT"); path != "" {
		c.TranscriptPath = path
	}
}

// applyDefaults fills zero values left by a hand-edited config file
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Service.URL == "" {
		c.Service.URL = def.Service.URL
	}
	if c.Service.TimeoutSeconds <= 0 {
		c.Service.TimeoutSeconds = def.Service.TimeoutSeconds
	}
	if c.Service.RequestsPerMinute <= 0 {
		c.Service.RequestsPerMinute = def.Service.RequestsPerMinute
	}
	if c.Conversation.HistoryLimit <= 0 {
		c.Conversation.HistoryLimit = def.Conversation.HistoryLimit
	}
	if c.Conversation.MaxNarrativeChars <= 0 {
		c.Conversation.MaxNarrativeChars = def.Conversation.MaxNarrativeChars
	}
}
