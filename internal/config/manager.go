package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds the user's persistent preferences: where sessions and
// workflow definitions live, the monitor's classification thresholds, and
// the heuristic phrase lists. Phrase lists are data, not code: users tune
// them here when the defaults misfire.
type Config struct {
	SessionsRoot       string   `json:"sessions_root,omitempty"`         // Base dir for session records (default ~/.sherpa)
	WorkflowsDir       string   `json:"workflows_dir,omitempty"`         // Directory of workflow YAML definitions
	DormantMinutes     int      `json:"dormant_minutes,omitempty"`       // Inactivity before a session counts as dormant
	StaleMinutes       int      `json:"stale_minutes,omitempty"`         // Inactivity before a session counts as stale
	MaxSessionAgeHours int      `json:"max_session_age_hours,omitempty"` // Age before auto-archival
	CompletionPhrases  []string `json:"completion_phrases,omitempty"`    // Overrides the built-in completion indicators
	ManagementKeywords []string `json:"management_keywords,omitempty"`   // Overrides the alert suppression keywords
	CommandKeywords    []string `json:"command_keywords,omitempty"`      // Overrides the is_command step heuristic
}

// DormantAfter returns the dormant threshold as a duration (default 10m).
func (c *Config) DormantAfter() time.Duration {
	if c.DormantMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.DormantMinutes) * time.Minute
}

// StaleAfter returns the stale threshold as a duration (default 30m).
func (c *Config) StaleAfter() time.Duration {
	if c.StaleMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.StaleMinutes) * time.Minute
}

// MaxSessionAge returns the auto-archive ceiling as a duration (default 6h).
func (c *Config) MaxSessionAge() time.Duration {
	if c.MaxSessionAgeHours <= 0 {
		return 6 * time.Hour
	}
	return time.Duration(c.MaxSessionAgeHours) * time.Hour
}

// Manager handles loading and saving the configuration.
type Manager struct {
	configDir string
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user config dir: %w", err)
	}

	return &Manager{
		configDir: filepath.Join(configDir, "sherpa"),
	}, nil
}

// GetConfigPath returns the absolute path to the config.json file.
func (m *Manager) GetConfigPath() string {
	return filepath.Join(m.configDir, "config.json")
}

// Load reads the configuration from disk.
// If the file does not exist, it returns an empty Config and no error.
func (m *Manager) Load() (*Config, error) {
	path := m.GetConfigPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config json: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration to disk with restricted permissions (0600).
func (m *Manager) Save(cfg *Config) error {
	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := m.GetConfigPath()
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Exists checks if the configuration file has been created.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.GetConfigPath())
	return !os.IsNotExist(err)
}
