// Package config loads the assistant configuration from defaults, an optional
// YAML file, and environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "2s" or "500ms" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("failed to parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Vision configures the Gemini analyzer.
type Vision struct {
	Model          string   `yaml:"model"`
	Timeout        Duration `yaml:"timeout"`
	MaxAttempts    int      `yaml:"max_attempts"`
	RetryBaseDelay Duration `yaml:"retry_base_delay"`
}

// Guidance configures when a reach counts as complete.
type Guidance struct {
	ReachedToleranceDegrees float64 `yaml:"reached_tolerance_degrees"`
	ReachedConsecutive      int     `yaml:"reached_consecutive"`
}

// Speech selects and configures the voice output.
type Speech struct {
	// Provider is "console" or "elevenlabs".
	Provider string `yaml:"provider"`
	VoiceID  string `yaml:"voice_id"`
	AudioDir string `yaml:"audio_dir"`
}

// Config is the full assistant configuration.
type Config struct {
	PhotosDir           string   `yaml:"photos_dir"`
	APIBaseURL          string   `yaml:"api_base_url"`
	PollInterval        Duration `yaml:"poll_interval"`
	QueueCapacity       int      `yaml:"queue_capacity"`
	SettleDelay         Duration `yaml:"settle_delay"`
	StoreFailureCeiling int      `yaml:"store_failure_ceiling"`
	StoreTimeout        Duration `yaml:"store_timeout"`
	StoreMaxAttempts    int      `yaml:"store_max_attempts"`
	StoreRetryBaseDelay Duration `yaml:"store_retry_base_delay"`
	Vision              Vision   `yaml:"vision"`
	Guidance            Guidance `yaml:"guidance"`
	Speech              Speech   `yaml:"speech"`
}

// Default returns the configuration used when no file or overrides are given.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		PhotosDir:           filepath.Join(home, "Documents", "ShelfPhotos"),
		APIBaseURL:          "http://localhost:8000",
		PollInterval:        Duration(2 * time.Second),
		QueueCapacity:       16,
		SettleDelay:         Duration(500 * time.Millisecond),
		StoreFailureCeiling: 5,
		StoreTimeout:        Duration(30 * time.Second),
		StoreMaxAttempts:    3,
		StoreRetryBaseDelay: Duration(500 * time.Millisecond),
		Vision: Vision{
			Model:          "gemini-2.0-flash-exp",
			Timeout:        Duration(30 * time.Second),
			MaxAttempts:    3,
			RetryBaseDelay: Duration(500 * time.Millisecond),
		},
		Guidance: Guidance{
			ReachedToleranceDegrees: 30,
			ReachedConsecutive:      2,
		},
		Speech: Speech{
			Provider: "console",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path if
// path is non-empty, then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if v := os.Getenv("SHELF_PHOTOS_DIR"); v != "" {
		cfg.PhotosDir = v
	}
	if v := os.Getenv("API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Vision.Model = v
	}
	if v := os.Getenv("ELEVENLABS_VOICE_ID"); v != "" {
		cfg.Speech.VoiceID = v
	}

	return cfg, nil
}
