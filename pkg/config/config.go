package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// New returns the default configuration with environment overrides applied.
// It is used when no configuration file is given.
func New(_ context.Context) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and fills in webhook defaults.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Marker) == "" {
		return errors.New("marker: must not be empty")
	}

	if err := ValidateOutput(cfg.Output); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	if cfg.CollectTimeout <= 0 {
		return fmt.Errorf("collect_timeout: must be positive, got %s", cfg.CollectTimeout)
	}

	if cfg.WorkerTimeout < 0 {
		return fmt.Errorf("worker_timeout: must not be negative, got %s", cfg.WorkerTimeout)
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

// ValidateOutput checks that format names a supported output format.
func ValidateOutput(format string) error {
	switch OutputFormat(format) {
	case OutputText, OutputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", format)
	}
}

// ValidateTrigger checks that trigger is a known webhook trigger.
func ValidateTrigger(trigger WebhookTrigger) error {
	switch trigger {
	case WebhookTriggerOnErrors, WebhookTriggerAlways, WebhookTriggerNever:
		return nil
	default:
		return fmt.Errorf("invalid trigger %q (must be on_errors, always, or never)", trigger)
	}
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	if wh.Trigger == "" {
		wh.Trigger = WebhookTriggerOnErrors
	}
	if err := ValidateTrigger(wh.Trigger); err != nil {
		return err
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}

	return s
}
