// Package config provides configuration loading and validation for routelog.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// Marker is the token that identifies request-log lines.
	Marker string `yaml:"marker"`

	// Report selects the report kind. Unknown values are not rejected here;
	// they select the invalid report at run time.
	Report string `yaml:"report,omitempty"`

	// Output is the output format (text or json).
	Output string `yaml:"output"`

	// CollectTimeout bounds the wait for each worker result once all
	// workers have finished.
	CollectTimeout time.Duration `yaml:"collect_timeout"`

	// WorkerTimeout bounds the wait for all workers to finish.
	// Zero disables the bound.
	WorkerTimeout time.Duration `yaml:"worker_timeout"`

	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// OutputFormat names a supported output format.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnErrors fires only when ERROR or CRITICAL lines were counted (default).
	WebhookTriggerOnErrors WebhookTrigger = "on_errors"
	// WebhookTriggerAlways fires after every report.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_errors" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
