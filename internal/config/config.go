// Package config loads gateway-hooks configuration.
//
// DESIGN: Three layers, later wins:
//  1. Defaults from defaults.go
//  2. YAML file (values may reference ${VAR} or ${VAR:-default})
//  3. Environment overrides for the notification/gateway surface
//
// Every notification path is optional; a channel is active only when its
// required values are present.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read as overrides.
const (
	EnvSlackWebhookURL = "SLACK_WEBHOOK_URL"
	EnvMasterKey       = "LITELLM_MASTER_KEY"
	EnvGatewayBaseURL  = "GATEWAY_BASE_URL"
	EnvEmailAPIKey     = "RESEND_API_KEY"
	EnvEmailFrom       = "ALERT_EMAIL_FROM"
	EnvEmailTo         = "ALERT_EMAIL_TO"
	EnvMaintenanceMode = "MAINTENANCE_MODE"
	EnvLogLevel        = "LOG_LEVEL"
)

// Config is the top-level configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Proxy      ProxyConfig      `yaml:"proxy"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Alerting   AlertingConfig   `yaml:"alerting"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// ServerConfig configures the sidecar HTTP server.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level   string `yaml:"level"`   // trace, debug, info, warn, error
	Console *bool  `yaml:"console"` // nil = auto-detect TTY
}

// ProxyConfig configures directive resolution and pooled transports.
type ProxyConfig struct {
	DirectiveKey        string        `yaml:"directive_key"`
	AttachMode          string        `yaml:"attach_mode"` // auto, client, kwargs
	DialTimeout         time.Duration `yaml:"dial_timeout"`
	TLSHandshakeTimeout time.Duration `yaml:"tls_handshake_timeout"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
}

// GatewayConfig describes the hosting gateway.
type GatewayConfig struct {
	BaseURL     string `yaml:"base_url"`
	StatusPath  string `yaml:"status_path"`
	MasterKey   string `yaml:"master_key"`
	Maintenance bool   `yaml:"maintenance"`
}

// AlertingConfig configures failure alerts.
type AlertingConfig struct {
	Cooldown      time.Duration `yaml:"cooldown"`
	StatusDelay   time.Duration `yaml:"status_delay"`
	NotifyTimeout time.Duration `yaml:"notify_timeout"`
	Webhook       WebhookConfig `yaml:"webhook"`
	Email         EmailConfig   `yaml:"email"`
}

// WebhookConfig configures the chat webhook channel.
type WebhookConfig struct {
	URL  string `yaml:"url"`
	Mode string `yaml:"mode"` // auto, event, status, both
}

// EmailConfig configures the email API channel.
type EmailConfig struct {
	APIURL string   `yaml:"api_url"`
	APIKey string   `yaml:"api_key"`
	From   string   `yaml:"from"`
	To     []string `yaml:"to"`
}

// MonitoringConfig configures the alert log.
type MonitoringConfig struct {
	AlertLogPath string `yaml:"alert_log_path"`
	LogToStdout  bool   `yaml:"log_to_stdout"`
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultListenAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Logging: LoggingConfig{Level: "info"},
		Proxy: ProxyConfig{
			DirectiveKey:        DefaultDirectiveKey,
			AttachMode:          DefaultAttachMode,
			DialTimeout:         DefaultDialTimeout,
			TLSHandshakeTimeout: DefaultTLSHandshakeTimeout,
			IdleConnTimeout:     DefaultIdleConnTimeout,
			MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		},
		Gateway: GatewayConfig{
			BaseURL:    DefaultGatewayBaseURL,
			StatusPath: DefaultStatusPath,
		},
		Alerting: AlertingConfig{
			Cooldown:      DefaultAlertCooldown,
			StatusDelay:   DefaultStatusDelay,
			NotifyTimeout: DefaultNotifyTimeout,
			Webhook: WebhookConfig{Mode: WebhookModeAuto},
			Email: EmailConfig{
				APIURL: DefaultEmailAPIURL,
				From:   DefaultEmailFrom,
			},
		},
	}
}

// Load reads the YAML file at path (optional) and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 -- path comes from the operator's --config flag
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse expands environment references in data and decodes it onto cfg.
func Parse(data []byte, cfg *Config) error {
	expanded := ExpandEnvWithDefaults(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment. lookup is os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvSlackWebhookURL); ok && strings.TrimSpace(v) != "" {
		c.Alerting.Webhook.URL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvMasterKey); ok && strings.TrimSpace(v) != "" {
		c.Gateway.MasterKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvGatewayBaseURL); ok && strings.TrimSpace(v) != "" {
		c.Gateway.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvEmailAPIKey); ok && strings.TrimSpace(v) != "" {
		c.Alerting.Email.APIKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvEmailFrom); ok && strings.TrimSpace(v) != "" {
		c.Alerting.Email.From = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvEmailTo); ok && strings.TrimSpace(v) != "" {
		c.Alerting.Email.To = splitList(v)
	}
	if v, ok := lookup(EnvMaintenanceMode); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			c.Gateway.Maintenance = b
		}
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		c.Logging.Level = strings.TrimSpace(v)
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	switch c.Proxy.AttachMode {
	case "auto", "client", "kwargs":
	default:
		return fmt.Errorf("proxy.attach_mode must be one of auto, client, kwargs, got %q", c.Proxy.AttachMode)
	}
	if c.Proxy.DialTimeout < 0 || c.Proxy.TLSHandshakeTimeout < 0 || c.Proxy.IdleConnTimeout < 0 {
		return fmt.Errorf("proxy timeouts must be >= 0")
	}
	if c.Alerting.Cooldown < 0 {
		return fmt.Errorf("alerting.cooldown must be >= 0, got %s", c.Alerting.Cooldown)
	}
	if c.Alerting.StatusDelay < 0 {
		return fmt.Errorf("alerting.status_delay must be >= 0, got %s", c.Alerting.StatusDelay)
	}
	switch c.Alerting.Webhook.Mode {
	case WebhookModeAuto, WebhookModeEvent, WebhookModeStatus, WebhookModeBoth:
	default:
		return fmt.Errorf("alerting.webhook.mode must be one of auto, event, status, both, got %q", c.Alerting.Webhook.Mode)
	}
	if c.Alerting.Webhook.Mode == WebhookModeStatus && c.Alerting.Webhook.URL != "" && c.Gateway.MasterKey == "" {
		return fmt.Errorf("alerting.webhook.mode status requires the gateway master key")
	}
	return nil
}

// Warnings lists partially configured alert channels. They are left
// disabled rather than failing startup.
func (c *Config) Warnings() []string {
	var out []string
	if c.Alerting.Email.APIKey != "" && len(c.Alerting.Email.To) == 0 {
		out = append(out, "email API key set without recipients, email alerts disabled")
	}
	if c.Alerting.Email.APIKey == "" && len(c.Alerting.Email.To) > 0 {
		out = append(out, "email recipients set without an API key, email alerts disabled")
	}
	return out
}

// WebhookEnabled reports whether single-event webhook alerts are sent.
// In auto mode the cumulative status report takes over once the gateway
// master key is available.
func (c *Config) WebhookEnabled() bool {
	if c.Alerting.Webhook.URL == "" {
		return false
	}
	switch c.Alerting.Webhook.Mode {
	case WebhookModeEvent, WebhookModeBoth:
		return true
	case WebhookModeStatus:
		return false
	default:
		return c.Gateway.MasterKey == ""
	}
}

// EnrichmentEnabled reports whether the cumulative status path is active.
// It needs both the webhook and the gateway master key.
func (c *Config) EnrichmentEnabled() bool {
	if c.Alerting.Webhook.URL == "" || c.Gateway.MasterKey == "" {
		return false
	}
	return c.Alerting.Webhook.Mode != WebhookModeEvent
}

// EmailEnabled reports whether the email channel is configured. It needs
// both the API key and at least one recipient.
func (c *Config) EmailEnabled() bool {
	return c.Alerting.Email.APIKey != "" && len(c.Alerting.Email.To) > 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// ExpandEnvWithDefaults replaces ${VAR} and ${VAR:-default} references.
// Unset or empty variables use the default, or expand to "" without one.
func ExpandEnvWithDefaults(s string) string {
	return envRefPattern.ReplaceAllStringFunc(s, func(ref string) string {
		m := envRefPattern.FindStringSubmatch(ref)
		if v := os.Getenv(m[1]); v != "" {
			return v
		}
		if m[2] != "" {
			return m[3]
		}
		return ""
	})
}
