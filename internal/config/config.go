package config

import (
	"fmt"
	"strings"
	"time"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// RedisConfig holds redis connection settings. An empty Addr disables the cycle history.
type RedisConfig struct {
	Addr        string `mapstructure:"addr" yaml:"addr"`
	Username    string `mapstructure:"username" yaml:"username"`
	Password    string `mapstructure:"password" yaml:"password"`
	DB          int    `mapstructure:"db" yaml:"db"`
	HistorySize int    `mapstructure:"history_size" yaml:"history_size"`
}

// XConfig controls the X (Twitter) recent search client.
type XConfig struct {
	BearerToken   string `mapstructure:"bearer_token" yaml:"bearer_token"`
	BaseURL       string `mapstructure:"base_url" yaml:"base_url"`
	Timeout       string `mapstructure:"timeout" yaml:"timeout"` // duration string, e.g., "10s"
	PermalinkBase string `mapstructure:"permalink_base" yaml:"permalink_base"`
}

// LineConfig controls the LINE Messaging API client.
type LineConfig struct {
	ChannelToken  string  `mapstructure:"channel_token" yaml:"channel_token"`
	ChannelSecret string  `mapstructure:"channel_secret" yaml:"channel_secret"` // only needed for /callback
	GroupID       string  `mapstructure:"group_id" yaml:"group_id"`
	BaseURL       string  `mapstructure:"base_url" yaml:"base_url"`
	Timeout       string  `mapstructure:"timeout" yaml:"timeout"`
	RatePerSec    float64 `mapstructure:"rate_per_sec" yaml:"rate_per_sec"`
}

// MonitorConfig describes what to watch and how to notify.
type MonitorConfig struct {
	Keywords   []string `mapstructure:"keywords" yaml:"keywords"`
	Account    string   `mapstructure:"account" yaml:"account"` // author-scoped search when set
	Query      string   `mapstructure:"query" yaml:"query"`     // raw query override
	Lookback   string   `mapstructure:"lookback" yaml:"lookback"`
	MaxResults int      `mapstructure:"max_results" yaml:"max_results"`
	Advance    string   `mapstructure:"advance" yaml:"advance"` // always | on_success
	Timezone   string   `mapstructure:"timezone" yaml:"timezone"`
}

// ScheduleConfig controls the continuous loop.
type ScheduleConfig struct {
	Interval      string `mapstructure:"interval" yaml:"interval"`
	Cron          string `mapstructure:"cron" yaml:"cron"` // overrides interval when set
	RecoveryDelay string `mapstructure:"recovery_delay" yaml:"recovery_delay"`
	CycleTimeout  string `mapstructure:"cycle_timeout" yaml:"cycle_timeout"`
}

// HTTPConfig controls the trigger server. An empty Addr disables it.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// OpenAIConfig enables an optional one-line summary per notification.
type OpenAIConfig struct {
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
	Model    string `mapstructure:"model" yaml:"model"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	Language string `mapstructure:"language" yaml:"language"`
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app" yaml:"app"`
	Redis    RedisConfig    `mapstructure:"redis" yaml:"redis"`
	X        XConfig        `mapstructure:"x" yaml:"x"`
	Line     LineConfig     `mapstructure:"line" yaml:"line"`
	Monitor  MonitorConfig  `mapstructure:"monitor" yaml:"monitor"`
	Schedule ScheduleConfig `mapstructure:"schedule" yaml:"schedule"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	OpenAI   OpenAIConfig   `mapstructure:"openai" yaml:"openai"`
}

// MissingError reports required settings that were not provided.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return "missing required configuration: " + strings.Join(e.Keys, ", ")
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Redis.HistorySize == 0 {
		c.Redis.HistorySize = 100
	}
	if c.X.BaseURL == "" {
		c.X.BaseURL = "https://api.twitter.com"
	}
	if c.X.Timeout == "" {
		c.X.Timeout = "10s"
	}
	if c.X.PermalinkBase == "" {
		c.X.PermalinkBase = "https://twitter.com"
	}
	if c.Line.BaseURL == "" {
		c.Line.BaseURL = "https://api.line.me"
	}
	if c.Line.Timeout == "" {
		c.Line.Timeout = "10s"
	}
	if c.Line.RatePerSec <= 0 {
		c.Line.RatePerSec = 2
	}
	if c.Monitor.MaxResults == 0 {
		c.Monitor.MaxResults = 10
	}
	if c.Monitor.Advance == "" {
		c.Monitor.Advance = "always"
	}
	if c.Monitor.Timezone == "" {
		c.Monitor.Timezone = "UTC"
	}
	if c.Schedule.Interval == "" {
		c.Schedule.Interval = "15m"
	}
	if c.Schedule.RecoveryDelay == "" {
		c.Schedule.RecoveryDelay = "60s"
	}
	if c.Schedule.CycleTimeout == "" {
		c.Schedule.CycleTimeout = "2m"
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "Traditional Chinese"
	}
	c.Monitor.Keywords = normalizeKeywords(c.Monitor.Keywords)
	c.Monitor.Account = strings.TrimPrefix(strings.TrimSpace(c.Monitor.Account), "@")
}

// Validate checks required secrets and parses every duration once, before any cycle runs.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.X.BearerToken) == "" {
		missing = append(missing, "x.bearer_token (X_BEARER_TOKEN)")
	}
	if strings.TrimSpace(c.Line.ChannelToken) == "" {
		missing = append(missing, "line.channel_token (LINE_BOT_TOKEN)")
	}
	if strings.TrimSpace(c.Line.GroupID) == "" {
		missing = append(missing, "line.group_id (LINE_GROUP_ID)")
	}
	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}
	if c.Monitor.Account == "" && len(c.Monitor.Keywords) == 0 && strings.TrimSpace(c.Monitor.Query) == "" {
		return fmt.Errorf("monitor: set keywords, account or query")
	}
	switch c.Monitor.Advance {
	case "always", "on_success":
	default:
		return fmt.Errorf("monitor.advance: unknown policy %q", c.Monitor.Advance)
	}
	if _, err := time.LoadLocation(c.Monitor.Timezone); err != nil {
		return fmt.Errorf("monitor.timezone: %w", err)
	}
	durations := map[string]string{
		"x.timeout":               c.X.Timeout,
		"line.timeout":            c.Line.Timeout,
		"monitor.lookback":        c.Monitor.Lookback,
		"schedule.interval":       c.Schedule.Interval,
		"schedule.recovery_delay": c.Schedule.RecoveryDelay,
		"schedule.cycle_timeout":  c.Schedule.CycleTimeout,
	}
	for key, v := range durations {
		if _, err := ParseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// ParseDuration parses a duration string; an empty string yields zero.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

// Redacted returns a copy safe to print, with secrets masked.
func (c Config) Redacted() Config {
	c.X.BearerToken = mask(c.X.BearerToken)
	c.Line.ChannelToken = mask(c.Line.ChannelToken)
	c.Line.ChannelSecret = mask(c.Line.ChannelSecret)
	c.Redis.Password = mask(c.Redis.Password)
	c.OpenAI.APIKey = mask(c.OpenAI.APIKey)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + "****" + s[len(s)-2:]
}

// normalizeKeywords trims entries, drops blanks and splits comma lists coming from env vars.
func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		for _, part := range strings.Split(k, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
