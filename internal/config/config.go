package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/hpungsan/nutri/internal/feedback"
	"github.com/hpungsan/nutri/internal/food"
)

// Notification backends
const (
	BackendWriter = "writer" // print to stderr / the chat output
	BackendAMQP   = "amqp"   // publish to a RabbitMQ exchange
	BackendMCP    = "mcp"    // MCP notification to connected clients
	BackendNone   = "none"
)

// FileNames are tried in order inside the base directory.
var FileNames = []string{"config.yaml", "config.yml", "config.json"}

// Config holds application configuration.
type Config struct {
	// Goals are the daily macro targets
	Goals food.Goals `json:"goals" yaml:"goals"`

	// Timezone decides when a day starts and when reminders fire (IANA name)
	Timezone string `json:"timezone" yaml:"timezone"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`

	// Reminders are the scheduled status messages. An overlay list replaces
	// the base list instead of merging with it.
	Reminders []Reminder `json:"reminders,omitempty" yaml:"reminders,omitempty"`

	// RollCron closes the day's ledger (standard 5-field cron)
	RollCron string `json:"roll_cron,omitempty" yaml:"roll_cron,omitempty"`

	Notify NotifyConfig `json:"notify" yaml:"notify"`
	Web    WebConfig    `json:"web" yaml:"web"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" yaml:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" yaml:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty" yaml:"disabled_tools,omitempty"`
}

// Reminder is a scheduled status message.
type Reminder struct {
	Name string `json:"name" yaml:"name"`
	Cron string `json:"cron" yaml:"cron"`
	Kind string `json:"kind" yaml:"kind"` // midi, soir or recap
}

// NotifyConfig selects where reminders are delivered.
type NotifyConfig struct {
	Backend        string `json:"backend,omitempty" yaml:"backend,omitempty"`
	AMQPURL        string `json:"amqp_url,omitempty" yaml:"amqp_url,omitempty"`
	AMQPExchange   string `json:"amqp_exchange,omitempty" yaml:"amqp_exchange,omitempty"`
	AMQPRoutingKey string `json:"amqp_routing_key,omitempty" yaml:"amqp_routing_key,omitempty"`
}

// WebConfig configures the optional web page.
type WebConfig struct {
	Enabled bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Bind    string `json:"bind,omitempty" yaml:"bind,omitempty"`
	Port    int    `json:"port,omitempty" yaml:"port,omitempty"`
}

// Addr returns the listen address.
func (w WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", w.Bind, w.Port)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Goals:    food.DefaultGoals(),
		Timezone: "Europe/Paris",
		LogLevel: "info",
		Reminders: []Reminder{
			{Name: "midi", Cron: "0 12 * * *", Kind: "midi"},
			{Name: "soir", Cron: "0 18 * * *", Kind: "soir"},
			{Name: "recap", Cron: "0 23 * * *", Kind: "recap"},
		},
		RollCron: "0 0 * * *",
		Notify: NotifyConfig{
			Backend:        BackendWriter,
			AMQPExchange:   "nutri",
			AMQPRoutingKey: "nutri.reminder",
		},
		Web: WebConfig{Bind: "127.0.0.1", Port: 8765},
	}
}

// Load loads configuration from the first existing file of FileNames in
// baseDir, then applies NUTRI_* environment overrides.
// Returns default config if no file exists.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.nutri.
func Load(baseDir string) (*Config, error) {
	fileCfg := &Config{}
	for _, name := range FileNames {
		cfg, err := loadFileRaw(filepath.Join(baseDir, name))
		if err != nil {
			return nil, err
		}
		if cfg != nil {
			fileCfg = cfg
			break
		}
	}

	cfg := Merge(DefaultConfig(), fileCfg)
	ApplyEnv(cfg)
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns nil if the file doesn't exist. A .json file is parsed as JSON;
// anything else is tried as YAML first, then JSON.
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if filepath.Ext(configPath) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
		return cfg, nil
	}

	if yamlErr := yaml.Unmarshal(data, cfg); yamlErr != nil {
		cfg = &Config{}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s (tried YAML and JSON): %w", configPath, err)
		}
	}
	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence when non-zero.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.Goals = food.Goals{
		Kcal:     orFloat(overlay.Goals.Kcal, base.Goals.Kcal),
		ProteinG: orFloat(overlay.Goals.ProteinG, base.Goals.ProteinG),
		FatG:     orFloat(overlay.Goals.FatG, base.Goals.FatG),
		CarbG:    orFloat(overlay.Goals.CarbG, base.Goals.CarbG),
	}
	result.Timezone = orString(overlay.Timezone, base.Timezone)
	result.LogLevel = orString(overlay.LogLevel, base.LogLevel)
	result.RollCron = orString(overlay.RollCron, base.RollCron)

	result.Reminders = base.Reminders
	if overlay.Reminders != nil {
		result.Reminders = overlay.Reminders
	}

	result.Notify = NotifyConfig{
		Backend:        orString(overlay.Notify.Backend, base.Notify.Backend),
		AMQPURL:        orString(overlay.Notify.AMQPURL, base.Notify.AMQPURL),
		AMQPExchange:   orString(overlay.Notify.AMQPExchange, base.Notify.AMQPExchange),
		AMQPRoutingKey: orString(overlay.Notify.AMQPRoutingKey, base.Notify.AMQPRoutingKey),
	}

	result.Web = WebConfig{
		Enabled: base.Web.Enabled || overlay.Web.Enabled,
		Bind:    orString(overlay.Web.Bind, base.Web.Bind),
		Port:    orInt(overlay.Web.Port, base.Web.Port),
	}

	result.DBMaxOpenConns = orInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = orInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// Location loads the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Validate checks the whole configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	for name, v := range map[string]float64{
		"kcal": c.Goals.Kcal, "protein_g": c.Goals.ProteinG,
		"fat_g": c.Goals.FatG, "carb_g": c.Goals.CarbG,
	} {
		if v <= 0 {
			problems = append(problems, fmt.Sprintf("goal %s must be positive, got %v", name, v))
		}
	}

	if _, err := c.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("invalid timezone %q: %v", c.Timezone, err))
	}

	if _, err := cron.ParseStandard(c.RollCron); err != nil {
		problems = append(problems, fmt.Sprintf("invalid roll_cron %q: %v", c.RollCron, err))
	}
	for _, r := range c.Reminders {
		if _, err := cron.ParseStandard(r.Cron); err != nil {
			problems = append(problems, fmt.Sprintf("reminder %q: invalid cron %q: %v", r.Name, r.Cron, err))
		}
		if _, err := feedback.ParseReminderKind(r.Kind); err != nil {
			problems = append(problems, fmt.Sprintf("reminder %q: unknown kind %q", r.Name, r.Kind))
		}
	}

	switch c.Notify.Backend {
	case BackendWriter, BackendMCP, BackendNone:
	case BackendAMQP:
		if u, err := url.Parse(c.Notify.AMQPURL); err != nil || c.Notify.AMQPURL == "" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL %q", c.Notify.AMQPURL))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme %q: must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.Notify.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when the amqp backend is used")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown notify backend %q", c.Notify.Backend))
	}

	if c.Web.Enabled && (c.Web.Port < 1 || c.Web.Port > 65535) {
		problems = append(problems, fmt.Sprintf("invalid web port %d", c.Web.Port))
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func orString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func orInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func orFloat(overlay, base float64) float64 {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
