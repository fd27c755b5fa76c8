package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/adhocore/gronx"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ChannelSync/internal/domain"
)

const (
	defaultTimezone   = "UTC"
	databaseDSNEnv    = "DATABASE_DSN"
	storageURLEnv     = "STORAGE_URL"
	storageKeyEnv     = "STORAGE_SERVICE_KEY"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	redisAddrEnv      = "REDIS_ADDR"
	natsURLEnv        = "NATS_URL"
	logLevelEnv       = "LOG_LEVEL"
)

// PathEnv names the YAML config file.
const PathEnv = "CHANNELSYNC_CONFIG"

// Cursor backends.
const (
	CursorFile  = "file"
	CursorRedis = "redis"
)

var (
	ErrNoChannels           = errors.New("no channels configured")
	ErrMissingDatabaseDSN   = errors.New("database dsn is required")
	ErrInvalidChannel       = errors.New("invalid channel")
	ErrDuplicateChannel     = errors.New("duplicate channel key")
	ErrUnknownCursorBackend = errors.New("unknown cursor backend")
	ErrMissingRedisAddr     = errors.New("redis address is required for the redis cursor backend")
	ErrInvalidCron          = errors.New("invalid cron expression")
	ErrInvalidThresholds    = errors.New("invalid grouping thresholds")
)

// Config holds high-level settings required across the application.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Storage       StorageConfig      `yaml:"storage"`
	Cursor        CursorConfig       `yaml:"cursor"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Events        EventsConfig       `yaml:"events"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Sources       SourcesConfig      `yaml:"sources"`
	Grouping      GroupingConfig     `yaml:"grouping"`
	Sync          SyncConfig         `yaml:"sync"`
	Logging       LoggingConfig      `yaml:"logging"`
	Channels      []domain.Channel   `yaml:"channels"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// StorageConfig points at the object store used for media. Media upload is
// disabled while URL is empty.
type StorageConfig struct {
	URL        string `yaml:"url"`
	ServiceKey string `yaml:"serviceKey"`
	Bucket     string `yaml:"bucket"`
}

// Enabled reports whether media uploads are configured.
func (s StorageConfig) Enabled() bool {
	return s.URL != "" && s.ServiceKey != ""
}

// CursorConfig selects where sync cursors live.
type CursorConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	RedisAddr   string `yaml:"redisAddr"`
	RedisPrefix string `yaml:"redisPrefix"`
}

// SchedulerConfig defines when watch mode runs.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether run reports can be delivered.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// EventsConfig configures article change events. Disabled while URL is empty.
type EventsConfig struct {
	NATSURL string `yaml:"natsUrl"`
	Subject string `yaml:"subject"`
}

// MetricsConfig configures metric output.
type MetricsConfig struct {
	// Textfile receives a dump of all metrics after each one-shot run.
	Textfile string `yaml:"textfile"`
	// Listen is the address serving /metrics in watch mode.
	Listen string `yaml:"listen"`
}

// SourcesConfig tunes the message source adapters.
type SourcesConfig struct {
	TelegramWebURL string        `yaml:"telegramWebUrl"`
	UserAgent      string        `yaml:"userAgent"`
	Timeout        time.Duration `yaml:"timeout"`
}

// GroupingConfig sets the multi-part grouping windows.
type GroupingConfig struct {
	Base                time.Duration `yaml:"base"`
	ContinuationCeiling time.Duration `yaml:"continuationCeiling"`
}

// SyncConfig holds per-run defaults.
type SyncConfig struct {
	Limit int `yaml:"limit"`
}

// LoggingConfig sets the log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot read .env: %v", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(PathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Validate reports settings that make a run impossible.
func (c Config) Validate() error {
	if len(c.Channels) == 0 {
		return ErrNoChannels
	}
	seen := map[string]bool{}
	for i, ch := range c.Channels {
		if ch.Key == "" || ch.Username == "" || ch.Source == "" {
			return fmt.Errorf("%w: entry %d needs key, username and source", ErrInvalidChannel, i)
		}
		if seen[ch.Key] {
			return fmt.Errorf("%w: %s", ErrDuplicateChannel, ch.Key)
		}
		seen[ch.Key] = true
	}

	if c.Database.DSN == "" {
		return ErrMissingDatabaseDSN
	}

	switch c.Cursor.Backend {
	case CursorFile:
	case CursorRedis:
		if c.Cursor.RedisAddr == "" {
			return ErrMissingRedisAddr
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCursorBackend, c.Cursor.Backend)
	}

	if !gronx.IsValid(c.Scheduler.CronExpression) {
		return fmt.Errorf("%w: %q", ErrInvalidCron, c.Scheduler.CronExpression)
	}

	if c.Grouping.Base <= 0 || c.Grouping.ContinuationCeiling < c.Grouping.Base {
		return ErrInvalidThresholds
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(storageURLEnv); v != "" {
		c.Storage.URL = v
	}

	if v := os.Getenv(storageKeyEnv); v != "" {
		c.Storage.ServiceKey = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Cursor.RedisAddr = v
	}

	if v := os.Getenv(natsURLEnv); v != "" {
		c.Events.NATSURL = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.Table != "" {
		base.Database.Table = override.Database.Table
	}

	if override.Storage.URL != "" {
		base.Storage.URL = override.Storage.URL
	}
	if override.Storage.ServiceKey != "" {
		base.Storage.ServiceKey = override.Storage.ServiceKey
	}
	if override.Storage.Bucket != "" {
		base.Storage.Bucket = override.Storage.Bucket
	}

	if override.Cursor.Backend != "" {
		base.Cursor.Backend = override.Cursor.Backend
	}
	if override.Cursor.Path != "" {
		base.Cursor.Path = override.Cursor.Path
	}
	if override.Cursor.RedisAddr != "" {
		base.Cursor.RedisAddr = override.Cursor.RedisAddr
	}
	if override.Cursor.RedisPrefix != "" {
		base.Cursor.RedisPrefix = override.Cursor.RedisPrefix
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Events.NATSURL != "" {
		base.Events.NATSURL = override.Events.NATSURL
	}
	if override.Events.Subject != "" {
		base.Events.Subject = override.Events.Subject
	}

	if override.Metrics.Textfile != "" {
		base.Metrics.Textfile = override.Metrics.Textfile
	}
	if override.Metrics.Listen != "" {
		base.Metrics.Listen = override.Metrics.Listen
	}

	if override.Sources.TelegramWebURL != "" {
		base.Sources.TelegramWebURL = override.Sources.TelegramWebURL
	}
	if override.Sources.UserAgent != "" {
		base.Sources.UserAgent = override.Sources.UserAgent
	}
	if override.Sources.Timeout > 0 {
		base.Sources.Timeout = override.Sources.Timeout
	}

	if override.Grouping.Base > 0 {
		base.Grouping.Base = override.Grouping.Base
	}
	if override.Grouping.ContinuationCeiling > 0 {
		base.Grouping.ContinuationCeiling = override.Grouping.ContinuationCeiling
	}

	if override.Sync.Limit > 0 {
		base.Sync.Limit = override.Sync.Limit
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if len(override.Channels) > 0 {
		base.Channels = override.Channels
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database: DatabaseConfig{DSN: "", Table: "articles"},
		Storage:  StorageConfig{Bucket: "article-media"},
		Cursor:   CursorConfig{Backend: CursorFile, Path: ".sync_state.json", RedisPrefix: "channelsync"},
		Scheduler: SchedulerConfig{
			CronExpression: "*/15 * * * *",
			Timezone:       defaultTimezone,
			location:       tz,
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Events:  EventsConfig{Subject: "articles.changes"},
		Metrics: MetricsConfig{Listen: ":9108"},
		Sources: SourcesConfig{
			TelegramWebURL: "https://t.me",
			UserAgent:      "ChannelSync/1.0",
			Timeout:        20 * time.Second,
		},
		Grouping: GroupingConfig{Base: 180 * time.Second, ContinuationCeiling: 30 * time.Minute},
		Sync:     SyncConfig{Limit: 100},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Channels: []domain.Channel{
			{Key: "en", Username: "observer_5", Source: "telegram_web"},
			{Key: "ar", Username: "almuraqb", Source: "telegram_web"},
		},
	}
}
