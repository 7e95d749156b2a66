package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Telegram delivery
	Token       string   `long:"token" env:"TOKEN" description:"Telegram bot token"`
	Channels    []string `long:"channel" env:"CHANNELS" env-delim:"," description:"Recipient channel ids (comma separated in env, overrides the config file)"`
	AdminChatID string   `long:"admin-chat-id" env:"ADMIN_CHAT_ID" description:"Chat id for operational alerts (overrides the config file)"`
	SendDelay   int      `long:"send-delay" env:"SEND_DELAY" default:"500" description:"Delay between sends in milliseconds"`
	DryRun      bool     `long:"dry-run" env:"DRY_RUN" description:"Log deliveries instead of sending them"`

	// Storage
	DataDir  string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory for dedup state and reject log"`
	Store    string `long:"store" env:"STORE" default:"file" choice:"file" choice:"sqlite" choice:"redis" description:"Storage backend"`
	RedisURL string `long:"redis-url" env:"REDIS_URL" default:"localhost:6379" description:"Redis address or redis:// URL (redis store only)"`

	// Application configuration
	ConfigFile        string `long:"config" env:"CONFIG_FILE" default:"./configs/relay.yml" description:"Feeds and keywords configuration file"`
	Once              bool   `long:"once" env:"ONCE" description:"Run the pipeline once and exit"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"3600" description:"Scheduler interval in seconds"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Relay/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Moscow)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	LogFile   string `long:"log-file" env:"LOG_FILE" description:"Also write logs to this file"`
}

// Load parses flags and environment. It returns nil, nil when help was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.SchedulerInterval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %d", raw.SchedulerInterval)
	}
	if raw.SendDelay < 0 {
		return nil, fmt.Errorf("send delay must not be negative, got %d", raw.SendDelay)
	}

	cfg := &Cfg{
		Token:             strings.TrimSpace(raw.Token),
		Channels:          splitList(raw.Channels),
		AdminChatID:       strings.TrimSpace(raw.AdminChatID),
		SendDelay:         time.Duration(raw.SendDelay) * time.Millisecond,
		DryRun:            raw.DryRun,
		DataDir:           raw.DataDir,
		Store:             StoreBackend(raw.Store),
		RedisURL:          raw.RedisURL,
		ConfigFile:        raw.ConfigFile,
		Once:              raw.Once,
		SchedulerInterval: time.Duration(raw.SchedulerInterval) * time.Second,
		Port:              raw.Port,
		APIAccessKey:      raw.APIAccessKey,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		LogFile:           raw.LogFile,
		Version:           GetVersion(),
	}

	if cfg.Token == "" && !cfg.DryRun {
		return nil, fmt.Errorf("telegram token is required unless dry run is enabled")
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

// splitList trims entries and drops blanks; flag values may themselves be comma separated.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func joinDataDir(dataDir, name string) string {
	return filepath.Join(dataDir, name)
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			slog.Debug("Timezone configured", "timezone", timezone)
		}
	}
	return nil
}
