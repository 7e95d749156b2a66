package cfg

import "time"

type StoreBackend string

const (
	StoreFile   StoreBackend = "file"
	StoreSQLite StoreBackend = "sqlite"
	StoreRedis  StoreBackend = "redis"
)

type Cfg struct {
	// Telegram delivery
	Token       string
	Channels    []string
	AdminChatID string
	SendDelay   time.Duration
	DryRun      bool

	// Storage
	DataDir  string
	Store    StoreBackend
	RedisURL string

	// Application configuration
	ConfigFile        string
	Once              bool
	SchedulerInterval time.Duration
	Port              string
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	LogFile   string
	Version   string
}

func (c *Cfg) DedupStatePath() string {
	return joinDataDir(c.DataDir, "processed_links.json")
}

func (c *Cfg) RejectLogPath() string {
	return joinDataDir(c.DataDir, "rejected_news.jsonl")
}

func (c *Cfg) DatabasePath() string {
	return joinDataDir(c.DataDir, "relay.db")
}
