package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/feeds.db" description:"Path to the SQLite database file"`

	// HTTP server configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Polling configuration
	PollInterval  int `long:"poll-interval" env:"POLL_INTERVAL" default:"300" description:"Interval between polling cycles in seconds"`
	StartupDelay  int `long:"startup-delay" env:"STARTUP_DELAY" default:"10" description:"Delay before the first polling cycle in seconds"`
	MaxConcurrent int `long:"max-concurrent" env:"MAX_CONCURRENT" default:"3" description:"Maximum concurrent feed fetches per batch"`
	BatchDelay    int `long:"batch-delay" env:"BATCH_DELAY" default:"2" description:"Delay between polling batches in seconds"`
	MaxFeeds      int `long:"max-feeds" env:"MAX_FEEDS" default:"20" description:"Maximum feeds polled per cycle"`
	FetchTimeout  int `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"15" description:"Timeout per feed fetch in seconds"`

	// Outbound politeness
	RequestsPerSecond float64 `long:"requests-per-second" env:"REQUESTS_PER_SECOND" default:"2" description:"Outbound request rate limit"`
	BurstCapacity     int     `long:"burst-capacity" env:"BURST_CAPACITY" default:"5" description:"Outbound request burst capacity"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"FeedEngine/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		Port:              raw.Port,
		APIAccessKey:      raw.APIAccessKey,
		PollInterval:      raw.PollInterval,
		StartupDelay:      raw.StartupDelay,
		MaxConcurrent:     raw.MaxConcurrent,
		BatchDelay:        raw.BatchDelay,
		MaxFeeds:          raw.MaxFeeds,
		FetchTimeout:      raw.FetchTimeout,
		RequestsPerSecond: raw.RequestsPerSecond,
		BurstCapacity:     raw.BurstCapacity,
		UserAgent:         raw.UserAgent,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(c *Cfg) {
	globalCfg = c
}
