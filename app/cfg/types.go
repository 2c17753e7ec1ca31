package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// HTTP server configuration
	Port         string
	APIAccessKey string

	// Polling configuration
	PollInterval  int // seconds between full polling cycles
	StartupDelay  int // seconds before the first cycle after start
	MaxConcurrent int
	BatchDelay    int // seconds between polling batches
	MaxFeeds      int
	FetchTimeout  int // seconds per feed fetch

	// Outbound politeness
	RequestsPerSecond float64
	BurstCapacity     int

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
