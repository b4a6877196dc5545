package cfg

import "time"

type Cfg struct {
	// Storage configuration
	DBPath     string
	SourcesDir string

	// Application configuration
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Fetching
	UserAgent    string
	FetchTimeout time.Duration
	CacheTTL     time.Duration

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
