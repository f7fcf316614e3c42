package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Application configuration
	SourcesDir        string
	DataDir           string
	Port              string
	SchedulerInterval int
	WorkerCount       int
	APIAccessKey      string

	// Extraction loop configuration
	BatchSize  int
	FetchDelay int
	MaxBatches int
	MaxPosts   int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
