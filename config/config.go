package config

import (
	"time"

	"github.com/joeshaw/envdecode"
	errwrap "github.com/pkg/errors"
	"github.com/subosito/gotenv"
)

type Config struct {
	AppEnv  string `env:"APP_ENV,default=production"`
	AppPort int    `env:"APP_PORT,default=8080"`

	SQLitePath string `env:"SQLITE_PATH,default=./query_insight.db"`

	Report   ReportConfig
	RabbitMQ RabbitMQConfig
}

type ReportConfig struct {
	// Window is how far back system.query_log is read.
	Window           time.Duration `env:"REPORT_WINDOW,default=24h"`
	TopN             int           `env:"REPORT_TOP_N,default=10"`
	MinDurationMs    int64         `env:"REPORT_MIN_DURATION_MS,default=0"`
	QueryLogLimit    int           `env:"QUERY_LOG_LIMIT,default=10000"`
	AggregateWorkers int           `env:"AGGREGATE_WORKERS,default=4"`
	RefreshInterval  time.Duration `env:"REFRESH_INTERVAL,default=15m"`
	RecordRetention  time.Duration `env:"RECORD_RETENTION,default=168h"`
	AdvisorTimeout   time.Duration `env:"ADVISOR_TIMEOUT,default=3s"`
}

type RabbitMQConfig struct {
	// URL is empty when push ingestion is disabled.
	URL      string `env:"RABBITMQ_URL"`
	Queue    string `env:"RABBITMQ_QUEUE,default=query_records"`
	Prefetch int    `env:"RABBITMQ_PREFETCH,default=50"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	// Missing .env files are fine; the environment may be set directly.
	_ = gotenv.Load(envFiles...)

	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, errwrap.Wrap(err, "config.Load")
	}
	return &cfg, nil
}
