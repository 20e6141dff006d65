package mongodb

import "time"

// Config describes the MongoDB connection. Fields can be populated from
// environment variables via pkg/config.
type Config struct {
	ConnectionURL   string        `env:"MONGODB_URL,required"`                         // Connection string, e.g. mongodb://localhost:27017
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`     // Timeout for establishing the connection.
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`       // Maximum number of pooled connections.
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`         // Minimum number of pooled connections.
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"` // Maximum idle time before a pooled connection is closed.
	RetryWrites     bool          `env:"MONGODB_RETRY_WRITES" envDefault:"true"`       // Retry write operations once on transient errors.
	RetryReads      bool          `env:"MONGODB_RETRY_READS" envDefault:"true"`        // Retry read operations once on transient errors.
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`        // Connection attempts before giving up.
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"`       // Delay between connection attempts.
}
