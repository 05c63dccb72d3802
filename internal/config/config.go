package config

import (
	"strings"
	"time"

	"conquest-backend/internal/database"
	"conquest-backend/internal/service/archive"
	"conquest-backend/pkg/constants"
	pkgdb "conquest-backend/pkg/database"
	"conquest-backend/pkg/env"
)

// Config holds the call service's environment configuration.
type Config struct {
	Env      string
	HTTPPort int

	RingTimeout time.Duration

	Cockroach pkgdb.CockroachConfig
	Cassandra pkgdb.CassandraConfig
	Redis     database.RedisConfig
	Archive   archive.Config
}

// Load reads configuration from the environment, with development defaults.
func Load() *Config {
	return &Config{
		Env:      env.GetString("ENV", "development"),
		HTTPPort: env.GetInt("HTTP_PORT", 8084),

		RingTimeout: env.GetDuration("CALL_RING_TIMEOUT", constants.RingTimeout),

		Cockroach: pkgdb.CockroachConfig{
			Host:     env.GetString("DB_HOST", "localhost"),
			Port:     env.GetInt("DB_PORT", 26257),
			User:     env.GetString("DB_USER", "root"),
			Password: env.GetStringFromFile("DB_PASSWORD", ""),
			Database: env.GetString("DB_NAME", "conquest"),
			SSLMode:  env.GetString("DB_SSLMODE", "disable"),
		},

		Cassandra: pkgdb.CassandraConfig{
			Hosts:    strings.Split(env.GetString("CASSANDRA_HOSTS", "localhost"), ","),
			Keyspace: env.GetString("CASSANDRA_KEYSPACE", "conquest_calls"),
			Username: env.GetString("CASSANDRA_USERNAME", ""),
			Password: env.GetStringFromFile("CASSANDRA_PASSWORD", ""),
			Timeout:  env.GetDuration("CASSANDRA_TIMEOUT", constants.DefaultTimeout),
		},

		Redis: database.RedisConfig{
			Host:     env.GetString("REDIS_HOST", "localhost"),
			Port:     env.GetInt("REDIS_PORT", 6379),
			Password: env.GetStringFromFile("REDIS_PASSWORD", ""),
			DB:       env.GetInt("REDIS_DB", 0),
			PoolSize: env.GetInt("REDIS_POOL_SIZE", 10),
			Timeout:  env.GetDuration("REDIS_TIMEOUT", constants.DefaultTimeout),
		},

		Archive: archive.Config{
			Endpoint:  env.GetString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: env.GetString("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: env.GetStringFromFile("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    env.GetString("MINIO_TRANSCRIPT_BUCKET", "call-transcripts"),
			UseSSL:    env.GetBool("MINIO_USE_SSL", false),
		},
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
