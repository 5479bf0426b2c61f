package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string        `env:"DATABASE_URL,required"`
	JWTSecret   string        `env:"JWT_SECRET,required"`
	JWTIssuer   string        `env:"JWT_ISSUER" envDefault:"hotel-booking"`
	JWTExpiry   time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	Port        int           `env:"PORT" envDefault:"8080"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string        `env:"LOG_FILE"`
	AppEnv      string        `env:"APP_ENV" envDefault:"production"`

	// Optional integrations. Empty disables them.
	RedisURL     string `env:"REDIS_URL"`
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"hotel-booking.events"`

	LogsServiceURL string        `env:"LOGS_SERVICE_URL" envDefault:"http://127.0.0.1:8001/api/logs"`
	LogsQueueSize  int           `env:"LOGS_QUEUE_SIZE" envDefault:"1024"`
	LogsCacheTTL   time.Duration `env:"LOGS_CACHE_TTL" envDefault:"30s"`

	RateLimit      string        `env:"RATE_LIMIT" envDefault:"60-M"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
	DBConnectAttempts  int `env:"DB_CONNECT_ATTEMPTS" envDefault:"10"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.JWTExpiry <= 0 {
		return nil, fmt.Errorf("config.Load: JWT_EXPIRY must be positive")
	}
	return &cfg, nil
}
