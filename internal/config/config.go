package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN             string `env:"DATABASE_DSN,required=true"`
	RabbitMQURL             string `env:"RABBITMQ_URL,required=true"`
	RedisURL                string `env:"REDIS_URL,required=true"`
	EmailGatewayURL         string `env:"EMAIL_GATEWAY_URL,required=true"`
	OutboundRatePerSec      int    `env:"OUTBOUND_RATE_PER_SEC,default=50"`
	WorkerConcurrency       int    `env:"WORKER_CONCURRENCY,default=8"`
	ReminderScanIntervalSec int    `env:"REMINDER_SCAN_INTERVAL_SEC,default=60"`
	APIPort                 int    `env:"API_PORT,default=8080"`
	WorkerMetricsPort       int    `env:"WORKER_METRICS_PORT,default=9090"`
	LogLevel                string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
