package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServiceName     string        `envconfig:"SERVICE_NAME" default:"fulfillment"`
	Env             string        `envconfig:"ENV" default:"dev"`
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	DatabaseDSN     string        `envconfig:"DATABASE_DSN" default:"fulfillment:fulfillment@tcp(localhost:3306)/fulfillment?parseTime=true&multiStatements=true&clientFoundRows=true"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
