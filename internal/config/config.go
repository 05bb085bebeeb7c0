package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the API server.
type Config struct {
	App   App   `envPrefix:""`
	Mongo Mongo `envPrefix:"MONGO_"`
	Minio Minio `envPrefix:"MINIO_"`
	SMTP  SMTP  `envPrefix:"SMTP_"`
	JWT   JWT   `envPrefix:"JWT_"`
}

// App contains HTTP server and environment parameters.
type App struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`
}

// Mongo contains database connection parameters.
type Mongo struct {
	URI      string `env:"URI" envDefault:"mongodb://localhost:27017/campus_connect"`
	Database string `env:"DB" envDefault:"campus_connect"`
}

// Minio contains object storage parameters for issue images.
type Minio struct {
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey string `env:"SECRET_KEY" envDefault:"minioadmin"`
	Bucket    string `env:"BUCKET" envDefault:"issue-images"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// SMTP contains outgoing mail parameters. Empty host disables real delivery
// and the server falls back to logging OTP codes instead.
type SMTP struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT" envDefault:"587"`
	User string `env:"USER"`
	Pass string `env:"PASS"`
	From string `env:"FROM"`
}

// JWT contains token signing parameters.
type JWT struct {
	Secret string `env:"SECRET" envDefault:"devsecret"`
}

// Load reads .env if present, then parses configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists; plain env vars win otherwise.
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the server runs in production mode. Debug
// fields in responses (OTP previews, error details) are gated on this.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
