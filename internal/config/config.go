package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port         int    `env:"PORT" envDefault:"8080"`
	DatabaseURL  string `env:"DATABASE_URL,required"`
	RedisURL     string `env:"REDIS_URL,required"`
	BaseURL      string `env:"BASE_URL" envDefault:"https://auth.drivebackupv2.com"`
	ClientSecret string `env:"AUTHENTICATOR_CLIENT_SECRET,required"`

	GoogleClientID       string `env:"GOOGLE_ID"`
	GoogleClientSecret   string `env:"GOOGLE_SECRET"`
	DropboxClientID      string `env:"DROPBOX_ID"`
	DropboxClientSecret  string `env:"DROPBOX_SECRET"`
	OneDriveClientID     string `env:"ONEDRIVE_ID"`
	OneDriveClientSecret string `env:"ONEDRIVE_SECRET"`

	PairingTTLSeconds    int    `env:"PAIRING_TTL_SECONDS" envDefault:"300"`
	SweepIntervalSeconds int    `env:"SWEEP_INTERVAL_SECONDS" envDefault:"150"`
	PollIntervalSeconds  int    `env:"POLL_INTERVAL_SECONDS" envDefault:"5"`
	LogLevel             string `env:"LOG_LEVEL" envDefault:"info"`
	StaticDir            string `env:"STATIC_DIR" envDefault:"static"`
}

func (c *Config) PairingTTL() time.Duration {
	return time.Duration(c.PairingTTLSeconds) * time.Second
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// RedirectURI is the callback address registered with every provider.
func (c *Config) RedirectURI() string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/callback"
}

// VerificationURI is the address shown to the user alongside the pairing code.
func (c *Config) VerificationURI() string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/"
}

func (c *Config) Validate(isProduction bool) error {
	if c.SweepIntervalSeconds >= c.PairingTTLSeconds {
		return fmt.Errorf("SWEEP_INTERVAL_SECONDS (%d) must be less than PAIRING_TTL_SECONDS (%d)",
			c.SweepIntervalSeconds, c.PairingTTLSeconds)
	}

	if isProduction {
		if err := validateSecret("AUTHENTICATOR_CLIENT_SECRET", c.ClientSecret); err != nil {
			return err
		}

		if c.GoogleClientID == "" || c.DropboxClientID == "" || c.OneDriveClientID == "" {
			log.Warn().Msg("one or more provider client ids are empty in production: those providers will fail at token exchange")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
