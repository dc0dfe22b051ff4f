package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig mirrors Config with `env` tags. Like JsonConfig it is an
// intermediate DTO: only variables that are actually set overlay the
// current values.
type envConfig struct {
	EndpointAddr                string        `env:"ADDRESS"`
	DatabaseDSN                 string        `env:"DATABASE_DSN"`
	SecretKey                   string        `env:"JWT_SECRET"`
	AccessTokenValidityDuration time.Duration `env:"ACCESS_TOKEN_VALIDITY"`
	BcryptCost                  int           `env:"BCRYPT_COST"`
}

// parseEnv overlays configuration values from environment variables.
// Invalid values panic, consistent with parseJson.
func parseEnv(config *Config) {
	c := envConfig{}
	if err := env.Parse(&c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
}
