package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Default environment variable names for app credentials
const (
	EnvAppID     = "APP_ID"
	EnvAppSecret = "APP_SECRET"
)

// WithCredentialsFromEnv reads app credentials from the environment. With
// no arguments it reads APP_ID and APP_SECRET; pass two names to override
// which variables are read. A .env file in the working directory is
// loaded first when present.
func WithCredentialsFromEnv(names ...string) Option {
	idName, secretName := EnvAppID, EnvAppSecret
	if len(names) >= 2 {
		idName, secretName = names[0], names[1]
	}

	return optionFunc(func(c *Config) {
		// missing .env is fine, the process environment still applies
		_ = godotenv.Load()

		c.AppID = os.Getenv(idName)
		c.AppSecret = os.Getenv(secretName)
	})
}

// FromEnv builds a Config from the environment. Equivalent to
// New(WithCredentialsFromEnv(), opts...).
func FromEnv(opts ...Option) (*Config, error) {
	all := append([]Option{WithCredentialsFromEnv()}, opts...)
	return New(all...)
}
