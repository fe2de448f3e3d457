package opensign

import (
	"fmt"
	"os"
	"time"
)

// Config holds signing provider connection parameters.
type Config struct {
	APIURL  string `toml:"api_url"`
	APIKey  string `toml:"api_key"`
	Timeout string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	APIURL  string
	APIKey  string
	Timeout string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.APIURL != "" {
		c.APIURL = overlay.APIURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.APIURL == "" {
		c.APIURL = "https://sandbox.opensignlabs.com/api/v1/createtemplate"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.APIURL != "" {
		if v := os.Getenv(env.APIURL); v != "" {
			c.APIURL = v
		}
	}
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
