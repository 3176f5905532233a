// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package catalog

import (
	"errors"
	"strings"
	"time"
)

// Config holds connection settings for the catalog API.
type Config struct {
	// BaseURL is the API root, e.g. "https://mealie.example.com/api".
	BaseURL string

	// Token is the bearer token sent with every request.
	Token string

	// Timeout bounds every request.
	// Default: 30s
	Timeout time.Duration

	// PerPage is the page size used when listing collections.
	// Default: 100
	PerPage int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBaseURL sets the API root.
func WithBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithToken sets the bearer token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithPerPage sets the listing page size.
func WithPerPage(perPage int) ConfigOption {
	return func(c *Config) {
		c.PerPage = perPage
	}
}

// DefaultConfig returns a Config with default timeout and page size and no
// endpoint or credentials.
func DefaultConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		PerPage: 100,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize trims whitespace and trailing slashes from the base URL.
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Token = strings.TrimSpace(c.Token)
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.BaseURL == "" {
		return errors.New("catalog config: BaseURL is required")
	}
	if c.Token == "" {
		return errors.New("catalog config: Token is required")
	}
	if c.Timeout <= 0 {
		return errors.New("catalog config: Timeout must be positive")
	}
	if c.PerPage < 1 {
		return errors.New("catalog config: PerPage must be at least 1")
	}
	return nil
}
