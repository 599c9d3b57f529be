package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// BackendConfig points at the HR backend REST API.
type BackendConfig struct {
	// APIURL is the base URL, e.g. https://hr.example.com. Endpoints such as
	// /api/users/login are appended to it.
	APIURL  string        `env:"API_URL,required"`
	Timeout time.Duration `env:"TIMEOUT"          envDefault:"10s"`
}

// Sanitize applies guardrails to backend configuration values.
func (b *BackendConfig) Sanitize() {
	b.APIURL = strings.TrimRight(strings.TrimSpace(b.APIURL), "/")
	if b.Timeout <= 0 {
		b.Timeout = 10 * time.Second
	}
}

// Validate checks that APIURL is an absolute http(s) URL.
func (b *BackendConfig) Validate() error {
	if b.APIURL == "" {
		return errors.New("BACKEND_API_URL is required")
	}
	u, err := url.Parse(b.APIURL)
	if err != nil {
		return fmt.Errorf("BACKEND_API_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BACKEND_API_URL must be an absolute http(s) URL, got %q", b.APIURL)
	}
	return nil
}
