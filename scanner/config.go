package scanner

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultMonths is the want-history window sent with every lookup.
const DefaultMonths = 3

// Config carries the settings shared by the CLI commands.
type Config struct {
	BaseURL  string
	Username string
	Password string
	DBPath   string
	Months   int
	// Timeout bounds each HTTP request. Zero leaves the client without one.
	Timeout time.Duration
}

// Validate checks the settings needed for remote lookups.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("base URL is required (--base-url or BOOMERANG_BASE_URL)")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL must be http or https, got %q", c.BaseURL)
	}
	if c.Months <= 0 {
		return fmt.Errorf("months must be positive, got %d", c.Months)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}
