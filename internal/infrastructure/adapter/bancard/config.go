package bancard

import (
	"net/url"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
)

// Environments and their base URLs
const (
	EnvironmentStaging    = "staging"
	EnvironmentProduction = "production"

	StagingBaseURL    = "https://vpos.infonet.com.py:8888"
	ProductionBaseURL = "https://vpos.infonet.com.py"

	PublicKeyLength  = 32
	PrivateKeyLength = 40

	DefaultTimeout = 30 * time.Second
)

// Config is resolved once at startup and never changes afterwards
type Config struct {
	PublicKey       string
	PrivateKey      string
	Environment     string
	ConfirmationURL string
	ReturnURL       string
	CancelURL       string
	// BaseURL overrides the environment URL, used against sandboxes and in tests
	BaseURL string
	Timeout time.Duration
}

// Validate checks credentials and URLs without any network access
func (c Config) Validate() error {
	if c.PublicKey == "" {
		return errs.NewConfigurationError("public_key", "is required")
	}
	if len(c.PublicKey) != PublicKeyLength {
		return errs.NewConfigurationError("public_key", "must be 32 characters")
	}
	if c.PrivateKey == "" {
		return errs.NewConfigurationError("private_key", "is required")
	}
	if len(c.PrivateKey) != PrivateKeyLength {
		return errs.NewConfigurationError("private_key", "must be 40 characters")
	}
	if strings.TrimSpace(c.ConfirmationURL) == "" {
		return errs.NewConfigurationError("confirmation_url", "is required")
	}
	if _, err := url.ParseRequestURI(c.ConfirmationURL); err != nil {
		return errs.NewConfigurationError("confirmation_url", "is not a valid URL")
	}
	switch c.Environment {
	case EnvironmentStaging, EnvironmentProduction:
	default:
		return errs.NewConfigurationError("environment", "must be staging or production")
	}
	return nil
}

// ResolvedBaseURL returns the override or the environment URL
func (c Config) ResolvedBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.Environment == EnvironmentProduction {
		return ProductionBaseURL
	}
	return StagingBaseURL
}

// IsTestMode reports whether requests go to the staging gateway
func (c Config) IsTestMode() bool {
	return c.Environment != EnvironmentProduction
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
