package config

import (
	"strings"
	"time"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/usecase/confirmation"
	"github.com/amirhossein-jamali/payment-processor/internal/domain/usecase/payment"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/bancard"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/notification"
)

// Config holds all configuration for the application
type Config struct {
	Environment  string             `mapstructure:"environment"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Logger       LoggerConfig       `mapstructure:"logger"`
	Gateway      GatewayConfig      `mapstructure:"gateway"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Notification NotificationConfig `mapstructure:"notification"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"`
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`
	SlowThreshold   time.Duration `mapstructure:"slowThreshold"`
	LogLevel        string        `mapstructure:"logLevel"`
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"`

	PoolSampleInterval time.Duration `mapstructure:"poolSampleInterval"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"` // json or console
	Service string `mapstructure:"service"`
}

// GatewayConfig contains payment gateway credentials and URLs
type GatewayConfig struct {
	PublicKey       string        `mapstructure:"publicKey"`
	PrivateKey      string        `mapstructure:"privateKey"`
	Environment     string        `mapstructure:"environment"` // staging or production
	BaseURL         string        `mapstructure:"baseUrl"`
	ConfirmationURL string        `mapstructure:"confirmationUrl"`
	ReturnURL       string        `mapstructure:"returnUrl"`
	CancelURL       string        `mapstructure:"cancelUrl"`
	SuccessURL      string        `mapstructure:"successUrl"`
	FailureURL      string        `mapstructure:"failureUrl"`
	CheckoutPath    string        `mapstructure:"checkoutPath"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// AuthConfig contains bearer token settings
type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwtSecret"`
	Issuer       string        `mapstructure:"issuer"`
	TokenTTL     time.Duration `mapstructure:"tokenTtl"`
	AdminUserIDs []string      `mapstructure:"adminUserIds"`
}

// NotificationConfig contains notification dispatcher settings
type NotificationConfig struct {
	Workers        int           `mapstructure:"workers"`
	QueueSize      int           `mapstructure:"queueSize"`
	DeliverTimeout time.Duration `mapstructure:"deliverTimeout"`
	WebhookURL     string        `mapstructure:"webhookUrl"`
	WebhookSecret  string        `mapstructure:"webhookSecret"`
}

// IsProduction reports whether the production profile is active
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// DatabaseSettings converts the database section for the database manager
func (c *Config) DatabaseSettings() *database.Config {
	d := c.Database
	return &database.Config{
		Driver:          d.Driver,
		Host:            d.Host,
		Port:            d.Port,
		Username:        d.Username,
		Password:        d.Password,
		Database:        d.Database,
		SSLMode:         d.SSLMode,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
		QueryTimeout:    d.QueryTimeout,
		SlowThreshold:   d.SlowThreshold,
		LogLevel:        d.LogLevel,
		RetryAttempts:   d.RetryAttempts,
		RetryDelay:      d.RetryDelay,

		PoolSampleInterval: d.PoolSampleInterval,
	}
}

// GatewaySettings converts the gateway section for the gateway client
func (c *Config) GatewaySettings() bancard.Config {
	g := c.Gateway
	return bancard.Config{
		PublicKey:       g.PublicKey,
		PrivateKey:      g.PrivateKey,
		Environment:     g.Environment,
		ConfirmationURL: g.ConfirmationURL,
		ReturnURL:       g.ReturnURL,
		CancelURL:       g.CancelURL,
		BaseURL:         g.BaseURL,
		Timeout:         g.Timeout,
	}
}

// ConfirmationSettings configures the confirmation reconciler
func (c *Config) ConfirmationSettings() confirmation.Config {
	return confirmation.Config{
		PrivateKey: c.Gateway.PrivateKey,
		SuccessURL: c.Gateway.SuccessURL,
		FailureURL: c.Gateway.FailureURL,
		TestMode:   c.GatewaySettings().IsTestMode(),
	}
}

// PaymentSettings configures the payment service
func (c *Config) PaymentSettings() payment.Config {
	path := c.Gateway.CheckoutPath
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return payment.Config{
		CheckoutBaseURL: c.GatewaySettings().ResolvedBaseURL() + path,
	}
}

// NotificationSettings sizes the notification dispatcher
func (c *Config) NotificationSettings() notification.Config {
	return notification.Config{
		Workers:        c.Notification.Workers,
		QueueSize:      c.Notification.QueueSize,
		DeliverTimeout: c.Notification.DeliverTimeout,
	}
}
