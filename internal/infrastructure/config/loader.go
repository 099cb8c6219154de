package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "PAY"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
}

// secretEnv maps environment variables onto keys that must never live in config files
var secretEnv = map[string]string{
	"PAY_GATEWAY_PUBLIC_KEY":          "gateway.publicKey",
	"PAY_GATEWAY_PRIVATE_KEY":         "gateway.privateKey",
	"PAY_GATEWAY_ENVIRONMENT":         "gateway.environment",
	"PAY_GATEWAY_BASE_URL":            "gateway.baseUrl",
	"PAY_GATEWAY_CONFIRMATION_URL":    "gateway.confirmationUrl",
	"PAY_DB_DRIVER":                   "database.driver",
	"PAY_DB_HOST":                     "database.host",
	"PAY_DB_PORT":                     "database.port",
	"PAY_DB_USERNAME":                 "database.username",
	"PAY_DB_PASSWORD":                 "database.password",
	"PAY_DB_NAME":                     "database.database",
	"PAY_DB_SSL_MODE":                 "database.sslMode",
	"PAY_AUTH_JWT_SECRET":             "auth.jwtSecret",
	"PAY_NOTIFICATION_WEBHOOK_URL":    "notification.webhookUrl",
	"PAY_NOTIFICATION_WEBHOOK_SECRET": "notification.webhookSecret",
	"PAY_SERVER_PORT":                 "server.port",
	"PAY_LOGGER_LEVEL":                "logger.level",
}

// LoadConfig loads configuration from the file of the active environment,
// then applies .env and PAY_ environment overrides
func LoadConfig() (*Config, error) {
	// a missing .env is normal outside development
	_ = loadDotEnvFile()

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.Environment = env

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks settings that the adapters do not validate themselves
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret is required (PAY_AUTH_JWT_SECRET)")
	}
	if c.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		return errors.New("auth.jwtSecret must be at least 32 characters in production")
	}
	return nil
}

// loadDotEnvFile loads the first .env file found. Existing variables are not overwritten.
func loadDotEnvFile() error {
	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("could not load %s: %w", path, err)
		}
		return nil
	}
	return errors.New("no .env file found in search paths")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "15s")
	v.SetDefault("server.writeTimeout", "35s")
	v.SetDefault("server.idleTimeout", "60s")
	v.SetDefault("server.readHeaderTimeout", "10s")
	v.SetDefault("server.shutdownTimeout", "15s")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", "5m")
	v.SetDefault("database.connMaxIdleTime", "5m")
	v.SetDefault("database.queryTimeout", "10s")
	v.SetDefault("database.slowThreshold", "200ms")
	v.SetDefault("database.logLevel", "warn")
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", "5s")
	v.SetDefault("database.poolSampleInterval", "30s")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.service", "payment-processor")

	v.SetDefault("gateway.environment", "staging")
	v.SetDefault("gateway.checkoutPath", "/payment/single_buy")
	v.SetDefault("gateway.timeout", "30s")

	v.SetDefault("auth.issuer", "payment-processor")
	v.SetDefault("auth.tokenTtl", "1h")

	v.SetDefault("notification.workers", 4)
	v.SetDefault("notification.queueSize", 100)
	v.SetDefault("notification.deliverTimeout", "10s")
}

// getEnvironment determines the environment from PAY_ENV, development by default
func getEnvironment() string {
	env := os.Getenv(EnvPrefix + "_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides gives explicit environment variables priority over file values
func processEnvOverrides(v *viper.Viper) {
	for name, key := range secretEnv {
		if val := os.Getenv(name); val != "" {
			v.Set(key, val)
		}
	}
	if admins := os.Getenv("PAY_AUTH_ADMIN_USER_IDS"); admins != "" {
		ids := strings.Split(admins, ",")
		for i := range ids {
			ids[i] = strings.TrimSpace(ids[i])
		}
		v.Set("auth.adminUserIds", ids)
	}
}
