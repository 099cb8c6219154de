package database

import (
	"context"
	"testing"
	"time"

	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/database/migration"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	postgres := func() *Config {
		c := DefaultConfig()
		c.Host = "localhost"
		c.Username = "payments"
		c.Password = "secret"
		c.Database = "payments"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid postgres", mutate: func(c *Config) {}},
		{name: "valid sqlite", mutate: func(c *Config) {
			*c = *DefaultConfig()
			c.Driver = DriverSQLite
			c.Database = "payments.db"
		}},
		{name: "sqlite without path", mutate: func(c *Config) {
			*c = *DefaultConfig()
			c.Driver = DriverSQLite
		}, wantErr: "sqlite database path is required"},
		{name: "missing host", mutate: func(c *Config) { c.Host = "" }, wantErr: "database host is required"},
		{name: "bad ssl mode", mutate: func(c *Config) { c.SSLMode = "always" }, wantErr: "invalid SSL mode"},
		{name: "unknown driver", mutate: func(c *Config) { c.Driver = "mysql" }, wantErr: "unsupported database driver"},
		{name: "no attempts", mutate: func(c *Config) { c.RetryAttempts = 0 }, wantErr: "retry attempts"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "invalid log level"},
		{name: "no pool sampling", mutate: func(c *Config) { c.PoolSampleInterval = 0 }, wantErr: "pool sample interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := postgres()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigSafeFieldsOmitCredentials(t *testing.T) {
	c := DefaultConfig()
	c.Host = "db"
	c.Username = "u"
	c.Password = "p"
	c.Database = "payments"

	assert.Contains(t, c.DSN(), "password=p")
	assert.NotContains(t, c.SafeFields(), "password")
}

func TestManagerMigratesSQLite(t *testing.T) {
	testDB := NewTestDBManager(t, logger.NewNoopLogger())
	ctx := context.Background()

	version, err := testDB.Manager.MigrationManager().GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, migration.CurrentSchemaVersion, version)

	// running again is a no-op
	require.NoError(t, testDB.Manager.MigrationManager().MigrateAll(ctx))

	require.NoError(t, testDB.Manager.Ping(ctx))
	assert.True(t, testDB.DB().Migrator().HasTable("payment_transactions"))
	assert.True(t, testDB.DB().Migrator().HasTable("payment_audit_entries"))
	assert.True(t, testDB.DB().Migrator().HasTable("orders"))

	var rows []model.SchemaVersion
	require.NoError(t, testDB.DB().Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, DriverSQLite, rows[0].Driver)

	assert.GreaterOrEqual(t, testDB.Manager.PoolStats().Open, 1)
}

func TestRetryOnTransientError(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3}
	transient := func(err error) bool { return err.Error() == "busy" }

	calls := 0
	err := RetryOnTransientError(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return assert.AnError
		}
		return nil
	}, func(error) bool { return true }, logger.NewNoopLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = RetryOnTransientError(context.Background(), cfg, func() error {
		calls++
		return assert.AnError
	}, transient, logger.NewNoopLogger())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

func TestRetryDelay(t *testing.T) {
	cfg := RetryConfig{RetryInterval: 10 * time.Millisecond, MaxInterval: 50 * time.Millisecond}

	assert.Equal(t, 10*time.Millisecond, cfg.Delay(0))
	assert.Equal(t, 40*time.Millisecond, cfg.Delay(2))
	assert.Equal(t, 50*time.Millisecond, cfg.Delay(3))
	assert.Equal(t, 50*time.Millisecond, cfg.Delay(64))

	cfg.JitterFactor = 0.5
	for i := 0; i < 20; i++ {
		d := cfg.Delay(0)
		assert.GreaterOrEqual(t, d, 10*time.Millisecond)
		assert.LessOrEqual(t, d, 15*time.Millisecond)
	}
}

func TestRetryStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryOnTransientError(ctx, RetryConfig{MaxRetries: 5, RetryInterval: time.Hour}, func() error {
		calls++
		cancel()
		return assert.AnError
	}, func(error) bool { return true }, logger.NewNoopLogger())

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}
