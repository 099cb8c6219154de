package database

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	timeprovider "github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/time"
	"gorm.io/gorm"
)

// TestDBManager provides an isolated in-memory SQLite database for tests
type TestDBManager struct {
	Manager      *Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// NewTestDBManager creates, connects and migrates a fresh in-memory database named after the test
func NewTestDBManager(t *testing.T, logger coreport.Logger) *TestDBManager {
	t.Helper()

	timeProvider := timeprovider.NewRealTimeProvider()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	config := DefaultConfig()
	config.Driver = DriverSQLite
	config.Database = fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	config.LogLevel = "silent"
	config.RetryAttempts = 1
	config.RetryDelay = 0

	manager := NewManager(config, logger, timeProvider)
	if _, err := manager.Connect(); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() {
		if err := manager.Close(); err != nil {
			t.Logf("Warning: Failed to close test database connection: %v", err)
		}
	})

	if err := manager.MigrationManager().MigrateAll(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &TestDBManager{
		Manager:      manager,
		Config:       config,
		Logger:       logger,
		TimeProvider: timeProvider,
	}
}

// DB returns the connected GORM handle
func (m *TestDBManager) DB() *gorm.DB {
	return m.Manager.DB()
}
