package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
server:
  port: 9090
  shutdownTimeout: 5s
database:
  driver: sqlite
  database: "file::memory:?cache=shared"
gateway:
  publicKey: "file-public-key-file-public-key1"
  privateKey: "from-file"
  confirmationUrl: "https://shop.example/payments/confirm"
  successUrl: "https://shop.example/checkout/success"
  failureUrl: "https://shop.example/checkout/failure"
auth:
  adminUserIds: ["1"]
notification:
  workers: 2
`

func useConfigDir(t *testing.T, env, body string) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, env+".yaml"), []byte(body), 0o600))

	previous := ConfigPaths
	ConfigPaths = []string{dir}
	t.Cleanup(func() { ConfigPaths = previous })

	t.Setenv("PAY_ENV", env)
}

func TestLoadConfig(t *testing.T) {
	useConfigDir(t, Test, testYAML)
	t.Setenv("PAY_AUTH_JWT_SECRET", "jwt-secret")
	t.Setenv("PAY_GATEWAY_PRIVATE_KEY", "0123456789012345678901234567890123456789")
	t.Setenv("PAY_AUTH_ADMIN_USER_IDS", "1, 7")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "0123456789012345678901234567890123456789", cfg.Gateway.PrivateKey)
	assert.Equal(t, []string{"1", "7"}, cfg.Auth.AdminUserIDs)
	assert.Equal(t, 2, cfg.Notification.Workers)
	assert.Equal(t, 100, cfg.Notification.QueueSize)

	db := cfg.DatabaseSettings()
	assert.Equal(t, "sqlite", db.Driver)
	assert.Equal(t, 200*time.Millisecond, db.SlowThreshold)
	assert.Equal(t, 30*time.Second, db.PoolSampleInterval)

	gw := cfg.GatewaySettings()
	assert.Equal(t, "staging", gw.Environment)
	assert.NoError(t, gw.Validate())

	conf := cfg.ConfirmationSettings()
	assert.True(t, conf.TestMode)
	assert.Equal(t, cfg.Gateway.PrivateKey, conf.PrivateKey)
	assert.Equal(t, "https://shop.example/checkout/failure", conf.FailureURL)

	assert.Equal(t, "https://vpos.infonet.com.py:8888/payment/single_buy", cfg.PaymentSettings().CheckoutBaseURL)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	useConfigDir(t, Test, testYAML)
	t.Setenv("PAY_AUTH_JWT_SECRET", "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "jwtSecret")
}

func TestLoadConfigProductionSecretLength(t *testing.T) {
	useConfigDir(t, Production, testYAML)
	t.Setenv("PAY_AUTH_JWT_SECRET", "short")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "32 characters")
}

func TestPaymentSettingsUsesProductionURL(t *testing.T) {
	cfg := &Config{Gateway: GatewayConfig{Environment: "production", CheckoutPath: "payment/single_buy"}}
	assert.Equal(t, "https://vpos.infonet.com.py/payment/single_buy", cfg.PaymentSettings().CheckoutBaseURL)
	assert.False(t, cfg.ConfirmationSettings().TestMode)
}
