package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, BackendPostgres, cfg.OrderBackend)
	assert.Equal(t, 10*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 72*time.Hour, cfg.AdminTokenTTL)
	assert.Equal(t, "50", cfg.ShippingFee.String())
	assert.Equal(t, "storefront", cfg.MongoDB)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	file := filepath.Join(dir, "storefront.yaml")
	require.NoError(t, os.WriteFile(file, []byte("http_addr: \":9000\"\nshipping_fee: \"35\"\nlog_level: debug\n"), 0o600))
	t.Setenv("SHIPPING_FEE", "40")
	t.Setenv("ORDER_BACKEND", "MONGO")

	cfg, err := Load([]string{"--config", file})
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "40", cfg.ShippingFee.String())
	assert.Equal(t, BackendMongo, cfg.OrderBackend)
	assert.Equal(t, "DEBUG", cfg.LogLevel.String())
}

func TestLoad_RejectsBadValues(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SHIPPING_FEE", "free")

	_, err := Load(nil)
	assert.ErrorContains(t, err, "shipping_fee")
}

func TestValidate(t *testing.T) {
	valid := Config{
		StoreBackend:  BackendPostgres,
		OrderBackend:  BackendPostgres,
		DatabaseURL:   "postgres://localhost/storefront",
		JWTSecret:     "s",
		StoreTimeout:  time.Second,
		AdminTokenTTL: time.Hour,
	}
	require.NoError(t, valid.Validate())

	tests := map[string]func(c *Config){
		"missing database url": func(c *Config) { c.DatabaseURL = "" },
		"unknown backend":      func(c *Config) { c.StoreBackend = "sqlite" },
		"mongo without uri":    func(c *Config) { c.OrderBackend = BackendMongo },
		"missing jwt secret":   func(c *Config) { c.JWTSecret = "" },
		"zero timeout":         func(c *Config) { c.StoreTimeout = 0 },
		"mail without sender":  func(c *Config) { c.SendGridAPIKey = "key" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	mem := Config{StoreBackend: BackendMemory, OrderBackend: BackendMemory, JWTSecret: "s", StoreTimeout: time.Second, AdminTokenTTL: time.Hour}
	assert.NoError(t, mem.Validate())
}

// chdir changes the working directory for the duration of the test,
// matching testing.T.Chdir which is unavailable before Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
