package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/cod-storefront/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func TestDemoDefaults_DoesNotLogPassword(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	var cfg config.Config
	require.NoError(t, demoDefaults(&cfg, log))

	assert.Equal(t, config.BackendMemory, cfg.StoreBackend)
	assert.Equal(t, config.BackendMemory, cfg.OrderBackend)
	assert.NotEmpty(t, cfg.JWTSecret)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(demoPassword)))

	assert.Contains(t, buf.String(), "demo admin password in use")
	assert.NotContains(t, buf.String(), demoPassword)
}

func TestDemoDefaults_KeepsConfiguredCredentials(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	cfg := config.Config{JWTSecret: "s3cret", AdminPasswordHash: "$2a$10$existing"}
	require.NoError(t, demoDefaults(&cfg, log))

	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "$2a$10$existing", cfg.AdminPasswordHash)
	assert.Empty(t, buf.String())
}
