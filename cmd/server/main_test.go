package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("CONTENT_BASE_URL", "https://content.example.com/api")
	t.Setenv("BOOKS_CONTENT_TYPE_ID", "books")
	t.Setenv("ORDERS_CONTENT_TYPE_ID", "orders")
	t.Setenv("OTEL_EXPORTER", "none")
	t.Setenv("REDIS_URL", "")
	t.Setenv("NATS_URL", "")
}

func TestRun_returnsConfigError(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CONTENT_BASE_URL", "/relative")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRun_returnsNATSConnectError(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("NATS_URL", "nats://127.0.0.1:1")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to NATS")
}
