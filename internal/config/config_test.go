package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("KV_DRIVER", "memory")
	t.Setenv("MESSAGING_ENABLED", "false")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.KV.Driver)
	assert.Equal(t, "noop", cfg.Messaging.Driver)
	assert.Equal(t, "OBJ", cfg.Ordering.NumberPrefix)
	assert.Equal(t, 5, cfg.Ordering.AllocationRetries)
	assert.Equal(t, "CZK", cfg.Ordering.Currency)
	assert.Equal(t, 7*24*time.Hour, cfg.Cart.TTL)
	assert.Equal(t, 10, cfg.Reports.TopProducts)
	assert.Equal(t, 6, cfg.Reports.Months)
	require.NotNil(t, cfg.Reports.Location)
	assert.Equal(t, "Europe/Prague", cfg.Reports.Location.String())
	assert.Equal(t, cfg.Database.WriterDSN, cfg.Database.ReaderDSN)
}

func TestNewRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "kv driver", env: map[string]string{"KV_DRIVER": "memcached"}},
		{name: "currency", env: map[string]string{"KV_DRIVER": "memory", "ORDER_CURRENCY": "KORUNA"}},
		{name: "timezone", env: map[string]string{"KV_DRIVER": "memory", "REPORT_TIMEZONE": "Mars/Olympus"}},
		{name: "savings rate", env: map[string]string{"KV_DRIVER": "memory", "REPORT_SAVINGS_RATE": "five"}},
		{name: "http port", env: map[string]string{"KV_DRIVER": "memory", "HTTP_PORT": "-1"}},
		{name: "sample ratio", env: map[string]string{"KV_DRIVER": "memory", "OBS_TRACE_SAMPLE_RATIO": "1.5"}},
		{name: "database driver", env: map[string]string{"KV_DRIVER": "memory", "DB_DRIVER": "oracle"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MESSAGING_ENABLED", "false")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := New()
			assert.Error(t, err)
		})
	}
}
