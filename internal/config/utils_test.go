package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("PROCURE_TEST_INT", " 42 ")
	t.Setenv("PROCURE_TEST_BAD_INT", "forty")
	t.Setenv("PROCURE_TEST_DURATION", "90s")
	t.Setenv("PROCURE_TEST_LIST", "a, ,b,")
	t.Setenv("PROCURE_TEST_FLOAT", "0.25")

	assert.Equal(t, 42, getEnvAsInt("PROCURE_TEST_INT", 1))
	assert.Equal(t, 1, getEnvAsInt("PROCURE_TEST_BAD_INT", 1))
	assert.InDelta(t, 0.25, getEnvAsFloat("PROCURE_TEST_FLOAT", 1), 1e-9)
	assert.Equal(t, 90*time.Second, getEnvAsDuration("PROCURE_TEST_DURATION", time.Second))
	assert.Equal(t, []string{"a", "b"}, getEnvAsStringSlice("PROCURE_TEST_LIST", nil))
	assert.Equal(t, []string{"x"}, getEnvAsStringSlice("PROCURE_TEST_MISSING", []string{"x"}))
}

func TestNormalizers(t *testing.T) {
	assert.Equal(t, "json", lowerOr("  ", "json"))
	assert.Equal(t, "console", lowerOr(" Console ", "json"))
	assert.Equal(t, 3, positiveOr(0, 3))
	assert.Equal(t, 7, positiveOr(7, 3))
	assert.Equal(t, time.Minute, positiveDurationOr(-time.Second, time.Minute))
	assert.Equal(t, "/metrics", urlPath("", "/metrics"))
	assert.Equal(t, "/prom", urlPath("prom", "/metrics"))
	assert.True(t, oneOf("mysql", "postgres", "mysql"))
	assert.False(t, oneOf("oracle", "postgres", "mysql"))
}
