package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvFallback(t *testing.T) {
	os.Unsetenv("SEQUENCER_TEST_VAR")
	assert.Equal(t, "fallback", getEnv("SEQUENCER_TEST_VAR", "fallback"))

	os.Setenv("SEQUENCER_TEST_VAR", "set")
	defer os.Unsetenv("SEQUENCER_TEST_VAR")
	assert.Equal(t, "set", getEnv("SEQUENCER_TEST_VAR", "fallback"))
}

func TestGetEnvAsIntFallsBackOnGarbage(t *testing.T) {
	os.Setenv("SEQUENCER_TEST_INT", "not-a-number")
	defer os.Unsetenv("SEQUENCER_TEST_INT")
	assert.Equal(t, 42, getEnvAsInt("SEQUENCER_TEST_INT", 42))
}

func TestLoadConfigFailsFastOnMissingSecrets(t *testing.T) {
	os.Unsetenv("DB_USER")
	os.Unsetenv("DB_PASSWORD")
	os.Unsetenv("DB_NAME")
	os.Unsetenv("ENCRYPTION_KEY")
	os.Unsetenv("JWT_SIGNING_SECRET")

	_, err := LoadConfig()
	require.Error(t, err)
}
