package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetArgs(t *testing.T, args ...string) {
	t.Helper()
	oldArgs := os.Args
	os.Args = append([]string{"server"}, args...)
	t.Cleanup(func() { os.Args = oldArgs })
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetArgs(t)

	cfg := LoadConfig()

	assert.Equal(t, ":3000", cfg.EndpointAddr)
	assert.Equal(t, "secretKey", cfg.SecretKey)
	assert.Equal(t, 2*time.Hour, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	resetArgs(t, "-a", ":9090", "-s", "flag-secret", "-t", "15", "-w", "12")

	cfg := LoadConfig()

	assert.Equal(t, ":9090", cfg.EndpointAddr)
	assert.Equal(t, "flag-secret", cfg.SecretKey)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	resetArgs(t)
	t.Setenv("ADDRESS", ":7070")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("ACCESS_TOKEN_VALIDITY", "45m")

	cfg := LoadConfig()

	assert.Equal(t, ":7070", cfg.EndpointAddr)
	assert.Equal(t, "env-secret", cfg.SecretKey)
	assert.Equal(t, 45*time.Minute, cfg.AccessTokenValidityDuration)
}

func TestLoadConfig_FlagsWinOverEnv(t *testing.T) {
	resetArgs(t, "-a", ":9091")
	t.Setenv("ADDRESS", ":7071")

	cfg := LoadConfig()

	assert.Equal(t, ":9091", cfg.EndpointAddr)
}

func TestLoadConfig_JsonOverlay(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "conf*.json")
	require.NoError(t, err)

	_, err = f.WriteString(`{
		"endpoint_addr": ":5050",
		"secret_key": "json-secret",
		"access_token_validity_duration": "90m"
	}`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	resetArgs(t, "-c", f.Name())

	cfg := LoadConfig()

	assert.Equal(t, ":5050", cfg.EndpointAddr)
	assert.Equal(t, "json-secret", cfg.SecretKey)
	assert.Equal(t, 90*time.Minute, cfg.AccessTokenValidityDuration)
	// fields absent from the file keep their defaults
	assert.Equal(t, 10, cfg.BcryptCost)
}
