package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a", "b"}, CSV(" a, ,b "))
}

func TestCSVDefault(t *testing.T) {
	def := []string{"footer", "hero"}
	assert.Equal(t, def, CSVDefault("", def))
	assert.Equal(t, []string{"banner"}, CSVDefault("banner", def))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("GYM_TEST_STR", "value")
	t.Setenv("GYM_TEST_INT", "42")
	t.Setenv("GYM_TEST_BAD_INT", "forty-two")
	t.Setenv("GYM_TEST_DUR", "90s")
	t.Setenv("GYM_TEST_BAD_DUR", "soon")

	assert.Equal(t, "value", EnvDefault("GYM_TEST_STR", "def"))
	assert.Equal(t, "def", EnvDefault("GYM_TEST_MISSING", "def"))
	assert.Equal(t, 42, EnvIntDefault("GYM_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("GYM_TEST_BAD_INT", 1))
	assert.Equal(t, 90*time.Second, EnvDurationDefault("GYM_TEST_DUR", time.Minute))
	assert.Equal(t, time.Minute, EnvDurationDefault("GYM_TEST_BAD_DUR", time.Minute))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CONTENT_SINGLETON_TYPES", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("RATE_LIMIT_LOGIN", "")

	cfg := Load()

	assert.Equal(t, []byte("s3cret"), cfg.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"footer", "hero"}, cfg.SingletonContentTypes)
	assert.Equal(t, 5, cfg.LoginLimit.Max)
	assert.Equal(t, 15*time.Minute, cfg.LoginLimit.Window)
	assert.Equal(t, int64(10<<20), cfg.MediaMaxImageSize)
}

func TestValidate(t *testing.T) {
	err := Config{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DATABASE_URL")

	err = Config{JWTSecret: []byte("s3cret")}.Validate()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "JWT_SECRET")

	assert.NoError(t, Config{JWTSecret: []byte("s3cret"), DatabaseURL: "postgres://gym"}.Validate())
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.1")

	cfg := Load()
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.TrustedProxies)
}
