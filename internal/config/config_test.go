package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDatabaseURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@h/db", "postgresql://u:p@h/db"},
		{"postgresql://u:p@h/db", "postgresql://u:p@h/db"},
		{"sqlite:///dev.db", "sqlite:///dev.db"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeDatabaseURL(c.in))
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@h/db")
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8001", cfg.Port)
	assert.Equal(t, "postgresql://u:p@h/db", cfg.DatabaseURL)
	assert.Equal(t, "https://api.teller.io", cfg.TellerBaseURL)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestParseFlagsCertRequiredOutsideSandbox(t *testing.T) {
	var cfg AppConfig
	err := ParseFlags(&cfg, []string{"--environment", "production"})
	require.Error(t, err)

	err = ParseFlags(&cfg, []string{"--environment", "production", "--cert", "c.pem", "--cert-key", "k.pem"})
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "c.pem", cfg.CertFile)
}

func TestParseFlagsSandboxDefault(t *testing.T) {
	var cfg AppConfig
	err := ParseFlags(&cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "sandbox", cfg.Environment)
}

func TestParseFlagsRejectsUnknownEnvironment(t *testing.T) {
	var cfg AppConfig
	err := ParseFlags(&cfg, []string{"--environment", "staging"})
	require.Error(t, err)
}
