package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// AppConfig holds everything the server needs at startup. Values come from
// the environment, with CLI flags layered on top for the Teller environment
// and the mTLS certificate pair.
type AppConfig struct {
	Port         string
	DatabaseURL  string
	LogLevel     string
	KafkaBrokers []string
	KafkaTopic   string

	TellerBaseURL string
	Environment   string
	CertFile      string
	CertKeyFile   string
}

// Load reads configuration from the environment. DATABASE_URL is required;
// everything else has a fallback.
func Load() (AppConfig, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return AppConfig{}, fmt.Errorf("DATABASE_URL is not set")
	}

	return AppConfig{
		Port:          getEnv("PORT", "8001"),
		DatabaseURL:   NormalizeDatabaseURL(dbURL),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		KafkaBrokers:  getEnvSlice("KAFKA_BROKERS", nil),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "teller.mutations"),
		TellerBaseURL: getEnv("TELLER_BASE_URL", "https://api.teller.io"),
	}, nil
}

// NormalizeDatabaseURL rewrites the legacy postgres:// scheme prefix to
// postgresql://. Other schemes pass through unchanged.
func NormalizeDatabaseURL(url string) string {
	if strings.HasPrefix(url, "postgres://") {
		return "postgresql://" + strings.TrimPrefix(url, "postgres://")
	}
	return url
}

// ParseFlags parses --environment, --cert and --cert-key into cfg.
// The certificate pair is mandatory outside the sandbox environment.
func ParseFlags(cfg *AppConfig, args []string) error {
	fs := flag.NewFlagSet("teller-proxy", flag.ContinueOnError)
	env := fs.String("environment", "sandbox", "API environment to target (sandbox, development, production)")
	cert := fs.String("cert", "", "path to the TLS client certificate")
	certKey := fs.String("cert-key", "", "path to the TLS client certificate private key")

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch *env {
	case "sandbox", "development", "production":
	default:
		return fmt.Errorf("invalid environment %q", *env)
	}

	needsCert := *env != "sandbox"
	hasCert := *cert != "" && *certKey != ""
	if needsCert && !hasCert {
		return fmt.Errorf("--cert and --cert-key are required when --environment is not sandbox")
	}

	cfg.Environment = *env
	cfg.CertFile = *cert
	cfg.CertKeyFile = *certKey
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		return strings.Split(v, ",")
	}
	return fallback
}
