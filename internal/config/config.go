// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Authorization engines accepted by AUTHZ_ENGINE.
const (
	AuthzEngineStatic = "static"
	AuthzEngineOPA    = "opa"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP API listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCAddr is the address the gRPC health server listens on (e.g. :9090). Empty disables it.
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// DBMaxConns caps the pgx pool size.
	DBMaxConns int `mapstructure:"DB_MAX_CONNS"`

	// JWTPublicKey is the PEM-encoded public key or path to file used to verify RS256/ES256 access tokens.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTPrivateKey is the PEM-encoded private key or path to file; only cmd/seed signs tokens with it.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTSecret is the shared HS256 secret. Takes precedence over the key pair when set.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTIssuer is the expected iss claim.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the expected aud claim.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the lifetime of tokens issued by cmd/seed (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`

	// AuthzEngine selects the role authorizer: "static" or "opa".
	AuthzEngine string `mapstructure:"AUTHZ_ENGINE"`
	// AuthzPolicyFile optionally replaces the embedded Rego policy when AuthzEngine is "opa".
	AuthzPolicyFile string `mapstructure:"AUTHZ_POLICY_FILE"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint. Empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is reported as service.name on all telemetry.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GRPC_ADDR", ":9090")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "program-access-auth")
	v.SetDefault("JWT_AUDIENCE", "program-access-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("AUTHZ_ENGINE", AuthzEngineStatic)
	v.SetDefault("AUTHZ_POLICY_FILE", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "program-access")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.DBMaxConns <= 0 {
		return nil, errors.New("config: DB_MAX_CONNS must be positive")
	}

	cfg.AuthzEngine = strings.ToLower(strings.TrimSpace(cfg.AuthzEngine))
	if cfg.AuthzEngine != AuthzEngineStatic && cfg.AuthzEngine != AuthzEngineOPA {
		return nil, errors.New("config: AUTHZ_ENGINE must be static or opa")
	}
	if cfg.AuthzPolicyFile != "" && cfg.AuthzEngine != AuthzEngineOPA {
		return nil, errors.New("config: AUTHZ_POLICY_FILE requires AUTHZ_ENGINE=opa")
	}

	if cfg.Env == "production" && !cfg.HasVerificationKey() {
		return nil, errors.New("config: JWT_SECRET or JWT_PUBLIC_KEY must be set when APP_ENV=production")
	}

	return &cfg, nil
}

// HasVerificationKey reports whether access tokens can be verified (shared secret or public key).
func (c *Config) HasVerificationKey() bool {
	return c.JWTSecret != "" || c.JWTPublicKey != ""
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}
