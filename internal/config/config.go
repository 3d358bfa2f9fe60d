package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It is loaded once at startup and treated as immutable afterwards.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level (debug, info, warn, error)
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// RateLimitRPS is the per-client request rate allowed on routes that reach NextDNS
		RateLimitRPS float64 `env:"HTTP_RATE_LIMIT_RPS" env-default:"5" yaml:"rateLimitRps"`
		// RateLimitBurst is the per-client burst allowed on routes that reach NextDNS
		RateLimitBurst int `env:"HTTP_RATE_LIMIT_BURST" env-default:"20" yaml:"rateLimitBurst"`
		// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
		// Enable only behind a reverse proxy that overwrites those headers.
		TrustProxy bool `env:"HTTP_TRUST_PROXY" env-default:"false" yaml:"trustProxy"`
	} `yaml:"http"`

	// NextDNS contains the filtering provider settings
	NextDNS struct {
		// APIKey authenticates against the NextDNS API. Never logged or echoed.
		APIKey string `env:"NEXTDNS_API_KEY" yaml:"apiKey"`
		// BaseURL is the NextDNS REST API root
		BaseURL string `env:"NEXTDNS_BASE_URL" env-default:"https://api.nextdns.io" yaml:"baseUrl"`
		// ProfileID is the default filtering profile for single-profile deployments
		ProfileID string `env:"NEXTDNS_PROFILE_ID" yaml:"profileId"`
		// DNSHost is the DNS-over-HTTPS host embedded into generated profiles
		DNSHost string `env:"NEXTDNS_DNS_HOST" env-default:"dns.nextdns.io" yaml:"dnsHost"`
		// Timeout bounds every call to the NextDNS API
		Timeout time.Duration `env:"NEXTDNS_TIMEOUT" env-default:"10s" yaml:"timeout"`
	} `yaml:"nextdns"`

	// Profile contains the configuration-profile document settings
	Profile struct {
		// Organization is written to PayloadOrganization
		Organization string `env:"PROFILE_ORGANIZATION" env-default:"BetBlocker" yaml:"organization"`
		// IdentifierPrefix is the reverse-DNS prefix of every payload identifier
		IdentifierPrefix string `env:"PROFILE_IDENTIFIER_PREFIX" env-default:"com.betblocker.nextdns" yaml:"identifierPrefix"` //nolint: lll
		// DisplayName is the base display name of the profile
		DisplayName string `env:"PROFILE_DISPLAY_NAME" env-default:"BetBlocker DNS" yaml:"displayName"`
		// RemovalPassword is used when a download does not specify its own password
		RemovalPassword string `env:"REMOVAL_PASSWORD" yaml:"removalPassword"`
	} `yaml:"profile"`

	// Signing contains the configuration-profile signing settings. Signing is
	// skipped when either CertPath or KeyPath is empty.
	Signing struct {
		// CertPath is the PEM signing certificate
		CertPath string `env:"SIGNING_CERT_PATH" yaml:"certPath"`
		// KeyPath is the PEM private key of the signing certificate
		KeyPath string `env:"SIGNING_KEY_PATH" yaml:"keyPath"`
		// ChainPath is an optional PEM bundle of intermediate certificates
		ChainPath string `env:"SIGNING_CHAIN_PATH" yaml:"chainPath"`
		// Command is the signing tool binary
		Command string `env:"SIGNING_COMMAND" env-default:"openssl" yaml:"command"`
		// Timeout bounds a single signing subprocess
		Timeout time.Duration `env:"SIGNING_TIMEOUT" env-default:"15s" yaml:"timeout"`
	} `yaml:"signing"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
// When the file does not exist the configuration is read from the environment only.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from env: %w", err)
		}

		return &cfg, nil
	}

	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}

// SigningConfigured reports whether certificate and key paths are both set.
func (c *Config) SigningConfigured() bool {
	return c.Signing.CertPath != "" && c.Signing.KeyPath != ""
}
