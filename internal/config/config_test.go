package config_test

import (
	"betblocker/internal/config"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOnlyWhenFileMissing(t *testing.T) {
	t.Setenv("NEXTDNS_API_KEY", "key-from-env")
	t.Setenv("NEXTDNS_PROFILE_ID", "abc123")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	require.Equal(t, "key-from-env", cfg.NextDNS.APIKey)
	require.Equal(t, "abc123", cfg.NextDNS.ProfileID)
	require.Equal(t, "https://api.nextdns.io", cfg.NextDNS.BaseURL)
	require.Equal(t, "dns.nextdns.io", cfg.NextDNS.DNSHost)
	require.Equal(t, 10*time.Second, cfg.NextDNS.Timeout)
	require.Equal(t, "openssl", cfg.Signing.Command)
	require.False(t, cfg.HTTP.TrustProxy)
	require.False(t, cfg.SigningConfigured())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := `
environment: production
http:
  addr: ":9090"
  trustProxy: true
nextdns:
  profileId: "p1"
profile:
  organization: "Acme"
signing:
  certPath: "/etc/betblocker/cert.pem"
  keyPath: "/etc/betblocker/key.pem"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.True(t, cfg.HTTP.TrustProxy)
	require.Equal(t, "p1", cfg.NextDNS.ProfileID)
	require.Equal(t, "Acme", cfg.Profile.Organization)
	require.Equal(t, "com.betblocker.nextdns", cfg.Profile.IdentifierPrefix)
	require.True(t, cfg.SigningConfigured())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("http: [unterminated"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}
