package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `logger:
  level: debug
  json_format: true
http_client:
  retry_count: 3
  timeout: 20s
  proxy:
    host: proxy.example.com
    port: 3128
code_scan:
  endpoint: https://scan.example.com/api
  auth: sigv4
  region: eu-west-2
  file_polling_delay: 500ms
  project_timeout: 30m
  upload_retry_count: 2
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, GetBoolValue(cfg, "Logger.JSONFormat", false))
	assert.True(t, GetBoolValue(cfg, "Logger.DisableTime", true))
	assert.Equal(t, 3, cfg.HTTPClient.RetryCount)
	assert.Equal(t, 20*time.Second, cfg.HTTPClient.Timeout)
	assert.Equal(t, 3128, cfg.HTTPClient.Proxy.Port)
	assert.Equal(t, "https://scan.example.com/api", cfg.CodeScan.Endpoint)
	assert.Equal(t, AuthSigV4, cfg.CodeScan.AuthMode())
	assert.Equal(t, 500*time.Millisecond, cfg.CodeScan.FilePollingDelay)
	assert.Equal(t, 30*time.Minute, cfg.CodeScan.ProjectTimeout)
	assert.Equal(t, 2, cfg.CodeScan.UploadRetryCount)
	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, "http://proxy.example.com", cfg.HTTPClient.Proxy.Host)
}

func TestLoadConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yml")

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)

	_, err = LoadConfig(path, false)
	assert.Error(t, err)
}

func TestLoadConfigDirectory(t *testing.T) {
	_, err := LoadConfig(t.TempDir(), true)
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{name: "empty", cfg: &Config{}},
		{name: "nil", cfg: nil, wantErr: "configuration object is nil"},
		{name: "retry count", cfg: &Config{HTTPClient: HTTPClient{RetryCount: 21}}, wantErr: "retry_count"},
		{name: "negative timeout", cfg: &Config{HTTPClient: HTTPClient{Timeout: -time.Second}}, wantErr: "cannot be negative"},
		{name: "proxy port", cfg: &Config{HTTPClient: HTTPClient{Proxy: Proxy{Host: "proxy", Port: 70000}}}, wantErr: "port must be"},
		{name: "relative endpoint", cfg: &Config{CodeScan: CodeScan{Endpoint: "scan.example.com"}}, wantErr: "absolute http(s) URL"},
		{name: "auth mode", cfg: &Config{CodeScan: CodeScan{Auth: "kerberos"}}, wantErr: "unsupported auth mode"},
		{name: "upload retries", cfg: &Config{CodeScan: CodeScan{UploadRetryCount: -1}}, wantErr: "upload_retry_count"},
		{name: "project timeout", cfg: &Config{CodeScan: CodeScan{ProjectTimeout: 48 * time.Hour}}, wantErr: "project_timeout"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateConfig(tc.cfg)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestAuthMode(t *testing.T) {
	assert.Equal(t, AuthNone, (&CodeScan{}).AuthMode())
	assert.Equal(t, AuthBearer, (&CodeScan{TokenEnv: "TOKEN"}).AuthMode())
	assert.Equal(t, AuthSigV4, (&CodeScan{Auth: "SigV4"}).AuthMode())
}

func TestSetThen(t *testing.T) {
	assert.Equal(t, 5, SetThen(0, 5))
	assert.Equal(t, 2, SetThen(2, 5))
	assert.Equal(t, time.Second, SetThen(time.Duration(0), time.Second))
	assert.Equal(t, "a", SetThen("a", "b"))
}
