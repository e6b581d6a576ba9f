package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Auth modes for the remote scan service.
const (
	AuthNone   = "none"
	AuthBearer = "bearer"
	AuthSigV4  = "sigv4"
)

// DefaultTokenEnv is the environment variable holding the bearer token.
const DefaultTokenEnv = "SCANIO_REMOTE_TOKEN"

type Config struct {
	Logger     Logger     `yaml:"logger"`
	HTTPClient HTTPClient `yaml:"http_client"`
	CodeScan   CodeScan   `yaml:"code_scan"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

type HTTPClient struct {
	Debug            *bool           `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TLSClientConfig  TLSClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CodeScan configures the remote scan service and the scan timings.
type CodeScan struct {
	Endpoint            string        `yaml:"endpoint"`
	Region              string        `yaml:"region"`
	Auth                string        `yaml:"auth"`
	TokenEnv            string        `yaml:"token_env"`
	FindingsSchema      string        `yaml:"findings_schema"`
	FilePollingDelay    time.Duration `yaml:"file_polling_delay"`
	ProjectPollingDelay time.Duration `yaml:"project_polling_delay"`
	PollingInterval     time.Duration `yaml:"polling_interval"`
	FileTimeout         time.Duration `yaml:"file_timeout"`
	ProjectTimeout      time.Duration `yaml:"project_timeout"`
	UploadRetryCount    int           `yaml:"upload_retry_count"`
	VerboseFileScans    bool          `yaml:"verbose_file_scans"`
}

// ValidateConfigPath checks that path names a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the configuration at configPath. When allowMissing is set a
// nonexistent file yields an empty configuration, so every value falls back to its default.
func LoadConfig(configPath string, allowMissing bool) (*Config, error) {
	cfg := &Config{}

	if err := LoadYAML(configPath, cfg); err != nil {
		if allowMissing && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
	}

	return cfg, nil
}
