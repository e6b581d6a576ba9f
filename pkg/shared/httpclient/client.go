package httpclient

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/scan-io-git/scanio-remote/internal/config"
)

// HclogAdapter adapts an hclog.Logger to be compatible with the resty log.Logger interface.
type HclogAdapter struct {
	logger hclog.Logger
}

// NewHclogAdapter creates a new adapter that will forward messages to a hclog.Logger.
func NewHclogAdapter(logger hclog.Logger) resty.Logger {
	return &HclogAdapter{logger: logger}
}

// Errorf logs a message at error level.
func (a *HclogAdapter) Errorf(format string, v ...interface{}) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

// Warnf logs a message at warning level.
func (a *HclogAdapter) Warnf(format string, v ...interface{}) {
	a.logger.Warn(fmt.Sprintf(format, v...))
}

// Debugf logs a message at debug level.
func (a *HclogAdapter) Debugf(format string, v ...interface{}) {
	a.logger.Debug(fmt.Sprintf(format, v...))
}

// SetLoggerForResty sets the adapted hclog.Logger as the logger for Resty.
func SetLoggerForResty(client *resty.Client, logger hclog.Logger) {
	client.SetLogger(NewHclogAdapter(logger))
}

// InitializeRestyClient initializes and configures a resty client based on the provided configuration.
func InitializeRestyClient(logger hclog.Logger, cfg *config.Config) *resty.Client {
	client := resty.New()
	if logger != nil {
		SetLoggerForResty(client, logger)
	}

	// Apply the configuration settings from the config file or use defaults
	restyConfig := applyHTTPClientConfig(&cfg.HTTPClient)
	client.
		SetDebug(restyConfig.Debug).
		SetRetryCount(restyConfig.RetryCount).
		SetRetryWaitTime(restyConfig.RetryWaitTime).
		SetRetryMaxWaitTime(restyConfig.RetryMaxWaitTime).
		SetTimeout(restyConfig.Timeout).
		SetTLSClientConfig(restyConfig.TLSClientConfig)
	if restyConfig.Proxy != "" {
		client.SetProxy(restyConfig.Proxy)
	}

	return client
}

// InitializeRetryableClient builds the client used for artifact transfers. Only
// transport-level settings are shared with the API client; the retry count is the upload's own.
func InitializeRetryableClient(logger hclog.Logger, cfg *config.Config) *retryablehttp.Client {
	base := applyHTTPClientConfig(&cfg.HTTPClient).BaseHTTPConfig
	defaults := config.DefaultUploadConfig()

	client := retryablehttp.NewClient()
	client.Logger = logger
	client.RetryMax = cfg.CodeScan.UploadRetryCount
	client.RetryWaitMin = base.RetryWaitTime
	client.RetryWaitMax = base.RetryMaxWaitTime
	// hand the last response back so the caller can classify it
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	var proxyFunc func(*http.Request) (*url.URL, error)
	if base.Proxy != "" {
		if proxyURL, err := url.Parse(base.Proxy); err == nil {
			proxyFunc = http.ProxyURL(proxyURL)
		}
	}
	client.HTTPClient = &http.Client{
		Timeout: config.SetThen(cfg.HTTPClient.Timeout, defaults.Timeout),
		Transport: &http.Transport{
			Proxy:           proxyFunc,
			TLSClientConfig: base.TLSClientConfig,
		},
	}
	return client
}

// applyHTTPClientConfig applies the HttpClient configuration or uses default values.
func applyHTTPClientConfig(httpConfig *config.HTTPClient) config.RestyHTTPClientConfig {
	cfg := config.DefaultRestyConfig()
	if httpConfig == nil {
		return cfg
	}

	cfg.Debug = config.GetBoolValue(httpConfig, "Debug", cfg.Debug)
	cfg.RetryCount = config.SetThen(httpConfig.RetryCount, cfg.RetryCount)
	cfg.RetryWaitTime = config.SetThen(httpConfig.RetryWaitTime, cfg.RetryWaitTime)
	cfg.RetryMaxWaitTime = config.SetThen(httpConfig.RetryMaxWaitTime, cfg.RetryMaxWaitTime)
	cfg.Timeout = config.SetThen(httpConfig.Timeout, cfg.Timeout)
	cfg.TLSClientConfig = &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !config.GetBoolValue(httpConfig.TLSClientConfig, "Verify", true),
	}

	if httpConfig.Proxy.Host != "" && httpConfig.Proxy.Port != 0 {
		cfg.Proxy = fmt.Sprintf("%s:%d", httpConfig.Proxy.Host, httpConfig.Proxy.Port)
	}

	return cfg
}
