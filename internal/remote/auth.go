package remote

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws/credentials"
	v4 "github.com/aws/aws-sdk-go/aws/signer/v4"
	"github.com/go-resty/resty/v2"

	"github.com/scan-io-git/scanio-remote/internal/config"
)

// configureAuth attaches the credentials selected by the code_scan.auth directive.
func configureAuth(httpc *resty.Client, scanConfig *config.CodeScan) error {
	switch scanConfig.AuthMode() {
	case config.AuthNone:
		return nil
	case config.AuthBearer:
		tokenEnv := config.SetThen(scanConfig.TokenEnv, config.DefaultTokenEnv)
		token := os.Getenv(tokenEnv)
		if token == "" {
			return fmt.Errorf("bearer auth requires the %s environment variable", tokenEnv)
		}
		httpc.SetAuthToken(token)
		return nil
	case config.AuthSigV4:
		creds := credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvProvider{},
			&credentials.SharedCredentialsProvider{},
		})
		region := config.SetThen(scanConfig.Region, config.DefaultRegion)
		httpc.SetPreRequestHook(newSigV4Hook(v4.NewSigner(creds), region, time.Now))
		return nil
	default:
		return fmt.Errorf("unsupported auth mode %q", scanConfig.Auth)
	}
}

// newSigV4Hook signs every outgoing request, including retries, with AWS Signature Version 4.
func newSigV4Hook(signer *v4.Signer, region string, now func() time.Time) resty.PreRequestHook {
	return func(_ *resty.Client, r *http.Request) error {
		var body []byte
		if r.Body != nil {
			var err error
			body, err = io.ReadAll(r.Body)
			if err != nil {
				return fmt.Errorf("failed to read request body for signing: %w", err)
			}
			r.Body.Close()
		}

		if _, err := signer.Sign(r, bytes.NewReader(body), config.DefaultSigningName, region, now()); err != nil {
			return fmt.Errorf("failed to sign request: %w", err)
		}
		return nil
	}
}
