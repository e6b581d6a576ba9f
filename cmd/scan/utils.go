package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-remote/internal/codescan"
	"github.com/scan-io-git/scanio-remote/internal/config"
	"github.com/scan-io-git/scanio-remote/internal/report"
	cmderrors "github.com/scan-io-git/scanio-remote/pkg/shared/errors"
	"github.com/scan-io-git/scanio-remote/pkg/shared/files"
)

// defaultScanName generates a unique scan name.
func defaultScanName() string {
	return "scan-" + uuid.NewString()
}

// buildSettings overlays the code_scan section of the config onto the default scan settings.
func buildSettings(cfg *config.Config) codescan.Settings {
	settings := codescan.DefaultSettings()
	if cfg == nil {
		return settings
	}
	scanConfig := cfg.CodeScan
	settings.FilePollingDelay = config.SetThen(scanConfig.FilePollingDelay, settings.FilePollingDelay)
	settings.ProjectPollingDelay = config.SetThen(scanConfig.ProjectPollingDelay, settings.ProjectPollingDelay)
	settings.PollingInterval = config.SetThen(scanConfig.PollingInterval, settings.PollingInterval)
	settings.FileTimeout = config.SetThen(scanConfig.FileTimeout, settings.FileTimeout)
	settings.ProjectTimeout = config.SetThen(scanConfig.ProjectTimeout, settings.ProjectTimeout)
	settings.FindingsSchema = config.SetThen(scanConfig.FindingsSchema, settings.FindingsSchema)
	settings.VerboseFileScans = scanConfig.VerboseFileScans
	return settings
}

// watchSignals stops the scan on the first interrupt through the shared scan
// state and cancels the returned context on the second one.
func watchSignals(parent context.Context, state *codescan.ScanState, logger hclog.Logger) (context.Context, func()) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		interrupted := false
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-signals:
				if interrupted {
					logger.Warn("second interrupt received, aborting", "signal", sig.String())
					cancel()
					return
				}
				interrupted = true
				logger.Warn("interrupt received, stopping the scan", "signal", sig.String())
				state.SetCancelling(true)
				state.SetFileScansEnabled(false)
			}
		}
	}()

	return ctx, func() {
		signal.Stop(signals)
		cancel()
	}
}

// toCommandError attaches the process exit code matching the failure kind.
func toCommandError(err error) error {
	var (
		stopped  *codescan.CodeScanStoppedError
		timedOut *codescan.SecurityScanTimedOutError
	)
	switch {
	case errors.As(err, &stopped), errors.Is(err, context.Canceled):
		return cmderrors.NewCommandError(err, cmderrors.ExitCodeCancelled)
	case errors.As(err, &timedOut):
		return cmderrors.NewCommandError(err, cmderrors.ExitCodeTimeout)
	default:
		return cmderrors.NewCommandError(err, cmderrors.ExitCodeFailure)
	}
}

// writeReport renders the result and writes it to outputPath, or to stdout when no path is given.
func writeReport(stdout io.Writer, outputPath string, format report.Format, meta report.Metadata, result *codescan.ScanResult) error {
	var buf bytes.Buffer
	if err := report.Write(&buf, format, meta, result); err != nil {
		return err
	}

	if outputPath == "" {
		if _, err := stdout.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write result to stdout: %w", err)
		}
		return nil
	}

	expanded, err := files.ExpandPath(outputPath)
	if err != nil {
		return fmt.Errorf("failed to expand output path: %w", err)
	}
	return files.WriteFile(expanded, buf.Bytes())
}
