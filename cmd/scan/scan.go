package scan

import (
	"context"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/scanio-remote/internal/codescan"
	"github.com/scan-io-git/scanio-remote/internal/config"
	"github.com/scan-io-git/scanio-remote/internal/logger"
	"github.com/scan-io-git/scanio-remote/internal/remote"
	"github.com/scan-io-git/scanio-remote/internal/report"
	"github.com/scan-io-git/scanio-remote/internal/workspace"
)

// RunOptionsScan holds the arguments for the scan command.
type RunOptionsScan struct {
	ArtifactPath string
	Scope        string
	Language     string
	ProjectPaths []string
	FilePath     string
	ScanName     string
	Format       string
	OutputPath   string
}

// Global variables for configuration and command arguments
var (
	AppConfig        *config.Config
	scanOptions      RunOptionsScan
	exampleScanUsage = `  # Scanning a whole project packaged into a zip, results printed to stdout
  scanio-remote scan --zip /tmp/project.zip --language python

  # Scanning a single file and filtering findings against its current content
  scanio-remote scan --zip /tmp/file.zip --scope file --file ./app/main.py --language python

  # Resolving findings against several local roots and writing a SARIF report
  scanio-remote scan --zip /tmp/project.zip --project-path ./service --project-path ./lib --format sarif --output results.sarif`
)

// ScanCmd represents the scan command.
var ScanCmd = &cobra.Command{
	Use:                   "scan --zip PATH [--scope file|project] [--language LANGUAGE] [--project-path PATH]... [--file PATH] [--name NAME] [--format json|sarif] [--output PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Runs a remote security scan of a prebuilt source zip and reports the findings",
	Long: `Uploads a prebuilt source zip to the remote scan service, starts a scan job,
waits for it to finish and maps the reported findings onto local files.

An interrupt stops the scan at its next status check.`,
	RunE: runScanCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runScanCommand executes the scan command.
func runScanCommand(cmd *cobra.Command, args []string) error {
	if cmd.Flags().NFlag() == 0 {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-scan")
	state := codescan.NewScanState()
	ctx, stop := watchSignals(cmd.Context(), state, logger)
	defer stop()

	return runScan(ctx, AppConfig, &scanOptions, state, cmd.OutOrStdout(), logger)
}

// runScan validates the options, runs the pipeline and writes the report.
func runScan(ctx context.Context, cfg *config.Config, opts *RunOptionsScan, state *codescan.ScanState, stdout io.Writer, logger hclog.Logger) error {
	validated, err := validateScanArgs(opts)
	if err != nil {
		logger.Error("invalid scan arguments", "error", err)
		return err
	}

	projectRoots, err := workspace.ProjectRoots(opts.ProjectPaths, logger)
	if err != nil {
		logger.Error("failed to resolve project roots", "error", err)
		return err
	}

	var editor codescan.LineReader
	if opts.FilePath != "" {
		buffer, err := workspace.OpenFileBuffer(opts.FilePath)
		if err != nil {
			logger.Error("failed to read editor file", "path", opts.FilePath, "error", err)
			return err
		}
		editor = buffer
	}

	repository := workspace.DescribeRepository(projectRoots[0], nil)
	if repository == nil {
		logger.Debug("repository metadata is not available", "path", projectRoots[0])
	}

	client, err := remote.New(cfg, logger.Named("remote"))
	if err != nil {
		logger.Error("failed to create remote client", "error", err)
		return err
	}
	transport := remote.NewPutTransport(cfg, logger.Named("upload"))
	telemetry := codescan.LogTelemetry{Logger: logger.Named("telemetry")}

	orchestrator := codescan.NewOrchestrator(client, transport, telemetry, state, buildSettings(cfg), logger)
	logger.Info("starting remote scan", "name", validated.scanName, "scope", validated.scope, "artifact", opts.ArtifactPath)

	result, err := orchestrator.Run(ctx, codescan.ScanRequest{
		ArtifactPath: opts.ArtifactPath,
		LanguageID:   opts.Language,
		Scope:        validated.scope,
		ScanName:     validated.scanName,
		ProjectPaths: projectRoots,
		Editor:       editor,
	})
	if err != nil {
		logger.Error("scan command failed", "error", err)
		return toCommandError(err)
	}

	report.SortResults(result.Findings)
	meta := report.Metadata{
		Scope:      validated.scope,
		ScanName:   validated.scanName,
		Repository: repository,
	}
	if err := writeReport(stdout, opts.OutputPath, validated.format, meta, result); err != nil {
		logger.Error("failed to write result", "error", err)
		return err
	}

	logger.Info("scan command completed successfully", "jobId", result.JobID, "files", len(result.Findings))
	return nil
}

// Initialize flags for the scan command.
func init() {
	ScanCmd.Flags().StringVarP(&scanOptions.ArtifactPath, "zip", "z", "", "Path to the prebuilt source zip to upload.")
	ScanCmd.Flags().StringVarP(&scanOptions.Scope, "scope", "s", string(codescan.ScopeProject), "Scan scope: file or project.")
	ScanCmd.Flags().StringVarP(&scanOptions.Language, "language", "l", "", "Programming language of the scanned sources.")
	ScanCmd.Flags().StringArrayVarP(&scanOptions.ProjectPaths, "project-path", "p", nil, "Local project root used to resolve reported paths. Can be repeated. Defaults to the git worktree root of the working directory.")
	ScanCmd.Flags().StringVar(&scanOptions.FilePath, "file", "", "Local file holding the current content of the scanned file. Findings that no longer match it are dropped.")
	ScanCmd.Flags().StringVarP(&scanOptions.ScanName, "name", "n", "", "Name of the scan. Defaults to a generated name.")
	ScanCmd.Flags().StringVarP(&scanOptions.Format, "format", "f", string(report.FormatJSON), "Format of the result: json or sarif.")
	ScanCmd.Flags().StringVarP(&scanOptions.OutputPath, "output", "o", "", "Path to the output file. Defaults to stdout.")
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for the scan command.")
}
