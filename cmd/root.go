package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/scanio-remote/cmd/scan"
	"github.com/scan-io-git/scanio-remote/cmd/version"
	"github.com/scan-io-git/scanio-remote/internal/config"
	cmderrors "github.com/scan-io-git/scanio-remote/pkg/shared/errors"
)

const defaultConfigFile = "config.yml"

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "scanio-remote [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "Scanio remote is a client for remote security scans of source code.",
		Long: `Scanio remote uploads prebuilt source archives to a remote security scan service,
	waits for the scan to finish and maps the reported findings onto local files.
	`,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(scan.ScanCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return cmderrors.ExitCode(err)
	}
	return 0
}

func initConfig(cmd *cobra.Command, args []string) error {
	path, allowMissing := cfgFile, false
	if path == "" {
		path, allowMissing = defaultConfigFile, true
	}

	var err error
	AppConfig, err = config.LoadConfig(path, allowMissing)
	if err != nil {
		return fmt.Errorf("initializing config file function is crashed: %w", err)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		return err
	}

	scan.Init(AppConfig)
	return nil
}
