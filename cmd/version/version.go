package version

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"
)

// Versions holds build information of the binary.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
	Platform      string `json:"platform"`
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:                   "version [--json]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersionInfo(cmd.OutOrStdout(), currentVersions(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the version information as JSON.")
	return cmd
}

func currentVersions() Versions {
	golangVersion := GolangVersion
	if golangVersion == "unknown" {
		golangVersion = runtime.Version()
	}
	return Versions{
		Version:       CoreVersion,
		GolangVersion: golangVersion,
		BuildTime:     BuildTime,
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// printVersionInfo prints the version information of the application.
func printVersionInfo(w io.Writer, versions Versions, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(versions)
	}
	fmt.Fprintf(w, "Core Version: v%s\n", versions.Version)
	fmt.Fprintf(w, "Go Version: %s\n", versions.GolangVersion)
	fmt.Fprintf(w, "Build Time: %s\n", versions.BuildTime)
	fmt.Fprintf(w, "Platform: %s\n", versions.Platform)
	return nil
}
