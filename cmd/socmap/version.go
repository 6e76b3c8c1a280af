package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daveroberts0321/socmap/version"
)

// buildInfo is printed by `socmap version`; commit and date only with --full.
type buildInfo struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var (
	versionFormat   string
	versionShowFull bool
)

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "include commit hash and build date")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show socmap build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildInfo{Tool: "socmap", Version: strings.TrimSpace(version.Version)}
		if info.Version == "" {
			info.Version = "dev"
		}
		if versionShowFull {
			info.GitCommit = orUnknown(version.GitCommit)
			info.BuildDate = orUnknown(version.BuildDate)
		}

		switch strings.ToLower(versionFormat) {
		case "pretty":
			printBuildInfo(cmd.OutOrStdout(), info)
			return nil
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
	},
}

func printBuildInfo(w io.Writer, info buildInfo) {
	fmt.Fprintf(w, "socmap %s\n", version.Colored())
	if info.GitCommit != "" {
		fmt.Fprintf(w, "commit: %s\n", info.GitCommit)
	}
	if info.BuildDate != "" {
		fmt.Fprintf(w, "built:  %s\n", info.BuildDate)
	}
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
