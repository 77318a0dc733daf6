package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"groovylsp/internal/version"
)

var (
	versionFormat string
	commitColor   = color.New(color.FgRed, color.Bold)
	dateColor     = color.New(color.FgCyan, color.Bold)
)

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show groovylsp build fingerprints",
	RunE: func(cmd *cobra.Command, _ []string) error {
		switch versionFormat {
		case "json":
			payload := map[string]string{
				"tool":    "groovylsp",
				"version": version.Version,
			}
			if version.GitCommit != "" {
				payload["git_commit"] = version.GitCommit
			}
			if version.BuildDate != "" {
				payload["build_date"] = version.BuildDate
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		case "pretty":
			fmt.Fprintf(cmd.OutOrStdout(), "groovylsp %s\n", version.Version)
			if version.GitCommit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", commitColor.Sprint(version.GitCommit))
			}
			if version.BuildDate != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "built:  %s\n", dateColor.Sprint(version.BuildDate))
			}
			return nil
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
	},
}
