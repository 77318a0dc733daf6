package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"golang.org/x/term"

	"groovylsp/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "groovylsp",
	Short: "Groovy language server and analysis toolchain",
	Long:  `groovylsp is the analysis core of a Groovy language server with standalone diagnostic tools`,
}

var timeoutCancel context.CancelFunc

func main() {
	rootCmd.Version = version.String()
	rootCmd.PersistentPreRunE = applyTimeout
	rootCmd.PersistentPostRun = cleanupTimeout

	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().Int("timeout", 0, "command timeout in seconds (0 to disable)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// colorEnabled resolves the --color tri-state against the output terminal.
func colorEnabled(cmd *cobra.Command) bool {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

func applyTimeout(cmd *cobra.Command, _ []string) error {
	secs, err := cmd.Root().PersistentFlags().GetInt("timeout")
	if err != nil {
		return fmt.Errorf("failed to read timeout flag: %w", err)
	}
	if secs <= 0 {
		return nil
	}
	duration := time.Duration(secs) * time.Second
	ctx, cancel := context.WithTimeout(cmd.Context(), duration)
	timeoutCancel = cancel
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	go func() {
		<-ctx.Done()
		if ctx.Err() == context.DeadlineExceeded {
			fmt.Fprintf(os.Stderr, "groovylsp: command timed out after %s\n", duration)
			os.Exit(1)
		}
	}()
	return nil
}

func cleanupTimeout(*cobra.Command, []string) {
	if timeoutCancel != nil {
		timeoutCancel()
		timeoutCancel = nil
	}
}
