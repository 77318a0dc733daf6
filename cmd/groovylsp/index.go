package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"groovylsp/internal/compiler"
	"groovylsp/internal/config"
	"groovylsp/internal/frontend"
	"groovylsp/internal/index"
	"groovylsp/internal/logging"
)

var indexCmd = &cobra.Command{
	Use:          "index [root]",
	Short:        "Build the workspace symbol index",
	SilenceUsage: true,
	RunE:         runIndex,
}

func init() {
	indexCmd.Flags().String("out", "", "path for the persisted index (defaults to the manifest's index.store_path, else <root>/.groovylsp/symbols.mp)")
}

func runIndex(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	level, _ := cmd.Root().PersistentFlags().GetString("log-level")
	log, err := logging.New(logging.Options{Level: level, Format: "console", ToStderr: true})
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	cfg, _, err := config.Find(abs)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		if cfg.Index.StorePath != "" {
			out = cfg.Index.StorePath
		} else {
			out = filepath.Join(abs, ".groovylsp", "symbols.mp")
		}
	}

	facade := compiler.NewFacade(cfg.CompilerConfig(), frontend.New, log)
	workspace := index.NewWorkspace(facade, log)
	if err := workspace.Build(cmd.Context(), abs); err != nil {
		return err
	}
	if err := workspace.Save(out); err != nil {
		return err
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		fmt.Fprintf(os.Stdout, "indexed %d symbol name(s) -> %s\n", workspace.Len(), out)
	}
	return nil
}
