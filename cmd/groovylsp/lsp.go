package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"groovylsp/internal/compiler"
	"groovylsp/internal/config"
	"groovylsp/internal/engine"
	"groovylsp/internal/frontend"
	"groovylsp/internal/index"
	"groovylsp/internal/logging"
	"groovylsp/internal/nav"
	"groovylsp/internal/server"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the Groovy language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().String("workspace", "", "workspace root to index (defaults to the working directory)")
	lspCmd.Flags().Bool("watch", true, "watch the workspace and refresh the symbol index")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	level, _ := cmd.Root().PersistentFlags().GetString("log-level")
	log, err := logging.New(logging.Options{Level: level, Format: "console", ToStderr: true})
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	root, _ := cmd.Flags().GetString("workspace")
	if root == "" {
		root, err = os.Getwd()
		if err != nil {
			return err
		}
	}

	cfg, manifestPath, err := config.Find(root)
	if err != nil {
		return err
	}
	if manifestPath != "" {
		log.Info("loaded manifest", zap.String("path", manifestPath))
	}

	facade := compiler.NewFacade(cfg.CompilerConfig(), frontend.New, log)
	eng := engine.New(facade, engine.Options{
		MaxCacheSize: cfg.Cache.MaxSize,
		CacheTTL:     cfg.Cache.TTL(),
	}, log)

	workspace := index.NewWorkspace(facade, log)
	if store := cfg.Index.StorePath; store != "" {
		if ok, err := workspace.Load(store); err != nil {
			log.Warn("failed to load symbol store", zap.String("path", store), zap.Error(err))
		} else if ok {
			log.Info("loaded symbol store", zap.String("path", store))
		}
	}
	if err := workspace.Build(cmd.Context(), root); err != nil {
		log.Warn("workspace scan incomplete", zap.Error(err))
	}
	watch, _ := cmd.Flags().GetBool("watch")
	if watch {
		if err := workspace.Watch(cmd.Context(), root); err != nil {
			log.Warn("workspace watch unavailable", zap.Error(err))
		}
	}

	resolver := nav.NewResolver(workspace, log)
	srv := server.NewServer(os.Stdin, os.Stdout, server.Options{
		Engine:   eng,
		Resolver: resolver,
		Debounce: cfg.Diagnostics.DebounceDelay(),
		Log:      log,
	})

	if err := srv.Run(cmd.Context()); err != nil {
		if errors.Is(err, server.ErrExit) {
			return nil
		}
		if errors.Is(err, server.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
