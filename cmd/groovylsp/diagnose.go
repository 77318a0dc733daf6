package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"groovylsp/internal/compiler"
	"groovylsp/internal/config"
	"groovylsp/internal/diag"
	"groovylsp/internal/diagfmt"
	"groovylsp/internal/engine"
	"groovylsp/internal/frontend"
	"groovylsp/internal/source"
)

var diagnoseCmd = &cobra.Command{
	Use:          "diagnose [path...]",
	Short:        "Compile Groovy sources and print diagnostics",
	SilenceUsage: true,
	RunE:         runDiagnose,
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")

	files, err := collectGroovyFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no Groovy sources found")
	}

	cfg, _, err := config.Find(filepath.Dir(files[0]))
	if err != nil {
		return err
	}
	facade := compiler.NewFacade(cfg.CompilerConfig(), frontend.New, nil)
	eng := engine.New(facade, engine.Options{
		MaxCacheSize: cfg.Cache.MaxSize,
		CacheTTL:     cfg.Cache.TTL(),
	}, nil)

	opts := diagfmt.PrettyOpts{Color: colorEnabled(cmd)}
	total := diag.NewBag(maxDiagnostics)
	hadErrors := false

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		text := string(content)
		id := source.ID(source.PathToURI(path))
		result := eng.Compile(id, text, compiler.PhaseSemantic)

		bag := diag.NewBag(maxDiagnostics)
		for _, d := range result.Issues {
			bag.Add(d)
			total.Add(d)
		}
		bag.Sort()
		if bag.Len() > 0 {
			diagfmt.Pretty(cmd.OutOrStdout(), bag, text, opts)
		}
		if result.Status != engine.StatusSuccess {
			for _, d := range result.Issues {
				if d.Kind.Severity() == diag.SevError {
					hadErrors = true
					break
				}
			}
		}
	}

	if !quiet {
		diagfmt.Summary(cmd.OutOrStdout(), total, len(files))
	}
	if hadErrors {
		return fmt.Errorf("diagnostics reported errors")
	}
	return nil
}

func collectGroovyFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if name := d.Name(); name == ".git" || name == "build" || name == ".gradle" {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".groovy") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}
