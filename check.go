package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abiiranathan/html6-lsp/completion"
	"github.com/abiiranathan/html6-lsp/validator"
)

type checkOptions struct {
	format           string
	compress         bool
	warningsAsErrors bool
	jobs             int
	color            string
}

func newCheckCmd() *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Validate HTML6 files and directories",
		Long: "Validate HTML6 files. Directories are searched for files with the configured\n" +
			"extensions, skipping hidden and excluded directories. Exits with status 1\n" +
			"when any error is reported.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.format, "format", "text", "output format: text or json")
	f.BoolVar(&opts.compress, "compress", false, "gzip the JSON output")
	f.BoolVar(&opts.warningsAsErrors, "warnings-as-errors", false, "treat warnings as errors")
	f.IntVar(&opts.jobs, "jobs", 0, "files validated concurrently (default: one per CPU)")
	f.StringVar(&opts.color, "color", "auto", "colorize text output: auto, on or off")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts checkOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("invalid --format %q: want text or json", opts.format)
	}
	if opts.compress && opts.format != "json" {
		return fmt.Errorf("--compress requires --format json")
	}

	w := cmd.OutOrStdout()
	var p *palette
	if opts.format == "text" {
		var err error
		if p, err = newPalette(w, opts.color); err != nil {
			return err
		}
	}

	cfg, logger, err := settings(cmd, "warn")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	engine, err := cfg.Diagnostics.Engine()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := expandPaths(args, cfg.Completion.ScanOptions(logger))
	if err != nil {
		return err
	}
	logger.Debug("checking files", zap.Int("files", len(files)))

	out := CheckOutput{Files: len(files), Results: []validator.ValidationResult{}}
	for _, fr := range engine.ValidateFiles(cmd.Context(), files, opts.jobs) {
		if fr.Err != nil {
			logger.Warn("check failed", zap.String("file", fr.Path), zap.Error(fr.Err))
		}
		for _, r := range fr.Results() {
			if opts.warningsAsErrors && r.Severity == "warning" {
				r.Severity = "error"
			}
			switch r.Severity {
			case "error":
				out.Errors++
			case "warning":
				out.Warnings++
			}
			out.Results = append(out.Results, r)
		}
	}

	if opts.format == "json" {
		if err := encodeJSON(w, out, opts.compress); err != nil {
			return err
		}
	} else {
		writeText(w, p, out.Results)
		fmt.Fprintf(cmd.ErrOrStderr(), "%d files checked: %d errors, %d warnings\n",
			out.Files, out.Errors, out.Warnings)
	}

	if out.Errors > 0 {
		return errFindings
	}
	return nil
}

// expandPaths replaces directories with the files they contain. Files
// named explicitly are kept whatever their extension.
func expandPaths(paths []string, opts completion.Options) ([]string, error) {
	abs, err := absPaths(paths)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, p := range abs {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := completion.ListFiles(p, opts)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}
