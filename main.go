// Command html6-lsp is the HTML6 template language server. Besides serving
// the protocol on stdio it can check files from the command line and list
// the components declared in a workspace.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abiiranathan/html6-lsp/config"
	"github.com/abiiranathan/html6-lsp/server"
)

// errFindings makes the process exit with status 1 without printing an
// error; the findings were already reported.
var errFindings = errors.New("diagnostics reported")

// newRootCmd builds the command tree. Each call returns fresh commands so
// tests can run them in isolation.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "html6-lsp",
		Short:         "HTML6 template diagnostics, completion and hover",
		Long:          "html6-lsp validates HTML6 templates: conditional chains, map loops,\ntemplate declarations and {{ }} expressions.",
		Version:       server.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to "+config.FileName+" (default: search upward from the working directory)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: from config)")

	root.AddCommand(newServeCmd(), newCheckCmd(), newTagsCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintln(os.Stderr, "html6-lsp:", err)
		}
		os.Exit(1)
	}
}

// settings resolves the configuration and logger for a command.
//
// Parameters:
//   - cmd: the running command; its --config and --log-level flags apply
//   - defaultLevel: level used when neither the flag nor a config file sets
//     one; empty keeps the config default
//
// Returns: the configuration, a logger writing to stderr or the configured
// file, and an error for unreadable or invalid configuration.
func settings(cmd *cobra.Command, defaultLevel string) (config.Config, *zap.Logger, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg   config.Config
		found string
		err   error
	)
	if path != "" {
		cfg, err = config.Load(path)
		found = path
	} else {
		cfg, found, err = config.Discover(".")
	}
	if err != nil {
		return config.Config{}, nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	} else if found == "" && defaultLevel != "" {
		cfg.Log.Level = defaultLevel
	}

	logger, err := cfg.Log.Logger()
	if err != nil {
		return config.Config{}, nil, err
	}
	if found != "" {
		logger.Debug("loaded config", zap.String("path", found))
	}
	return cfg, logger, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the language server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := settings(cmd, "")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return server.Run(cmd.Context(), server.Stdio(os.Stdin, os.Stdout), cfg, logger)
		},
	}
}
