package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abiiranathan/html6-lsp/completion"
)

func newTagsCmd() *cobra.Command {
	var (
		duplicates bool
		compress   bool
	)
	cmd := &cobra.Command{
		Use:   "tags [dir]",
		Short: "List the components declared with <template is=\"...\">",
		Long: "Print, as a JSON array, the component names tag completion offers for a\n" +
			"workspace. With --duplicates, print the names declared more than once with\n" +
			"every declaring file and line instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			cfg, logger, err := settings(cmd, "warn")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ix, err := completion.Scan(dir, cfg.Completion.ScanOptions(logger))
			if err != nil {
				return err
			}
			logger.Debug("scanned components", zap.String("root", ix.Root()), zap.Int("components", ix.Len()))

			var output any = nonNil(ix.Names())
			if duplicates {
				output = nonNil(ix.Duplicates())
			}
			return encodeJSON(cmd.OutOrStdout(), output, compress)
		},
	}
	cmd.Flags().BoolVar(&duplicates, "duplicates", false, "print duplicate declarations instead of names")
	cmd.Flags().BoolVar(&compress, "compress", false, "gzip the JSON output")
	return cmd
}

// nonNil keeps empty results encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
