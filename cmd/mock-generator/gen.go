package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mock-generator/internal/gen"
)

var (
	genDryRun           bool
	genDebug            bool
	genDebugUnformatted bool
)

func init() {
	genCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "print generated files instead of writing them")
	genCmd.Flags().BoolVar(&genDebug, "debug", false, "dump the analyzed declarations and diagnostics")
	genCmd.Flags().BoolVar(&genDebugUnformatted, "debug-unformatted", false,
		"write output that fails to format next to the package as _<name>.unformatted.go")
}

var genCmd = &cobra.Command{
	Use:   "gen [packages]",
	Short: "Generate mock constructors",
	Long: `Generate loads the given package patterns (default: the configured patterns,
or ./...) and writes zz_generated.mock*.go files next to their sources.
A package with any error is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd, args)
		if err != nil {
			return err
		}
		defer func() { _ = opts.log.Sync() }()

		res, err := runPipeline(cmd.Context(), opts, pipelineOptions{
			debug:            genDebug,
			debugUnformatted: genDebugUnformatted,
		})
		if err != nil {
			return err
		}

		newReporter(cmd.ErrOrStderr(), opts.color, opts.verbose).Diagnostics(&res.Diagnostics)

		if genDryRun {
			for _, f := range res.Files() {
				fmt.Fprintf(cmd.OutOrStdout(), "=== %s/%s ===\n%s\n", f.Dir, f.Filename, f.Content)
			}
		} else {
			removed, err := gen.Write(res, opts.cfg.Output)
			if err != nil {
				return err
			}

			for _, p := range removed {
				opts.log.Info("removed stale file", zap.String("path", p))
			}

			opts.log.Info("wrote files", zap.Int("count", len(res.Files())))
		}

		if res.Diagnostics.HasErrors() {
			return errReported
		}

		return nil
	},
}
