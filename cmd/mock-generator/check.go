package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mock-generator/internal/gen"
)

var checkCmd = &cobra.Command{
	Use:   "check [packages]",
	Short: "Verify generated mock files are up to date",
	Long: `Check runs generation without writing anything and fails if a package has
errors, or if a generated file on disk is missing, differs or is stale.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd, args)
		if err != nil {
			return err
		}
		defer func() { _ = opts.log.Sync() }()

		res, err := runPipeline(cmd.Context(), opts, pipelineOptions{})
		if err != nil {
			return err
		}

		rep := newReporter(cmd.ErrOrStderr(), opts.color, opts.verbose)
		rep.Diagnostics(&res.Diagnostics)

		outdated, err := outdatedFiles(res, opts.cfg.Output)
		if err != nil {
			return err
		}

		for _, p := range outdated {
			rep.Outdated(p)
		}

		if res.Diagnostics.HasErrors() || len(outdated) > 0 {
			return errReported
		}

		return nil
	},
}

// outdatedFiles lists generated files that are missing, differ from what
// generation would write, or are no longer produced. A generated file the
// current build context excludes is never stale.
func outdatedFiles(res *gen.Result, prefix string) ([]string, error) {
	var outdated []string

	for _, p := range res.Packages {
		if p.Diagnostics.HasErrors() {
			continue
		}

		want := make(map[string][]byte, len(p.Files))
		for _, f := range p.Files {
			want[f.Filename] = f.Content
		}

		built := make(map[string]bool, len(p.Built))
		for _, name := range p.Built {
			built[name] = true
		}

		entries, err := os.ReadDir(p.Dir)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p.Dir, err)
		}

		onDisk := make(map[string]bool)
		for _, e := range entries {
			onDisk[e.Name()] = true

			content, ok := want[e.Name()]
			if !ok {
				if built[e.Name()] && gen.IsGenerated(e.Name(), prefix) {
					outdated = append(outdated, filepath.Join(p.Dir, e.Name()))
				}

				continue
			}

			got, err := os.ReadFile(filepath.Join(p.Dir, e.Name()))
			if err != nil {
				return nil, err
			}

			if !bytes.Equal(got, content) {
				outdated = append(outdated, filepath.Join(p.Dir, e.Name()))
			}
		}

		for _, f := range p.Files {
			if !onDisk[f.Filename] {
				outdated = append(outdated, filepath.Join(p.Dir, f.Filename))
			}
		}
	}

	return outdated, nil
}
