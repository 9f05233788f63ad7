package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"mock-generator/internal/config"
)

// options are the resolved settings of one invocation.
type options struct {
	dir     string
	cfg     *config.Config
	color   bool
	verbose bool
	log     *zap.Logger
}

// loadOptions reads the configuration file and applies flag overrides.
func loadOptions(cmd *cobra.Command, args []string) (*options, error) {
	flags := cmd.Flags()

	dir, _ := flags.GetString("dir")
	path, _ := flags.GetString("config")
	verbose, _ := flags.GetBool("verbose")
	colorMode, _ := flags.GetString("color")

	if path == "" {
		path = config.FindFile(dir)
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if len(args) > 0 {
		cfg.Patterns = args
	}

	if flags.Changed("tags") {
		cfg.Tags, _ = flags.GetStringSlice("tags")
	}

	if flags.Changed("jobs") {
		cfg.Jobs, _ = flags.GetInt("jobs")
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	useColor, err := resolveColor(colorMode, os.Stderr)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	if path != "" {
		log.Debug("loaded config", zap.String("path", path))
	}

	return &options{
		dir:     dir,
		cfg:     cfg,
		color:   useColor,
		verbose: verbose,
		log:     log,
	}, nil
}

// newLogger logs everything in development format when verbose, and only
// warnings otherwise.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"

	return cfg.Build()
}

// resolveColor interprets --color for output written to f.
func resolveColor(mode string, f *os.File) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		return os.Getenv("NO_COLOR") == "" && isTerminal(f), nil
	default:
		return false, fmt.Errorf("invalid --color %q: expected auto, always or never", mode)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
