package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// version is set with -ldflags "-X main.version=v1.2.3".
var version = ""

func buildVersion() string {
	if version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "(devel)"
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the mock-generator version",
	RunE: func(cmd *cobra.Command, args []string) error {
		name := color.New(color.FgGreen, color.Bold)

		colorMode, _ := cmd.Flags().GetString("color")

		useColor, err := resolveColor(colorMode, os.Stdout)
		if err != nil {
			return err
		}

		if !useColor {
			name.DisableColor()
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s %s/%s)\n",
			name.Sprint("mock-generator"), buildVersion(), runtime.Version(), runtime.GOOS, runtime.GOARCH)

		return nil
	},
}
