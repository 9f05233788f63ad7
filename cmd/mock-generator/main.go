// Package main provides the CLI entrypoint for mock-generator.
//
// mock-generator reads Go packages, finds the types annotated with
// //mock:derive or //derive:if(<build expression>) mock, and writes a
// deterministic mock constructor for each of them:
//   - Mock() methods for structs and defined types
//   - Mock<Name>() functions for sealed interfaces, built from the variant
//     marked //mock:variant
//   - one zz_generated.mock.<slug>.go file per build constraint
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errReported is returned once diagnostics have been printed.
var errReported = errors.New("generation failed")

var rootCmd = &cobra.Command{
	Use:   "mock-generator",
	Short: "Deterministic mock constructors for Go types",
	Long: `mock-generator derives Mock() methods and Mock<Union>() constructors
for the types of a Go package that ask for them with directive comments.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = buildVersion()

	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringP("dir", "C", ".", "directory package patterns are resolved in")
	rootCmd.PersistentFlags().String("config", "", "configuration file (default: .mock-generator.{yaml,yml,toml} in --dir)")
	rootCmd.PersistentFlags().StringSlice("tags", nil, "build tags applied while loading packages")
	rootCmd.PersistentFlags().Int("jobs", 0, "packages generated concurrently (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|always|never)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log progress and print info diagnostics")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "mock-generator:", err)
		}

		os.Exit(1)
	}
}
