// Package config loads the generator configuration file.
//
// The file is YAML or TOML, chosen by extension, and every key is optional:
//
//	version: "1"
//	patterns: ./...
//	tags: [mockdata]
//	output: zz_generated.mock
//	runtime: mock-generator/mock
//	jobs: 4
//
// Command-line flags override the file.
package config
