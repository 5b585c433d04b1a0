// Package cmd provides the eval/fmt/init subcommands of the Qi CLI.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// to the qi.yaml configuration file.
	ConfigIdentifier = "config"
)
