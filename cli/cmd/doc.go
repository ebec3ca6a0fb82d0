// Package cmd implements the cropenv subcommands: resolve, env, macros and
// init.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// to the configuration file written by [Init].
	ConfigIdentifier = "config"
)
