// Package loader reads configuration documents into [value.Value]s.
//
// JSON is the native format; files named *.yaml or *.yml are decoded as
// YAML. A [Loader] optionally caches decoded documents by content hash so
// that a file included from several places is decoded once.
package loader
