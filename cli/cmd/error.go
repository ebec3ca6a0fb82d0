package cmd

import "github.com/ardnew/cropenv/pkg"

// Predefined errors (sentinel values).
var (
	ErrEncode        = pkg.NewError("encode output")
	ErrUnknownFormat = pkg.NewError("unknown output format")
	ErrResolve       = pkg.NewError("document has unresolved macros")
	ErrWriteConfig   = pkg.NewError("write configuration file")
	ErrFileExists    = pkg.NewError("file exists (use --force to overwrite)")
	ErrWatch         = pkg.NewError("watch input files")
)
