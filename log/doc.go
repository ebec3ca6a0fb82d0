// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Loggers are created with [Make] and configured with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//
//	logger.Debug("document loaded", slog.String("path", path))
//
// Attributes added with [Logger.With] are included in every subsequent
// message. Each level has a context-aware variant; the context-unaware ones
// use [DefaultContextProvider].
//
// A zero-value [Logger] discards everything, so packages can accept an
// optional logger without nil checks.
//
// The package-level functions ([Info], [Debug], ...) write through a default
// logger on stderr that is reconfigured with [Config].
package log
