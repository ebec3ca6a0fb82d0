// Package cli contains the command line interface for cropenv.
//
// # Usage
//
//	cropenv [flags] resolve [source]
//	cropenv [flags] env --crop FILE --site FILE --sim FILE
//	cropenv [flags] macros [pattern]
//	cropenv [flags] init
//
// resolve is the default command, so "cropenv site.json" resolves site.json.
//
// # Configuration
//
// Flags may also be set in $XDG_CONFIG_HOME/cropenv/config, a JSON document
// whose top-level members are named after flags. The document is resolved
// before use, so it may include other files or reference its own members.
// "cropenv init" writes the current flag values to that file. A plain
// config.json beside it is read as well, without resolution.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (rfc3339, kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text or indent JSON log records
//
// Logs are written to standard error; documents go to standard output.
//
// # Resolver Options
//
//   - --[no-]cache-refs: Reuse resolved references within a document
//   - --strict-texture-classes: Fail on unknown KA5 texture classes
//   - --max-depth: Bound nested macro expansion
//   - --[no-]loader-cache: Reuse documents decoded from identical content
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
// The binary then accepts:
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/cropenv/pprof)
package cli
