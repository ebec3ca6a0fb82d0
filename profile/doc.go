// Package profile provides optional runtime profiling for cropenv.
//
// Profiling uses [github.com/pkg/profile] and is only compiled in with the
// "pprof" build tag:
//
//	go build -tags pprof .
//	cropenv --pprof-mode cpu env --crop crop.json --site site.json --sim sim.json
//
// Without the tag, [Modes] is empty and [Profiler.Start] is a no-op.
//
// Profiles are written under the directory given by [Profiler.Path] and can
// be inspected with "go tool pprof".
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
