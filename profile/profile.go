package profile

import (
	"slices"
)

// Profiler describes one profiling session.
type Profiler struct {
	// Mode is one of [Modes]. An empty mode disables profiling.
	Mode string
	// Path is the output directory. Empty uses the pkg/profile default.
	Path string
	// Quiet suppresses the profiler's own log lines.
	Quiet bool
}

// Stopper ends a profiling session.
type Stopper interface{ Stop() }

// Start begins profiling and returns the session's [Stopper].
//
// If the binary was built without the pprof tag, or p.Mode is empty or not
// one of [Modes], the returned Stopper does nothing.
func (p Profiler) Start() Stopper {
	if p.Mode == "" || !slices.Contains(Modes(), p.Mode) {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
