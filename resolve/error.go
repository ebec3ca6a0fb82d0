package resolve

import (
	"errors"

	"github.com/ardnew/cropenv/loader"
	"github.com/ardnew/cropenv/pkg"
	"github.com/ardnew/cropenv/value"
)

// Predefined errors (sentinel values).
var (
	ErrMalformedMacroArguments = pkg.NewError("malformed macro arguments")
	ErrUnresolvedReference     = pkg.NewError("unresolved reference")
	ErrCycleDetected           = pkg.NewError("cycle detected")
	ErrMaxDepthExceeded        = pkg.NewError("maximum macro depth exceeded")
	ErrUnknownTextureClass     = pkg.NewError("unknown KA5 texture class")
	ErrOutOfRange              = pkg.NewError("argument out of range")
	ErrExprEvaluate            = pkg.NewError("expression evaluation failed")
	ErrDatabase                = pkg.NewError("soil database query failed")
	ErrCanceled                = pkg.NewError("resolution canceled")

	// ErrFileNotFound and ErrUnparsableJSON are reported by the
	// include-from-file macro.
	ErrFileNotFound   = loader.ErrFileNotFound
	ErrUnparsableJSON = loader.ErrUnparsableJSON
)

// invocationError carries the compact JSON of an invocation as its message.
type invocationError struct{ inv string }

func (e invocationError) Error() string { return e.inv }

func errorf(inv value.Value) error { return invocationError{inv: inv.String()} }

func isCycle(err error) bool { return errors.Is(err, ErrCycleDetected) }
