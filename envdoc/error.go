package envdoc

import (
	"errors"

	"github.com/ardnew/cropenv/pkg"
)

// Predefined errors (sentinel values).
var (
	ErrMissingRequiredKey = pkg.NewError("missing required key")
	ErrInvalidOutputID    = pkg.NewError("invalid output id")
	ErrResolveFailed      = pkg.NewError("failed to resolve documents")
)

// Failures returns the individual resolution errors carried by an error
// returned from [Compose], in crop, site, sim order. Any other error is
// returned as the only element.
func Failures(err error) []error {
	if err == nil {
		return nil
	}

	if !errors.Is(err, ErrResolveFailed) {
		return []error{err}
	}

	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}

	return []error{err}
}
