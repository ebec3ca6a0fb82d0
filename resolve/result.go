package resolve

import (
	"errors"

	"github.com/ardnew/cropenv/value"
)

// Result is the outcome of resolving a node: the resolved value and every
// error encountered, in depth-first discovery order. A Result is successful
// exactly when Errors is empty; a failed Result still carries the best
// available value.
type Result struct {
	Value  value.Value
	Errors []error
}

// Success reports whether no errors were encountered.
func (r Result) Success() bool { return len(r.Errors) == 0 }

// Messages returns the error strings in order.
func (r Result) Messages() []string {
	msgs := make([]string, len(r.Errors))
	for i, err := range r.Errors {
		msgs[i] = err.Error()
	}

	return msgs
}

// Err joins the errors into one, or returns nil on success.
func (r Result) Err() error { return errors.Join(r.Errors...) }

// Succeed returns a successful Result holding v.
func Succeed(v value.Value) Result { return Result{Value: v} }

// Failed returns a Result holding the placeholder v and errs.
func Failed(v value.Value, errs ...error) Result {
	return Result{Value: v, Errors: union(nil, errs...)}
}

// prepend returns r with errs placed before its own errors.
func (r Result) prepend(errs []error) Result {
	if len(errs) == 0 {
		return r
	}

	r.Errors = union(errs, r.Errors...)

	return r
}

// union appends errs to a copy of base, skipping nils. The order of both
// sequences is kept.
func union(base []error, errs ...error) []error {
	out := make([]error, 0, len(base)+len(errs))
	out = append(out, base...)

	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}

	if len(out) == 0 {
		return nil
	}

	return out
}
