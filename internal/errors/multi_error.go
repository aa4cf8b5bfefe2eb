package errors

import (
	"go.uber.org/multierr"
)

// MultiError accumulates errors. The zero value holds no errors.
//
//	var errs errors.MultiError
//	errs = errs.Append(a.Close())
//	errs = errs.Append(b.Close())
//	return errs.Wrap("close")
type MultiError struct {
	err error
}

// Append returns a MultiError that also holds err. A nil err is ignored.
func (e MultiError) Append(err error) MultiError {
	return MultiError{err: multierr.Append(e.err, err)}
}

// Errors returns the accumulated errors in the order they were appended.
func (e MultiError) Errors() []error {
	return multierr.Errors(e.err)
}

// Join returns the accumulated errors as one error, or nil if there are none.
// The messages are joined with "; ".
func (e MultiError) Join() error {
	return e.err
}

// Wrap prefixes the joined error with msg. Returns nil if there are no errors.
func (e MultiError) Wrap(msg string) error {
	return Wrap(e.err, msg)
}
