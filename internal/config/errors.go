package config

import "errors"

// Error kinds reported by Load.
var (
	ErrRead  = errors.New("error reading config file")
	ErrParse = errors.New("error parsing config file")
)

// Error is returned by Load. Kind is ErrRead or ErrParse.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func readError(err error) *Error {
	return &Error{Kind: ErrRead, Err: err}
}

func parseError(err error) *Error {
	return &Error{Kind: ErrParse, Err: err}
}
