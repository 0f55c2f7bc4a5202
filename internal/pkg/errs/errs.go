package errs

import (
	cr "github.com/cockroachdb/errors"
)

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return cr.Wrapf(err, format, args...)
}

func New(msg string) error {
	return cr.New(msg)
}

// Mark attaches markErr as an identity so Is(result, markErr) holds
// while the original cause and stack are preserved for logging.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Mark(err, markErr)
}

func Is(err, target error) bool {
	return cr.Is(err, target)
}

// IsAny reports whether err matches any of the given sentinels.
func IsAny(err error, targets ...error) bool {
	return cr.IsAny(err, targets...)
}

func As(err error, target any) bool {
	return cr.As(err, target)
}
