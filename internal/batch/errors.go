package batch

import "errors"

// IsReported reports whether err has already been printed to the user by
// the runner, so callers can exit without printing it again.
func IsReported(err error) bool {
	return errors.Is(err, ErrInterpreterNotFound)
}
