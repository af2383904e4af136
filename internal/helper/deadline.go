package helper

import (
	"context"

	errwrap "github.com/pkg/errors"
)

// CheckDeadline returns an error when ctx is already cancelled or past its deadline.
func CheckDeadline(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errwrap.Wrap(ctx.Err(), "context done")
	default:
		return nil
	}
}
