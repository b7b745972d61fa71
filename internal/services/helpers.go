package services

import (
	"errors"

	poll_errors "live-poll/pkg/errors"
)

func isNotFound(err error) bool {
	return errors.Is(err, poll_errors.ErrNotFound)
}
