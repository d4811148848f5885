package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/groupmatch/internal/utils/pagination"
)

// RetryRead runs an idempotent read and repeats it once if the first
// attempt failed for a reason a second attempt could fix.
//
// Never wrap writes in this.
func RetryRead(ctx context.Context, read func(ctx context.Context) error) error {
	err := read(ctx)
	if err == nil || !isTransient(err) || ctx.Err() != nil {
		return err
	}
	return read(ctx)
}

func isTransient(err error) bool {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, pagination.ErrInvalidToken),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
