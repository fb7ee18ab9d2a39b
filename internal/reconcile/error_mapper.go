package reconcile

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/peteywee/fresh-schedules/internal/shared/apperror"
)

// mapStoreError classifies a commit failure. Any store-side failure here is
// retryable at the next tick, so everything maps to STORE_UNAVAILABLE; the
// SQLSTATE is kept in the message when the driver exposes one.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return apperror.Wrap(err, apperror.CodeStoreUnavailable,
			fmt.Sprintf("batch commit failed (sqlstate %s)", pgErr.Code), 503)
	}

	return apperror.Wrap(err, apperror.CodeStoreUnavailable, "batch commit failed", 503)
}
