package shift

import (
	"errors"

	"gorm.io/gorm"

	"github.com/peteywee/fresh-schedules/internal/shared/apperror"
)

// ErrShiftNotFound means an attendance record references a shift that no
// longer exists. The record is skipped, not failed, so a later run can pick
// it up if the shift reappears.
var ErrShiftNotFound = apperror.New(
	apperror.CodeReferenceNotFound,
	"Referenced shift not found",
	404,
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrShiftNotFound
	}
	return apperror.Wrap(err, apperror.CodeStoreUnavailable, "shift store query failed", 503)
}
