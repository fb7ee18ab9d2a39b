package timesheet

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/peteywee/fresh-schedules/internal/shared/apperror"
)

//go:generate mockgen -source=timesheet_repo.go -destination=mock/timesheet_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// FindOpen returns up to limit records with a clock-in but no clock-out
	// and no auto clock-out, oldest clock-in first. organizationID scopes
	// the scan when non-empty. The predicate is what makes repeated runs
	// idempotent: a committed closure drops out of the next result set.
	FindOpen(ctx context.Context, organizationID string, limit int) ([]Timesheet, error)
	// Close flips the record to its closed form. Last-writer-wins with a
	// concurrent manual clock-out is acceptable: either way the record
	// leaves the open set.
	Close(ctx context.Context, ts *Timesheet) error
}

type repository struct {
	gdb *gorm.DB
	db  *sql.DB
	tx  *sql.Tx
}

func NewRepository(gdb *gorm.DB, db *sql.DB) Repository {
	return &repository{gdb: gdb, db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{gdb: r.gdb, db: r.db, tx: tx}
}

func (r *repository) FindOpen(ctx context.Context, organizationID string, limit int) ([]Timesheet, error) {
	q := r.gdb.WithContext(ctx).
		Where("clock_in_at IS NOT NULL").
		Where("clock_out_at IS NULL").
		Where("auto_clock_out_at IS NULL").
		Order("clock_in_at ASC").
		Limit(limit)
	if organizationID != "" {
		q = q.Where("organization_id = ?", organizationID)
	}

	var rows []Timesheet
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStoreUnavailable, "open timesheet query failed", 503)
	}
	return rows, nil
}

func (r *repository) Close(ctx context.Context, ts *Timesheet) error {
	query := `
UPDATE timesheets
SET
	clock_out_at = $2,
	auto_clock_out_at = $3,
	source = $4,
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(
		ctx, query,
		ts.ID, ts.ClockOutAt, ts.AutoClockOutAt, ts.Source,
	)
	return err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
