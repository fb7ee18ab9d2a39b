package ledger

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/peteywee/fresh-schedules/internal/shared/apperror"
)

//go:generate mockgen -source=ledger_repo.go -destination=mock/ledger_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// Append inserts an entry. There is deliberately no update or delete.
	Append(ctx context.Context, e *Entry) error
	// List pages through entries in recorded order, for audit verification.
	List(ctx context.Context, organizationID string, limit, offset int) ([]Entry, error)
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

func (r *repository) Append(ctx context.Context, e *Entry) error {
	query := `
INSERT INTO attendance_ledger (
	id, shift_id, organization_id, worker_id,
	clock_in_at, clock_out_at, auto_clock_out, recorded_at, hash
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	_, err := r.execer().ExecContext(
		ctx, query,
		e.ID, e.ShiftID, e.OrganizationID, e.WorkerID,
		e.ClockInAt, e.ClockOutAt, e.AutoClockOut, e.RecordedAt, e.Hash,
	)
	return err
}

func (r *repository) List(ctx context.Context, organizationID string, limit, offset int) ([]Entry, error) {
	q := r.gdb.WithContext(ctx).
		Order("recorded_at ASC, id ASC").
		Limit(limit).
		Offset(offset)
	if organizationID != "" {
		q = q.Where("organization_id = ?", organizationID)
	}

	var rows []Entry
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStoreUnavailable, "ledger scan failed", 503)
	}
	return rows, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
