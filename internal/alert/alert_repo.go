package alert

import (
	"context"
	"database/sql"
)

//go:generate mockgen -source=alert_repo.go -destination=mock/alert_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Alert) error
}

type repository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, a *Alert) error {
	query := `
INSERT INTO alerts (
	id, organization_id, type, severity, message,
	worker_id, shift_id, resolved, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	_, err := r.execer().ExecContext(
		ctx, query,
		a.ID, a.OrganizationID, a.Type, a.Severity, a.Message,
		a.WorkerID, a.ShiftID, a.Resolved, a.CreatedAt,
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
