package reconcile

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/peteywee/fresh-schedules/internal/alert"
	"github.com/peteywee/fresh-schedules/internal/ledger"
	"github.com/peteywee/fresh-schedules/internal/messaging/kafka"
	"github.com/peteywee/fresh-schedules/internal/timesheet"
)

// Each closure costs four store operations: timesheet update, ledger insert,
// alert insert, outbox insert.
const opsPerClosure = 4

// Closure is one staged auto clock-out. All four writes land in the same
// atomic group, so an alert never exists without its ledger entry.
type Closure struct {
	Timesheet *timesheet.Timesheet
	Ledger    *ledger.Entry
	Alert     *alert.Alert
	Event     kafka.OutboxEvent
}

// Committer partitions staged closures into groups bounded by maxOps store
// operations and commits each group in its own transaction, sequentially. A
// crash between groups leaves earlier groups durable; their records drop out
// of the next run's query while later candidates stay open and get retried.
type Committer struct {
	db         *sql.DB
	timesheets timesheet.Repository
	ledgers    ledger.Repository
	alerts     alert.Repository
	outbox     kafka.OutboxRepository
	maxOps     int
	logger     *zap.Logger
}

func NewCommitter(
	db *sql.DB,
	timesheets timesheet.Repository,
	ledgers ledger.Repository,
	alerts alert.Repository,
	outbox kafka.OutboxRepository,
	maxOps int,
) *Committer {
	if maxOps < opsPerClosure {
		maxOps = opsPerClosure
	}
	return &Committer{
		db:         db,
		timesheets: timesheets,
		ledgers:    ledgers,
		alerts:     alerts,
		outbox:     outbox,
		maxOps:     maxOps,
		logger:     zap.L().Named("reconcile.committer"),
	}
}

// Commit returns how many closures were durably committed. On error the
// count covers the groups that made it; the caller treats the remainder as
// still open.
func (c *Committer) Commit(ctx context.Context, staged []Closure) (int, error) {
	if len(staged) == 0 {
		return 0, nil
	}

	groupSize := c.maxOps / opsPerClosure
	committed := 0

	for start := 0; start < len(staged); start += groupSize {
		group := staged[start:min(start+groupSize, len(staged))]
		if err := c.commitGroup(ctx, group); err != nil {
			return committed, mapStoreError(err)
		}
		committed += len(group)
		c.logger.Info("batch group committed",
			zap.Int("group_size", len(group)),
			zap.Int("committed_total", committed),
		)
	}

	return committed, nil
}

func (c *Committer) commitGroup(ctx context.Context, group []Closure) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	timesheets := c.timesheets.WithTx(tx)
	ledgers := c.ledgers.WithTx(tx)
	alerts := c.alerts.WithTx(tx)
	outbox := c.outbox.WithTx(tx)

	for i := range group {
		cl := &group[i]
		if err := timesheets.Close(ctx, cl.Timesheet); err != nil {
			return err
		}
		if err := ledgers.Append(ctx, cl.Ledger); err != nil {
			return err
		}
		if err := alerts.Create(ctx, cl.Alert); err != nil {
			return err
		}
		if err := outbox.Create(ctx, cl.Event); err != nil {
			return err
		}
	}

	return tx.Commit()
}
