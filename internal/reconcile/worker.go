package reconcile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peteywee/fresh-schedules/internal/alert"
	"github.com/peteywee/fresh-schedules/internal/events"
	"github.com/peteywee/fresh-schedules/internal/ledger"
	"github.com/peteywee/fresh-schedules/internal/messaging/kafka"
	"github.com/peteywee/fresh-schedules/internal/secrets"
	"github.com/peteywee/fresh-schedules/internal/shared/apperror"
	"github.com/peteywee/fresh-schedules/internal/shift"
	"github.com/peteywee/fresh-schedules/internal/timesheet"
)

// Clock supplies the current instant. Injected so tests control time.
type Clock func() time.Time

type Config struct {
	GraceMinutes int
	PageSize     int
	// OrganizationID scopes the run when non-empty.
	OrganizationID string
}

// BatchCommitter applies staged closures in bounded atomic groups and
// reports how many closures actually committed.
type BatchCommitter interface {
	Commit(ctx context.Context, staged []Closure) (int, error)
}

// Worker reconciles open attendance records against their shifts. Each
// record moves Open -> Skipped (shift missing, not yet due, bad inputs) or
// Open -> EligibleForClose, and counts as Closed only once its batch group
// commits. The worker itself holds no state between runs: the open-record
// predicate is the idempotency mechanism.
type Worker struct {
	timesheets timesheet.Repository
	shifts     shift.Service
	committer  BatchCommitter
	salt       secrets.Source
	cfg        Config
	now        Clock
	logger     *zap.Logger
}

func NewWorker(
	timesheets timesheet.Repository,
	shifts shift.Service,
	committer BatchCommitter,
	salt secrets.Source,
	cfg Config,
	now Clock,
) *Worker {
	if now == nil {
		now = time.Now
	}
	return &Worker{
		timesheets: timesheets,
		shifts:     shifts,
		committer:  committer,
		salt:       salt,
		cfg:        cfg,
		now:        now,
		logger:     zap.L().Named("reconcile.worker"),
	}
}

type RunReport struct {
	Scanned int `json:"scanned"`
	Skipped int `json:"skipped"`
	Closed  int `json:"closed"`
}

// Run executes one reconciliation pass. Configuration problems abort before
// any read or write; a store failure aborts the remainder of the run but
// leaves already-committed groups standing.
func (w *Worker) Run(ctx context.Context) (RunReport, error) {
	var report RunReport

	// Fail closed: a ledger entry written without a valid salt would fake
	// auditability, so the salt is resolved before anything else happens.
	salt, err := w.salt.Resolve(ctx)
	if err != nil {
		w.logger.Error("run aborted, salt unavailable", zap.Error(err))
		return report, err
	}
	if w.cfg.GraceMinutes < 0 {
		return report, apperror.New(apperror.CodeConfiguration,
			"grace minutes must not be negative", 500)
	}

	rows, err := w.timesheets.FindOpen(ctx, w.cfg.OrganizationID, w.cfg.PageSize)
	if err != nil {
		return report, err
	}
	report.Scanned = len(rows)
	if len(rows) == 0 {
		w.logger.Info("no open timesheets")
		return report, nil
	}

	now := w.now().UTC()
	staged := make([]Closure, 0, len(rows))

	for i := range rows {
		ts := rows[i]
		log := w.logger.With(
			zap.String("timesheet_id", ts.ID.String()),
			zap.String("shift_id", ts.ShiftID.String()),
			zap.String("worker_id", ts.WorkerID.String()),
		)

		sh, err := w.shifts.GetByID(ctx, ts.OrganizationID.String(), ts.ShiftID.String())
		if err != nil {
			if apperror.HasCode(err, apperror.CodeReferenceNotFound) {
				log.Warn("shift not found, leaving record open")
				report.Skipped++
				continue
			}
			return report, err
		}

		end, err := sh.EndInstant()
		if err != nil {
			log.Warn("cannot evaluate shift end, leaving record open", zap.Error(err))
			report.Skipped++
			continue
		}

		cutoff := shift.CutoffInstant(end, w.cfg.GraceMinutes)
		if now.Before(cutoff) {
			report.Skipped++
			continue
		}

		closure, err := w.stageClosure(salt, &ts, end, cutoff, now)
		if err != nil {
			if apperror.HasCode(err, apperror.CodeConfiguration) {
				return report, err
			}
			// A data problem isolated to this record. The rest of the
			// run proceeds.
			log.Warn("excluding record from batch", zap.Error(err))
			report.Skipped++
			continue
		}
		staged = append(staged, *closure)
	}

	closed, err := w.committer.Commit(ctx, staged)
	report.Closed = closed

	w.logger.Info("reconciliation run finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("skipped", report.Skipped),
		zap.Int("staged", len(staged)),
		zap.Int("closed", report.Closed),
	)
	return report, err
}

// stageClosure builds the mutation triple plus outbox row for one eligible
// record. ClockOutAt is the scheduled shift end, never wall-clock now, so an
// auto-closed record shows no invented overtime.
func (w *Worker) stageClosure(
	salt string,
	ts *timesheet.Timesheet,
	shiftEnd, cutoff, now time.Time,
) (*Closure, error) {
	closed := *ts
	closed.ClockOutAt = &shiftEnd
	closed.AutoClockOutAt = &now
	closed.Source = timesheet.SourceAuto

	hash, err := ledger.ComputeHash(salt, ts.ShiftID.String(), ts.WorkerID.String(), ts.ClockInAt, shiftEnd)
	if err != nil {
		return nil, err
	}

	entry := &ledger.Entry{
		ID:             uuid.New(),
		ShiftID:        ts.ShiftID,
		OrganizationID: ts.OrganizationID,
		WorkerID:       ts.WorkerID,
		ClockInAt:      ts.ClockInAt,
		ClockOutAt:     shiftEnd,
		AutoClockOut:   true,
		RecordedAt:     now,
		Hash:           hash,
	}

	payload, err := json.Marshal(events.TimesheetAutoClosed{
		EventType:      "timesheet.auto_closed",
		TimesheetID:    ts.ID.String(),
		OrganizationID: ts.OrganizationID.String(),
		WorkerID:       ts.WorkerID.String(),
		ShiftID:        ts.ShiftID.String(),
		ClockOutAt:     shiftEnd,
		OccurredAt:     now,
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "marshal outbox payload failed", 500)
	}

	return &Closure{
		Timesheet: &closed,
		Ledger:    entry,
		Alert:     alert.BuildLateClockout(&closed, cutoff, w.cfg.GraceMinutes, now),
		Event: kafka.OutboxEvent{
			ID:            uuid.NewString(),
			AggregateType: "timesheet",
			AggregateID:   ts.ID.String(),
			EventType:     "timesheet.auto_closed",
			Topic:         events.TimesheetAutoClosedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		},
	}, nil
}
