package reconcile_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/peteywee/fresh-schedules/internal/ledger"
	"github.com/peteywee/fresh-schedules/internal/reconcile"
	"github.com/peteywee/fresh-schedules/internal/secrets"
	"github.com/peteywee/fresh-schedules/internal/shared/apperror"
	"github.com/peteywee/fresh-schedules/internal/shift"
	"github.com/peteywee/fresh-schedules/internal/timesheet"
)

const testSalt = "worker-test-salt"

type fakeTimesheetRepository struct {
	findOpenFn    func(ctx context.Context, organizationID string, limit int) ([]timesheet.Timesheet, error)
	findOpenCalls int
}

func (f *fakeTimesheetRepository) WithTx(tx *sql.Tx) timesheet.Repository { return f }

func (f *fakeTimesheetRepository) FindOpen(ctx context.Context, organizationID string, limit int) ([]timesheet.Timesheet, error) {
	f.findOpenCalls++
	if f.findOpenFn != nil {
		return f.findOpenFn(ctx, organizationID, limit)
	}
	return nil, nil
}

func (f *fakeTimesheetRepository) Close(ctx context.Context, ts *timesheet.Timesheet) error {
	return nil
}

type fakeShiftService struct {
	getByIDFn func(ctx context.Context, organizationID, id string) (*shift.Shift, error)
}

func (f *fakeShiftService) GetByID(ctx context.Context, organizationID, id string) (*shift.Shift, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, organizationID, id)
	}
	return nil, shift.ErrShiftNotFound
}

type fakeCommitter struct {
	commitFn func(ctx context.Context, staged []reconcile.Closure) (int, error)
	staged   [][]reconcile.Closure
}

func (f *fakeCommitter) Commit(ctx context.Context, staged []reconcile.Closure) (int, error) {
	f.staged = append(f.staged, staged)
	if f.commitFn != nil {
		return f.commitFn(ctx, staged)
	}
	return len(staged), nil
}

type workerDeps struct {
	repo      *fakeTimesheetRepository
	shifts    *fakeShiftService
	committer *fakeCommitter
	now       time.Time
}

func newWorker(t *testing.T, deps *workerDeps, salt secrets.Source) *reconcile.Worker {
	t.Helper()
	return reconcile.NewWorker(
		deps.repo,
		deps.shifts,
		deps.committer,
		salt,
		reconcile.Config{GraceMinutes: 25, PageSize: 100},
		func() time.Time { return deps.now },
	)
}

func openRecord(orgID uuid.UUID) timesheet.Timesheet {
	return timesheet.Timesheet{
		ID:             uuid.New(),
		OrganizationID: orgID,
		WorkerID:       uuid.New(),
		ShiftID:        uuid.New(),
		ClockInAt:      time.Date(2026, 3, 14, 8, 58, 0, 0, time.UTC),
		Source:         timesheet.SourceManual,
	}
}

func dayShift(orgID uuid.UUID, id uuid.UUID) *shift.Shift {
	return &shift.Shift{
		ID:             id,
		OrganizationID: orgID,
		Day:            time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		StartTime:      "09:00",
		EndTime:        "17:00",
		Status:         shift.StatusPublished,
	}
}

func TestWorker_Run_ClosesEligibleRecord(t *testing.T) {
	orgID := uuid.New()
	record := openRecord(orgID)
	sh := dayShift(orgID, record.ShiftID)

	deps := &workerDeps{
		repo: &fakeTimesheetRepository{
			findOpenFn: func(ctx context.Context, organizationID string, limit int) ([]timesheet.Timesheet, error) {
				return []timesheet.Timesheet{record}, nil
			},
		},
		shifts: &fakeShiftService{
			getByIDFn: func(ctx context.Context, organizationID, id string) (*shift.Shift, error) {
				assert.Equal(t, orgID.String(), organizationID)
				assert.Equal(t, record.ShiftID.String(), id)
				return sh, nil
			},
		},
		committer: &fakeCommitter{},
		// Shift ends 17:00Z, grace 25m, so 17:26Z is one minute late.
		now: time.Date(2026, 3, 14, 17, 26, 0, 0, time.UTC),
	}

	w := newWorker(t, deps, secrets.Static(testSalt))
	report, err := w.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, reconcile.RunReport{Scanned: 1, Skipped: 0, Closed: 1}, report)
	assert.Len(t, deps.committer.staged, 1)
	assert.Len(t, deps.committer.staged[0], 1)

	closure := deps.committer.staged[0][0]

	// Clock-out lands on the scheduled end, not on wall-clock now.
	shiftEnd := time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC)
	assert.Equal(t, shiftEnd, *closure.Timesheet.ClockOutAt)
	assert.Equal(t, deps.now, *closure.Timesheet.AutoClockOutAt)
	assert.Equal(t, timesheet.SourceAuto, closure.Timesheet.Source)

	assert.Equal(t, record.ShiftID, closure.Ledger.ShiftID)
	assert.Equal(t, record.WorkerID, closure.Ledger.WorkerID)
	assert.Equal(t, shiftEnd, closure.Ledger.ClockOutAt)
	assert.True(t, closure.Ledger.AutoClockOut)
	ok, err := ledger.Verify(*closure.Ledger, testSalt)
	assert.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, "late_clockout", closure.Alert.Type)
	assert.Equal(t, "low", closure.Alert.Severity)
	assert.Equal(t, record.WorkerID, closure.Alert.WorkerID)
	assert.False(t, closure.Alert.Resolved)

	assert.Equal(t, record.ID.String(), closure.Event.AggregateID)
	assert.Equal(t, "timesheet.auto_closed", closure.Event.EventType)
	assert.NotEmpty(t, closure.Event.Payload)
}

func TestWorker_Run_NotYetDue(t *testing.T) {
	orgID := uuid.New()
	record := openRecord(orgID)
	sh := dayShift(orgID, record.ShiftID)

	deps := &workerDeps{
		repo: &fakeTimesheetRepository{
			findOpenFn: func(ctx context.Context, organizationID string, limit int) ([]timesheet.Timesheet, error) {
				return []timesheet.Timesheet{record}, nil
			},
		},
		shifts: &fakeShiftService{
			getByIDFn: func(ctx context.Context, organizationID, id string) (*shift.Shift, error) {
				return sh, nil
			},
		},
		committer: &fakeCommitter{},
		// One minute before the 17:25Z cutoff.
		now: time.Date(2026, 3, 14, 17, 24, 0, 0, time.UTC),
	}

	w := newWorker(t, deps, secrets.Static(testSalt))
	report, err := w.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, reconcile.RunReport{Scanned: 1, Skipped: 1, Closed: 0}, report)
	assert.Empty(t, deps.committer.staged[0])
}

func TestWorker_Run_ShiftMissingSkipsRecord(t *testing.T) {
	orgID := uuid.New()
	missing := openRecord(orgID)
	eligible := openRecord(orgID)
	sh := dayShift(orgID, eligible.ShiftID)

	deps := &workerDeps{
		repo: &fakeTimesheetRepository{
			findOpenFn: func(ctx context.Context, organizationID string, limit int) ([]timesheet.Timesheet, error) {
				return []timesheet.Timesheet{missing, eligible}, nil
			},
		},
		shifts: &fakeShiftService{
			getByIDFn: func(ctx context.Context, organizationID, id string) (*shift.Shift, error) {
				if id == eligible.ShiftID.String() {
					return sh, nil
				}
				return nil, shift.ErrShiftNotFound
			},
		},
		committer: &fakeCommitter{},
		now:       time.Date(2026, 3, 14, 17, 26, 0, 0, time.UTC),
	}

	w := newWorker(t, deps, secrets.Static(testSalt))
	report, err := w.Run(context.Background())

	// A dangling shift reference is a per-record skip, not a run failure.
	assert.NoError(t, err)
	assert.Equal(t, reconcile.RunReport{Scanned: 2, Skipped: 1, Closed: 1}, report)
	assert.Len(t, deps.committer.staged[0], 1)
	assert.Equal(t, eligible.ID, deps.committer.staged[0][0].Timesheet.ID)
}

func TestWorker_Run_OvernightShiftSkipped(t *testing.T) {
	orgID := uuid.New()
	record := openRecord(orgID)
	sh := dayShift(orgID, record.ShiftID)
	sh.StartTime = "22:00"
	sh.EndTime = "06:00"

	deps := &workerDeps{
		repo: &fakeTimesheetRepository{
			findOpenFn: func(ctx context.Context, organizationID string, limit int) ([]timesheet.Timesheet, error) {
				return []timesheet.Timesheet{record}, nil
			},
		},
		shifts: &fakeShiftService{
			getByIDFn: func(ctx context.Context, organizationID, id string) (*shift.Shift, error) {
				return sh, nil
			},
		},
		committer: &fakeCommitter{},
		now:       time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}

	w := newWorker(t, deps, secrets.Static(testSalt))
	report, err := w.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, reconcile.RunReport{Scanned: 1, Skipped: 1, Closed: 0}, report)
}

func TestWorker_Run_MissingSaltFailsClosed(t *testing.T) {
	deps := &workerDeps{
		repo:      &fakeTimesheetRepository{},
		shifts:    &fakeShiftService{},
		committer: &fakeCommitter{},
		now:       time.Date(2026, 3, 14, 17, 26, 0, 0, time.UTC),
	}

	w := newWorker(t, deps, secrets.Static(""))
	report, err := w.Run(context.Background())

	assert.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeConfiguration))
	assert.Equal(t, reconcile.RunReport{}, report)
	// Fail closed: not even the query runs without a salt.
	assert.Zero(t, deps.repo.findOpenCalls)
	assert.Empty(t, deps.committer.staged)
}

func TestWorker_Run_QueryFailureAbortsRun(t *testing.T) {
	deps := &workerDeps{
		repo: &fakeTimesheetRepository{
			findOpenFn: func(ctx context.Context, organizationID string, limit int) ([]timesheet.Timesheet, error) {
				return nil, apperror.ErrStoreUnavailable
			},
		},
		shifts:    &fakeShiftService{},
		committer: &fakeCommitter{},
		now:       time.Date(2026, 3, 14, 17, 26, 0, 0, time.UTC),
	}

	w := newWorker(t, deps, secrets.Static(testSalt))
	_, err := w.Run(context.Background())

	assert.True(t, apperror.HasCode(err, apperror.CodeStoreUnavailable))
	assert.Empty(t, deps.committer.staged)
}

func TestWorker_Run_PartialCommitReported(t *testing.T) {
	orgID := uuid.New()
	first := openRecord(orgID)
	second := openRecord(orgID)

	shifts := map[string]*shift.Shift{
		first.ShiftID.String():  dayShift(orgID, first.ShiftID),
		second.ShiftID.String(): dayShift(orgID, second.ShiftID),
	}

	deps := &workerDeps{
		repo: &fakeTimesheetRepository{
			findOpenFn: func(ctx context.Context, organizationID string, limit int) ([]timesheet.Timesheet, error) {
				return []timesheet.Timesheet{first, second}, nil
			},
		},
		shifts: &fakeShiftService{
			getByIDFn: func(ctx context.Context, organizationID, id string) (*shift.Shift, error) {
				return shifts[id], nil
			},
		},
		committer: &fakeCommitter{
			commitFn: func(ctx context.Context, staged []reconcile.Closure) (int, error) {
				// First group landed, then the store went away.
				return 1, apperror.ErrStoreUnavailable
			},
		},
		now: time.Date(2026, 3, 14, 17, 26, 0, 0, time.UTC),
	}

	w := newWorker(t, deps, secrets.Static(testSalt))
	report, err := w.Run(context.Background())

	assert.True(t, apperror.HasCode(err, apperror.CodeStoreUnavailable))
	assert.Equal(t, 1, report.Closed)
	assert.Equal(t, 2, report.Scanned)
}

// TestWorker_Run_Idempotence drives two back-to-back runs against a shared
// in-memory store: the second run sees no open records and writes nothing.
func TestWorker_Run_Idempotence(t *testing.T) {
	orgID := uuid.New()
	record := openRecord(orgID)
	sh := dayShift(orgID, record.ShiftID)

	store := map[uuid.UUID]timesheet.Timesheet{record.ID: record}

	repo := &fakeTimesheetRepository{}
	repo.findOpenFn = func(ctx context.Context, organizationID string, limit int) ([]timesheet.Timesheet, error) {
		var open []timesheet.Timesheet
		for _, ts := range store {
			if ts.ClockOutAt == nil && ts.AutoClockOutAt == nil {
				open = append(open, ts)
			}
		}
		return open, nil
	}

	committer := &fakeCommitter{
		commitFn: func(ctx context.Context, staged []reconcile.Closure) (int, error) {
			for _, cl := range staged {
				store[cl.Timesheet.ID] = *cl.Timesheet
			}
			return len(staged), nil
		},
	}

	deps := &workerDeps{
		repo: repo,
		shifts: &fakeShiftService{
			getByIDFn: func(ctx context.Context, organizationID, id string) (*shift.Shift, error) {
				return sh, nil
			},
		},
		committer: committer,
		now:       time.Date(2026, 3, 14, 17, 26, 0, 0, time.UTC),
	}

	w := newWorker(t, deps, secrets.Static(testSalt))

	firstReport, err := w.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, reconcile.RunReport{Scanned: 1, Skipped: 0, Closed: 1}, firstReport)

	secondReport, err := w.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, reconcile.RunReport{Scanned: 0, Skipped: 0, Closed: 0}, secondReport)

	// The record closed once and stayed closed.
	closed := store[record.ID]
	assert.NotNil(t, closed.ClockOutAt)
	assert.Equal(t, time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC), *closed.ClockOutAt)
	assert.Equal(t, timesheet.SourceAuto, closed.Source)
}
