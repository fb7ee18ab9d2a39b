package shift_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/peteywee/fresh-schedules/internal/shift"
)

type fakeShiftRepository struct {
	findByIDFn    func(ctx context.Context, organizationID, id string) (*shift.Shift, error)
	findByIDCalls int
}

func (f *fakeShiftRepository) FindByID(ctx context.Context, organizationID, id string) (*shift.Shift, error) {
	f.findByIDCalls++
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, organizationID, id)
	}
	return nil, shift.ErrShiftNotFound
}

func publishedShift() *shift.Shift {
	return &shift.Shift{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Day:            time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		StartTime:      "09:00",
		EndTime:        "17:00",
		Status:         shift.StatusPublished,
	}
}

func TestShiftService_GetByID_NoCacheFallsThrough(t *testing.T) {
	sh := publishedShift()
	repo := &fakeShiftRepository{
		findByIDFn: func(ctx context.Context, organizationID, id string) (*shift.Shift, error) {
			return sh, nil
		},
	}

	svc := shift.NewService(repo, nil)

	got, err := svc.GetByID(context.Background(), sh.OrganizationID.String(), sh.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, sh, got)
	assert.Equal(t, 1, repo.findByIDCalls)
}

func TestShiftService_GetByID_CacheMissFillsCache(t *testing.T) {
	sh := publishedShift()
	repo := &fakeShiftRepository{
		findByIDFn: func(ctx context.Context, organizationID, id string) (*shift.Shift, error) {
			return sh, nil
		},
	}

	rdb, mock := redismock.NewClientMock()
	key := shift.GetShiftDetailKey(sh.OrganizationID.String(), sh.ID.String())
	payload, err := json.Marshal(sh)
	assert.NoError(t, err)

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, payload, 10*time.Minute).SetVal("OK")

	svc := shift.NewService(repo, rdb)

	got, err := svc.GetByID(context.Background(), sh.OrganizationID.String(), sh.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, sh.ID, got.ID)
	assert.Equal(t, 1, repo.findByIDCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftService_GetByID_CacheHitSkipsRepository(t *testing.T) {
	sh := publishedShift()
	repo := &fakeShiftRepository{}

	rdb, mock := redismock.NewClientMock()
	key := shift.GetShiftDetailKey(sh.OrganizationID.String(), sh.ID.String())
	payload, err := json.Marshal(sh)
	assert.NoError(t, err)

	mock.ExpectGet(key).SetVal(string(payload))

	svc := shift.NewService(repo, rdb)

	got, err := svc.GetByID(context.Background(), sh.OrganizationID.String(), sh.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, sh.ID, got.ID)
	assert.Equal(t, sh.EndTime, got.EndTime)
	assert.Zero(t, repo.findByIDCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftService_GetByID_NotFoundNotCached(t *testing.T) {
	orgID := uuid.NewString()
	id := uuid.NewString()
	repo := &fakeShiftRepository{}

	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(shift.GetShiftDetailKey(orgID, id)).RedisNil()

	svc := shift.NewService(repo, rdb)

	_, err := svc.GetByID(context.Background(), orgID, id)
	assert.ErrorIs(t, err, shift.ErrShiftNotFound)
	assert.Equal(t, 1, repo.findByIDCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
