package shift

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	ShiftDetailPrefix = "shifts:detail:"

	cacheTTL = 10 * time.Minute
)

func GetShiftDetailKey(organizationID, id string) string {
	return ShiftDetailPrefix + organizationID + ":" + id
}

//go:generate mockgen -source=shift_service.go -destination=mock/shift_service_mock.go -package=mock
type Service interface {
	GetByID(ctx context.Context, organizationID, id string) (*Shift, error)
}

// service is a read-through cache over the shift repository. The worker
// resolves one shift per open attendance record, so hot shifts are served
// from Redis and concurrent lookups collapse through singleflight. A nil
// Redis client degrades to plain repository reads.
type service struct {
	repo Repository
	rdb  *redis.Client
	sf   *singleflight.Group
}

func NewService(repo Repository, rdb *redis.Client) Service {
	return &service{repo: repo, rdb: rdb, sf: &singleflight.Group{}}
}

func (s *service) GetByID(ctx context.Context, organizationID, id string) (*Shift, error) {
	if s.rdb == nil {
		return s.repo.FindByID(ctx, organizationID, id)
	}

	key := GetShiftDetailKey(organizationID, id)

	if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
		var sh Shift
		if err := json.Unmarshal([]byte(cached), &sh); err == nil {
			return &sh, nil
		}
		// Corrupt cache entry: fall through to the repository.
		zap.L().Named("shift.service").Warn("dropping unreadable cache entry", zap.String("key", key))
		s.rdb.Del(ctx, key)
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		sh, err := s.repo.FindByID(ctx, organizationID, id)
		if err != nil {
			return nil, err
		}
		if payload, err := json.Marshal(sh); err == nil {
			s.rdb.Set(ctx, key, payload, cacheTTL)
		}
		return sh, nil
	})
	if err != nil {
		// Not-found results are never cached.
		return nil, err
	}
	return v.(*Shift), nil
}
