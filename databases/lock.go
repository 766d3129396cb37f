package databases

// go generate: mockery --name SchedulerLockDatabase

import (
	"context"
	"time"

	"github.com/linesmerrill/court-compliance-api/apperr"
)

// SchedulerLock is the record held while a background job runs
type SchedulerLock struct {
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SchedulerLockDatabase provides a best-effort distributed lock so only one
// instance runs a given background job at a time
type SchedulerLockDatabase interface {
	TryAcquireLock(ctx context.Context, namespace, name, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, namespace, name, owner string) error
}

type schedulerLockDatabase struct {
	records recordStore[SchedulerLock]
	now     func() time.Time
}

// NewSchedulerLockDatabase initializes a new instance of scheduler lock database with the provided store
func NewSchedulerLockDatabase(db KeyValueStore) SchedulerLockDatabase {
	return &schedulerLockDatabase{
		records: recordStore[SchedulerLock]{db: db, entity: lockEntity},
		now:     time.Now,
	}
}

func (s *schedulerLockDatabase) TryAcquireLock(ctx context.Context, namespace, name, owner string, ttl time.Duration) (bool, error) {
	now := s.now()
	next := &SchedulerLock{Name: name, Owner: owner, ExpiresAt: now.Add(ttl)}

	cur, raw, err := s.records.findOne(ctx, namespace, name)
	if apperr.Is(err, apperr.NotFound) {
		return s.records.swap(ctx, namespace, name, nil, next)
	}
	if err != nil {
		return false, err
	}
	if cur.Owner != owner && now.Before(cur.ExpiresAt) {
		return false, nil
	}
	return s.records.swap(ctx, namespace, name, raw, next)
}

func (s *schedulerLockDatabase) ReleaseLock(ctx context.Context, namespace, name, owner string) error {
	cur, _, err := s.records.findOne(ctx, namespace, name)
	if apperr.Is(err, apperr.NotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if cur.Owner != owner {
		return nil
	}
	return s.records.delete(ctx, namespace, name)
}
