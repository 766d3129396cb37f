package databases

// go generate: mockery --name SpeedyTrialDatabase

import (
	"context"

	"github.com/linesmerrill/court-compliance-api/models"
)

// SpeedyTrialDatabase contains the methods to use with speedy-trial clock records,
// keyed by case id
type SpeedyTrialDatabase interface {
	FindOne(ctx context.Context, namespace, caseID string) (*models.SpeedyTrialClock, Revision, error)
	Find(ctx context.Context, namespace string) ([]models.SpeedyTrialClock, error)
	// Insert fails with false when a clock already exists for the case
	Insert(ctx context.Context, namespace string, clock *models.SpeedyTrialClock) (bool, error)
	SaveIfUnchanged(ctx context.Context, namespace string, clock *models.SpeedyTrialClock, rev Revision) (bool, error)
}

type speedyTrialDatabase struct {
	records recordStore[models.SpeedyTrialClock]
}

// NewSpeedyTrialDatabase initializes a new instance of speedy trial database with the provided store
func NewSpeedyTrialDatabase(db KeyValueStore) SpeedyTrialDatabase {
	return &speedyTrialDatabase{
		records: recordStore[models.SpeedyTrialClock]{db: db, entity: speedyTrialEntity},
	}
}

func (s *speedyTrialDatabase) FindOne(ctx context.Context, namespace, caseID string) (*models.SpeedyTrialClock, Revision, error) {
	clock, raw, err := s.records.findOne(ctx, namespace, caseID)
	return clock, raw, err
}

func (s *speedyTrialDatabase) Find(ctx context.Context, namespace string) ([]models.SpeedyTrialClock, error) {
	return s.records.find(ctx, namespace)
}

func (s *speedyTrialDatabase) Insert(ctx context.Context, namespace string, clock *models.SpeedyTrialClock) (bool, error) {
	return s.records.swap(ctx, namespace, clock.CaseID, nil, clock)
}

func (s *speedyTrialDatabase) SaveIfUnchanged(ctx context.Context, namespace string, clock *models.SpeedyTrialClock, rev Revision) (bool, error) {
	return s.records.swap(ctx, namespace, clock.CaseID, rev, clock)
}
