package databases

// go generate: mockery --name DeadlineDatabase

import (
	"context"

	"github.com/linesmerrill/court-compliance-api/models"
)

// DeadlineDatabase contains the methods to use with deadline records
type DeadlineDatabase interface {
	FindOne(ctx context.Context, namespace, id string) (*models.Deadline, error)
	Find(ctx context.Context, namespace string) ([]models.Deadline, error)
	FindByCase(ctx context.Context, namespace, caseID string) ([]models.Deadline, error)
	Save(ctx context.Context, namespace string, deadline *models.Deadline) error
	FindOneWithRevision(ctx context.Context, namespace, id string) (*models.Deadline, Revision, error)
	// SaveIfUnchanged writes deadline only if the stored record still matches rev
	SaveIfUnchanged(ctx context.Context, namespace string, deadline *models.Deadline, rev Revision) (bool, error)
}

type deadlineDatabase struct {
	records recordStore[models.Deadline]
}

// NewDeadlineDatabase initializes a new instance of deadline database with the provided store
func NewDeadlineDatabase(db KeyValueStore) DeadlineDatabase {
	return &deadlineDatabase{
		records: recordStore[models.Deadline]{db: db, entity: deadlineEntity},
	}
}

func (d *deadlineDatabase) FindOne(ctx context.Context, namespace, id string) (*models.Deadline, error) {
	deadline, _, err := d.records.findOne(ctx, namespace, id)
	return deadline, err
}

func (d *deadlineDatabase) Find(ctx context.Context, namespace string) ([]models.Deadline, error) {
	return d.records.find(ctx, namespace)
}

func (d *deadlineDatabase) FindByCase(ctx context.Context, namespace, caseID string) ([]models.Deadline, error) {
	all, err := d.records.find(ctx, namespace)
	if err != nil {
		return nil, err
	}
	matched := []models.Deadline{}
	for _, dl := range all {
		if dl.CaseID == caseID {
			matched = append(matched, dl)
		}
	}
	return matched, nil
}

func (d *deadlineDatabase) Save(ctx context.Context, namespace string, deadline *models.Deadline) error {
	return d.records.save(ctx, namespace, deadline.ID, deadline)
}

func (d *deadlineDatabase) FindOneWithRevision(ctx context.Context, namespace, id string) (*models.Deadline, Revision, error) {
	deadline, raw, err := d.records.findOne(ctx, namespace, id)
	return deadline, raw, err
}

func (d *deadlineDatabase) SaveIfUnchanged(ctx context.Context, namespace string, deadline *models.Deadline, rev Revision) (bool, error) {
	return d.records.swap(ctx, namespace, deadline.ID, rev, deadline)
}
