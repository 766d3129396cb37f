package databases

// go generate: mockery --name ReminderDatabase

import (
	"context"

	"github.com/linesmerrill/court-compliance-api/models"
)

// ReminderDatabase contains the methods to use with reminder records
type ReminderDatabase interface {
	FindOne(ctx context.Context, namespace, id string) (*models.Reminder, error)
	Find(ctx context.Context, namespace string) ([]models.Reminder, error)
	Save(ctx context.Context, namespace string, reminder *models.Reminder) error
	DeleteOne(ctx context.Context, namespace, id string) error
}

type reminderDatabase struct {
	records recordStore[models.Reminder]
}

// NewReminderDatabase initializes a new instance of reminder database with the provided store
func NewReminderDatabase(db KeyValueStore) ReminderDatabase {
	return &reminderDatabase{
		records: recordStore[models.Reminder]{db: db, entity: reminderEntity},
	}
}

func (r *reminderDatabase) FindOne(ctx context.Context, namespace, id string) (*models.Reminder, error) {
	reminder, _, err := r.records.findOne(ctx, namespace, id)
	return reminder, err
}

func (r *reminderDatabase) Find(ctx context.Context, namespace string) ([]models.Reminder, error) {
	return r.records.find(ctx, namespace)
}

func (r *reminderDatabase) Save(ctx context.Context, namespace string, reminder *models.Reminder) error {
	return r.records.save(ctx, namespace, reminder.ID, reminder)
}

func (r *reminderDatabase) DeleteOne(ctx context.Context, namespace, id string) error {
	return r.records.delete(ctx, namespace, id)
}
