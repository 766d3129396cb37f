package databases

// go generate: mockery --name CalendarEventDatabase

import (
	"context"

	"github.com/linesmerrill/court-compliance-api/apperr"
	"github.com/linesmerrill/court-compliance-api/models"
)

// CalendarEventDatabase contains the methods to use with calendar events and
// the per-resource schedule indexes that guard them
type CalendarEventDatabase interface {
	FindOne(ctx context.Context, namespace, id string) (*models.CalendarEvent, error)
	Save(ctx context.Context, namespace string, event *models.CalendarEvent) error
	// FindSchedule returns the resource's booking index. A resource that has
	// never been booked yields an empty schedule and a nil revision.
	FindSchedule(ctx context.Context, namespace string, kind models.ResourceKind, resourceID string) (*models.ResourceSchedule, Revision, error)
	SaveScheduleIfUnchanged(ctx context.Context, namespace string, schedule *models.ResourceSchedule, rev Revision) (bool, error)
}

type calendarEventDatabase struct {
	events    recordStore[models.CalendarEvent]
	schedules recordStore[models.ResourceSchedule]
}

// NewCalendarEventDatabase initializes a new instance of calendar event database with the provided store
func NewCalendarEventDatabase(db KeyValueStore) CalendarEventDatabase {
	return &calendarEventDatabase{
		events:    recordStore[models.CalendarEvent]{db: db, entity: calendarEventEntity},
		schedules: recordStore[models.ResourceSchedule]{db: db, entity: resourceEntity},
	}
}

func scheduleID(kind models.ResourceKind, resourceID string) string {
	return string(kind) + ":" + resourceID
}

func (c *calendarEventDatabase) FindOne(ctx context.Context, namespace, id string) (*models.CalendarEvent, error) {
	event, _, err := c.events.findOne(ctx, namespace, id)
	return event, err
}

func (c *calendarEventDatabase) Save(ctx context.Context, namespace string, event *models.CalendarEvent) error {
	return c.events.save(ctx, namespace, event.ID, event)
}

func (c *calendarEventDatabase) FindSchedule(ctx context.Context, namespace string, kind models.ResourceKind, resourceID string) (*models.ResourceSchedule, Revision, error) {
	schedule, raw, err := c.schedules.findOne(ctx, namespace, scheduleID(kind, resourceID))
	if apperr.Is(err, apperr.NotFound) {
		return &models.ResourceSchedule{Kind: kind, ResourceID: resourceID, Bookings: []models.Booking{}}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return schedule, raw, nil
}

func (c *calendarEventDatabase) SaveScheduleIfUnchanged(ctx context.Context, namespace string, schedule *models.ResourceSchedule, rev Revision) (bool, error) {
	return c.schedules.swap(ctx, namespace, scheduleID(schedule.Kind, schedule.ResourceID), rev, schedule)
}
