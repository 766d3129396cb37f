package databases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/court-compliance-api/apperr"
	"github.com/linesmerrill/court-compliance-api/databases"
	"github.com/linesmerrill/court-compliance-api/databases/mocks"
	"github.com/linesmerrill/court-compliance-api/models"
)

func TestDeadlineDatabase_FindOne(t *testing.T) {
	ctx := context.Background()
	db := databases.NewDeadlineDatabase(databases.NewMemoryStore())

	_, err := db.FindOne(ctx, "ns", "missing")
	assert.True(t, apperr.Is(err, apperr.NotFound))

	d := &models.Deadline{ID: "d1", CaseID: "c1", DueDate: models.NewDate(2025, time.January, 24)}
	require.NoError(t, db.Save(ctx, "ns", d))

	got, err := db.FindOne(ctx, "ns", "d1")
	assert.NoError(t, err)
	assert.Equal(t, "c1", got.CaseID)
	assert.Equal(t, models.NewDate(2025, time.January, 24), got.DueDate)
}

func TestDeadlineDatabase_SaveIfUnchanged(t *testing.T) {
	ctx := context.Background()
	db := databases.NewDeadlineDatabase(databases.NewMemoryStore())
	require.NoError(t, db.Save(ctx, "ns", &models.Deadline{ID: "d1", Status: models.DeadlineOpen}))

	d, rev, err := db.FindOneWithRevision(ctx, "ns", "d1")
	require.NoError(t, err)
	d.Status = models.DeadlineMissed
	ok, err := db.SaveIfUnchanged(ctx, "ns", d, rev)
	require.NoError(t, err)
	assert.True(t, ok)

	d.Status = models.DeadlineCompleted
	ok, err = db.SaveIfUnchanged(ctx, "ns", d, rev)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := db.FindOne(ctx, "ns", "d1")
	require.NoError(t, err)
	assert.Equal(t, models.DeadlineMissed, got.Status)
}

func TestDeadlineDatabase_FindByCase(t *testing.T) {
	ctx := context.Background()
	db := databases.NewDeadlineDatabase(databases.NewMemoryStore())
	_ = db.Save(ctx, "ns", &models.Deadline{ID: "d1", CaseID: "c1"})
	_ = db.Save(ctx, "ns", &models.Deadline{ID: "d2", CaseID: "c2"})
	_ = db.Save(ctx, "ns", &models.Deadline{ID: "d3", CaseID: "c1"})

	got, err := db.FindByCase(ctx, "ns", "c1")
	assert.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d1", got[0].ID)
	assert.Equal(t, "d3", got[1].ID)

	none, err := db.FindByCase(ctx, "ns", "c9")
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeadlineDatabase_StorageFailure(t *testing.T) {
	ctx := context.Background()
	store := &mocks.KeyValueStore{}
	store.On("Get", ctx, "ns", "deadline:d1").Return(nil, errors.New("mocked-error"))
	store.On("Keys", ctx, "ns", "deadline:").Return(nil, errors.New("mocked-error"))
	store.On("Set", ctx, "ns", "deadline:d1", mock.Anything).Return(errors.New("mocked-error"))

	db := databases.NewDeadlineDatabase(store)

	_, err := db.FindOne(ctx, "ns", "d1")
	assert.Equal(t, apperr.StorageFailure, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "mocked-error")

	_, err = db.Find(ctx, "ns")
	assert.Equal(t, apperr.StorageFailure, apperr.KindOf(err))

	err = db.Save(ctx, "ns", &models.Deadline{ID: "d1"})
	assert.Equal(t, apperr.StorageFailure, apperr.KindOf(err))
}

func TestDeadlineDatabase_CorruptRecord(t *testing.T) {
	ctx := context.Background()
	store := &mocks.KeyValueStore{}
	store.On("Get", ctx, "ns", "deadline:d1").Return([]byte("{not json"), nil)

	_, err := databases.NewDeadlineDatabase(store).FindOne(ctx, "ns", "d1")
	assert.Equal(t, apperr.StorageFailure, apperr.KindOf(err))
}

func TestExtensionDatabase_SaveIfUnchanged(t *testing.T) {
	ctx := context.Background()
	db := databases.NewExtensionDatabase(databases.NewMemoryStore())
	require.NoError(t, db.Insert(ctx, "ns", &models.Extension{ID: "e1", Status: models.ExtensionPending}))

	first, rev1, err := db.FindOne(ctx, "ns", "e1")
	require.NoError(t, err)
	_, rev2, err := db.FindOne(ctx, "ns", "e1")
	require.NoError(t, err)

	first.Status = models.ExtensionApproved
	ok, err := db.SaveIfUnchanged(ctx, "ns", first, rev1)
	assert.NoError(t, err)
	assert.True(t, ok)

	// the second reader's revision is now stale
	ok, err = db.SaveIfUnchanged(ctx, "ns", &models.Extension{ID: "e1", Status: models.ExtensionDenied}, rev2)
	assert.NoError(t, err)
	assert.False(t, ok)

	got, _, _ := db.FindOne(ctx, "ns", "e1")
	assert.Equal(t, models.ExtensionApproved, got.Status)
}

func TestReminderDatabase_DeleteOne(t *testing.T) {
	ctx := context.Background()
	db := databases.NewReminderDatabase(databases.NewMemoryStore())
	_ = db.Save(ctx, "ns", &models.Reminder{ID: "r1", DeadlineID: "d1"})
	_ = db.Save(ctx, "ns", &models.Reminder{ID: "r2", DeadlineID: "d1"})

	require.NoError(t, db.DeleteOne(ctx, "ns", "r1"))
	all, err := db.Find(ctx, "ns")
	assert.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "r2", all[0].ID)
}

func TestSpeedyTrialDatabase_Insert(t *testing.T) {
	ctx := context.Background()
	db := databases.NewSpeedyTrialDatabase(databases.NewMemoryStore())
	clock := &models.SpeedyTrialClock{CaseID: "c1", LimitDays: 70}

	ok, err := db.Insert(ctx, "ns", clock)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.Insert(ctx, "ns", clock)
	assert.NoError(t, err)
	assert.False(t, ok)

	got, rev, err := db.FindOne(ctx, "ns", "c1")
	assert.NoError(t, err)
	assert.NotEmpty(t, rev)
	assert.Equal(t, 70, got.LimitDays)
}

func TestCalendarEventDatabase_FindSchedule(t *testing.T) {
	ctx := context.Background()
	db := databases.NewCalendarEventDatabase(databases.NewMemoryStore())

	schedule, rev, err := db.FindSchedule(ctx, "ns", models.ResourceJudge, "j1")
	assert.NoError(t, err)
	assert.Nil(t, rev)
	assert.Empty(t, schedule.Bookings)
	assert.Equal(t, "j1", schedule.ResourceID)

	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	schedule.Bookings = append(schedule.Bookings, models.Booking{EventID: "ev1", Start: start, End: start.Add(time.Hour)})
	schedule.Version++
	ok, err := db.SaveScheduleIfUnchanged(ctx, "ns", schedule, rev)
	assert.NoError(t, err)
	assert.True(t, ok)

	// a second writer that also saw "absent" loses
	ok, err = db.SaveScheduleIfUnchanged(ctx, "ns", schedule, nil)
	assert.NoError(t, err)
	assert.False(t, ok)

	again, rev, err := db.FindSchedule(ctx, "ns", models.ResourceJudge, "j1")
	assert.NoError(t, err)
	assert.NotNil(t, rev)
	assert.Equal(t, int64(1), again.Version)
	require.Len(t, again.Bookings, 1)
	assert.Equal(t, "ev1", again.Bookings[0].EventID)

	// courtroom index with the same id is a separate record
	other, rev, err := db.FindSchedule(ctx, "ns", models.ResourceCourtroom, "j1")
	assert.NoError(t, err)
	assert.Nil(t, rev)
	assert.Empty(t, other.Bookings)
}

func TestSchedulerLockDatabase(t *testing.T) {
	ctx := context.Background()
	db := databases.NewSchedulerLockDatabase(databases.NewMemoryStore())

	ok, err := db.TryAcquireLock(ctx, "ns", "sweep", "a", time.Minute)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.TryAcquireLock(ctx, "ns", "sweep", "b", time.Minute)
	assert.NoError(t, err)
	assert.False(t, ok, "lock is held by a")

	// re-entrant for the holder
	ok, err = db.TryAcquireLock(ctx, "ns", "sweep", "a", time.Minute)
	assert.NoError(t, err)
	assert.True(t, ok)

	// a non-owner release does nothing
	require.NoError(t, db.ReleaseLock(ctx, "ns", "sweep", "b"))
	ok, _ = db.TryAcquireLock(ctx, "ns", "sweep", "b", time.Minute)
	assert.False(t, ok)

	require.NoError(t, db.ReleaseLock(ctx, "ns", "sweep", "a"))
	ok, err = db.TryAcquireLock(ctx, "ns", "sweep", "b", time.Minute)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestSchedulerLockDatabase_ExpiredLock(t *testing.T) {
	ctx := context.Background()
	db := databases.NewSchedulerLockDatabase(databases.NewMemoryStore())

	ok, _ := db.TryAcquireLock(ctx, "ns", "sweep", "a", -time.Second)
	assert.True(t, ok)

	ok, err := db.TryAcquireLock(ctx, "ns", "sweep", "b", time.Minute)
	assert.NoError(t, err)
	assert.True(t, ok, "an expired lock can be taken over")
}
