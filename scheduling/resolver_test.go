package scheduling

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/court-compliance-api/apperr"
	"github.com/linesmerrill/court-compliance-api/databases"
	"github.com/linesmerrill/court-compliance-api/holidays"
	"github.com/linesmerrill/court-compliance-api/models"
)

const ns = "district-a"

func newTestResolver(t *testing.T, opts Options) *Resolver {
	t.Helper()
	cal, err := holidays.NewCalendar()
	require.NoError(t, err)
	r, err := NewResolver(databases.NewCalendarEventDatabase(databases.NewMemoryStore()), cal, opts)
	require.NoError(t, err)
	r.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	return r
}

func eastern(t *testing.T, month time.Month, day, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return time.Date(2025, month, day, hour, minute, 0, 0, loc)
}

func book(t *testing.T, r *Resolver, judge, room string, start time.Time, minutes int) *models.CalendarEvent {
	t.Helper()
	ev, err := r.Book(context.Background(), ns, BookRequest{
		CaseID: "1:25-cr-00007", JudgeID: judge, CourtroomID: room, Start: start, DurationMinutes: minutes, EventType: "hearing",
	})
	require.NoError(t, err)
	return ev
}

func TestFindAvailableSlotSkipsNonBusinessDays(t *testing.T) {
	r := newTestResolver(t, Options{})

	// Jan 18-19 2025 is a weekend and Jan 20 is MLK Day
	slot, err := r.FindAvailableSlot(context.Background(), ns, SlotRequest{
		JudgeID: "j1", CourtroomID: "r1", DurationMinutes: 60, EarliestDate: models.NewDate(2025, 1, 18),
	})
	require.NoError(t, err)
	assert.True(t, eastern(t, 1, 21, 9, 0).Equal(slot.Start))
	assert.True(t, eastern(t, 1, 21, 10, 0).Equal(slot.End))
	assert.Equal(t, "j1", slot.JudgeID)
	assert.Equal(t, "r1", slot.CourtroomID)
}

func TestFindAvailableSlotAvoidsBothResources(t *testing.T) {
	r := newTestResolver(t, Options{})
	book(t, r, "j1", "r9", eastern(t, 1, 21, 9, 0), 90)
	book(t, r, "j9", "r1", eastern(t, 1, 21, 10, 30), 30)

	slot, err := r.FindAvailableSlot(context.Background(), ns, SlotRequest{
		JudgeID: "j1", CourtroomID: "r1", DurationMinutes: 60, EarliestDate: models.NewDate(2025, 1, 21),
	})
	require.NoError(t, err)
	assert.True(t, eastern(t, 1, 21, 11, 0).Equal(slot.Start), slot.Start.String())
}

func TestFindAvailableSlotRespectsClosingTime(t *testing.T) {
	r := newTestResolver(t, Options{})
	book(t, r, "j1", "r1", eastern(t, 1, 21, 9, 0), 7*60)

	slot, err := r.FindAvailableSlot(context.Background(), ns, SlotRequest{
		JudgeID: "j1", CourtroomID: "r1", DurationMinutes: 60, EarliestDate: models.NewDate(2025, 1, 21),
	})
	require.NoError(t, err)
	assert.True(t, eastern(t, 1, 21, 16, 0).Equal(slot.Start))

	slot, err = r.FindAvailableSlot(context.Background(), ns, SlotRequest{
		JudgeID: "j1", CourtroomID: "r1", DurationMinutes: 90, EarliestDate: models.NewDate(2025, 1, 21),
	})
	require.NoError(t, err)
	assert.True(t, eastern(t, 1, 22, 9, 0).Equal(slot.Start))

	slot, err = r.FindAvailableSlot(context.Background(), ns, SlotRequest{
		JudgeID: "j1", CourtroomID: "r1", DurationMinutes: 60, EarliestDate: models.NewDate(2025, 1, 21),
		BusinessHours: &BusinessHours{OpensAt: "08:00", ClosesAt: "18:00"},
	})
	require.NoError(t, err)
	assert.True(t, eastern(t, 1, 21, 8, 0).Equal(slot.Start))
}

func TestFindAvailableSlotHorizon(t *testing.T) {
	r := newTestResolver(t, Options{HorizonDays: 3})

	_, err := r.FindAvailableSlot(context.Background(), ns, SlotRequest{
		JudgeID: "j1", CourtroomID: "r1", DurationMinutes: 60, EarliestDate: models.NewDate(2025, 1, 18),
	})
	assert.Equal(t, apperr.SlotUnavailable, apperr.KindOf(err))

	_, err = r.FindAvailableSlot(context.Background(), ns, SlotRequest{
		JudgeID: "j1", CourtroomID: "r1", DurationMinutes: 9 * 60, EarliestDate: models.NewDate(2025, 1, 21),
	})
	assert.Equal(t, apperr.InvalidRequest, apperr.KindOf(err))

	_, err = r.FindAvailableSlot(context.Background(), ns, SlotRequest{
		JudgeID: "j1", CourtroomID: "r1", DurationMinutes: 60, Jurisdiction: "ZZ",
	})
	assert.Equal(t, apperr.UnknownJurisdiction, apperr.KindOf(err))
}

func TestFindAvailableSlotNeverOverlaps(t *testing.T) {
	r := newTestResolver(t, Options{IncrementMinutes: 15})
	ctx := context.Background()
	book(t, r, "j1", "r2", eastern(t, 2, 3, 9, 45), 50)
	book(t, r, "j2", "r1", eastern(t, 2, 3, 11, 0), 120)

	for i := 0; i < 25; i++ {
		slot, err := r.FindAvailableSlot(ctx, ns, SlotRequest{
			JudgeID: "j1", CourtroomID: "r1", DurationMinutes: 45, EarliestDate: models.NewDate(2025, 2, 3),
		})
		require.NoError(t, err)
		for _, kind := range []models.ResourceKind{models.ResourceJudge, models.ResourceCourtroom} {
			id := "j1"
			if kind == models.ResourceCourtroom {
				id = "r1"
			}
			conflict, err := r.HasConflict(ctx, ns, kind, id, slot.Start, 45)
			require.NoError(t, err)
			assert.False(t, conflict)
		}
		book(t, r, "j1", "r1", slot.Start, 45)
	}
}

func TestBookConflicts(t *testing.T) {
	r := newTestResolver(t, Options{})
	ctx := context.Background()
	first := book(t, r, "j1", "r1", eastern(t, 3, 3, 10, 0), 60)
	assert.Equal(t, models.EventScheduled, first.Status)

	_, err := r.Book(ctx, ns, BookRequest{JudgeID: "j1", CourtroomID: "r2", Start: eastern(t, 3, 3, 10, 30), DurationMinutes: 30})
	assert.Equal(t, apperr.ScheduleConflict, apperr.KindOf(err))

	// the courtroom is taken, so the judge reservation is rolled back
	_, err = r.Book(ctx, ns, BookRequest{JudgeID: "j2", CourtroomID: "r1", Start: eastern(t, 3, 3, 10, 30), DurationMinutes: 30})
	assert.Equal(t, apperr.ScheduleConflict, apperr.KindOf(err))
	busy, err := r.HasConflict(ctx, ns, models.ResourceJudge, "j2", eastern(t, 3, 3, 10, 30), 30)
	require.NoError(t, err)
	assert.False(t, busy)

	// back-to-back is not a conflict
	book(t, r, "j1", "r1", eastern(t, 3, 3, 11, 0), 30)

	events, err := r.ListForResource(ctx, ns, models.ResourceJudge, "j1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first.ID, events[0].ID)

	_, err = r.Book(ctx, ns, BookRequest{JudgeID: "j1", CourtroomID: "r1", Start: eastern(t, 3, 4, 10, 0)})
	assert.Equal(t, apperr.InvalidRequest, apperr.KindOf(err))
	_, err = r.Book(ctx, ns, BookRequest{CourtroomID: "r1", Start: eastern(t, 3, 4, 10, 0), DurationMinutes: 30})
	assert.Equal(t, apperr.InvalidRequest, apperr.KindOf(err))
}

func TestCancel(t *testing.T) {
	r := newTestResolver(t, Options{})
	ctx := context.Background()
	ev := book(t, r, "j1", "r1", eastern(t, 3, 3, 10, 0), 60)

	cancelled, err := r.Cancel(ctx, ns, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	for _, kind := range []models.ResourceKind{models.ResourceJudge, models.ResourceCourtroom} {
		id := map[models.ResourceKind]string{models.ResourceJudge: "j1", models.ResourceCourtroom: "r1"}[kind]
		busy, err := r.HasConflict(ctx, ns, kind, id, eastern(t, 3, 3, 10, 0), 60)
		require.NoError(t, err)
		assert.False(t, busy)
		events, err := r.ListForResource(ctx, ns, kind, id)
		require.NoError(t, err)
		assert.Empty(t, events)
	}

	again, err := r.Cancel(ctx, ns, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventCancelled, again.Status)

	stored, err := r.Get(ctx, ns, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventCancelled, stored.Status)

	_, err = r.Cancel(ctx, ns, "missing")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	// the freed interval can be booked again
	book(t, r, "j1", "r1", eastern(t, 3, 3, 10, 0), 60)
}

func TestConcurrentBookingsNeverDoubleBook(t *testing.T) {
	r := newTestResolver(t, Options{})
	ctx := context.Background()
	start := eastern(t, 4, 1, 10, 0)

	const bookers = 12
	var wg sync.WaitGroup
	errs := make([]error, bookers)
	for i := 0; i < bookers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// every booker wants the same judge at overlapping times
			_, errs[i] = r.Book(ctx, ns, BookRequest{
				JudgeID:         "j1",
				CourtroomID:     fmt.Sprintf("r%d", i),
				Start:           start.Add(time.Duration(i%3) * 15 * time.Minute),
				DurationMinutes: 60,
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.Equal(t, apperr.ScheduleConflict, apperr.KindOf(err))
	}
	assert.Equal(t, 1, wins)

	events, err := r.ListForResource(ctx, ns, models.ResourceJudge, "j1")
	require.NoError(t, err)
	assert.Len(t, events, 1)

	reserved := 0
	for i := 0; i < bookers; i++ {
		events, err := r.ListForResource(ctx, ns, models.ResourceCourtroom, fmt.Sprintf("r%d", i))
		require.NoError(t, err)
		reserved += len(events)
	}
	assert.Equal(t, 1, reserved)
}

func TestHasConflictValidation(t *testing.T) {
	r := newTestResolver(t, Options{})
	_, err := r.HasConflict(context.Background(), ns, "bailiff", "b1", eastern(t, 3, 3, 10, 0), 30)
	assert.Equal(t, apperr.InvalidRequest, apperr.KindOf(err))
	_, err = r.HasConflict(context.Background(), ns, models.ResourceJudge, "j1", eastern(t, 3, 3, 10, 0), 0)
	assert.Equal(t, apperr.InvalidRequest, apperr.KindOf(err))

	_, err = NewResolver(nil, nil, Options{BusinessHours: BusinessHours{OpensAt: "17:00", ClosesAt: "09:00"}})
	assert.Equal(t, apperr.InvalidRequest, apperr.KindOf(err))
}
