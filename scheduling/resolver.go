// Package scheduling books hearings against shared judge and courtroom
// calendars and searches for open slots.
package scheduling

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-compliance-api/apperr"
	"github.com/linesmerrill/court-compliance-api/databases"
	"github.com/linesmerrill/court-compliance-api/holidays"
	"github.com/linesmerrill/court-compliance-api/models"
)

// Defaults for Options fields left at zero
const (
	DefaultIncrementMinutes = 30
	DefaultHorizonDays      = 90
	DefaultOpensAt          = "09:00"
	DefaultClosesAt         = "17:00"
)

// maxReserveAttempts bounds the compare-and-swap retries on one resource index
const maxReserveAttempts = 16

// Options configures the slot search
type Options struct {
	IncrementMinutes int
	HorizonDays      int
	BusinessHours    BusinessHours
}

// BusinessHours is the daily window, in the jurisdiction's time zone, that
// the slot search considers. Both ends are HH:MM.
type BusinessHours struct {
	OpensAt  string `json:"opensAt"`
	ClosesAt string `json:"closesAt"`
}

type clockTime struct{ hour, minute int }

func parseClock(s string) (clockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return clockTime{}, apperr.New(apperr.InvalidRequest, "invalid time of day %q, want HH:MM", s)
	}
	return clockTime{hour: t.Hour(), minute: t.Minute()}, nil
}

func (c clockTime) minutes() int { return c.hour*60 + c.minute }

func (b BusinessHours) parse() (clockTime, clockTime, error) {
	opens, closes := b.OpensAt, b.ClosesAt
	if opens == "" {
		opens = DefaultOpensAt
	}
	if closes == "" {
		closes = DefaultClosesAt
	}
	o, err := parseClock(opens)
	if err != nil {
		return clockTime{}, clockTime{}, err
	}
	c, err := parseClock(closes)
	if err != nil {
		return clockTime{}, clockTime{}, err
	}
	if c.minutes() <= o.minutes() {
		return clockTime{}, clockTime{}, apperr.New(apperr.InvalidRequest, "business hours close %s before they open %s", closes, opens)
	}
	return o, c, nil
}

// SlotRequest asks for the first time both resources are free
type SlotRequest struct {
	JudgeID         string         `json:"judgeID"`
	CourtroomID     string         `json:"courtroomID"`
	DurationMinutes int            `json:"durationMinutes"`
	EarliestDate    models.Date    `json:"earliestDate"`
	Jurisdiction    string         `json:"jurisdiction"`
	BusinessHours   *BusinessHours `json:"businessHours,omitempty"`
}

// BookRequest reserves a judge and a courtroom for an event
type BookRequest struct {
	CaseID          string    `json:"caseID"`
	JudgeID         string    `json:"judgeID"`
	CourtroomID     string    `json:"courtroomID"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"durationMinutes"`
	EventType       string    `json:"eventType"`
	Description     string    `json:"description"`
}

// Resolver detects and prevents double-booking of judges and courtrooms.
// Each resource has a versioned schedule index; bookings are written to it
// with compare-and-swap so two concurrent bookings cannot both claim an
// overlapping interval.
type Resolver struct {
	events    databases.CalendarEventDatabase
	calendar  *holidays.Calendar
	increment time.Duration
	horizon   int
	hours     BusinessHours
	now       func() time.Time
}

// NewResolver returns a Resolver. Zero option fields take the package defaults.
func NewResolver(events databases.CalendarEventDatabase, calendar *holidays.Calendar, opts Options) (*Resolver, error) {
	if opts.IncrementMinutes <= 0 {
		opts.IncrementMinutes = DefaultIncrementMinutes
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = DefaultHorizonDays
	}
	if _, _, err := opts.BusinessHours.parse(); err != nil {
		return nil, err
	}
	return &Resolver{
		events:    events,
		calendar:  calendar,
		increment: time.Duration(opts.IncrementMinutes) * time.Minute,
		horizon:   opts.HorizonDays,
		hours:     opts.BusinessHours,
		now:       time.Now,
	}, nil
}

func validKind(kind models.ResourceKind) error {
	if kind != models.ResourceJudge && kind != models.ResourceCourtroom {
		return apperr.New(apperr.InvalidRequest, "unknown resource kind %q", kind)
	}
	return nil
}

// HasConflict reports whether [start, start+duration) overlaps any booking
// of the given judge or courtroom
func (r *Resolver) HasConflict(ctx context.Context, namespace string, kind models.ResourceKind, resourceID string, start time.Time, durationMinutes int) (bool, error) {
	if err := validKind(kind); err != nil {
		return false, err
	}
	if durationMinutes <= 0 {
		return false, apperr.New(apperr.InvalidRequest, "duration must be positive, got %d minutes", durationMinutes)
	}
	schedule, _, err := r.events.FindSchedule(ctx, namespace, kind, resourceID)
	if err != nil {
		return false, err
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	return conflicting(schedule, start, end) != nil, nil
}

func conflicting(schedule *models.ResourceSchedule, start, end time.Time) *models.Booking {
	for i := range schedule.Bookings {
		if schedule.Bookings[i].Overlaps(start, end) {
			return &schedule.Bookings[i]
		}
	}
	return nil
}

// FindAvailableSlot walks forward from the earliest date in fixed increments
// within business hours, skipping non-business days, and returns the first
// slot free for both the judge and the courtroom. The search stops after the
// configured horizon with SlotUnavailable.
func (r *Resolver) FindAvailableSlot(ctx context.Context, namespace string, req SlotRequest) (*models.Slot, error) {
	if req.JudgeID == "" || req.CourtroomID == "" {
		return nil, apperr.New(apperr.InvalidRequest, "judge id and courtroom id are required")
	}
	if req.DurationMinutes <= 0 {
		return nil, apperr.New(apperr.InvalidRequest, "duration must be positive, got %d minutes", req.DurationMinutes)
	}
	hours := r.hours
	if req.BusinessHours != nil {
		hours = *req.BusinessHours
	}
	opens, closes, err := hours.parse()
	if err != nil {
		return nil, err
	}
	if req.DurationMinutes > closes.minutes()-opens.minutes() {
		return nil, apperr.New(apperr.InvalidRequest, "a %d minute event does not fit in business hours", req.DurationMinutes)
	}
	code := req.Jurisdiction
	if code == "" {
		code = holidays.FederalCode
	}
	j, err := r.calendar.Jurisdiction(code)
	if err != nil {
		return nil, err
	}

	judge, _, err := r.events.FindSchedule(ctx, namespace, models.ResourceJudge, req.JudgeID)
	if err != nil {
		return nil, err
	}
	room, _, err := r.events.FindSchedule(ctx, namespace, models.ResourceCourtroom, req.CourtroomID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	earliest := req.EarliestDate
	if earliest.IsZero() {
		earliest = models.DateOf(now.In(j.Location))
	}
	duration := time.Duration(req.DurationMinutes) * time.Minute
	for day, i := earliest, 0; i < r.horizon; day, i = day.AddDays(1), i+1 {
		if !j.IsBusinessDay(day) {
			continue
		}
		last := day.In(closes.hour, closes.minute, j.Location)
		for start := day.In(opens.hour, opens.minute, j.Location); !start.Add(duration).After(last); start = start.Add(r.increment) {
			if start.Before(now) {
				continue
			}
			end := start.Add(duration)
			if conflicting(judge, start, end) != nil || conflicting(room, start, end) != nil {
				continue
			}
			return &models.Slot{Start: start, End: end, JudgeID: req.JudgeID, CourtroomID: req.CourtroomID}, nil
		}
	}
	return nil, apperr.New(apperr.SlotUnavailable, "no %d minute slot for judge %q and courtroom %q within %d days of %s",
		req.DurationMinutes, req.JudgeID, req.CourtroomID, r.horizon, earliest)
}

// Book reserves the judge and then the courtroom and stores the event. If
// either resource is already booked over the interval the booking fails
// with ScheduleConflict and nothing stays reserved.
func (r *Resolver) Book(ctx context.Context, namespace string, req BookRequest) (*models.CalendarEvent, error) {
	if strings.TrimSpace(req.JudgeID) == "" || strings.TrimSpace(req.CourtroomID) == "" {
		return nil, apperr.New(apperr.InvalidRequest, "judge id and courtroom id are required")
	}
	if req.DurationMinutes <= 0 {
		return nil, apperr.New(apperr.InvalidRequest, "duration must be positive, got %d minutes", req.DurationMinutes)
	}
	if req.Start.IsZero() {
		return nil, apperr.New(apperr.InvalidRequest, "start time is required")
	}

	event := &models.CalendarEvent{
		ID:              uuid.New().String(),
		CaseID:          req.CaseID,
		JudgeID:         req.JudgeID,
		CourtroomID:     req.CourtroomID,
		Start:           req.Start,
		DurationMinutes: req.DurationMinutes,
		EventType:       req.EventType,
		Description:     req.Description,
		Status:          models.EventScheduled,
		CreatedAt:       r.now(),
	}
	booking := models.Booking{EventID: event.ID, Start: event.Start, End: event.End()}

	if err := r.reserve(ctx, namespace, models.ResourceJudge, event.JudgeID, booking); err != nil {
		return nil, err
	}
	if err := r.reserve(ctx, namespace, models.ResourceCourtroom, event.CourtroomID, booking); err != nil {
		r.rollback(ctx, namespace, event, models.ResourceJudge)
		return nil, err
	}
	if err := r.events.Save(ctx, namespace, event); err != nil {
		r.rollback(ctx, namespace, event, models.ResourceJudge, models.ResourceCourtroom)
		return nil, err
	}
	zap.S().Infow("calendar event booked",
		"namespace", namespace, "event", event.ID, "judge", event.JudgeID, "courtroom", event.CourtroomID,
		"start", event.Start, "minutes", event.DurationMinutes)
	return event, nil
}

func (r *Resolver) rollback(ctx context.Context, namespace string, event *models.CalendarEvent, kinds ...models.ResourceKind) {
	for _, kind := range kinds {
		id := event.JudgeID
		if kind == models.ResourceCourtroom {
			id = event.CourtroomID
		}
		if err := r.release(ctx, namespace, kind, id, event.ID); err != nil {
			zap.S().Errorw("failed to roll back booking", "namespace", namespace, "event", event.ID,
				"kind", kind, "resource", id, "error", err)
		}
	}
}

// reserve adds booking to a resource index unless it overlaps an existing one
func (r *Resolver) reserve(ctx context.Context, namespace string, kind models.ResourceKind, resourceID string, booking models.Booking) error {
	for attempt := 0; attempt < maxReserveAttempts; attempt++ {
		schedule, rev, err := r.events.FindSchedule(ctx, namespace, kind, resourceID)
		if err != nil {
			return err
		}
		if c := conflicting(schedule, booking.Start, booking.End); c != nil {
			return apperr.New(apperr.ScheduleConflict, "%s %q is booked from %s to %s by event %s",
				kind, resourceID, c.Start.Format(time.RFC3339), c.End.Format(time.RFC3339), c.EventID)
		}
		schedule.Bookings = append(schedule.Bookings, booking)
		sort.Slice(schedule.Bookings, func(a, b int) bool {
			return schedule.Bookings[a].Start.Before(schedule.Bookings[b].Start)
		})
		schedule.Version++
		ok, err := r.events.SaveScheduleIfUnchanged(ctx, namespace, schedule, rev)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return apperr.New(apperr.StorageFailure, "%s %q schedule is too contended to update", kind, resourceID)
}

// release removes an event's booking from a resource index
func (r *Resolver) release(ctx context.Context, namespace string, kind models.ResourceKind, resourceID, eventID string) error {
	for attempt := 0; attempt < maxReserveAttempts; attempt++ {
		schedule, rev, err := r.events.FindSchedule(ctx, namespace, kind, resourceID)
		if err != nil {
			return err
		}
		kept := schedule.Bookings[:0]
		for _, b := range schedule.Bookings {
			if b.EventID != eventID {
				kept = append(kept, b)
			}
		}
		if len(kept) == len(schedule.Bookings) {
			return nil
		}
		schedule.Bookings = kept
		schedule.Version++
		ok, err := r.events.SaveScheduleIfUnchanged(ctx, namespace, schedule, rev)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return apperr.New(apperr.StorageFailure, "%s %q schedule is too contended to update", kind, resourceID)
}

// Cancel frees the event's judge and courtroom and marks it cancelled.
// Cancelling a cancelled event returns it unchanged.
func (r *Resolver) Cancel(ctx context.Context, namespace, eventID string) (*models.CalendarEvent, error) {
	event, err := r.events.FindOne(ctx, namespace, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status == models.EventCancelled {
		return event, nil
	}
	if err := r.release(ctx, namespace, models.ResourceJudge, event.JudgeID, event.ID); err != nil {
		return nil, err
	}
	if err := r.release(ctx, namespace, models.ResourceCourtroom, event.CourtroomID, event.ID); err != nil {
		return nil, err
	}
	now := r.now()
	event.Status = models.EventCancelled
	event.CancelledAt = &now
	if err := r.events.Save(ctx, namespace, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Get returns a single event
func (r *Resolver) Get(ctx context.Context, namespace, eventID string) (*models.CalendarEvent, error) {
	return r.events.FindOne(ctx, namespace, eventID)
}

// ListForResource returns the scheduled events of a judge or courtroom in
// start order
func (r *Resolver) ListForResource(ctx context.Context, namespace string, kind models.ResourceKind, resourceID string) ([]models.CalendarEvent, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	schedule, _, err := r.events.FindSchedule(ctx, namespace, kind, resourceID)
	if err != nil {
		return nil, err
	}
	out := make([]models.CalendarEvent, 0, len(schedule.Bookings))
	for _, b := range schedule.Bookings {
		event, err := r.events.FindOne(ctx, namespace, b.EventID)
		if apperr.Is(err, apperr.NotFound) {
			// reserved by a booking still in flight
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *event)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Start.Before(out[b].Start) })
	return out, nil
}
