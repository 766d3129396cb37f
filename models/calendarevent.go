package models

import "time"

// ResourceKind distinguishes the two bookable court resources
type ResourceKind string

// Resource kinds
const (
	ResourceJudge     ResourceKind = "judge"
	ResourceCourtroom ResourceKind = "courtroom"
)

// EventStatus is the booking state of a calendar event
type EventStatus string

// Event statuses
const (
	EventScheduled EventStatus = "scheduled"
	EventCancelled EventStatus = "cancelled"
)

// CalendarEvent holds the structure for a booked hearing, trial or conference
type CalendarEvent struct {
	ID              string      `json:"id"`
	CaseID          string      `json:"caseID"`
	JudgeID         string      `json:"judgeID"`
	CourtroomID     string      `json:"courtroomID"`
	Start           time.Time   `json:"start"`
	DurationMinutes int         `json:"durationMinutes"`
	EventType       string      `json:"eventType"`
	Description     string      `json:"description"`
	Status          EventStatus `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	CancelledAt     *time.Time  `json:"cancelledAt,omitempty"`
}

// End returns the exclusive end instant of the event
func (e CalendarEvent) End() time.Time {
	return e.Start.Add(time.Duration(e.DurationMinutes) * time.Minute)
}

// Booking is one occupied [Start, End) interval in a resource schedule
type Booking struct {
	EventID string    `json:"eventID"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Overlaps reports whether the half-open interval [start, end) intersects b
func (b Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.End) && b.Start.Before(end)
}

// ResourceSchedule is the versioned index of bookings for one judge or courtroom
type ResourceSchedule struct {
	Kind       ResourceKind `json:"kind"`
	ResourceID string       `json:"resourceID"`
	Version    int64        `json:"version"`
	Bookings   []Booking    `json:"bookings"`
}

// Slot is a free interval returned by the slot search
type Slot struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	JudgeID     string    `json:"judgeID"`
	CourtroomID string    `json:"courtroomID"`
}
