package models

import "time"

// DefaultReminderOffsets are the days before a due date reminders fire
var DefaultReminderOffsets = []int{30, 14, 7, 1}

// Reminder holds the structure for a single scheduled deadline reminder
type Reminder struct {
	ID             string     `json:"id"`
	DeadlineID     string     `json:"deadlineID"`
	OffsetDays     int        `json:"offsetDays"`
	ScheduledFor   Date       `json:"scheduledFor"`
	Recipient      string     `json:"recipient"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
	AcknowledgedBy string     `json:"acknowledgedBy,omitempty"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}
