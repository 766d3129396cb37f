package models

import "time"

// DeadlineStatus is the lifecycle state of a Deadline
type DeadlineStatus string

// Deadline statuses
const (
	DeadlineOpen      DeadlineStatus = "open"
	DeadlineCompleted DeadlineStatus = "completed"
	DeadlineMissed    DeadlineStatus = "missed"
)

// ServiceMethod is how the triggering document was served
type ServiceMethod string

// Service methods. Electronic and personal delivery add no days; the rest add three.
const (
	ServiceElectronic       ServiceMethod = "electronic"
	ServicePersonalDelivery ServiceMethod = "personal_delivery"
	ServiceMail             ServiceMethod = "mail"
	ServiceLeavingWithClerk ServiceMethod = "leaving_with_clerk"
	ServiceOther            ServiceMethod = "other"
)

// AdditionalDays returns the days a service method adds to a period, and
// false when the method is not recognized
func (s ServiceMethod) AdditionalDays() (int, bool) {
	switch s {
	case ServiceElectronic, ServicePersonalDelivery:
		return 0, true
	case ServiceMail, ServiceLeavingWithClerk, ServiceOther:
		return 3, true
	}
	return 0, false
}

// CountDirection says whether a period runs after the trigger date or before it
type CountDirection string

// Count directions
const (
	CountForward  CountDirection = "forward"
	CountBackward CountDirection = "backward"
)

// Computation is the full record of how a due date was derived
type Computation struct {
	DueDate          Date   `json:"dueDate"`
	RawLandingDate   Date   `json:"rawLandingDate"`
	TotalPeriodDays  int    `json:"totalPeriodDays"`
	ServiceDaysAdded int    `json:"serviceDaysAdded"`
	ShortPeriod      bool   `json:"shortPeriod"`
	Notes            string `json:"notes"`

	// Jurisdiction metadata; recorded for filing, never applied to the date
	Jurisdiction string `json:"jurisdiction"`
	TimeZone     string `json:"timeZone"`
	FilingCutoff string `json:"filingCutoff"`
}

// DueDateChange is an immutable entry in a deadline's due-date history
type DueDateChange struct {
	From        Date      `json:"from"`
	To          Date      `json:"to"`
	ExtensionID string    `json:"extensionID"`
	ApprovedBy  string    `json:"approvedBy"`
	ApprovedAt  time.Time `json:"approvedAt"`
}

// Deadline holds the structure for a computed, legally binding due date
type Deadline struct {
	ID               string `json:"id"`
	CaseID           string `json:"caseID"`
	DeadlineType     string `json:"deadlineType"`
	Description      string `json:"description"`
	RuleCitation     string `json:"ruleCitation"`
	ResponsibleParty string `json:"responsibleParty"`
	// Recipients are notified in addition to the responsible party
	Recipients []string `json:"recipients"`

	TriggerDate   Date           `json:"triggerDate"`
	PeriodDays    int            `json:"periodDays"`
	ServiceMethod ServiceMethod  `json:"serviceMethod"`
	Jurisdiction  string         `json:"jurisdiction"`
	Direction     CountDirection `json:"direction"`
	Computation   Computation    `json:"computation"`

	DueDate        Date           `json:"dueDate"`
	Status         DeadlineStatus `json:"status"`
	Jurisdictional bool           `json:"jurisdictional"`

	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CompletedBy string     `json:"completedBy,omitempty"`

	ReminderIDs  []string        `json:"reminderIDs"`
	ExtensionIDs []string        `json:"extensionIDs"`
	History      []DueDateChange `json:"history"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EffectiveStatus returns the status as of today. An open deadline whose due
// date has passed is missed even if no sweep has persisted that yet.
func (d Deadline) EffectiveStatus(today Date) DeadlineStatus {
	if d.Status == DeadlineOpen && d.DueDate.Before(today) {
		return DeadlineMissed
	}
	return d.Status
}
