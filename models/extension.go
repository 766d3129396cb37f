package models

import "time"

// ExtensionStatus is the decision state of an Extension
type ExtensionStatus string

// Extension statuses. Approved and Denied are terminal.
const (
	ExtensionPending  ExtensionStatus = "pending"
	ExtensionApproved ExtensionStatus = "approved"
	ExtensionDenied   ExtensionStatus = "denied"
)

// Extension holds the structure for a request to move a deadline's due date
type Extension struct {
	ID              string          `json:"id"`
	DeadlineID      string          `json:"deadlineID"`
	OriginalDueDate Date            `json:"originalDueDate"`
	RequestedDate   Date            `json:"requestedDate"`
	Reason          string          `json:"reason"`
	RequestedBy     string          `json:"requestedBy"`
	Status          ExtensionStatus `json:"status"`
	DecidedAt       *time.Time      `json:"decidedAt,omitempty"`
	DecidedBy       string          `json:"decidedBy,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Decided reports whether the extension has reached a terminal state
func (e Extension) Decided() bool {
	return e.Status == ExtensionApproved || e.Status == ExtensionDenied
}
