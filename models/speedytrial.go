package models

import "time"

// DelayCategory classifies an excludable delay under the Speedy Trial Act
type DelayCategory string

// Delay categories
const (
	DelayPretrialMotions      DelayCategory = "pretrial_motions"
	DelayCompetencyExam       DelayCategory = "competency_exam"
	DelayInterlocutoryAppeal  DelayCategory = "interlocutory_appeal"
	DelayContinuance          DelayCategory = "continuance"
	DelayCoDefendant          DelayCategory = "co_defendant"
	DelayDefendantUnavailable DelayCategory = "defendant_unavailable"
	DelayDeferredProsecution  DelayCategory = "deferred_prosecution"
	DelayOther                DelayCategory = "other"
)

// Valid reports whether c is a known category
func (c DelayCategory) Valid() bool {
	switch c {
	case DelayPretrialMotions, DelayCompetencyExam, DelayInterlocutoryAppeal, DelayContinuance,
		DelayCoDefendant, DelayDefendantUnavailable, DelayDeferredProsecution, DelayOther:
		return true
	}
	return false
}

// ClockState is the derived state of a speedy-trial clock at a given date
type ClockState string

// Clock states
const (
	ClockRunning  ClockState = "running"
	ClockPaused   ClockState = "paused"
	ClockViolated ClockState = "violated"
	ClockClosed   ClockState = "closed"
)

// ExcludableDelay is an inclusive date range excluded from the countdown
type ExcludableDelay struct {
	ID             string        `json:"id"`
	StartDate      Date          `json:"startDate"`
	EndDate        Date          `json:"endDate"`
	Category       DelayCategory `json:"category"`
	StatutoryBasis string        `json:"statutoryBasis"`
	Description    string        `json:"description"`
	RecordedAt     time.Time     `json:"recordedAt"`
}

// Overlaps reports whether two inclusive delay ranges share at least one day
func (e ExcludableDelay) Overlaps(other ExcludableDelay) bool {
	return !e.StartDate.After(other.EndDate) && !other.StartDate.After(e.EndDate)
}

// Contains reports whether d falls inside the delay range
func (e ExcludableDelay) Contains(d Date) bool {
	return !d.Before(e.StartDate) && !d.After(e.EndDate)
}

// Remediation records the explicit action that cleared a violation flag
type Remediation struct {
	ClearedBy     string    `json:"clearedBy"`
	Reason        string    `json:"reason"`
	ClearedAt     time.Time `json:"clearedAt"`
	ViolatedOn    Date      `json:"violatedOn"`
	ElapsedOnFlag int       `json:"elapsedOnFlag"`
}

// SpeedyTrialClock holds the persisted state of a per-case statutory countdown.
// ExcludedDays and ElapsedChargeableDays are a snapshot of the last
// recomputation at AsOf; they are never updated incrementally.
type SpeedyTrialClock struct {
	CaseID     string            `json:"caseID"`
	ClockStart Date              `json:"clockStart"`
	LimitDays  int               `json:"limitDays"`
	Delays     []ExcludableDelay `json:"delays"`

	AsOf                  Date       `json:"asOf"`
	ExcludedDays          int        `json:"excludedDays"`
	ElapsedChargeableDays int        `json:"elapsedChargeableDays"`
	RemainingDays         int        `json:"remainingDays"`
	State                 ClockState `json:"state"`

	Violated      bool          `json:"violated"`
	ViolatedOn    *Date         `json:"violatedOn,omitempty"`
	ElapsedOnFlag int           `json:"elapsedOnFlag,omitempty"`
	Remediations  []Remediation `json:"remediations"`

	Closed     bool  `json:"closed"`
	DisposedOn *Date `json:"disposedOn,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
