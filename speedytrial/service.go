package speedytrial

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-compliance-api/apperr"
	"github.com/linesmerrill/court-compliance-api/databases"
	"github.com/linesmerrill/court-compliance-api/models"
)

// maxWriteAttempts bounds the read-modify-write retries on a contended clock
const maxWriteAttempts = 8

// StartRequest opens a clock for a case
type StartRequest struct {
	CaseID     string      `json:"caseID"`
	ClockStart models.Date `json:"clockStart"`
	LimitDays  int         `json:"limitDays"`
}

// DelayRequest records an excludable delay against a case's clock
type DelayRequest struct {
	StartDate      models.Date          `json:"startDate"`
	EndDate        models.Date          `json:"endDate"`
	Category       models.DelayCategory `json:"category"`
	StatutoryBasis string               `json:"statutoryBasis"`
	Description    string               `json:"description"`
}

// Service manages speedy-trial clocks. Every operation reloads the clock and
// recomputes its counters from the delay ledger.
type Service struct {
	clocks       databases.SpeedyTrialDatabase
	defaultLimit int
	now          func() time.Time
}

// NewService returns a speedy-trial service. A non-positive defaultLimit
// falls back to DefaultLimitDays.
func NewService(db databases.SpeedyTrialDatabase, defaultLimit int) *Service {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimitDays
	}
	return &Service{clocks: db, defaultLimit: defaultLimit, now: time.Now}
}

func (s *Service) asOfOrToday(asOf models.Date) models.Date {
	if asOf.IsZero() {
		return models.DateOf(s.now())
	}
	return asOf
}

// Start creates the clock for a case. A case has at most one clock.
func (s *Service) Start(ctx context.Context, namespace string, req StartRequest) (*models.SpeedyTrialClock, error) {
	if strings.TrimSpace(req.CaseID) == "" {
		return nil, apperr.New(apperr.InvalidRequest, "case id is required")
	}
	if req.ClockStart.IsZero() {
		return nil, apperr.New(apperr.InvalidRequest, "clock start date is required")
	}
	limit := req.LimitDays
	if limit <= 0 {
		limit = s.defaultLimit
	}
	now := s.now()
	clock := models.SpeedyTrialClock{
		CaseID:       req.CaseID,
		ClockStart:   req.ClockStart,
		LimitDays:    limit,
		Delays:       []models.ExcludableDelay{},
		Remediations: []models.Remediation{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	clock = Evaluate(clock, req.ClockStart)
	ok, err := s.clocks.Insert(ctx, namespace, &clock)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.AlreadyExists, "speedy-trial clock for case %q already exists", req.CaseID)
	}
	zap.S().Infow("speedy-trial clock started",
		"namespace", namespace, "case", req.CaseID, "start", req.ClockStart.String(), "limit", limit)
	return &clock, nil
}

// Get returns the clock with counters computed as of asOf (today when zero).
// Nothing is persisted.
func (s *Service) Get(ctx context.Context, namespace, caseID string, asOf models.Date) (*models.SpeedyTrialClock, error) {
	clock, _, err := s.clocks.FindOne(ctx, namespace, caseID)
	if err != nil {
		return nil, err
	}
	evaluated := Evaluate(*clock, s.asOfOrToday(asOf))
	return &evaluated, nil
}

// ElapsedChargeableDays recomputes the chargeable days as of a date
func (s *Service) ElapsedChargeableDays(ctx context.Context, namespace, caseID string, asOf models.Date) (int, error) {
	clock, err := s.Get(ctx, namespace, caseID, asOf)
	if err != nil {
		return 0, err
	}
	return clock.ElapsedChargeableDays, nil
}

// AddExcludableDelay appends a delay to the case's ledger. The range is
// inclusive and must not intersect an existing delay. A delay recorded after
// a violation was flagged does not clear the flag.
func (s *Service) AddExcludableDelay(ctx context.Context, namespace, caseID string, req DelayRequest) (*models.SpeedyTrialClock, error) {
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, apperr.New(apperr.InvalidRequest, "delay start and end dates are required")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, apperr.New(apperr.InvalidRequest, "delay ends %s before it starts %s", req.EndDate, req.StartDate)
	}
	if req.Category == "" {
		req.Category = models.DelayOther
	}
	if !req.Category.Valid() {
		return nil, apperr.New(apperr.InvalidRequest, "unknown delay category %q", req.Category)
	}

	return s.update(ctx, namespace, caseID, func(clock *models.SpeedyTrialClock) error {
		if clock.Closed {
			return apperr.New(apperr.InvalidRequest, "speedy-trial clock for case %q is closed", caseID)
		}
		delay := models.ExcludableDelay{
			ID:             uuid.New().String(),
			StartDate:      req.StartDate,
			EndDate:        req.EndDate,
			Category:       req.Category,
			StatutoryBasis: req.StatutoryBasis,
			Description:    req.Description,
			RecordedAt:     s.now(),
		}
		for _, existing := range clock.Delays {
			if existing.Overlaps(delay) {
				return apperr.New(apperr.OverlappingDelay, "delay %s to %s overlaps recorded delay %s to %s",
					delay.StartDate, delay.EndDate, existing.StartDate, existing.EndDate)
			}
		}
		clock.Delays = append(clock.Delays, delay)
		sort.SliceStable(clock.Delays, func(a, b int) bool {
			return clock.Delays[a].StartDate.Before(clock.Delays[b].StartDate)
		})
		*clock = Evaluate(*clock, models.DateOf(s.now()))
		return nil
	})
}

// CheckViolation recomputes the clock as of asOf and flags it violated the
// first time chargeable days exceed the limit. Once set, the flag stays until
// Remedy clears it.
func (s *Service) CheckViolation(ctx context.Context, namespace, caseID string, asOf models.Date) (*models.SpeedyTrialClock, error) {
	asOf = s.asOfOrToday(asOf)
	return s.update(ctx, namespace, caseID, func(clock *models.SpeedyTrialClock) error {
		s.check(namespace, clock, asOf)
		return nil
	})
}

func (s *Service) check(namespace string, clock *models.SpeedyTrialClock, asOf models.Date) {
	*clock = Evaluate(*clock, asOf)
	if clock.Closed || clock.Violated || clock.ElapsedChargeableDays <= clock.LimitDays {
		return
	}
	on := asOf
	clock.Violated = true
	clock.ViolatedOn = &on
	clock.ElapsedOnFlag = clock.ElapsedChargeableDays
	clock.State = models.ClockViolated
	zap.S().Warnw("speedy-trial violation flagged",
		"namespace", namespace, "case", clock.CaseID, "elapsed", clock.ElapsedChargeableDays, "limit", clock.LimitDays)
}

// CheckAll runs CheckViolation over every open clock in the namespace and
// returns the clocks newly flagged by this pass
func (s *Service) CheckAll(ctx context.Context, namespace string, asOf models.Date) ([]models.SpeedyTrialClock, error) {
	asOf = s.asOfOrToday(asOf)
	all, err := s.clocks.Find(ctx, namespace)
	if err != nil {
		return nil, err
	}
	flagged := []models.SpeedyTrialClock{}
	for _, c := range all {
		if c.Closed || c.Violated {
			continue
		}
		updated, err := s.CheckViolation(ctx, namespace, c.CaseID, asOf)
		if err != nil {
			return flagged, err
		}
		if updated.Violated {
			flagged = append(flagged, *updated)
		}
	}
	return flagged, nil
}

// FindApproaching returns running clocks with at most threshold chargeable
// days remaining as of asOf, fewest remaining first
func (s *Service) FindApproaching(ctx context.Context, namespace string, threshold int, asOf models.Date) ([]models.SpeedyTrialClock, error) {
	if threshold < 0 {
		return nil, apperr.New(apperr.InvalidRequest, "threshold must not be negative, got %d", threshold)
	}
	asOf = s.asOfOrToday(asOf)
	all, err := s.clocks.Find(ctx, namespace)
	if err != nil {
		return nil, err
	}
	out := []models.SpeedyTrialClock{}
	for _, c := range all {
		e := Evaluate(c, asOf)
		if e.State == models.ClockRunning && e.RemainingDays <= threshold {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].RemainingDays < out[b].RemainingDays })
	return out, nil
}

// Close stops the clock at the case's disposition
func (s *Service) Close(ctx context.Context, namespace, caseID string, disposedOn models.Date) (*models.SpeedyTrialClock, error) {
	disposedOn = s.asOfOrToday(disposedOn)
	return s.update(ctx, namespace, caseID, func(clock *models.SpeedyTrialClock) error {
		if clock.Closed {
			return apperr.New(apperr.InvalidRequest, "speedy-trial clock for case %q is already closed", caseID)
		}
		if disposedOn.Before(clock.ClockStart) {
			return apperr.New(apperr.InvalidRequest, "disposition %s precedes clock start %s", disposedOn, clock.ClockStart)
		}
		on := disposedOn
		clock.Closed = true
		clock.DisposedOn = &on
		*clock = Evaluate(*clock, disposedOn)
		return nil
	})
}

// Remedy clears a violation flag as an explicit, recorded action. It is
// refused while the clock still exceeds its limit today.
func (s *Service) Remedy(ctx context.Context, namespace, caseID, actor, reason string) (*models.SpeedyTrialClock, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, apperr.New(apperr.InvalidRequest, "actor is required")
	}
	today := models.DateOf(s.now())
	return s.update(ctx, namespace, caseID, func(clock *models.SpeedyTrialClock) error {
		if !clock.Violated {
			return apperr.New(apperr.InvalidRequest, "speedy-trial clock for case %q is not flagged", caseID)
		}
		e := Evaluate(*clock, today)
		if !clock.Closed && e.ElapsedChargeableDays > e.LimitDays {
			return apperr.New(apperr.InvalidRequest, "case %q still has %d chargeable days against a limit of %d",
				caseID, e.ElapsedChargeableDays, e.LimitDays)
		}
		rem := models.Remediation{
			ClearedBy:     actor,
			Reason:        reason,
			ClearedAt:     s.now(),
			ElapsedOnFlag: clock.ElapsedOnFlag,
		}
		if clock.ViolatedOn != nil {
			rem.ViolatedOn = *clock.ViolatedOn
		}
		clock.Remediations = append(clock.Remediations, rem)
		clock.Violated = false
		clock.ViolatedOn = nil
		clock.ElapsedOnFlag = 0
		*clock = Evaluate(*clock, today)
		return nil
	})
}

// update reloads the clock, applies fn and writes it back only if nobody
// else changed it in between, retrying on contention
func (s *Service) update(ctx context.Context, namespace, caseID string, fn func(*models.SpeedyTrialClock) error) (*models.SpeedyTrialClock, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		clock, rev, err := s.clocks.FindOne(ctx, namespace, caseID)
		if err != nil {
			return nil, err
		}
		if err := fn(clock); err != nil {
			return nil, err
		}
		clock.UpdatedAt = s.now()
		ok, err := s.clocks.SaveIfUnchanged(ctx, namespace, clock, rev)
		if err != nil {
			return nil, err
		}
		if ok {
			return clock, nil
		}
		zap.S().Debugw("speedy-trial clock write contended, retrying", "case", caseID, "attempt", attempt+1)
	}
	return nil, apperr.New(apperr.StorageFailure, "speedy-trial clock for case %q is too contended to update", caseID)
}
