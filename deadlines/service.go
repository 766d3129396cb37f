package deadlines

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

// CreateRequest is the input for registering a deadline on a case
type CreateRequest struct {
	ComputeRequest
	CaseID           string   `json:"caseID"`
	DeadlineType     string   `json:"deadlineType"`
	Description      string   `json:"description"`
	RuleCitation     string   `json:"ruleCitation"`
	ResponsibleParty string   `json:"responsibleParty"`
	Recipients       []string `json:"recipients"`
	Jurisdictional   bool     `json:"jurisdictional"`
}

// Service owns the deadline lifecycle: open, then completed or missed
type Service struct {
	clock     *Clock
	deadlines databases.DeadlineDatabase
	reminders *Reminders
	now       func() time.Time
}

// NewService returns a deadline service
func NewService(clock *Clock, deadlines databases.DeadlineDatabase, reminders *Reminders) *Service {
	return &Service{clock: clock, deadlines: deadlines, reminders: reminders, now: time.Now}
}

func (s *Service) today() models.Date {
	return models.DateOf(s.now())
}

// Create computes the due date, stores the deadline and generates its reminders
func (s *Service) Create(ctx context.Context, namespace string, req CreateRequest) (*models.Deadline, error) {
	if strings.TrimSpace(req.CaseID) == "" {
		return nil, apperr.New(apperr.InvalidRequest, "case id is required")
	}
	comp, err := s.clock.ComputeDueDate(req.ComputeRequest)
	if err != nil {
		return nil, err
	}
	in := req.ComputeRequest.withDefaults()

	now := s.now()
	d := &models.Deadline{
		ID:               uuid.New().String(),
		CaseID:           req.CaseID,
		DeadlineType:     req.DeadlineType,
		Description:      req.Description,
		RuleCitation:     req.RuleCitation,
		ResponsibleParty: req.ResponsibleParty,
		Recipients:       req.Recipients,
		TriggerDate:      in.TriggerDate,
		PeriodDays:       in.PeriodDays,
		ServiceMethod:    in.ServiceMethod,
		Jurisdiction:     comp.Jurisdiction,
		Direction:        in.Direction,
		Computation:      comp,
		DueDate:          comp.DueDate,
		Status:           models.DeadlineOpen,
		Jurisdictional:   req.Jurisdictional,
		ReminderIDs:      []string{},
		ExtensionIDs:     []string{},
		History:          []models.DueDateChange{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.deadlines.Save(ctx, namespace, d); err != nil {
		return nil, err
	}
	if _, err := s.reminders.Generate(ctx, namespace, d); err != nil {
		return nil, err
	}
	if err := s.deadlines.Save(ctx, namespace, d); err != nil {
		return nil, err
	}
	zap.S().Infow("deadline created",
		"namespace", namespace, "deadline", d.ID, "case", d.CaseID, "dueDate", d.DueDate.String())
	return d, nil
}

// Get returns a deadline with its status as of today
func (s *Service) Get(ctx context.Context, namespace, id string) (*models.Deadline, error) {
	d, err := s.deadlines.FindOne(ctx, namespace, id)
	if err != nil {
		return nil, err
	}
	d.Status = d.EffectiveStatus(s.today())
	return d, nil
}

// ListForCase returns a case's deadlines ordered by due date
func (s *Service) ListForCase(ctx context.Context, namespace, caseID string) ([]models.Deadline, error) {
	ds, err := s.deadlines.FindByCase(ctx, namespace, caseID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	for i := range ds {
		ds[i].Status = ds[i].EffectiveStatus(today)
	}
	sort.SliceStable(ds, func(a, b int) bool { return ds[a].DueDate.Before(ds[b].DueDate) })
	return ds, nil
}

// Complete marks an open deadline completed. A deadline already past its due
// date can still be completed; it was open until now.
func (s *Service) Complete(ctx context.Context, namespace, id, actor string) (*models.Deadline, error) {
	d, err := s.deadlines.FindOne(ctx, namespace, id)
	if err != nil {
		return nil, err
	}
	if d.Status != models.DeadlineOpen {
		return nil, apperr.New(apperr.InvalidRequest, "deadline %q is %s, not open", d.ID, d.Status)
	}
	now := s.now()
	d.Status = models.DeadlineCompleted
	d.CompletedAt = &now
	d.CompletedBy = actor
	d.UpdatedAt = now
	if err := s.deadlines.Save(ctx, namespace, d); err != nil {
		return nil, err
	}
	return d, nil
}

// MarkMissed persists the missed status on every open deadline whose due date
// is before today and returns how many changed
func (s *Service) MarkMissed(ctx context.Context, namespace string) (int, error) {
	all, err := s.deadlines.Find(ctx, namespace)
	if err != nil {
		return 0, err
	}
	today := s.today()
	marked := 0
	for i := range all {
		d := &all[i]
		if d.Status != models.DeadlineOpen || d.EffectiveStatus(today) != models.DeadlineMissed {
			continue
		}
		d.Status = models.DeadlineMissed
		d.UpdatedAt = s.now()
		if err := s.deadlines.Save(ctx, namespace, d); err != nil {
			return marked, err
		}
		marked++
	}
	return marked, nil
}
