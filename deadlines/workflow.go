package deadlines

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-compliance-api/apperr"
	"github.com/linesmerrill/court-compliance-api/databases"
	"github.com/linesmerrill/court-compliance-api/models"
)

// ExtensionRequest asks for a deadline's due date to move
type ExtensionRequest struct {
	DeadlineID    string      `json:"deadlineID"`
	RequestedDate models.Date `json:"requestedDate"`
	Reason        string      `json:"reason"`
	RequestedBy   string      `json:"requestedBy"`
}

// maxDecideAttempts bounds the compare-and-swap retries when applying an approval
const maxDecideAttempts = 8

// Workflow runs the extension approval state machine:
// pending, then approved or denied, both terminal
type Workflow struct {
	deadlines  databases.DeadlineDatabase
	extensions databases.ExtensionDatabase
	reminders  *Reminders
	now        func() time.Time
}

// NewWorkflow returns an extension workflow
func NewWorkflow(deadlines databases.DeadlineDatabase, extensions databases.ExtensionDatabase, reminders *Reminders) *Workflow {
	return &Workflow{deadlines: deadlines, extensions: extensions, reminders: reminders, now: time.Now}
}

// Request files a pending extension against a deadline. Jurisdictional
// deadlines cannot be extended.
func (w *Workflow) Request(ctx context.Context, namespace string, req ExtensionRequest) (*models.Extension, error) {
	if req.RequestedDate.IsZero() {
		return nil, apperr.New(apperr.InvalidRequest, "requested date is required")
	}
	d, err := w.deadlines.FindOne(ctx, namespace, req.DeadlineID)
	if err != nil {
		return nil, err
	}
	if d.Jurisdictional {
		return nil, apperr.New(apperr.JurisdictionalDeadline, "deadline %q is jurisdictional and cannot be extended", d.ID)
	}
	if d.Status == models.DeadlineCompleted {
		return nil, apperr.New(apperr.InvalidRequest, "deadline %q is already completed", d.ID)
	}

	ext := &models.Extension{
		ID:              uuid.New().String(),
		DeadlineID:      d.ID,
		OriginalDueDate: d.DueDate,
		RequestedDate:   req.RequestedDate,
		Reason:          req.Reason,
		RequestedBy:     req.RequestedBy,
		Status:          models.ExtensionPending,
		CreatedAt:       w.now(),
	}
	if err := w.extensions.Insert(ctx, namespace, ext); err != nil {
		return nil, err
	}
	d.ExtensionIDs = append(d.ExtensionIDs, ext.ID)
	d.UpdatedAt = w.now()
	if err := w.deadlines.Save(ctx, namespace, d); err != nil {
		return nil, err
	}
	return ext, nil
}

// Decide approves or denies a pending extension and returns the deadline as
// it stands afterwards. Approval moves the due date to the requested date,
// records the change in the deadline's history, regenerates reminders and
// reopens a missed deadline whose new due date has not passed.
// Deciding an already decided extension fails with AlreadyDecided, including
// when a concurrent decision wins the write. An approval whose deadline
// update never landed is completed first.
func (w *Workflow) Decide(ctx context.Context, namespace, extensionID string, approve bool, actor string) (*models.Deadline, error) {
	ext, rev, err := w.extensions.FindOne(ctx, namespace, extensionID)
	if err != nil {
		return nil, err
	}
	if ext.Decided() {
		if ext.Status == models.ExtensionApproved {
			if _, err := w.apply(ctx, namespace, ext); err != nil {
				return nil, err
			}
		}
		return nil, apperr.New(apperr.AlreadyDecided, "extension %q was already %s", ext.ID, ext.Status)
	}

	at := w.now()
	ext.Status = models.ExtensionDenied
	if approve {
		ext.Status = models.ExtensionApproved
	}
	ext.DecidedAt = &at
	ext.DecidedBy = actor
	ok, err := w.extensions.SaveIfUnchanged(ctx, namespace, ext, rev)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.AlreadyDecided, "extension %q was decided concurrently", ext.ID)
	}

	if approve {
		return w.apply(ctx, namespace, ext)
	}
	d, err := w.deadlines.FindOne(ctx, namespace, ext.DeadlineID)
	if err != nil {
		return nil, err
	}
	d.Status = d.EffectiveStatus(models.DateOf(w.now()))
	return d, nil
}

// apply moves the deadline to an approved extension's date. It is a no-op
// when the deadline history already records the extension, so it can be
// repeated after a partial failure.
func (w *Workflow) apply(ctx context.Context, namespace string, ext *models.Extension) (*models.Deadline, error) {
	for attempt := 0; attempt < maxDecideAttempts; attempt++ {
		d, rev, err := w.deadlines.FindOneWithRevision(ctx, namespace, ext.DeadlineID)
		if err != nil {
			return nil, err
		}
		today := models.DateOf(w.now())
		if applied(d, ext.ID) {
			d.Status = d.EffectiveStatus(today)
			return d, nil
		}

		approvedAt := w.now()
		if ext.DecidedAt != nil {
			approvedAt = *ext.DecidedAt
		}
		d.History = append(d.History, models.DueDateChange{
			From:        d.DueDate,
			To:          ext.RequestedDate,
			ExtensionID: ext.ID,
			ApprovedBy:  ext.DecidedBy,
			ApprovedAt:  approvedAt,
		})
		d.DueDate = ext.RequestedDate
		if d.Status == models.DeadlineMissed && !d.DueDate.Before(today) {
			d.Status = models.DeadlineOpen
		}
		d.UpdatedAt = w.now()
		if _, err := w.reminders.Regenerate(ctx, namespace, d); err != nil {
			return nil, err
		}
		ok, err := w.deadlines.SaveIfUnchanged(ctx, namespace, d, rev)
		if err != nil {
			return nil, err
		}
		if ok {
			zap.S().Infow("extension approved",
				"namespace", namespace, "extension", ext.ID, "deadline", d.ID, "dueDate", d.DueDate.String())
			d.Status = d.EffectiveStatus(today)
			return d, nil
		}
	}
	return nil, apperr.New(apperr.StorageFailure, "deadline %q kept changing while applying extension %q", ext.DeadlineID, ext.ID)
}

func applied(d *models.Deadline, extensionID string) bool {
	for _, change := range d.History {
		if change.ExtensionID == extensionID {
			return true
		}
	}
	return false
}

// Get returns a single extension
func (w *Workflow) Get(ctx context.Context, namespace, id string) (*models.Extension, error) {
	ext, _, err := w.extensions.FindOne(ctx, namespace, id)
	return ext, err
}

// ListForDeadline returns a deadline's extensions in the order they were filed
func (w *Workflow) ListForDeadline(ctx context.Context, namespace, deadlineID string) ([]models.Extension, error) {
	all, err := w.extensions.Find(ctx, namespace)
	if err != nil {
		return nil, err
	}
	out := []models.Extension{}
	for _, ext := range all {
		if ext.DeadlineID == deadlineID {
			out = append(out, ext)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	return out, nil
}
