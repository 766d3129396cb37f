package deadlines

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-compliance-api/apperr"
	"github.com/linesmerrill/court-compliance-api/databases"
	"github.com/linesmerrill/court-compliance-api/models"
)

// Reminders derives reminder schedules from deadlines and tracks acknowledgment
type Reminders struct {
	reminders databases.ReminderDatabase
	offsets   []int
	now       func() time.Time
}

// NewReminders returns a reminder scheduler firing at the given day offsets
// before each due date. Empty offsets fall back to models.DefaultReminderOffsets.
func NewReminders(db databases.ReminderDatabase, offsets []int) *Reminders {
	if len(offsets) == 0 {
		offsets = models.DefaultReminderOffsets
	}
	return &Reminders{reminders: db, offsets: offsets, now: time.Now}
}

func (r *Reminders) today() models.Date {
	return models.DateOf(r.now())
}

// recipients returns the responsible party followed by the extra recipients,
// without blanks or duplicates
func recipients(d *models.Deadline) []string {
	seen := map[string]bool{}
	var out []string
	for _, rcpt := range append([]string{d.ResponsibleParty}, d.Recipients...) {
		if rcpt == "" || seen[rcpt] {
			continue
		}
		seen[rcpt] = true
		out = append(out, rcpt)
	}
	return out
}

// reminderSpace scopes reminder ids derived by reminderID
var reminderSpace = uuid.MustParse("4f1c2a8e-7d3b-4e59-9a61-0b8d2c5e7f13")

// reminderID is stable for a deadline, scheduled date, offset and recipient,
// so generating the same schedule twice rewrites the same records
func reminderID(deadlineID string, at models.Date, offset int, recipient string) string {
	key := fmt.Sprintf("%s|%s|%d|%s", deadlineID, at, offset, recipient)
	return uuid.NewSHA1(reminderSpace, []byte(key)).String()
}

// Generate creates one reminder per offset per recipient for the deadline's
// current due date and appends their ids to d.ReminderIDs. Offsets that would
// land before today are skipped. The caller persists d.
func (r *Reminders) Generate(ctx context.Context, namespace string, d *models.Deadline) ([]models.Reminder, error) {
	return r.generate(ctx, namespace, d, map[string]bool{})
}

// generate skips ids already in keep and adds the ids it writes
func (r *Reminders) generate(ctx context.Context, namespace string, d *models.Deadline, keep map[string]bool) ([]models.Reminder, error) {
	today := r.today()
	created := []models.Reminder{}
	for _, offset := range r.offsets {
		at := d.DueDate.AddDays(-offset)
		if at.Before(today) {
			continue
		}
		for _, rcpt := range recipients(d) {
			id := reminderID(d.ID, at, offset, rcpt)
			if keep[id] {
				continue
			}
			keep[id] = true
			rem := models.Reminder{
				ID:           id,
				DeadlineID:   d.ID,
				OffsetDays:   offset,
				ScheduledFor: at,
				Recipient:    rcpt,
				CreatedAt:    r.now(),
			}
			if err := r.reminders.Save(ctx, namespace, &rem); err != nil {
				return nil, err
			}
			created = append(created, rem)
			d.ReminderIDs = append(d.ReminderIDs, rem.ID)
		}
	}
	return created, nil
}

// Regenerate re-derives reminders after a due-date change. Unacknowledged
// reminders scheduled today or later are discarded; acknowledged and past
// reminders stay for audit. d.ReminderIDs is rewritten to the surviving and
// new reminders and the full set is returned.
func (r *Reminders) Regenerate(ctx context.Context, namespace string, d *models.Deadline) ([]models.Reminder, error) {
	today := r.today()
	existing, err := r.ListForDeadline(ctx, namespace, d.ID)
	if err != nil {
		return nil, err
	}
	kept := []models.Reminder{}
	for _, rem := range existing {
		if !rem.Acknowledged && !rem.ScheduledFor.Before(today) {
			if err := r.reminders.DeleteOne(ctx, namespace, rem.ID); err != nil {
				return nil, err
			}
			continue
		}
		kept = append(kept, rem)
	}

	d.ReminderIDs = make([]string, 0, len(kept))
	keep := make(map[string]bool, len(kept))
	for _, rem := range kept {
		d.ReminderIDs = append(d.ReminderIDs, rem.ID)
		keep[rem.ID] = true
	}
	created, err := r.generate(ctx, namespace, d, keep)
	if err != nil {
		return nil, err
	}
	zap.S().Debugw("regenerated reminders",
		"namespace", namespace, "deadline", d.ID, "kept", len(kept), "created", len(created))

	all := append(kept, created...)
	sortReminders(all)
	return all, nil
}

// Acknowledge marks a reminder acknowledged. Acknowledging an acknowledged
// reminder returns it unchanged.
func (r *Reminders) Acknowledge(ctx context.Context, namespace, id, actor string) (*models.Reminder, error) {
	rem, err := r.reminders.FindOne(ctx, namespace, id)
	if err != nil {
		return nil, err
	}
	if rem.Acknowledged {
		return rem, nil
	}
	at := r.now()
	rem.Acknowledged = true
	rem.AcknowledgedAt = &at
	rem.AcknowledgedBy = actor
	if err := r.reminders.Save(ctx, namespace, rem); err != nil {
		return nil, err
	}
	return rem, nil
}

// Get returns a single reminder
func (r *Reminders) Get(ctx context.Context, namespace, id string) (*models.Reminder, error) {
	return r.reminders.FindOne(ctx, namespace, id)
}

// ListForDeadline returns a deadline's reminders ordered by scheduled date
func (r *Reminders) ListForDeadline(ctx context.Context, namespace, deadlineID string) ([]models.Reminder, error) {
	all, err := r.reminders.Find(ctx, namespace)
	if err != nil {
		return nil, err
	}
	out := []models.Reminder{}
	for _, rem := range all {
		if rem.DeadlineID == deadlineID {
			out = append(out, rem)
		}
	}
	sortReminders(out)
	return out, nil
}

// Due returns reminders that should go out by today: unsent, unacknowledged
// and scheduled on or before today
func (r *Reminders) Due(ctx context.Context, namespace string, today models.Date) ([]models.Reminder, error) {
	all, err := r.reminders.Find(ctx, namespace)
	if err != nil {
		return nil, err
	}
	out := []models.Reminder{}
	for _, rem := range all {
		if rem.Acknowledged || rem.SentAt != nil || rem.ScheduledFor.After(today) {
			continue
		}
		out = append(out, rem)
	}
	sortReminders(out)
	return out, nil
}

// MarkSent stamps a reminder as dispatched
func (r *Reminders) MarkSent(ctx context.Context, namespace, id string, at time.Time) error {
	rem, err := r.reminders.FindOne(ctx, namespace, id)
	if err != nil {
		return err
	}
	if rem.SentAt != nil {
		return apperr.New(apperr.InvalidRequest, "reminder %q was already sent", id)
	}
	rem.SentAt = &at
	return r.reminders.Save(ctx, namespace, rem)
}

func sortReminders(rs []models.Reminder) {
	sort.SliceStable(rs, func(a, b int) bool {
		if rs[a].ScheduledFor != rs[b].ScheduledFor {
			return rs[a].ScheduledFor.Before(rs[b].ScheduledFor)
		}
		return rs[a].Recipient < rs[b].Recipient
	})
}
