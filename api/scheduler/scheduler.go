package scheduler

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-compliance-api/api"
	"github.com/linesmerrill/court-compliance-api/apperr"
	"github.com/linesmerrill/court-compliance-api/databases"
	"github.com/linesmerrill/court-compliance-api/deadlines"
	"github.com/linesmerrill/court-compliance-api/logging"
	"github.com/linesmerrill/court-compliance-api/models"
	"github.com/linesmerrill/court-compliance-api/notify"
	"github.com/linesmerrill/court-compliance-api/speedytrial"
)

// SweepJob is the lock name held while a tenant is swept
const SweepJob = "compliance-sweep"

const (
	sweepTimeout = 5 * time.Minute
	lockTTL      = 10 * time.Minute
)

// Scheduler runs the periodic compliance sweep for each configured tenant
type Scheduler struct {
	cron        *cron.Cron
	Deadlines   *deadlines.Service
	Reminders   *deadlines.Reminders
	SpeedyTrial *speedytrial.Service
	LockDB      databases.SchedulerLockDatabase
	Notifier    notify.Notifier
	Metrics     *api.Metrics
	Tenants     []string

	instanceID string
	now        func() time.Time
	log        *zap.SugaredLogger
}

// SweepResult counts what one tenant's sweep changed
type SweepResult struct {
	Skipped          bool
	DeadlinesMissed  int
	RemindersSent    int
	RemindersSkipped int
	ReminderFailures int
	Violations       int
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	deadlineSvc *deadlines.Service,
	reminders *deadlines.Reminders,
	speedy *speedytrial.Service,
	lockDB databases.SchedulerLockDatabase,
	notifier notify.Notifier,
	metrics *api.Metrics,
	tenants []string,
) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = "instance-" + uuid.New().String()
	}

	return &Scheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		Deadlines:   deadlineSvc,
		Reminders:   reminders,
		SpeedyTrial: speedy,
		LockDB:      lockDB,
		Notifier:    notifier,
		Metrics:     metrics,
		Tenants:     tenants,
		instanceID:  instanceID,
		now:         time.Now,
		log:         logging.New("scheduler"),
	}
}

// Start registers the sweep on the cron spec and begins running it
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runSweep); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Infow("compliance sweep scheduled", "spec", spec, "tenants", s.Tenants, "instance", s.instanceID)
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("compliance sweep stopped")
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	s.SweepAll(ctx)
}

// SweepAll sweeps every configured tenant. A failing tenant is logged and
// does not stop the others.
func (s *Scheduler) SweepAll(ctx context.Context) map[string]SweepResult {
	results := make(map[string]SweepResult, len(s.Tenants))
	for _, ns := range s.Tenants {
		res, err := s.Sweep(ctx, ns)
		results[ns] = res
		outcome := "ok"
		switch {
		case err != nil:
			outcome = "error"
			s.log.Errorw("compliance sweep failed", "tenant", ns, "error", err)
		case res.Skipped:
			outcome = "skipped"
		}
		if s.Metrics != nil {
			s.Metrics.SweepRuns.WithLabelValues(ns, outcome).Inc()
		}
	}
	return results
}

// Sweep marks missed deadlines, delivers due reminders and flags speedy-trial
// violations for one tenant. It does nothing when another instance holds the
// tenant's sweep lock.
func (s *Scheduler) Sweep(ctx context.Context, namespace string) (SweepResult, error) {
	var res SweepResult

	// Try to acquire distributed lock
	acquired, err := s.LockDB.TryAcquireLock(ctx, namespace, SweepJob, s.instanceID, lockTTL)
	if err != nil {
		return res, err
	}
	if !acquired {
		s.log.Debugw("compliance sweep already running on another instance, skipping", "tenant", namespace)
		res.Skipped = true
		return res, nil
	}
	defer func() {
		if err := s.LockDB.ReleaseLock(ctx, namespace, SweepJob, s.instanceID); err != nil {
			s.log.Warnw("failed to release sweep lock", "tenant", namespace, "error", err)
		}
	}()

	s.log.Infow("running compliance sweep", "tenant", namespace, "instance", s.instanceID)

	res.DeadlinesMissed, err = s.Deadlines.MarkMissed(ctx, namespace)
	s.count(func(m *api.Metrics) { m.DeadlinesMissed.Add(float64(res.DeadlinesMissed)) })
	if err != nil {
		return res, err
	}

	if err := s.deliverReminders(ctx, namespace, &res); err != nil {
		return res, err
	}

	flagged, err := s.SpeedyTrial.CheckAll(ctx, namespace, models.DateOf(s.now()))
	res.Violations = len(flagged)
	s.count(func(m *api.Metrics) { m.SpeedyTrialViolations.Add(float64(res.Violations)) })
	if err != nil {
		return res, err
	}

	s.log.Infow("compliance sweep complete",
		"tenant", namespace,
		"deadlinesMissed", res.DeadlinesMissed,
		"remindersSent", res.RemindersSent,
		"remindersSkipped", res.RemindersSkipped,
		"reminderFailures", res.ReminderFailures,
		"violations", res.Violations,
	)
	return res, nil
}

// deliverReminders sends every due reminder. Reminders for deadlines that are
// no longer open are marked sent without notifying anyone. A failed delivery
// stays unsent so the next sweep retries it.
func (s *Scheduler) deliverReminders(ctx context.Context, namespace string, res *SweepResult) error {
	due, err := s.Reminders.Due(ctx, namespace, models.DateOf(s.now()))
	if err != nil {
		return err
	}
	for _, rem := range due {
		d, err := s.Deadlines.Get(ctx, namespace, rem.DeadlineID)
		if apperr.Is(err, apperr.NotFound) {
			s.log.Warnw("reminder references a missing deadline", "tenant", namespace, "reminder", rem.ID, "deadline", rem.DeadlineID)
			continue
		}
		if err != nil {
			return err
		}

		if d.Status == models.DeadlineOpen {
			if err := s.Notifier.Notify(ctx, rem, *d); err != nil {
				res.ReminderFailures++
				s.count(func(m *api.Metrics) { m.ReminderFailures.Inc() })
				s.log.Errorw("failed to deliver reminder", "tenant", namespace, "reminder", rem.ID, "error", err)
				continue
			}
			res.RemindersSent++
			s.count(func(m *api.Metrics) { m.RemindersSent.Inc() })
		} else {
			res.RemindersSkipped++
		}

		// InvalidRequest means a concurrent sweep already stamped it
		if err := s.Reminders.MarkSent(ctx, namespace, rem.ID, s.now()); err != nil && !apperr.Is(err, apperr.InvalidRequest) {
			return err
		}
	}
	return nil
}

func (s *Scheduler) count(fn func(*api.Metrics)) {
	if s.Metrics != nil {
		fn(s.Metrics)
	}
}
