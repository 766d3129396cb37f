// Package compliance rolls up deadline, extension and speedy-trial state
// into a per-tenant report. It never writes.
package compliance

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linesmerrill/court-compliance-api/apperr"
	"github.com/linesmerrill/court-compliance-api/databases"
	"github.com/linesmerrill/court-compliance-api/models"
	"github.com/linesmerrill/court-compliance-api/speedytrial"
)

// DefaultThresholdDays is the near-violation window used when none is given
const DefaultThresholdDays = 10

// Reporter computes compliance reports from stored state on every call
type Reporter struct {
	deadlines        databases.DeadlineDatabase
	extensions       databases.ExtensionDatabase
	clocks           databases.SpeedyTrialDatabase
	defaultThreshold int
	now              func() time.Time
}

// NewReporter returns a Reporter. A non-positive defaultThreshold falls back
// to DefaultThresholdDays.
func NewReporter(deadlines databases.DeadlineDatabase, extensions databases.ExtensionDatabase, clocks databases.SpeedyTrialDatabase, defaultThreshold int) *Reporter {
	if defaultThreshold <= 0 {
		defaultThreshold = DefaultThresholdDays
	}
	return &Reporter{
		deadlines:        deadlines,
		extensions:       extensions,
		clocks:           clocks,
		defaultThreshold: defaultThreshold,
		now:              time.Now,
	}
}

// Report aggregates the namespace's state as of asOf (today when zero).
// A negative threshold selects the default.
func (r *Reporter) Report(ctx context.Context, namespace string, asOf models.Date, threshold int) (*models.ComplianceReport, error) {
	if asOf.IsZero() {
		asOf = models.DateOf(r.now())
	}
	if threshold < 0 {
		threshold = r.defaultThreshold
	}

	var (
		deadlines  []models.Deadline
		extensions []models.Extension
		clocks     []models.SpeedyTrialClock
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		deadlines, err = r.deadlines.Find(gctx, namespace)
		return err
	})
	g.Go(func() (err error) {
		extensions, err = r.extensions.Find(gctx, namespace)
		return err
	})
	g.Go(func() (err error) {
		clocks, err = r.clocks.Find(gctx, namespace)
		return err
	})
	if err := g.Wait(); err != nil {
		if apperr.KindOf(err) == apperr.StorageFailure {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.StorageFailure, err, "failed to load compliance state")
	}

	report := &models.ComplianceReport{
		Namespace:     namespace,
		AsOf:          asOf,
		ThresholdDays: threshold,
		DeadlinesByStatus: map[models.DeadlineStatus]int{
			models.DeadlineOpen:      0,
			models.DeadlineCompleted: 0,
			models.DeadlineMissed:    0,
		},
	}
	tallyDeadlines(report, deadlines, asOf)
	tallyExtensions(report, extensions)
	tallyClocks(report, clocks, asOf, threshold)
	return report, nil
}

func tallyDeadlines(report *models.ComplianceReport, deadlines []models.Deadline, asOf models.Date) {
	report.TotalDeadlines = len(deadlines)
	for _, d := range deadlines {
		status := d.EffectiveStatus(asOf)
		report.DeadlinesByStatus[status]++
		if status == models.DeadlineMissed && d.Jurisdictional {
			report.MissedJurisdictional++
		}
	}
}

func tallyExtensions(report *models.ComplianceReport, extensions []models.Extension) {
	report.ExtensionsRequested = len(extensions)
	totalDays := 0
	for _, ext := range extensions {
		switch ext.Status {
		case models.ExtensionPending:
			report.ExtensionsPending++
		case models.ExtensionApproved:
			report.ExtensionsApproved++
			totalDays += ext.RequestedDate.DaysSince(ext.OriginalDueDate)
		case models.ExtensionDenied:
			report.ExtensionsDenied++
		}
	}
	if decided := report.ExtensionsApproved + report.ExtensionsDenied; decided > 0 {
		report.ExtensionGrantRate = float64(report.ExtensionsApproved) / float64(decided)
	}
	if report.ExtensionsApproved > 0 {
		report.AverageExtensionDays = float64(totalDays) / float64(report.ExtensionsApproved)
	}
}

func tallyClocks(report *models.ComplianceReport, clocks []models.SpeedyTrialClock, asOf models.Date, threshold int) {
	report.SpeedyTrialClocks = len(clocks)
	for _, c := range clocks {
		e := speedytrial.Evaluate(c, asOf)
		switch {
		case e.State == models.ClockViolated:
			report.SpeedyTrialViolations++
		case e.State == models.ClockRunning && e.RemainingDays <= threshold:
			report.SpeedyTrialApproaching++
		}
	}
}
