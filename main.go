package main

import (
	"fmt"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/linesmerrill/court-compliance-api/api/handlers"
	"github.com/linesmerrill/court-compliance-api/api/scheduler"
	"github.com/linesmerrill/court-compliance-api/config"
	"github.com/linesmerrill/court-compliance-api/logging"
	"github.com/linesmerrill/court-compliance-api/notify"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	// initialize store, services and router
	if err := a.Initialize(); err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	if a.Config.SweepSchedule != "" {
		var notifier notify.Notifier = notify.NewLogNotifier(logging.New("notify"))
		if a.Config.SendGridAPIKey != "" {
			notifier = notify.NewEmailNotifier(a.Config.SendGridAPIKey, "Court Compliance", a.Config.ReminderFromEmail)
		}
		s := scheduler.NewScheduler(a.Deadlines, a.Reminders, a.SpeedyTrial, a.Locks, notifier, a.Metrics, a.Config.SweepTenants)
		if err := s.Start(a.Config.SweepSchedule); err != nil {
			zap.S().Fatalw("invalid sweep schedule", "spec", a.Config.SweepSchedule, "error", err)
		}
		defer s.Stop()
	}

	zap.S().Infow("court-compliance-api is up and running",
		"port", a.Config.Port,
		"url", a.Config.BaseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", a.Config.Port), a.Router))
}
