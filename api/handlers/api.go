package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-compliance-api/api"
	"github.com/linesmerrill/court-compliance-api/compliance"
	"github.com/linesmerrill/court-compliance-api/config"
	"github.com/linesmerrill/court-compliance-api/databases"
	"github.com/linesmerrill/court-compliance-api/deadlines"
	"github.com/linesmerrill/court-compliance-api/holidays"
	"github.com/linesmerrill/court-compliance-api/scheduling"
	"github.com/linesmerrill/court-compliance-api/speedytrial"
	"github.com/linesmerrill/court-compliance-api/tenant"
)

// App stores the router, the store and the services built on it, so they
// can be reused by the background scheduler
type App struct {
	Router  *mux.Router
	Config  config.Config
	Metrics *api.Metrics

	Calendar    *holidays.Calendar
	Deadlines   *deadlines.Service
	Reminders   *deadlines.Reminders
	Extensions  *deadlines.Workflow
	SpeedyTrial *speedytrial.Service
	Scheduling  *scheduling.Resolver
	Reporter    *compliance.Reporter
	Locks       databases.SchedulerLockDatabase

	store databases.KeyValueStore
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()

	d := Deadline{Clock: deadlines.NewClock(a.Calendar), Service: a.Deadlines, Reminders: a.Reminders}
	e := Extension{Workflow: a.Extensions}
	j := Jurisdiction{Calendar: a.Calendar}
	st := SpeedyTrial{Service: a.SpeedyTrial, ApproachingDays: a.Config.ApproachingDays}
	c := Calendar{Resolver: a.Scheduling}
	rep := Compliance{Reporter: a.Reporter}

	// healthchex
	r.HandleFunc("/health", api.HealthCheckHandler).Methods("GET")
	r.Handle("/metrics", a.Metrics.Handler()).Methods("GET")

	timeout := a.Config.RequestTimeout
	if timeout <= 0 {
		timeout = api.QueryTimeout
	}
	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(a.Metrics.Middleware, tenant.NewResolver(a.Config.DefaultTenant).Middleware, api.TimeoutMiddleware(timeout))

	apiCreate.HandleFunc("/deadlines/compute", d.ComputeHandler).Methods("POST")
	apiCreate.HandleFunc("/deadlines", d.CreateDeadlineHandler).Methods("POST")
	apiCreate.HandleFunc("/deadlines/{deadline_id}", d.DeadlineByIDHandler).Methods("GET")
	apiCreate.HandleFunc("/deadlines/{deadline_id}/complete", d.CompleteDeadlineHandler).Methods("POST")
	apiCreate.HandleFunc("/deadlines/{deadline_id}/reminders", d.RemindersByDeadlineIDHandler).Methods("GET")
	apiCreate.HandleFunc("/cases/{case_id}/deadlines", d.DeadlinesByCaseIDHandler).Methods("GET")
	apiCreate.HandleFunc("/reminders/{reminder_id}/acknowledge", d.AcknowledgeReminderHandler).Methods("POST")

	apiCreate.HandleFunc("/deadlines/{deadline_id}/extensions", e.RequestExtensionHandler).Methods("POST")
	apiCreate.HandleFunc("/deadlines/{deadline_id}/extensions", e.ExtensionsByDeadlineIDHandler).Methods("GET")
	apiCreate.HandleFunc("/extensions/{extension_id}", e.ExtensionByIDHandler).Methods("GET")
	apiCreate.HandleFunc("/extensions/{extension_id}/decision", e.DecideExtensionHandler).Methods("POST")

	apiCreate.HandleFunc("/jurisdictions", j.JurisdictionsHandler).Methods("GET")
	apiCreate.HandleFunc("/jurisdictions/{code}/holidays", j.HolidaysHandler).Methods("GET")
	apiCreate.HandleFunc("/jurisdictions/{code}/business-days/{date}", j.BusinessDayHandler).Methods("GET")

	apiCreate.HandleFunc("/cases/{case_id}/speedy-trial", st.StartClockHandler).Methods("POST")
	apiCreate.HandleFunc("/cases/{case_id}/speedy-trial", st.ClockHandler).Methods("GET")
	apiCreate.HandleFunc("/cases/{case_id}/speedy-trial/delays", st.AddDelayHandler).Methods("POST")
	apiCreate.HandleFunc("/cases/{case_id}/speedy-trial/check", st.CheckViolationHandler).Methods("POST")
	apiCreate.HandleFunc("/cases/{case_id}/speedy-trial/close", st.CloseClockHandler).Methods("POST")
	apiCreate.HandleFunc("/cases/{case_id}/speedy-trial/remedy", st.RemedyHandler).Methods("POST")
	apiCreate.HandleFunc("/speedy-trial/approaching", st.ApproachingHandler).Methods("GET")

	apiCreate.HandleFunc("/calendar/conflicts", c.ConflictHandler).Methods("POST")
	apiCreate.HandleFunc("/calendar/slots", c.SlotHandler).Methods("POST")
	apiCreate.HandleFunc("/calendar/events", c.BookEventHandler).Methods("POST")
	apiCreate.HandleFunc("/calendar/events/{event_id}", c.EventByIDHandler).Methods("GET")
	apiCreate.HandleFunc("/calendar/events/{event_id}", c.CancelEventHandler).Methods("DELETE")
	apiCreate.HandleFunc("/calendar/resources/{kind}/{resource_id}/events", c.ResourceEventsHandler).Methods("GET")

	apiCreate.HandleFunc("/compliance/report", rep.ReportHandler).Methods("GET")

	return r
}

// Setup builds every service on top of store and registers metrics against
// reg. It is split from Initialize so tests can supply their own store.
func (a *App) Setup(store databases.KeyValueStore, reg prometheus.Registerer) error {
	metrics, err := api.NewMetrics(reg)
	if err != nil {
		return err
	}

	extra, err := config.LoadJurisdictions(a.Config.JurisdictionsFile)
	if err != nil {
		return err
	}
	calendar, err := holidays.NewCalendar(extra...)
	if err != nil {
		return err
	}

	deadlineDB := databases.NewDeadlineDatabase(store)
	extensionDB := databases.NewExtensionDatabase(store)
	clockDB := databases.NewSpeedyTrialDatabase(store)

	reminders := deadlines.NewReminders(databases.NewReminderDatabase(store), a.Config.ReminderOffsets)
	resolver, err := scheduling.NewResolver(databases.NewCalendarEventDatabase(store), calendar, scheduling.Options{
		IncrementMinutes: a.Config.SlotIncrementMinutes,
		HorizonDays:      a.Config.SlotHorizonDays,
	})
	if err != nil {
		return err
	}

	a.store = store
	a.Metrics = metrics
	a.Calendar = calendar
	a.Reminders = reminders
	a.Deadlines = deadlines.NewService(deadlines.NewClock(calendar), deadlineDB, reminders)
	a.Extensions = deadlines.NewWorkflow(deadlineDB, extensionDB, reminders)
	a.SpeedyTrial = speedytrial.NewService(clockDB, a.Config.SpeedyTrialLimitDays)
	a.Scheduling = resolver
	a.Reporter = compliance.NewReporter(deadlineDB, extensionDB, clockDB, a.Config.ApproachingDays)
	a.Locks = databases.NewSchedulerLockDatabase(store)
	return nil
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := openStore(ctx, &a.Config)
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to store")
		return err
	}
	zap.S().Infow("court-compliance-api has connected to the store", "backend", a.Config.StoreBackend)

	if err := a.Setup(store, prometheus.DefaultRegisterer); err != nil {
		zap.S().With(err).Error("failed to set up services")
		_ = store.Close()
		return err
	}

	// initialize api router
	a.initializeRoutes()
	return nil
}

// Close releases the store
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func openStore(ctx context.Context, conf *config.Config) (databases.KeyValueStore, error) {
	switch strings.ToLower(conf.StoreBackend) {
	case "", "memory":
		return databases.NewMemoryStore(), nil
	case "mongo":
		return databases.NewMongoStore(ctx, conf)
	case "sqlite":
		return databases.NewSQLiteStore(conf.SQLitePath)
	case "redis":
		return databases.NewRedisStore(ctx, databases.RedisOptions{
			Addr:     conf.RedisAddr,
			Password: conf.RedisPassword,
			DB:       conf.RedisDB,
		})
	}
	return nil, fmt.Errorf("unknown store backend %q", conf.StoreBackend)
}
