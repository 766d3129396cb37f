package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	Env          string
	LogLevel     string

	// StoreBackend is one of mongo, sqlite, redis or memory
	StoreBackend  string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JurisdictionsFile    string
	ReminderOffsets      []int
	SpeedyTrialLimitDays int
	ApproachingDays      int
	SlotHorizonDays      int
	SlotIncrementMinutes int
	RequestTimeout       time.Duration

	SendGridAPIKey    string
	ReminderFromEmail string

	// DefaultTenant is the namespace used when a request names no tenant
	DefaultTenant string

	// SweepSchedule is a cron spec; empty disables the background sweep
	SweepSchedule string
	SweepTenants  []string
}

// New sets up all config related services
func New() *Config {
	conf := &Config{
		URL:          os.Getenv("DB_URI"),
		DatabaseName: os.Getenv("DB_NAME"),
		BaseURL:      os.Getenv("BASE_URL"),
		Port:         getEnv("PORT", "8080"),
		Env:          os.Getenv("APP_ENV"),
		LogLevel:     os.Getenv("LOG_LEVEL"),

		StoreBackend:  getEnv("STORE_BACKEND", "memory"),
		SQLitePath:    getEnv("SQLITE_PATH", "court-compliance.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JurisdictionsFile:    os.Getenv("JURISDICTIONS_FILE"),
		ReminderOffsets:      getEnvInts("REMINDER_OFFSETS", []int{30, 14, 7, 1}),
		SpeedyTrialLimitDays: getEnvInt("SPEEDY_TRIAL_LIMIT_DAYS", 70),
		ApproachingDays:      getEnvInt("SPEEDY_TRIAL_APPROACHING_DAYS", 10),
		SlotHorizonDays:      getEnvInt("SLOT_SEARCH_HORIZON_DAYS", 90),
		SlotIncrementMinutes: getEnvInt("SLOT_INCREMENT_MINUTES", 30),
		RequestTimeout:       time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,

		SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		ReminderFromEmail: getEnv("REMINDER_FROM_EMAIL", "no-reply@court-compliance.local"),

		DefaultTenant: getEnv("DEFAULT_TENANT", "default"),

		SweepSchedule: os.Getenv("SWEEP_SCHEDULE"),
		SweepTenants:  getEnvList("SWEEP_TENANTS", []string{"default"}),
	}

	//setup zap logger and replace default logger
	logger, err := setLogger(conf.Env)
	if err != nil {
		logger = zap.NewExample()
	}
	if conf.LogLevel != "" {
		if leveled, err := withLevel(logger, conf.Env, conf.LogLevel); err == nil {
			logger = leveled
		}
	}
	_ = zap.ReplaceGlobals(logger)

	return conf
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		zap.S().Warnw("invalid integer in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getEnvList(key string, fallback []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvInts(key string, fallback []int) []int {
	parts := getEnvList(key, nil)
	if len(parts) == 0 {
		return fallback
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			zap.S().Warnw("invalid offset list in environment, using default", "key", key, "value", os.Getenv(key))
			return fallback
		}
		out = append(out, n)
	}
	return out
}
