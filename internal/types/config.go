package types

type RunMode string

const (
	// ModeLocal runs the API server, the notification router and the scheduler in one process
	ModeLocal RunMode = "local"
	// ModeAPI runs the API server and the notification router
	ModeAPI RunMode = "api"
	// ModeScheduler runs only the cron scheduler and the notification router
	ModeScheduler RunMode = "scheduler"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
