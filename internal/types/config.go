package types

type RunMode string

const (
	// ModeLocal is the mode for running the full stack locally
	ModeLocal RunMode = "local"
	// ModeService is the mode for running just the billing core service
	ModeService RunMode = "service"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
