package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "unavailable"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrInvalidDuration ErrorCode = "invalid_duration"
	ErrInvalidInterval ErrorCode = "invalid_interval"
	ErrInvalidCeiling  ErrorCode = "invalid_ceiling"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrBindFlags       ErrorCode = "bind_flags_failed"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Lifecycle errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrAlreadyRunning ErrorCode = "already_running"

	// Benchmark errors
	ErrRunInProgress ErrorCode = "run_in_progress"
	ErrRunFinalized  ErrorCode = "run_finalized"

	// Probe errors
	ErrProbeTimeout     ErrorCode = "probe_timeout"
	ErrProbeUnavailable ErrorCode = "probe_unavailable"
	ErrProbeFailed      ErrorCode = "probe_failed"

	// Operation errors
	ErrOperationFailed ErrorCode = "operation_failed"
	ErrTimeout         ErrorCode = "operation_timeout"

	// Storage errors
	ErrStorageInit   ErrorCode = "storage_init_failed"
	ErrStorageAccess ErrorCode = "storage_access_failed"
	ErrStorageClose  ErrorCode = "storage_close_failed"

	// Export errors
	ErrExportFailed ErrorCode = "export_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:         "Internal error occurred",
	ErrInvalidArgument:  "Invalid argument provided",
	ErrUnavailable:      "Resource unavailable",
	ErrInvalidConfig:    "Invalid configuration",
	ErrInvalidDuration:  "Duration must be positive",
	ErrInvalidInterval:  "Interval must be positive",
	ErrInvalidCeiling:   "Safety ceiling must be within (0, 100]",
	ErrReadConfig:       "Failed to read configuration",
	ErrBindFlags:        "Failed to bind flags",
	ErrInvalidLogLevel:  "Invalid log level",
	ErrInitFailed:       "Initialization failed",
	ErrShutdownFailed:   "Shutdown failed",
	ErrAlreadyRunning:   "Another instance is already running",
	ErrRunInProgress:    "A benchmark run is already in progress",
	ErrRunFinalized:     "Run report is already finalized",
	ErrProbeTimeout:     "Probe timed out",
	ErrProbeUnavailable: "Probe unavailable",
	ErrProbeFailed:      "Probe failed",
	ErrOperationFailed:  "Operation failed",
	ErrTimeout:          "Operation timed out",
	ErrStorageInit:      "Failed to initialize run storage",
	ErrStorageAccess:    "Failed to access run storage",
	ErrStorageClose:     "Failed to close run storage",
	ErrExportFailed:     "Failed to export monitoring data",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
