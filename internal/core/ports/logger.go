package ports

// Logger defines the interface for logging.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(err error)
	// SetJSON switches between JSON and human-readable output.
	SetJSON(enable bool)
}
