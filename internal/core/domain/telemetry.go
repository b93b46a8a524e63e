package domain

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// LoadSource tells where a loaded module came from.
type LoadSource string

const (
	// LoadSourceStore means the module was already registered.
	LoadSourceStore LoadSource = "store"
	// LoadSourceCache means the component cache served the module.
	LoadSourceCache LoadSource = "cache"
	// LoadSourceResolver means the module was resolved dynamically.
	LoadSourceResolver LoadSource = "resolver"
	// LoadSourceShared means the caller joined a load already in flight.
	LoadSourceShared LoadSource = "shared"
)
