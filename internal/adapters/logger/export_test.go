package logger

// ErrorEntry exposes errorEntry to the external test package.
type ErrorEntry = errorEntry

var (
	CollectErrorEntries = collectErrorEntries
	FormatErrorEntries  = formatErrorEntries
)

// NewEntry builds an ErrorEntry.
func NewEntry(message string, metadata map[string]any) ErrorEntry {
	return errorEntry{message: message, metadata: metadata}
}

// Message returns the entry message.
func (e errorEntry) Message() string { return e.message }

// Metadata returns the entry metadata.
func (e errorEntry) Metadata() map[string]any { return e.metadata }
